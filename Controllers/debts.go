package Controllers

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"Kasir/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RegisterCustomer adds a customer after checking the name is unused
// case-insensitively. Rejects empty names.
func RegisterCustomer(db *gorm.DB, name, phone string) (*Models.Customer, error) {
	cleanName := strings.TrimSpace(name)
	if cleanName == "" {
		return nil, errValidation("Nama pelanggan wajib diisi")
	}

	var count int64
	if err := db.Model(&Models.Customer{}).
		Where("LOWER(name) = LOWER(?)", cleanName).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errValidation("Nama pelanggan sudah digunakan")
	}

	customer := Models.Customer{Name: cleanName, Phone: strings.TrimSpace(phone)}
	if err := db.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// PayDebt applies one payment to a single debt. The amount must be in
// (0, remaining]; anything else is rejected with no mutation. The debt is
// read, validated and updated inside one transaction, and paid_amount is
// incremented in SQL so a concurrently committed payment is never
// overwritten; the payment-row sum always equals paid_amount.
func PayDebt(db *gorm.DB, debtID uint, amount int, note string) (*Models.Debt, error) {
	if amount <= 0 {
		return nil, errValidation("Nominal harus lebih dari 0")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var debt Models.Debt
	if err := tx.First(&debt, debtID).Error; err != nil {
		tx.Rollback()
		return nil, errValidation("Hutang tidak ditemukan")
	}
	if remaining := debt.Remaining(); amount > remaining {
		tx.Rollback()
		return nil, errValidation("Melebihi sisa hutang (Rp %d)", remaining)
	}

	payment := Models.DebtPayment{DebtID: debt.ID, Amount: amount, Note: strings.TrimSpace(note)}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	debt.PaidAmount += amount
	debt.Status = Models.DebtStatusFor(debt.Amount, debt.PaidAmount)
	if err := tx.Model(&Models.Debt{}).Where("id = ?", debt.ID).
		Updates(map[string]interface{}{
			"paid_amount": gorm.Expr("paid_amount + ?", amount),
			"status":      debt.Status,
		}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &debt, nil
}

// PayAllDebts allocates one payment across every open debt of a customer,
// oldest first, fully satisfying each before touching the next. The whole
// allocation commits as one unit and is rejected entirely when the amount is
// non-positive or exceeds the customer's total outstanding.
func PayAllDebts(db *gorm.DB, customerID uint, amount int, note string) ([]Models.Debt, error) {
	if amount <= 0 {
		return nil, errValidation("Nominal harus lebih dari 0")
	}

	cleanNote := strings.TrimSpace(note)
	if cleanNote == "" {
		cleanNote = "Bayar Piutang"
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// The open-debt snapshot and the outstanding check live inside the same
	// transaction as the writes they gate
	var open []Models.Debt
	if err := tx.Where("customer_id = ? AND status <> ?", customerID, Models.DebtLunas).
		Order("created_at ASC").Find(&open).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	totalOutstanding := 0
	for _, d := range open {
		totalOutstanding += d.Remaining()
	}
	if amount > totalOutstanding {
		tx.Rollback()
		return nil, errValidation("Melebihi total hutang (Rp %d)", totalOutstanding)
	}

	remainingPayment := amount
	var touched []Models.Debt
	for i := range open {
		if remainingPayment <= 0 {
			break
		}
		debt := &open[i]
		owed := debt.Remaining()
		if owed <= 0 {
			continue
		}

		applied := owed
		if remainingPayment < applied {
			applied = remainingPayment
		}

		payment := Models.DebtPayment{DebtID: debt.ID, Amount: applied, Note: cleanNote}
		if err := tx.Create(&payment).Error; err != nil {
			tx.Rollback()
			return nil, err
		}

		debt.PaidAmount += applied
		debt.Status = Models.DebtStatusFor(debt.Amount, debt.PaidAmount)
		if err := tx.Model(&Models.Debt{}).Where("id = ?", debt.ID).
			Updates(map[string]interface{}{
				"paid_amount": gorm.Expr("paid_amount + ?", applied),
				"status":      debt.Status,
			}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}

		remainingPayment -= applied
		touched = append(touched, *debt)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return touched, nil
}

// DebtController handles customers and pay-later bookkeeping
type DebtController struct {
	DB *gorm.DB
}

// NewDebtController creates a new DebtController
func NewDebtController(db *gorm.DB) *DebtController {
	return &DebtController{DB: db}
}

// CustomerSummary is one row of the receivables overview
type CustomerSummary struct {
	Models.Customer
	Outstanding int    `json:"outstanding"`
	AgeClass    string `json:"age_class"`
}

// GetCustomers lists all customers with their outstanding total and the age
// class of their oldest open debt, largest outstanding first
func (c *DebtController) GetCustomers(ctx *fiber.Ctx) error {
	var customers []Models.Customer
	if err := c.DB.Find(&customers).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve customers"})
	}

	var openDebts []Models.Debt
	if err := c.DB.Where("status <> ?", Models.DebtLunas).
		Order("created_at ASC").Find(&openDebts).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve debts"})
	}

	outstanding := make(map[uint]int)
	oldest := make(map[uint]time.Time)
	for _, d := range openDebts {
		outstanding[d.CustomerID] += d.Remaining()
		if _, seen := oldest[d.CustomerID]; !seen {
			oldest[d.CustomerID] = d.CreatedAt
		}
	}

	now := time.Now()
	summaries := make([]CustomerSummary, 0, len(customers))
	for _, customer := range customers {
		summary := CustomerSummary{Customer: customer, AgeClass: Models.AgeClear}
		summary.Outstanding = outstanding[customer.ID]
		if createdAt, ok := oldest[customer.ID]; ok {
			summary.AgeClass = Models.AgeClassFor(createdAt, now)
		}
		summaries = append(summaries, summary)
	}
	// Largest outstanding first
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Outstanding > summaries[j].Outstanding
	})

	return ctx.JSON(summaries)
}

// CreateCustomer registers a customer
func (c *DebtController) CreateCustomer(ctx *fiber.Ctx) error {
	var input struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	customer, err := RegisterCustomer(c.DB, input.Name, input.Phone)
	if err != nil {
		return checkoutError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(customer)
}

// DebtDetail is a debt with its payment history and age class
type DebtDetail struct {
	Models.Debt
	Payments []Models.DebtPayment `json:"payments"`
	AgeClass string               `json:"age_class"`
}

// GetCustomerDebts lists a customer's debts newest first, each with its
// payment history
func (c *DebtController) GetCustomerDebts(ctx *fiber.Ctx) error {
	customerID, err := strconv.Atoi(ctx.Params("customer_id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	var customer Models.Customer
	if result := c.DB.First(&customer, customerID); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pelanggan tidak ditemukan"})
	}

	var debts []Models.Debt
	if err := c.DB.Where("customer_id = ?", customerID).
		Order("created_at DESC").Find(&debts).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve debts"})
	}

	now := time.Now()
	details := make([]DebtDetail, 0, len(debts))
	for _, debt := range debts {
		detail := DebtDetail{Debt: debt, AgeClass: Models.AgeClassFor(debt.CreatedAt, now)}
		if err := c.DB.Where("debt_id = ?", debt.ID).
			Order("created_at ASC").Find(&detail.Payments).Error; err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve payments"})
		}
		details = append(details, detail)
	}

	return ctx.JSON(fiber.Map{"customer": customer, "debts": details})
}

type PaymentInput struct {
	Amount int    `json:"amount"`
	Note   string `json:"note"`
}

// PayDebt records a payment against a single debt
func (c *DebtController) PayDebt(ctx *fiber.Ctx) error {
	debtID, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid debt ID"})
	}

	var input PaymentInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	debt, err := PayDebt(c.DB, uint(debtID), input.Amount, input.Note)
	if err != nil {
		return checkoutError(ctx, err)
	}

	message := "Pembayaran dicatat"
	if debt.Status == Models.DebtLunas {
		message = "Hutang lunas"
	}
	return ctx.JSON(fiber.Map{"message": message, "data": debt})
}

// PayAllDebts allocates one payment across all open debts of a customer,
// oldest first
func (c *DebtController) PayAllDebts(ctx *fiber.Ctx) error {
	customerID, err := strconv.Atoi(ctx.Params("customer_id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	var input PaymentInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	touched, err := PayAllDebts(c.DB, uint(customerID), input.Amount, input.Note)
	if err != nil {
		return checkoutError(ctx, err)
	}

	return ctx.JSON(fiber.Map{"message": "Pembayaran dicatat", "data": touched})
}
