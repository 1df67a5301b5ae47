package Controllers

import (
	"fmt"
	"strings"
	"time"

	"Kasir/Models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var validate = validator.New()

// ValidationError is rejected input, reported before any mutation. The
// message is safe to show to the cashier.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func errValidation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// CartLine is one entry of an in-progress sale. ProductID > 0 references a
// catalog product; ProductID == 0 marks a custom (ad hoc) charge which is
// excluded from stock deduction and movement logging.
type CartLine struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Price     int    `json:"price" validate:"gte=0"`
	Qty       int    `json:"qty" validate:"gt=0"`
}

// IsCustom reports whether the line has no backing product.
func (l *CartLine) IsCustom() bool { return l.ProductID == 0 }

// ReceiptItem mirrors a committed TransactionItem for display and printing.
type ReceiptItem struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
	Qty   int    `json:"qty"`
}

// Receipt is the result handed back after a committed sale.
type Receipt struct {
	ID           uint          `json:"id"`
	CreatedAt    time.Time     `json:"created_at"`
	Total        int           `json:"total"`
	Payment      int           `json:"payment"`
	Change       int           `json:"change"`
	PaymentType  string        `json:"payment_type"`
	CustomerName string        `json:"customer_name,omitempty"`
	Items        []ReceiptItem `json:"items"`
}

// validateCart checks the cart before any write and resolves catalog line
// names from the current product rows. Prices stay as the caller resolved
// them (retail or reseller mode is frozen at checkout invocation). Returns
// the cart total.
func validateCart(db *gorm.DB, cart []CartLine) (int, error) {
	if len(cart) == 0 {
		return 0, errValidation("Keranjang masih kosong")
	}
	total := 0
	for i := range cart {
		line := &cart[i]
		if err := validate.Struct(line); err != nil {
			return 0, errValidation("Item #%d tidak valid: harga dan jumlah harus benar", i+1)
		}
		if line.IsCustom() {
			if strings.TrimSpace(line.Name) == "" {
				return 0, errValidation("Item kustom harus punya nama")
			}
		} else {
			var product Models.Product
			if err := db.First(&product, line.ProductID).Error; err != nil {
				return 0, errValidation("Produk #%d tidak ditemukan", line.ProductID)
			}
			// Snapshot the catalog name so the cashier cannot spoof it
			line.Name = product.Name
		}
		total += line.Price * line.Qty
	}
	return total, nil
}

// deductSaleStock clamp-deducts one catalog line inside the given
// transactional scope and appends the movement row with the requested delta.
func deductSaleStock(tx *gorm.DB, line CartLine, transactionID uint) error {
	var product Models.Product
	if err := tx.First(&product, line.ProductID).Error; err != nil {
		return err
	}
	newStock := product.Stock - line.Qty
	if newStock < 0 {
		newStock = 0
	}
	if err := tx.Model(&Models.Product{}).Where("id = ?", product.ID).
		Update("stock", newStock).Error; err != nil {
		return err
	}
	movement := Models.StockMovement{
		ProductID:     product.ID,
		Delta:         -line.Qty,
		Reason:        Models.MovementSale,
		TransactionID: &transactionID,
	}
	return tx.Create(&movement).Error
}

// insertItems writes one snapshot row per cart line, custom lines included.
func insertItems(tx *gorm.DB, cart []CartLine, transactionID uint) error {
	for _, line := range cart {
		item := Models.TransactionItem{
			TransactionID: transactionID,
			Name:          line.Name,
			Price:         line.Price,
			Qty:           line.Qty,
		}
		if !line.IsCustom() {
			productID := line.ProductID
			item.ProductID = &productID
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
	}
	return nil
}

func receiptFor(txn *Models.Transaction, cart []CartLine, customerName string) *Receipt {
	receipt := &Receipt{
		ID:           txn.ID,
		CreatedAt:    txn.CreatedAt,
		Total:        txn.Total,
		Payment:      txn.Payment,
		Change:       txn.Change,
		PaymentType:  txn.PaymentType,
		CustomerName: customerName,
	}
	for _, line := range cart {
		receipt.Items = append(receipt.Items, ReceiptItem{Name: line.Name, Price: line.Price, Qty: line.Qty})
	}
	return receipt
}

// CommitSale converts a validated cart into a permanent cash sale as one
// atomic unit: the transaction row, every stock deduction with its movement
// row, and every item snapshot all commit or none do.
func CommitSale(db *gorm.DB, cart []CartLine, payment int) (*Receipt, error) {
	total, err := validateCart(db, cart)
	if err != nil {
		return nil, err
	}
	if payment < total {
		return nil, errValidation("Pembayaran kurang dari total (Rp %d)", total)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	txn := Models.Transaction{
		Total:       total,
		Payment:     payment,
		Change:      payment - total,
		ItemCount:   len(cart),
		PaymentType: Models.PaymentCash,
	}
	if err := tx.Create(&txn).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, line := range cart {
		if line.IsCustom() {
			continue // custom lines touch no product row
		}
		if err := deductSaleStock(tx, line, txn.ID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := insertItems(tx, cart, txn.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return receiptFor(&txn, cart, ""), nil
}

// CommitDebtSale records a pay-later sale: the same unit as CommitSale plus
// the standing Debt and, when a down payment was received, the mirroring
// DebtPayment row, so the payment-history invariant holds from creation.
func CommitDebtSale(db *gorm.DB, cart []CartLine, customer *Models.Customer, payment int) (*Receipt, error) {
	total, err := validateCart(db, cart)
	if err != nil {
		return nil, err
	}
	if payment < 0 {
		return nil, errValidation("Uang muka tidak boleh negatif")
	}
	if payment >= total {
		return nil, errValidation("Pembayaran sudah menutupi total, gunakan pembayaran tunai")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	txn := Models.Transaction{
		Total:       total,
		Payment:     payment,
		Change:      0,
		ItemCount:   len(cart),
		PaymentType: Models.PaymentDebt,
	}
	if err := tx.Create(&txn).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, line := range cart {
		if line.IsCustom() {
			continue
		}
		if err := deductSaleStock(tx, line, txn.ID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := insertItems(tx, cart, txn.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	debt := Models.Debt{
		CustomerID:    customer.ID,
		TransactionID: txn.ID,
		Amount:        total,
		PaidAmount:    payment,
		Status:        Models.DebtStatusFor(total, payment),
	}
	if err := tx.Create(&debt).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if payment > 0 {
		downPayment := Models.DebtPayment{
			DebtID: debt.ID,
			Amount: payment,
			Note:   "DP / Bayar Sebagian",
		}
		if err := tx.Create(&downPayment).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return receiptFor(&txn, cart, customer.Name), nil
}

// CheckoutController handles sale commits over HTTP
type CheckoutController struct {
	DB *gorm.DB
}

// NewCheckoutController creates a new CheckoutController
func NewCheckoutController(db *gorm.DB) *CheckoutController {
	return &CheckoutController{DB: db}
}

type CheckoutInput struct {
	Items   []CartLine `json:"items"`
	Payment int        `json:"payment"`
}

type DebtCheckoutInput struct {
	Items       []CartLine `json:"items"`
	Payment     int        `json:"payment"`
	CustomerID  uint       `json:"customer_id"`
	NewCustomer *struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"new_customer"`
}

// Checkout commits a cash sale and returns the receipt
func (c *CheckoutController) Checkout(ctx *fiber.Ctx) error {
	var input CheckoutInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	receipt, err := CommitSale(c.DB, input.Items, input.Payment)
	if err != nil {
		return checkoutError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Transaksi berhasil",
		"data":    receipt,
	})
}

// DebtCheckout commits a pay-later sale for an existing or newly registered
// customer and returns the receipt
func (c *CheckoutController) DebtCheckout(ctx *fiber.Ctx) error {
	var input DebtCheckoutInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var customer Models.Customer
	if input.CustomerID > 0 {
		if err := c.DB.First(&customer, input.CustomerID).Error; err != nil {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pelanggan tidak ditemukan"})
		}
	} else if input.NewCustomer != nil {
		created, err := RegisterCustomer(c.DB, input.NewCustomer.Name, input.NewCustomer.Phone)
		if err != nil {
			return checkoutError(ctx, err)
		}
		customer = *created
	} else {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Pelanggan harus dipilih"})
	}

	receipt, err := CommitDebtSale(c.DB, input.Items, &customer, input.Payment)
	if err != nil {
		return checkoutError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Hutang %s dicatat", customer.Name),
		"data":    receipt,
	})
}

// checkoutError maps rejected input to 400 with the descriptive message and
// commit failures to a generic 500; the caller may retry the whole action.
func checkoutError(ctx *fiber.Ctx, err error) error {
	if verr, ok := err.(*ValidationError); ok {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Message})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Operation failed",
		"message": err.Error(),
	})
}
