package Controllers

import (
	"strconv"
	"time"

	"Kasir/Models"
	"Kasir/Printer"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// parseDay resolves YYYY-MM-DD to local midnight. CreatedAt rows carry the
// server's zone, so UTC parsing would shift date filters by the offset.
func parseDay(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, time.Local)
}

// HistoryController handles the transaction log and revenue summaries
type HistoryController struct {
	DB *gorm.DB
}

// NewHistoryController creates a new HistoryController
func NewHistoryController(db *gorm.DB) *HistoryController {
	return &HistoryController{DB: db}
}

// GetTransactions lists committed transactions newest first, optionally
// filtered to one date (YYYY-MM-DD)
func (c *HistoryController) GetTransactions(ctx *fiber.Ctx) error {
	query := c.DB.Model(&Models.Transaction{}).Order("created_at DESC")
	if date := ctx.Query("date"); date != "" {
		day, err := parseDay(date)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date format. Use YYYY-MM-DD"})
		}
		query = query.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
	}

	var transactions []Models.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}
	return ctx.JSON(transactions)
}

// GetTransaction returns one transaction with its item snapshots
func (c *HistoryController) GetTransaction(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var txn Models.Transaction
	if result := c.DB.First(&txn, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaksi tidak ditemukan"})
	}

	var items []Models.TransactionItem
	if err := c.DB.Where("transaction_id = ?", txn.ID).Find(&items).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve items"})
	}

	return ctx.JSON(fiber.Map{"transaction": txn, "items": items})
}

// RealizedRevenue computes revenue for a date range on a strictly
// payment-received basis: cash sale totals plus debt payments received in
// the range. A debt sale's own total never counts until it is paid.
func RealizedRevenue(db *gorm.DB, from, to time.Time) (int, error) {
	var cashTotal int64
	if err := db.Model(&Models.Transaction{}).
		Where("payment_type = ? AND created_at >= ? AND created_at < ?", Models.PaymentCash, from, to).
		Select("COALESCE(SUM(total), 0)").Scan(&cashTotal).Error; err != nil {
		return 0, err
	}

	var debtPaid int64
	if err := db.Model(&Models.DebtPayment{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Select("COALESCE(SUM(amount), 0)").Scan(&debtPaid).Error; err != nil {
		return 0, err
	}

	return int(cashTotal + debtPaid), nil
}

// GetDailySummary returns realized revenue and transaction count for a date
func (c *HistoryController) GetDailySummary(ctx *fiber.Ctx) error {
	date := ctx.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	day, err := parseDay(date)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date format. Use YYYY-MM-DD"})
	}
	next := day.AddDate(0, 0, 1)

	revenue, err := RealizedRevenue(c.DB, day, next)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute revenue"})
	}

	var count int64
	if err := c.DB.Model(&Models.Transaction{}).
		Where("created_at >= ? AND created_at < ?", day, next).
		Count(&count).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count transactions"})
	}

	return ctx.JSON(fiber.Map{
		"date":             date,
		"realized_revenue": revenue,
		"transactions":     count,
	})
}

// PrintJobFor shapes a committed transaction for the printer sink.
func PrintJobFor(db *gorm.DB, txn *Models.Transaction, storeName string) (*Printer.Job, error) {
	var items []Models.TransactionItem
	if err := db.Where("transaction_id = ?", txn.ID).Find(&items).Error; err != nil {
		return nil, err
	}

	job := &Printer.Job{
		ID:          txn.ID,
		CreatedAt:   txn.CreatedAt,
		Total:       txn.Total,
		Payment:     txn.Payment,
		Change:      txn.Change,
		PaymentType: txn.PaymentType,
		StoreName:   storeName,
	}
	for _, item := range items {
		job.Items = append(job.Items, Printer.Item{Name: item.Name, Price: item.Price, Qty: item.Qty})
	}

	if txn.PaymentType == Models.PaymentDebt {
		var debt Models.Debt
		if err := db.Where("transaction_id = ?", txn.ID).First(&debt).Error; err == nil {
			var customer Models.Customer
			if err := db.First(&customer, debt.CustomerID).Error; err == nil {
				job.CustomerName = customer.Name
			}
		}
	}
	return job, nil
}

// Reprint renders the ESC/POS bytes for an already committed transaction.
// Printer failures are the caller's problem and never touch the sale; a
// missing printer configuration is reported distinctly from render errors.
func (c *HistoryController) Reprint(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	printerName := Models.GetSetting(c.DB, Models.SettingPrinterName, "")
	if printerName == "" {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Printer tidak terhubung. Hubungkan di Pengaturan.",
		})
	}

	var txn Models.Transaction
	if result := c.DB.First(&txn, id); result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaksi tidak ditemukan"})
	}

	storeName := Models.GetSetting(c.DB, Models.SettingStoreName, "My Store")
	job, err := PrintJobFor(c.DB, &txn, storeName)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build receipt"})
	}

	ctx.Set("Content-Type", "application/octet-stream")
	return ctx.Send(Printer.BuildReceipt(*job))
}
