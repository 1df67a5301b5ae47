package Controllers

import (
	"bytes"
	"fmt"
	"time"

	"Kasir/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportController exports the transaction log as a spreadsheet
type ReportController struct {
	DB *gorm.DB
}

// NewReportController creates a new ReportController
func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

func buildSalesReport(db *gorm.DB, from, to time.Time) (*bytes.Buffer, error) {
	var transactions []Models.Transaction
	if err := db.Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").Find(&transactions).Error; err != nil {
		return nil, err
	}

	f := excelize.NewFile()

	sheetName := "Penjualan"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"No", "Tanggal", "Tipe", "Total", "Bayar", "Kembali", "Jml Item"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	for rowIndex, txn := range transactions {
		row := rowIndex + 2
		values := []interface{}{
			fmt.Sprintf("#%06d", txn.ID),
			txn.CreatedAt.Format("2006-01-02 15:04:05"),
			txn.PaymentType,
			txn.Total,
			txn.Payment,
			txn.Change,
			txn.ItemCount,
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	// Realized revenue footer: cash totals plus debt payments in range
	revenue, err := RealizedRevenue(db, from, to)
	if err != nil {
		return nil, err
	}
	footerRow := len(transactions) + 3
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", footerRow), "Pendapatan (realisasi)")
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", footerRow), revenue)

	for i := 0; i < len(headers); i++ {
		f.SetColWidth(sheetName, string('A'+rune(i)), string('A'+rune(i)), 15)
	}
	if f.GetSheetName(0) != sheetName {
		f.DeleteSheet("Sheet1")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing Excel file to buffer: %v", err)
	}
	return &buf, nil
}

// SalesReport streams an xlsx of transactions between ?from and ?to
// (YYYY-MM-DD, defaults to the current month)
func (c *ReportController) SalesReport(ctx *fiber.Ctx) error {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	if v := ctx.Query("from"); v != "" {
		parsed, err := parseDay(v)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid from date. Use YYYY-MM-DD"})
		}
		from = parsed
	}
	if v := ctx.Query("to"); v != "" {
		parsed, err := parseDay(v)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid to date. Use YYYY-MM-DD"})
		}
		to = parsed.AddDate(0, 0, 1)
	}

	buf, err := buildSalesReport(c.DB, from, to)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to build report",
			"message": err.Error(),
		})
	}

	filename := fmt.Sprintf("laporan-penjualan-%s.xlsx", from.Format("2006-01-02"))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	return ctx.Send(buf.Bytes())
}
