package Backup

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"Kasir/Models"

	"gorm.io/gorm"
)

// Version of the backup document format
const Version = 1

// ErrInvalidFormat marks a document that cannot be restored. The store is
// left untouched when this is returned.
var ErrInvalidFormat = errors.New("invalid backup file format")

// Data holds every ledger table. Absent arrays unmarshal as nil and restore
// as empty, so documents made before debt tracking existed still load.
type Data struct {
	Categories       []Models.Category        `json:"categories"`
	Products         []Models.Product         `json:"products"`
	Transactions     []Models.Transaction     `json:"transactions"`
	TransactionItems []Models.TransactionItem `json:"transaction_items"`
	StockMovements   []Models.StockMovement   `json:"stock_movements"`
	Settings         []Models.Setting         `json:"settings"`
	Customers        []Models.Customer        `json:"customers"`
	Debts            []Models.Debt            `json:"debts"`
	DebtPayments     []Models.DebtPayment     `json:"debt_payments"`
}

// Document is the versioned backup envelope.
type Document struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	StoreName  string    `json:"storeName"`
	Data       *Data     `json:"data"`
}

// Filename derives the deterministic export name for a given date.
func Filename(t time.Time) string {
	return fmt.Sprintf("pos-backup-%s.json.gz", t.Format("2006-01-02"))
}

// Export snapshots every table into a document.
func Export(db *gorm.DB, storeName string) (*Document, error) {
	data := &Data{}
	if err := db.Find(&data.Categories).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&data.Products).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&data.Transactions).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&data.TransactionItems).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&data.StockMovements).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&data.Settings).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&data.Customers).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&data.Debts).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&data.DebtPayments).Error; err != nil {
		return nil, err
	}

	return &Document{
		Version:    Version,
		ExportedAt: time.Now().UTC(),
		StoreName:  storeName,
		Data:       data,
	}, nil
}

// Encode serializes the document to gzip-compressed UTF-8 JSON.
func Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(doc); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a backup file, transparently decompressing gzip input, and
// rejects documents without a data field before anything is touched.
func Decode(raw []byte) (*Document, error) {
	if len(raw) >= 2 && raw[0] == 0x1f && raw[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		defer zr.Close()
		plain, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		raw = plain
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if doc.Data == nil {
		return nil, ErrInvalidFormat
	}
	return &doc, nil
}

// Restore performs a full replace: every table is cleared and the document's
// arrays bulk-inserted, all as one atomic unit. This is destructive and not
// a merge; a failure partway leaves the store exactly as it was.
func Restore(db *gorm.DB, doc *Document) error {
	if doc == nil || doc.Data == nil {
		return ErrInvalidFormat
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, table := range Models.LedgerTables() {
		if err := wipe.Unscoped().Delete(table).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	data := doc.Data
	inserts := []interface{}{}
	if len(data.Categories) > 0 {
		inserts = append(inserts, &data.Categories)
	}
	if len(data.Products) > 0 {
		inserts = append(inserts, &data.Products)
	}
	if len(data.Transactions) > 0 {
		inserts = append(inserts, &data.Transactions)
	}
	if len(data.TransactionItems) > 0 {
		inserts = append(inserts, &data.TransactionItems)
	}
	if len(data.StockMovements) > 0 {
		inserts = append(inserts, &data.StockMovements)
	}
	if len(data.Settings) > 0 {
		inserts = append(inserts, &data.Settings)
	}
	if len(data.Customers) > 0 {
		inserts = append(inserts, &data.Customers)
	}
	if len(data.Debts) > 0 {
		inserts = append(inserts, &data.Debts)
	}
	if len(data.DebtPayments) > 0 {
		inserts = append(inserts, &data.DebtPayments)
	}
	for _, rows := range inserts {
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

// Wipe clears every ledger table as one atomic unit.
func Wipe(db *gorm.DB) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, table := range Models.LedgerTables() {
		if err := wipe.Unscoped().Delete(table).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}
