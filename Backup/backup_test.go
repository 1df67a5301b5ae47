package Backup

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"Kasir/Models"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Models.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	return db
}

func seedStore(t *testing.T, db *gorm.DB) {
	t.Helper()
	category := Models.Category{Name: "Minuman"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	categoryID := category.ID
	if err := db.Create(&Models.Product{Name: "Teh Botol", CategoryID: &categoryID, Price: 5000, Stock: 10}).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	txn := Models.Transaction{Total: 10000, Payment: 10000, ItemCount: 1, PaymentType: Models.PaymentCash}
	if err := db.Create(&txn).Error; err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	if err := db.Create(&Models.TransactionItem{TransactionID: txn.ID, Name: "Teh Botol", Price: 5000, Qty: 2}).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	customer := Models.Customer{Name: "Bu Siti"}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if err := db.Create(&Models.Debt{CustomerID: customer.ID, TransactionID: txn.ID, Amount: 5000, PaidAmount: 1000, Status: Models.DebtPartial}).Error; err != nil {
		t.Fatalf("seed debt: %v", err)
	}
	if err := db.Create(&Models.DebtPayment{DebtID: 1, Amount: 1000}).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	if err := Models.PutSetting(db, Models.SettingStoreName, "Warung Test"); err != nil {
		t.Fatalf("seed setting: %v", err)
	}
}

func TestFilename(t *testing.T) {
	date := time.Date(2026, 8, 29, 13, 45, 0, 0, time.UTC)
	if got := Filename(date); got != "pos-backup-2026-08-29.json.gz" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestExportRoundTrip(t *testing.T) {
	db := openTestDB(t)
	seedStore(t, db)

	doc, err := Export(db, "Warung Test")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if doc.Version != Version || doc.StoreName != "Warung Test" {
		t.Fatalf("unexpected envelope: version %d store %q", doc.Version, doc.StoreName)
	}

	encoded, err := Encode(doc)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	// Must be gzip
	if encoded[0] != 0x1f || encoded[1] != 0x8b {
		t.Fatal("encoded backup must be gzip compressed")
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	// Restore into a fresh store and compare table contents
	fresh := openTestDB(t)
	if err := Restore(fresh, decoded); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	restored, err := Export(fresh, "Warung Test")
	if err != nil {
		t.Fatalf("re-export failed: %v", err)
	}

	tables := []struct {
		name string
		a, b int
	}{
		{"categories", len(doc.Data.Categories), len(restored.Data.Categories)},
		{"products", len(doc.Data.Products), len(restored.Data.Products)},
		{"transactions", len(doc.Data.Transactions), len(restored.Data.Transactions)},
		{"transaction_items", len(doc.Data.TransactionItems), len(restored.Data.TransactionItems)},
		{"settings", len(doc.Data.Settings), len(restored.Data.Settings)},
		{"customers", len(doc.Data.Customers), len(restored.Data.Customers)},
		{"debts", len(doc.Data.Debts), len(restored.Data.Debts)},
		{"debt_payments", len(doc.Data.DebtPayments), len(restored.Data.DebtPayments)},
	}
	for _, table := range tables {
		if table.a != table.b {
			t.Errorf("table %s: exported %d rows, restored %d", table.name, table.a, table.b)
		}
	}

	var product Models.Product
	if err := fresh.First(&product).Error; err != nil {
		t.Fatalf("load restored product: %v", err)
	}
	if product.Name != "Teh Botol" || product.Stock != 10 {
		t.Fatalf("restored product mismatch: %q stock %d", product.Name, product.Stock)
	}
}

func TestRestoreReplacesExistingData(t *testing.T) {
	db := openTestDB(t)
	seedStore(t, db)
	doc, err := Export(db, "Warung Test")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	// Target store has unrelated data that must vanish
	target := openTestDB(t)
	if err := target.Create(&Models.Product{Name: "Stale", Price: 1}).Error; err != nil {
		t.Fatalf("seed stale product: %v", err)
	}
	if err := Restore(target, doc); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	var staleCount int64
	target.Model(&Models.Product{}).Where("name = ?", "Stale").Count(&staleCount)
	if staleCount != 0 {
		t.Fatal("restore must fully replace, stale row survived")
	}
}

func TestDecodeToleratesMissingDebtTables(t *testing.T) {
	// A backup made before debt tracking existed
	raw := []byte(`{
		"version": 1,
		"exportedAt": "2024-01-01T00:00:00Z",
		"storeName": "Old Store",
		"data": {
			"categories": [{"name": "Lama"}],
			"products": [],
			"transactions": [],
			"transaction_items": [],
			"stock_movements": [],
			"settings": []
		}
	}`)

	doc, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if doc.Data.Customers != nil || doc.Data.Debts != nil || doc.Data.DebtPayments != nil {
		t.Fatal("absent arrays must stay empty")
	}

	db := openTestDB(t)
	if err := Restore(db, doc); err != nil {
		t.Fatalf("restore of pre-debt backup failed: %v", err)
	}

	var categoryCount int64
	db.Model(&Models.Category{}).Count(&categoryCount)
	if categoryCount != 1 {
		t.Fatalf("expected 1 category, got %d", categoryCount)
	}
}

func TestDecodeRejectsMissingData(t *testing.T) {
	cases := [][]byte{
		[]byte(`{"version": 1, "storeName": "X"}`),
		[]byte(`not json at all`),
		[]byte(`{"version": 1, "data": null}`),
	}
	for _, raw := range cases {
		if _, err := Decode(raw); err == nil {
			t.Errorf("expected format error for %q", raw)
		}
	}
}

func TestRestoreRejectsNilDataUntouched(t *testing.T) {
	db := openTestDB(t)
	seedStore(t, db)

	if err := Restore(db, &Document{Version: 1}); err == nil {
		t.Fatal("expected format error")
	}

	// Store must be untouched
	var productCount int64
	db.Model(&Models.Product{}).Count(&productCount)
	if productCount != 1 {
		t.Fatalf("store must be untouched after rejected restore, got %d products", productCount)
	}
}

func TestEncodeProducesValidJSONDocument(t *testing.T) {
	db := openTestDB(t)
	doc, err := Export(db, "Empty Store")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	encoded, err := Encode(doc)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	// Envelope survives the codec
	raw, _ := json.Marshal(decoded)
	var check map[string]interface{}
	if err := json.Unmarshal(raw, &check); err != nil {
		t.Fatalf("re-marshal: %v", err)
	}
	for _, key := range []string{"version", "exportedAt", "storeName", "data"} {
		if _, ok := check[key]; !ok {
			t.Errorf("document missing %q field", key)
		}
	}
}
