package Controllers

import (
	"path/filepath"
	"testing"

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

func seedProduct(t *testing.T, db *gorm.DB, name string, price, stock int) Models.Product {
	t.Helper()
	product := Models.Product{Name: name, Price: price, ResellerPrice: price, Stock: stock}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return product
}

func TestCommitSaleDeductsStockAndLogsMovements(t *testing.T) {
	db := openTestDB(t)
	productA := seedProduct(t, db, "Kopi Sachet", 10000, 10)

	receipt, err := CommitSale(db, []CartLine{
		{ProductID: productA.ID, Price: 10000, Qty: 2},
	}, 20000)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if receipt.Total != 20000 || receipt.Change != 0 {
		t.Fatalf("expected total 20000 change 0, got total %d change %d", receipt.Total, receipt.Change)
	}

	var reloaded Models.Product
	if err := db.First(&reloaded, productA.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 8 {
		t.Fatalf("expected stock 8, got %d", reloaded.Stock)
	}

	var movements []Models.StockMovement
	if err := db.Where("transaction_id = ?", receipt.ID).Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements))
	}
	if movements[0].Delta != -2 || movements[0].Reason != Models.MovementSale {
		t.Fatalf("expected delta -2 reason sale, got %d %s", movements[0].Delta, movements[0].Reason)
	}
}

func TestCommitSaleMovementSumMatchesCartQuantities(t *testing.T) {
	db := openTestDB(t)
	productA := seedProduct(t, db, "Teh Botol", 5000, 20)
	productB := seedProduct(t, db, "Roti Tawar", 12000, 5)

	cart := []CartLine{
		{ProductID: productA.ID, Price: 5000, Qty: 3},
		{ProductID: productB.ID, Price: 12000, Qty: 2},
	}
	receipt, err := CommitSale(db, cart, 100000)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	var sum int64
	if err := db.Model(&Models.StockMovement{}).
		Where("transaction_id = ?", receipt.ID).
		Select("COALESCE(SUM(delta), 0)").Scan(&sum).Error; err != nil {
		t.Fatalf("sum movements: %v", err)
	}
	if sum != -5 {
		t.Fatalf("expected movement sum -5, got %d", sum)
	}

	var txn Models.Transaction
	if err := db.First(&txn, receipt.ID).Error; err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if txn.ItemCount != 2 {
		t.Fatalf("item count must equal cart lines (2), got %d", txn.ItemCount)
	}
}

func TestCommitSaleClampsStockAtZero(t *testing.T) {
	db := openTestDB(t)
	product := seedProduct(t, db, "Gula Pasir", 15000, 1)

	receipt, err := CommitSale(db, []CartLine{
		{ProductID: product.ID, Price: 15000, Qty: 3},
	}, 45000)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	var reloaded Models.Product
	db.First(&reloaded, product.ID)
	if reloaded.Stock != 0 {
		t.Fatalf("expected stock clamped to 0, got %d", reloaded.Stock)
	}

	// The movement keeps the requested delta, not the clamped one
	var movement Models.StockMovement
	if err := db.Where("transaction_id = ?", receipt.ID).First(&movement).Error; err != nil {
		t.Fatalf("load movement: %v", err)
	}
	if movement.Delta != -3 {
		t.Fatalf("expected requested delta -3, got %d", movement.Delta)
	}
}

func TestCommitSaleCustomLineSkipsStock(t *testing.T) {
	db := openTestDB(t)
	product := seedProduct(t, db, "Beras 5kg", 70000, 10)

	receipt, err := CommitSale(db, []CartLine{
		{ProductID: product.ID, Price: 70000, Qty: 1},
		{Name: "Shipping", Price: 5000, Qty: 1},
	}, 75000)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	var items []Models.TransactionItem
	if err := db.Where("transaction_id = ?", receipt.ID).Find(&items).Error; err != nil {
		t.Fatalf("load items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 item snapshots, got %d", len(items))
	}

	var movementCount int64
	db.Model(&Models.StockMovement{}).Where("transaction_id = ?", receipt.ID).Count(&movementCount)
	if movementCount != 1 {
		t.Fatalf("custom line must not produce a movement, got %d movements", movementCount)
	}
}

func TestCommitSaleRejectsInsufficientPayment(t *testing.T) {
	db := openTestDB(t)
	product := seedProduct(t, db, "Minyak Goreng", 30000, 4)

	_, err := CommitSale(db, []CartLine{
		{ProductID: product.ID, Price: 30000, Qty: 1},
	}, 20000)
	if err == nil {
		t.Fatal("expected rejection when payment < total")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected validation error, got %T", err)
	}

	// Nothing may have been written
	var txnCount, movementCount int64
	db.Model(&Models.Transaction{}).Count(&txnCount)
	db.Model(&Models.StockMovement{}).Count(&movementCount)
	if txnCount != 0 || movementCount != 0 {
		t.Fatalf("rejected checkout must not mutate: %d transactions, %d movements", txnCount, movementCount)
	}

	var reloaded Models.Product
	db.First(&reloaded, product.ID)
	if reloaded.Stock != 4 {
		t.Fatalf("stock must be untouched, got %d", reloaded.Stock)
	}
}

func TestCommitSaleRejectsEmptyCart(t *testing.T) {
	db := openTestDB(t)

	_, err := CommitSale(db, nil, 10000)
	if err == nil {
		t.Fatal("expected rejection of empty cart")
	}
}

func TestCommitSaleSnapshotsCatalogName(t *testing.T) {
	db := openTestDB(t)
	product := seedProduct(t, db, "Sabun Mandi", 4000, 6)

	receipt, err := CommitSale(db, []CartLine{
		{ProductID: product.ID, Name: "spoofed", Price: 4000, Qty: 1},
	}, 4000)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if receipt.Items[0].Name != "Sabun Mandi" {
		t.Fatalf("expected snapshot of catalog name, got %q", receipt.Items[0].Name)
	}

	// Snapshot survives product deletion
	if err := db.Delete(&Models.Product{}, product.ID).Error; err != nil {
		t.Fatalf("delete product: %v", err)
	}
	var item Models.TransactionItem
	if err := db.Where("transaction_id = ?", receipt.ID).First(&item).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	if item.Name != "Sabun Mandi" || item.Price != 4000 {
		t.Fatalf("snapshot lost after deletion: %q %d", item.Name, item.Price)
	}
}
