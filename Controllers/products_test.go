package Controllers

import (
	"testing"

	"Kasir/Models"
)

func TestAdjustStockRestockAndClamp(t *testing.T) {
	db := openTestDB(t)
	product := seedProduct(t, db, "Kecap", 12000, 3)

	updated, err := AdjustStock(db, product.ID, 5)
	if err != nil {
		t.Fatalf("restock failed: %v", err)
	}
	if updated.Stock != 8 {
		t.Fatalf("expected stock 8, got %d", updated.Stock)
	}

	// Negative adjustment beyond stock clamps at zero but records the
	// requested delta
	updated, err = AdjustStock(db, product.ID, -20)
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if updated.Stock != 0 {
		t.Fatalf("expected clamped stock 0, got %d", updated.Stock)
	}

	var movements []Models.StockMovement
	if err := db.Where("product_id = ?", product.ID).Order("id ASC").Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(movements))
	}
	if movements[0].Delta != 5 || movements[0].Reason != Models.MovementRestock {
		t.Fatalf("expected restock +5, got %d %s", movements[0].Delta, movements[0].Reason)
	}
	if movements[1].Delta != -20 || movements[1].Reason != Models.MovementAdjust {
		t.Fatalf("expected adjust -20, got %d %s", movements[1].Delta, movements[1].Reason)
	}
	if movements[0].TransactionID != nil || movements[1].TransactionID != nil {
		t.Fatal("manual movements must not reference a transaction")
	}
}

func TestAdjustStockUnknownProduct(t *testing.T) {
	db := openTestDB(t)
	if _, err := AdjustStock(db, 999, 1); err == nil {
		t.Fatal("expected error for unknown product")
	}
}
