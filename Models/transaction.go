package Models

import (
	"gorm.io/gorm"
)

// Payment types
const (
	PaymentCash = "cash"
	PaymentDebt = "debt"
)

// Stock movement reasons
const (
	MovementSale    = "sale"
	MovementRestock = "restock"
	MovementAdjust  = "adjust"
)

// Transaction is a committed sale. Immutable once created; change is 0 for
// debt sales and ItemCount counts cart lines, not total quantity.
type Transaction struct {
	gorm.Model
	Total       int    `json:"total" gorm:"not null"`
	Payment     int    `json:"payment" gorm:"not null"`
	Change      int    `json:"change" gorm:"not null"`
	ItemCount   int    `json:"item_count" gorm:"not null"`
	PaymentType string `json:"payment_type" gorm:"not null;default:cash;index"`
}

// TransactionItem snapshots name, price and quantity at the time of sale so
// history survives product edits and deletion. ProductID is nil for custom
// (ad hoc) cart lines.
type TransactionItem struct {
	gorm.Model
	TransactionID uint   `json:"transaction_id" gorm:"not null;index"`
	ProductID     *uint  `json:"product_id"`
	Name          string `json:"name" gorm:"not null"`
	Price         int    `json:"price" gorm:"not null"`
	Qty           int    `json:"qty" gorm:"not null"`
}

// StockMovement is the append-only inventory audit log. Delta is the
// requested change, signed, even when the applied change was clamped at zero.
// TransactionID is set for every sale movement and nil for manual ones.
type StockMovement struct {
	gorm.Model
	ProductID     uint   `json:"product_id" gorm:"not null;index"`
	Delta         int    `json:"delta" gorm:"not null"`
	Reason        string `json:"reason" gorm:"not null;index"`
	TransactionID *uint  `json:"transaction_id" gorm:"index"`
}
