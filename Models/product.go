package Models

import (
	"gorm.io/gorm"
)

type Category struct {
	gorm.Model
	Name string `json:"name" gorm:"not null"`
}

// Product is a catalog item. Stock never goes below zero; deductions clamp.
// Barcode is optional and only unique when present (NULLs are not indexed).
type Product struct {
	gorm.Model
	Name              string  `json:"name" gorm:"not null;index"`
	CategoryID        *uint   `json:"category_id" gorm:"index"`
	Price             int     `json:"price" gorm:"not null"`
	ResellerPrice     int     `json:"reseller_price"`
	Stock             int     `json:"stock" gorm:"not null;default:0"`
	LowStockThreshold int     `json:"low_stock_threshold" gorm:"default:0"`
	Barcode           *string `json:"barcode" gorm:"uniqueIndex"`
}

// PriceFor resolves the unit price for the active pricing mode.
func (p *Product) PriceFor(reseller bool) int {
	if reseller && p.ResellerPrice > 0 {
		return p.ResellerPrice
	}
	return p.Price
}

// IsLowStock reports whether the product is at or below its threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}
