package Models

import (
	"time"

	"gorm.io/gorm"
)

// Debt statuses. "lunas" is kept as the persisted value so backups made by
// older versions of the app restore unchanged.
const (
	DebtPending = "pending"
	DebtPartial = "partial"
	DebtLunas   = "lunas"
)

// Debt age classes for receivable prioritization
const (
	AgeDanger  = "danger"
	AgeWarning = "warning"
	AgeClear   = "clear"
)

type Customer struct {
	gorm.Model
	Name  string `json:"name" gorm:"not null;uniqueIndex"`
	Phone string `json:"phone"`
}

// Debt tracks a sale fulfilled with less than full payment. PaidAmount always
// equals the sum of the debt's payment rows and never exceeds Amount.
type Debt struct {
	gorm.Model
	CustomerID    uint   `json:"customer_id" gorm:"not null;index"`
	TransactionID uint   `json:"transaction_id" gorm:"not null;index"`
	Amount        int    `json:"amount" gorm:"not null"`
	PaidAmount    int    `json:"paid_amount" gorm:"not null;default:0"`
	Status        string `json:"status" gorm:"not null;default:pending;index"`
}

// DebtPayment is an append-only record of money received against a debt.
type DebtPayment struct {
	gorm.Model
	DebtID uint   `json:"debt_id" gorm:"not null;index"`
	Amount int    `json:"amount" gorm:"not null"`
	Note   string `json:"note"`
}

// Remaining returns the amount still owed.
func (d *Debt) Remaining() int {
	return d.Amount - d.PaidAmount
}

// DebtStatusFor derives status purely from paid vs owed.
func DebtStatusFor(amount, paid int) string {
	switch {
	case paid <= 0:
		return DebtPending
	case paid < amount:
		return DebtPartial
	default:
		return DebtLunas
	}
}

// AgeClassFor classifies a debt by age for display prioritization:
// over 30 days overdue, over 7 days warning, otherwise current.
func AgeClassFor(createdAt, now time.Time) string {
	days := int(now.Sub(createdAt).Hours() / 24)
	if days > 30 {
		return AgeDanger
	}
	if days > 7 {
		return AgeWarning
	}
	return AgeClear
}
