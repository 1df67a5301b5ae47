package Models

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the local store and migrates the schema.
func Connect(path string) error {
	connection, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return err
	}
	DB = connection

	// 1. Base tables with no dependencies
	if err := DB.AutoMigrate(
		&User{},
		&Category{},
		&Customer{},
		&Setting{},
	); err != nil {
		return err
	}

	// 2. Tables referencing the base tables
	if err := DB.AutoMigrate(
		&Product{},
		&Transaction{},
	); err != nil {
		return err
	}

	// 3. Tables referencing transactions and products
	if err := DB.AutoMigrate(
		&TransactionItem{},
		&StockMovement{},
		&Debt{},
		&DebtPayment{},
	); err != nil {
		return err
	}

	log.Println("Connected to store at", path)
	return nil
}

// Open creates a standalone store connection without touching the global DB.
// Tests use this with a throwaway file so each test gets an isolated store.
func Open(path string) (*gorm.DB, error) {
	connection, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := connection.AutoMigrate(
		&User{}, &Category{}, &Customer{}, &Setting{},
		&Product{}, &Transaction{},
		&TransactionItem{}, &StockMovement{}, &Debt{}, &DebtPayment{},
	); err != nil {
		return nil, err
	}
	return connection, nil
}

// LedgerTables lists every table covered by backup, restore and wipe, in
// clear/insert order (referenced tables first).
func LedgerTables() []interface{} {
	return []interface{}{
		&Category{}, &Product{}, &Transaction{}, &TransactionItem{},
		&StockMovement{}, &Setting{}, &Customer{}, &Debt{}, &DebtPayment{},
	}
}
