package Models

import (
	"errors"
	"log"

	"gorm.io/gorm"
)

// Setting keys
const (
	SettingStoreName      = "storeName"
	SettingLastBackupTime = "lastBackupTime"
	SettingPrinterName    = "printerName"
	SettingTelegramToken  = "telegramToken"
	SettingTelegramChatID = "telegramChatId"
)

// Setting is one row of the singleton key/value configuration table.
type Setting struct {
	Key   string `json:"key" gorm:"primaryKey"`
	Value string `json:"value"`
}

// GetSetting returns the stored value, or fallback when the key is absent.
// A store failure also falls back, but is logged; an absent key is not.
func GetSetting(db *gorm.DB, key, fallback string) string {
	var s Setting
	if err := db.First(&s, "key = ?", key).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Error reading setting %s: %v\n", key, err)
		}
		return fallback
	}
	return s.Value
}

// PutSetting upserts a key/value pair.
func PutSetting(db *gorm.DB, key, value string) error {
	return db.Save(&Setting{Key: key, Value: value}).Error
}
