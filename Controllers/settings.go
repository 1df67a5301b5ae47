package Controllers

import (
	"strings"
	"time"

	"Kasir/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SettingsController handles the key/value configuration table
type SettingsController struct {
	DB *gorm.DB
}

// NewSettingsController creates a new SettingsController
func NewSettingsController(db *gorm.DB) *SettingsController {
	return &SettingsController{DB: db}
}

// GetSettings returns every stored setting plus a backup reminder flag: set
// when transactions exist and no backup happened in the last 7 days
func (c *SettingsController) GetSettings(ctx *fiber.Ctx) error {
	var settings []Models.Setting
	if err := c.DB.Find(&settings).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve settings"})
	}

	values := make(map[string]string, len(settings))
	for _, s := range settings {
		values[s.Key] = s.Value
	}

	var txnCount int64
	if err := c.DB.Model(&Models.Transaction{}).Count(&txnCount).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count transactions"})
	}

	needsBackup := false
	if txnCount > 0 {
		last, ok := values[Models.SettingLastBackupTime]
		if !ok {
			needsBackup = true
		} else if t, err := time.Parse(time.RFC3339, last); err != nil || time.Since(t) > 7*24*time.Hour {
			needsBackup = true
		}
	}

	return ctx.JSON(fiber.Map{"settings": values, "needs_backup": needsBackup})
}

// UpdateSettings upserts the posted keys. lastBackupTime is stamped by the
// backup flow, not writable here.
func (c *SettingsController) UpdateSettings(ctx *fiber.Ctx) error {
	var input map[string]string
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	allowed := map[string]bool{
		Models.SettingStoreName:      true,
		Models.SettingPrinterName:    true,
		Models.SettingTelegramToken:  true,
		Models.SettingTelegramChatID: true,
	}

	for key, value := range input {
		if !allowed[key] {
			continue
		}
		if key == Models.SettingStoreName && strings.TrimSpace(value) == "" {
			value = "My Store"
		}
		if err := Models.PutSetting(c.DB, key, strings.TrimSpace(value)); err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save settings"})
		}
	}

	return ctx.JSON(fiber.Map{"message": "Pengaturan disimpan"})
}
