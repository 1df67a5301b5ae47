package Controllers

import (
	"errors"
	"fmt"
	"io"
	"time"

	"Kasir/Backup"
	"Kasir/Models"
	"Kasir/Telegram"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BackupController handles export, remote delivery and restore. The
// fallback-to-download decision on delivery failure lives here, not in the
// engine.
type BackupController struct {
	DB *gorm.DB
	// NewTelegramClient is swappable so tests can stub delivery
	NewTelegramClient func(token, chatID string) *Telegram.Client
}

// NewBackupController creates a new BackupController
func NewBackupController(db *gorm.DB) *BackupController {
	return &BackupController{DB: db, NewTelegramClient: Telegram.NewClient}
}

func (c *BackupController) buildExport() ([]byte, string, error) {
	storeName := Models.GetSetting(c.DB, Models.SettingStoreName, "My Store")
	doc, err := Backup.Export(c.DB, storeName)
	if err != nil {
		return nil, "", err
	}
	encoded, err := Backup.Encode(doc)
	if err != nil {
		return nil, "", err
	}
	return encoded, Backup.Filename(doc.ExportedAt), nil
}

func (c *BackupController) stampBackupTime() {
	// Best effort; a failed stamp only re-triggers the reminder
	_ = Models.PutSetting(c.DB, Models.SettingLastBackupTime, time.Now().UTC().Format(time.RFC3339))
}

// Download exports the full ledger as a gzip JSON attachment
func (c *BackupController) Download(ctx *fiber.Ctx) error {
	encoded, filename, err := c.buildExport()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to export backup",
			"message": err.Error(),
		})
	}

	c.stampBackupTime()
	ctx.Set("Content-Type", "application/gzip")
	ctx.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return ctx.Send(encoded)
}

// SendToTelegram exports the ledger and pushes it to the configured chat.
// Missing credentials route to local export (fallback=true without attempting
// delivery); a delivery failure also asks the caller to fall back.
func (c *BackupController) SendToTelegram(ctx *fiber.Ctx) error {
	token := Models.GetSetting(c.DB, Models.SettingTelegramToken, "")
	chatID := Models.GetSetting(c.DB, Models.SettingTelegramChatID, "")
	client := c.NewTelegramClient(token, chatID)

	if !client.Configured() {
		return ctx.Status(fiber.StatusPreconditionFailed).JSON(fiber.Map{
			"error":    "Telegram belum dikonfigurasi",
			"fallback": true,
		})
	}

	encoded, filename, err := c.buildExport()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to export backup",
			"message": err.Error(),
		})
	}

	storeName := Models.GetSetting(c.DB, Models.SettingStoreName, "My Store")
	caption := fmt.Sprintf("Backup POS %s (%s)", storeName, time.Now().Format("02 Jan 2006 15:04"))
	if err := client.SendDocument(filename, encoded, caption); err != nil {
		if errors.Is(err, Telegram.ErrNoCredentials) {
			return ctx.Status(fiber.StatusPreconditionFailed).JSON(fiber.Map{
				"error":    "Telegram belum dikonfigurasi",
				"fallback": true,
			})
		}
		// Delivery failed; the committed export is still intact, so tell the
		// caller to save locally instead
		return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":    "Gagal mengirim ke Telegram",
			"message":  err.Error(),
			"fallback": true,
		})
	}

	c.stampBackupTime()
	return ctx.JSON(fiber.Map{"message": "Backup terkirim ke Telegram", "filename": filename})
}

// Restore replaces the entire ledger with an uploaded backup document
func (c *BackupController) Restore(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("backup")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File backup diperlukan"})
	}

	src, err := file.Open()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Gagal membaca file"})
	}
	defer src.Close()

	raw, err := io.ReadAll(src)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Gagal membaca file"})
	}

	doc, err := Backup.Decode(raw)
	if err != nil {
		// Format errors abort before any table is touched
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File backup tidak valid"})
	}

	if err := Backup.Restore(c.DB, doc); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Restore gagal, data tidak berubah",
			"message": err.Error(),
		})
	}

	return ctx.JSON(fiber.Map{
		"message":     "Restore berhasil",
		"exported_at": doc.ExportedAt,
		"store_name":  doc.StoreName,
	})
}

// Wipe clears every ledger table. Destructive; guarded by the owner
// permission level in the route table.
func (c *BackupController) Wipe(ctx *fiber.Ctx) error {
	if err := Backup.Wipe(c.DB); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to wipe store",
			"message": err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{"message": "Semua data dihapus"})
}
