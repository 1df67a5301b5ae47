package CronJobs

import (
	"fmt"
	"log"
	"time"

	"Kasir/Backup"
	"Kasir/Models"
	"Kasir/Telegram"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// BackupScheduler represents the scheduled nightly backup service. It pushes
// the full ledger to Telegram and skips silently while credentials are not
// configured; the manual backup endpoints stay available either way.
type BackupScheduler struct {
	db            *gorm.DB
	cronScheduler *cron.Cron
	jobID         cron.EntryID
	// NewTelegramClient is swappable so tests can stub delivery
	NewTelegramClient func(token, chatID string) *Telegram.Client
}

// NewBackupScheduler creates a new backup scheduler
func NewBackupScheduler(db *gorm.DB) *BackupScheduler {
	return &BackupScheduler{
		db:                db,
		cronScheduler:     cron.New(cron.WithSeconds()),
		NewTelegramClient: Telegram.NewClient,
	}
}

// Start initiates the nightly backup cron job
func (s *BackupScheduler) Start() error {
	var err error
	s.jobID, err = s.cronScheduler.AddFunc("0 0 2 * * *", func() {
		log.Println("Running scheduled nightly backup")
		s.runBackup()
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	s.cronScheduler.Start()
	log.Println("Backup scheduler started - will run daily at 2:00 AM")
	return nil
}

// Stop terminates the scheduler
func (s *BackupScheduler) Stop() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
		log.Println("Backup scheduler stopped")
	}
}

// RunManualBackup executes a backup outside the schedule
func (s *BackupScheduler) RunManualBackup() {
	log.Println("Running manual backup")
	s.runBackup()
}

// runBackup exports the ledger and delivers it, stamping lastBackupTime only
// on successful delivery
func (s *BackupScheduler) runBackup() {
	token := Models.GetSetting(s.db, Models.SettingTelegramToken, "")
	chatID := Models.GetSetting(s.db, Models.SettingTelegramChatID, "")
	client := s.NewTelegramClient(token, chatID)
	if !client.Configured() {
		log.Println("Skipping scheduled backup: Telegram not configured")
		return
	}

	storeName := Models.GetSetting(s.db, Models.SettingStoreName, "My Store")
	doc, err := Backup.Export(s.db, storeName)
	if err != nil {
		log.Printf("Error exporting scheduled backup: %v\n", err)
		return
	}
	encoded, err := Backup.Encode(doc)
	if err != nil {
		log.Printf("Error encoding scheduled backup: %v\n", err)
		return
	}

	caption := fmt.Sprintf("Backup otomatis %s (%s)", storeName, time.Now().Format("02 Jan 2006 15:04"))
	if err := client.SendDocument(Backup.Filename(doc.ExportedAt), encoded, caption); err != nil {
		log.Printf("Error delivering scheduled backup: %v\n", err)
		return
	}

	if err := Models.PutSetting(s.db, Models.SettingLastBackupTime, time.Now().UTC().Format(time.RFC3339)); err != nil {
		log.Printf("Error stamping backup time: %v\n", err)
	}
	log.Println("Scheduled backup delivered to Telegram")
}
