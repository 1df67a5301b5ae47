package CronJobs

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"Kasir/Models"
	"Kasir/Telegram"
)

func newTestScheduler(t *testing.T) *BackupScheduler {
	t.Helper()
	db, err := Models.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	return NewBackupScheduler(db)
}

func TestRunManualBackupDeliversAndStampsTime(t *testing.T) {
	scheduler := newTestScheduler(t)
	db := scheduler.db

	var gotFilename string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if files := r.MultipartForm.File["document"]; len(files) == 1 {
			gotFilename = files[0].Filename
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	if err := Models.PutSetting(db, Models.SettingTelegramToken, "TOKEN"); err != nil {
		t.Fatalf("put token: %v", err)
	}
	if err := Models.PutSetting(db, Models.SettingTelegramChatID, "12345"); err != nil {
		t.Fatalf("put chat id: %v", err)
	}
	scheduler.NewTelegramClient = func(token, chatID string) *Telegram.Client {
		client := Telegram.NewClient(token, chatID)
		client.BaseURL = server.URL
		return client
	}

	scheduler.RunManualBackup()

	if !strings.HasPrefix(gotFilename, "pos-backup-") || !strings.HasSuffix(gotFilename, ".json.gz") {
		t.Fatalf("unexpected delivered filename %q", gotFilename)
	}
	if got := Models.GetSetting(db, Models.SettingLastBackupTime, ""); got == "" {
		t.Fatal("expected lastBackupTime stamp after successful delivery")
	}
}

func TestRunManualBackupSkipsWhenUnconfigured(t *testing.T) {
	scheduler := newTestScheduler(t)
	db := scheduler.db

	delivered := false
	scheduler.NewTelegramClient = func(token, chatID string) *Telegram.Client {
		delivered = token != "" && chatID != ""
		return Telegram.NewClient(token, chatID)
	}

	scheduler.RunManualBackup()

	if delivered {
		t.Fatal("delivery must not be attempted without credentials")
	}
	if got := Models.GetSetting(db, Models.SettingLastBackupTime, ""); got != "" {
		t.Fatalf("skipped backup must not stamp lastBackupTime, got %q", got)
	}
}

func TestRunManualBackupKeepsStampOnDeliveryFailure(t *testing.T) {
	scheduler := newTestScheduler(t)
	db := scheduler.db

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	Models.PutSetting(db, Models.SettingTelegramToken, "TOKEN")
	Models.PutSetting(db, Models.SettingTelegramChatID, "12345")
	scheduler.NewTelegramClient = func(token, chatID string) *Telegram.Client {
		client := Telegram.NewClient(token, chatID)
		client.BaseURL = server.URL
		return client
	}

	scheduler.RunManualBackup()

	if got := Models.GetSetting(db, Models.SettingLastBackupTime, ""); got != "" {
		t.Fatalf("failed delivery must not stamp lastBackupTime, got %q", got)
	}
}
