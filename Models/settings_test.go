package Models

import (
	"path/filepath"
	"testing"
)

func TestGetSettingFallbackPaths(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}

	// Absent key falls back
	if got := GetSetting(db, SettingStoreName, "My Store"); got != "My Store" {
		t.Fatalf("expected fallback for absent key, got %q", got)
	}

	if err := PutSetting(db, SettingStoreName, "Warung Bu Siti"); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if got := GetSetting(db, SettingStoreName, "My Store"); got != "Warung Bu Siti" {
		t.Fatalf("expected stored value, got %q", got)
	}

	// Overwrite is an upsert, not a second row
	if err := PutSetting(db, SettingStoreName, "Warung Baru"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if got := GetSetting(db, SettingStoreName, "My Store"); got != "Warung Baru" {
		t.Fatalf("expected overwritten value, got %q", got)
	}

	// A broken store still yields the fallback instead of panicking
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap store: %v", err)
	}
	sqlDB.Close()
	if got := GetSetting(db, SettingStoreName, "My Store"); got != "My Store" {
		t.Fatalf("expected fallback on store failure, got %q", got)
	}
}
