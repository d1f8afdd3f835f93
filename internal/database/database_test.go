package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/nikhilbhutani/linguagateway/internal/config"
)

func TestNewPool_NotConfigured(t *testing.T) {
	if _, err := NewPool(context.Background(), config.DatabaseConfig{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestNewPool_BadURL(t *testing.T) {
	_, err := NewPool(context.Background(), config.DatabaseConfig{URL: "postgres://%zz"})
	if err == nil || errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestPendingMigrations_Order(t *testing.T) {
	fsys := fstest.MapFS{
		"010_later.sql":            {Data: []byte("SELECT 1;")},
		"001_translation_logs.sql": {Data: []byte("SELECT 1;")},
		"README.md":                {Data: []byte("docs")},
	}
	got, err := PendingMigrations(fsys)
	if err != nil {
		t.Fatalf("PendingMigrations failed: %v", err)
	}
	want := []string{"001_translation_logs.sql", "010_later.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMigrationFS_Embedded(t *testing.T) {
	files, err := PendingMigrations(MigrationFS(filepath.Join(t.TempDir(), "missing")))
	if err != nil {
		t.Fatalf("PendingMigrations failed: %v", err)
	}
	if len(files) == 0 || files[0] != "001_translation_logs.sql" {
		t.Errorf("expected embedded migrations, got %v", files)
	}
}

func TestMigrationFS_Directory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "042_custom.sql"), []byte("SELECT 1;"), 0o644); err != nil {
		t.Fatal(err)
	}
	files, err := PendingMigrations(MigrationFS(dir))
	if err != nil {
		t.Fatalf("PendingMigrations failed: %v", err)
	}
	if !reflect.DeepEqual(files, []string{"042_custom.sql"}) {
		t.Errorf("unexpected files %v", files)
	}
}
