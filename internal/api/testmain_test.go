package api

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/trackconsole/internal/archive"
)

var (
	apiTestTemplatePath string
)

func TestMain(m *testing.M) {
	code := runAPITestMain(m)
	os.Exit(code)
}

// runAPITestMain migrates one archive up front; tests copy it instead of
// running migrations per test.
func runAPITestMain(m *testing.M) int {
	tmpDir, err := os.MkdirTemp("", "trackconsole-api-template-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create API test template directory: %v\n", err)
		return 1
	}
	defer os.RemoveAll(tmpDir)

	apiTestTemplatePath = filepath.Join(tmpDir, "template.db")

	templateDB, err := archive.Open(apiTestTemplatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize API test template archive: %v\n", err)
		return 1
	}
	if _, err := templateDB.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to checkpoint API test template archive: %v\n", err)
		_ = templateDB.Close()
		return 1
	}
	if err := templateDB.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close API test template archive: %v\n", err)
		return 1
	}

	return m.Run()
}

func cloneAPITestArchive(t *testing.T) *archive.DB {
	t.Helper()

	if apiTestTemplatePath == "" {
		t.Fatal("API test template archive not initialized")
	}

	dbPath := filepath.Join(t.TempDir(), "archive.db")
	if err := copyFile(apiTestTemplatePath, dbPath); err != nil {
		t.Fatalf("failed to clone API test archive template: %v", err)
	}
	db, err := archive.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open cloned archive: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
