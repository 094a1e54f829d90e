package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sakif/snippet-manager/internal/apperror"
)

func TestNew_BadPathIsStoreUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "nested", "snippets.db")

	_, err := New(path)
	if err == nil {
		t.Fatal("New() should fail when the parent directory does not exist")
	}
	if !errors.Is(err, apperror.ErrStoreUnavailable) {
		t.Errorf("New() error = %v, want ErrStoreUnavailable", err)
	}
}

func TestNew_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippets.db")
	ctx := context.Background()

	first, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	createTestSnippet(t, first, "persisted", "code", "")
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Running the schema step again against an existing file must be a no-op.
	second, err := New(path)
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}
	t.Cleanup(func() { second.Close() })

	all, err := second.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 || all[0].Title != "persisted" {
		t.Errorf("after reopen got %+v, want the one persisted snippet", all)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 3; i++ {
		if err := db.migrate(); err != nil {
			t.Fatalf("migrate() run %d error = %v", i, err)
		}
	}
}
