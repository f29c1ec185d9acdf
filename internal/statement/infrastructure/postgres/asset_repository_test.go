package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"

	statement "statement-pdf/internal/statement/domain"
)

func TestNilRepository(t *testing.T) {
	var repo *AssetRepository
	if _, err := repo.Fetch(context.Background(), "sbi"); err == nil {
		t.Fatalf("expected error for nil repository")
	}
	if err := NewAssetRepository(nil).Put(context.Background(), "sbi", nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}

func TestAssetRepository_PutFetch(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if err := applyMigrations(db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	ctx := context.Background()
	_, _ = db.ExecContext(ctx, "DELETE FROM statement_assets WHERE key LIKE 'test-%'")

	repo := NewAssetRepository(db)
	if _, err := repo.Fetch(ctx, "test-missing"); !errors.Is(err, statement.ErrAssetNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := repo.Put(ctx, "test-sbi", []byte{1, 2, 3}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := repo.Put(ctx, "test-sbi", []byte{4, 5}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	data, err := repo.Fetch(ctx, "test-sbi")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(data) != 2 || data[0] != 4 {
		t.Fatalf("unexpected data %v", data)
	}
	keys, err := repo.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	found := false
	for _, k := range keys {
		if k == "test-sbi" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected test-sbi in %v", keys)
	}
}

func applyMigrations(db *sql.DB) error {
	_, file, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(file), "..", "..", "..", "..")
	content, err := os.ReadFile(filepath.Join(root, "migrations", "001_statement_assets.sql"))
	if err != nil {
		return err
	}
	_, err = db.Exec(string(content))
	return err
}
