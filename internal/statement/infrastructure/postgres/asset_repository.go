package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	statement "statement-pdf/internal/statement/domain"
)

// AssetRepository stores statement assets in the statement_assets table.
// It implements statement.AssetStore.
type AssetRepository struct {
	db *sql.DB
}

// NewAssetRepository constructs a repository.
func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// Fetch loads the asset bytes for key.
func (r *AssetRepository) Fetch(ctx context.Context, key string) ([]byte, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("asset repo: nil db")
	}
	var data []byte
	err := r.db.QueryRowContext(ctx, `
SELECT data
FROM statement_assets
WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &statement.AssetNotFoundError{Key: key}
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Put inserts or replaces an asset. The content type is sniffed from data.
func (r *AssetRepository) Put(ctx context.Context, key string, data []byte) error {
	if r == nil || r.db == nil {
		return errors.New("asset repo: nil db")
	}
	if key == "" {
		return errors.New("asset repo: empty key")
	}
	contentType := http.DetectContentType(data)
	_, err := r.db.ExecContext(ctx, `
INSERT INTO statement_assets (key, content_type, data, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (key)
DO UPDATE SET content_type = EXCLUDED.content_type, data = EXCLUDED.data, updated_at = NOW()`,
		key, contentType, data)
	return err
}

// Keys lists stored asset keys in order.
func (r *AssetRepository) Keys(ctx context.Context) ([]string, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("asset repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `SELECT key FROM statement_assets ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
