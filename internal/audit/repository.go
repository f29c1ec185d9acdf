package audit

import (
	"context"
	"database/sql"
	"errors"
)

// Repository writes audit logs to render_audit_logs.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs an audit repository.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return nil
	}
	return &Repository{db: db}
}

// Log writes an audit entry.
func (r *Repository) Log(ctx context.Context, entry Entry) error {
	if r == nil || r.db == nil {
		return errors.New("audit repo: nil db")
	}
	entry.fill()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO render_audit_logs (
	id, actor, role, action, template, format, result, account_digest,
	request_id, ip, user_agent, created_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
)`, entry.ID, entry.Actor, entry.Role, entry.Action, entry.Template, entry.Format, entry.Result,
		entry.AccountDigest, entry.RequestID, entry.IP, entry.UserAgent, entry.CreatedAt)
	return err
}
