package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry represents one audited render or asset operation.
type Entry struct {
	ID            string
	Actor         string
	Role          string
	Action        string
	Template      string
	Format        string
	Result        string
	AccountDigest string
	RequestID     string
	IP            string
	UserAgent     string
	CreatedAt     time.Time
}

// Logger writes audit entries.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// NewID generates a random audit id.
func NewID() string {
	return "audit-" + uuid.NewString()
}

// DigestAccount hashes an account number so audit rows never hold it in clear.
func DigestAccount(accountNumber string) string {
	if accountNumber == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(accountNumber))
	return hex.EncodeToString(sum[:])
}

func (e *Entry) fill() {
	if e.ID == "" {
		e.ID = NewID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
}

// ZapLogger writes audit entries as structured log lines.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger constructs a ZapLogger under the "audit" name.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger.Named("audit")}
}

// Log emits entry.
func (l *ZapLogger) Log(_ context.Context, entry Entry) error {
	entry.fill()
	l.logger.Info(entry.Action,
		zap.String("audit_id", entry.ID),
		zap.String("actor", entry.Actor),
		zap.String("role", entry.Role),
		zap.String("template", entry.Template),
		zap.String("format", entry.Format),
		zap.String("result", entry.Result),
		zap.String("account_digest", entry.AccountDigest),
		zap.String("request_id", entry.RequestID),
		zap.String("ip", entry.IP),
		zap.Time("at", entry.CreatedAt),
	)
	return nil
}

// Multi fans an entry out to every logger, returning the first error.
type Multi []Logger

// Log writes entry to each logger.
func (m Multi) Log(ctx context.Context, entry Entry) error {
	entry.fill()
	var first error
	for _, l := range m {
		if l == nil {
			continue
		}
		if err := l.Log(ctx, entry); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ClientIP extracts client ip from common headers or RemoteAddr.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
