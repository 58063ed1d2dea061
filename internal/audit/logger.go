// Package audit persists best-effort audit events for security-relevant
// actions (login, logout, refresh, team membership changes).
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"taskhub/backend/internal/audit/domain"
	auditrepo "taskhub/backend/internal/audit/repository"
)

// SentinelUserID is the user_id recorded for audit events with no
// authenticated subject (e.g. login_failure on an unknown identifier).
const SentinelUserID = "_anonymous"

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, metadata string)
}

// Logger persists audit events through the audit repository.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
}

// NewLogger builds a Logger. A nil ipExtractor records "unknown" as the
// client IP.
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor}
}

// LogEvent records one audit entry. A write failure is logged and
// swallowed so auditing never breaks the operation being audited.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, metadata string) {
	if l.repo == nil {
		return
	}
	if userID == "" {
		userID = SentinelUserID
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        l.clientIP(ctx),
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
}

func (l *Logger) clientIP(ctx context.Context) string {
	if l.ipExtractor == nil {
		return "unknown"
	}
	return l.ipExtractor(ctx)
}

// Nop is an AuditLogger that discards events. Useful in tests and tools.
type Nop struct{}

func (Nop) LogEvent(context.Context, string, string, string, string) {}
