package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"taskhub/backend/internal/audit/domain"
)

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
	failing bool
}

func (m *memAuditRepo) GetByID(_ context.Context, id string) (*domain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (m *memAuditRepo) ListByUser(_ context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.AuditLog
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memAuditRepo) Create(_ context.Context, e *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("insert failed")
	}
	m.entries = append(m.entries, e)
	return nil
}

func TestLogger_LogEvent(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewLogger(repo, func(context.Context) string { return "10.0.0.1" })

	l.LogEvent(context.Background(), "u1", "login_success", "auth", `{"username":"alice"}`)

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.UserID != "u1" || e.Action != "login_success" || e.Resource != "auth" {
		t.Errorf("entry = %+v", e)
	}
	if e.IP != "10.0.0.1" {
		t.Errorf("IP = %q, want 10.0.0.1", e.IP)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Error("ID and CreatedAt should be stamped")
	}
}

func TestLogger_AnonymousAndNoExtractor(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewLogger(repo, nil)

	l.LogEvent(context.Background(), "", "login_failure", "auth", "")

	e := repo.entries[0]
	if e.UserID != SentinelUserID {
		t.Errorf("UserID = %q, want %q", e.UserID, SentinelUserID)
	}
	if e.IP != "unknown" {
		t.Errorf("IP = %q, want unknown", e.IP)
	}
}

func TestLogger_BestEffortOnFailure(t *testing.T) {
	repo := &memAuditRepo{failing: true}
	l := NewLogger(repo, nil)

	// Must not panic or propagate the repo error.
	l.LogEvent(context.Background(), "u1", "login_success", "auth", "")
	if len(repo.entries) != 0 {
		t.Error("failing repo should store nothing")
	}
}

func TestNop(t *testing.T) {
	Nop{}.LogEvent(context.Background(), "u1", "a", "r", "")
}
