package audit

import (
	"context"
	"errors"
	"testing"

	"campus-dispatch/internal/audit/domain"
)

// mockAuditRepo implements the audit repository interface for tests.
type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	return nil, nil
}

func (m *mockAuditRepo) ListByEntity(ctx context.Context, entity, entityID string, limit, offset int32) ([]*domain.AuditLog, error) {
	return nil, nil
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func TestLogger_LogEvent_Success(t *testing.T) {
	repo := &mockAuditRepo{}
	ipExtractor := func(ctx context.Context) string {
		return "192.168.1.1"
	}
	logger := NewLogger(repo, ipExtractor)

	logger.LogEvent(context.Background(), "op-1", "session_end", "session", "s-1", `{"reason":"safe"}`)

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.OperatorID != "op-1" {
		t.Errorf("operator_id = %q, want op-1", entry.OperatorID)
	}
	if entry.Action != "session_end" || entry.Entity != "session" || entry.EntityID != "s-1" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.IP != "192.168.1.1" {
		t.Errorf("ip = %q, want 192.168.1.1", entry.IP)
	}
	if entry.ID == "" {
		t.Error("entry ID should be set")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("entry CreatedAt should be set")
	}
}

func TestLogger_LogEvent_NilIPExtractor(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, nil)

	logger.LogEvent(context.Background(), "op-1", "action", "report", "r-1", "")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].IP != "unknown" {
		t.Errorf("ip = %q, want unknown", repo.entries[0].IP)
	}
}

func TestLogger_LogEvent_RepositoryError(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("database error")}
	logger := NewLogger(repo, nil)

	// Best-effort: must not panic or surface the error.
	logger.LogEvent(context.Background(), "op-1", "action", "report", "r-1", "")
}

func TestLogger_LogEvent_NilRepo(t *testing.T) {
	logger := NewLogger(nil, nil)

	// No-op when repo is nil.
	logger.LogEvent(context.Background(), "op-1", "action", "report", "r-1", "")
}
