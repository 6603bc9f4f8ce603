// Package audit records operator actions against dispatch entities.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"campus-dispatch/internal/audit/domain"
	auditrepo "campus-dispatch/internal/audit/repository"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

type ctxIPKey struct{}

// WithClientIP stores the client IP on the context for later extraction.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxIPKey{}, ip)
}

// ClientIPFromContext is an IPExtractor reading the value set by WithClientIP.
func ClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ctxIPKey{}).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}

// AuditLogger writes a single audit event with explicit action and entity.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, operatorID, action, entity, entityID, metadata string)
}

// Logger implements AuditLogger over the audit repository and an optional IP
// extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
}

// NewLogger returns an AuditLogger that persists to repo and uses ipExtractor
// for client IP. ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not
// returned.
func (l *Logger) LogEvent(ctx context.Context, operatorID, action, entity, entityID, metadata string) {
	if l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	entry := &domain.AuditLog{
		ID:         uuid.New().String(),
		OperatorID: operatorID,
		Action:     action,
		Entity:     entity,
		EntityID:   entityID,
		IP:         ip,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, entity, err)
	}
}

var _ AuditLogger = (*Logger)(nil)
