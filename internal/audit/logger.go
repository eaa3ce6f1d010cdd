package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"account-security-core/internal/audit/domain"
	auditrepo "account-security-core/internal/audit/repository"
)

// Recorder appends audit events. Record is best-effort: failures are logged
// and never propagate, so an audit outage cannot fail or roll back the
// operation being audited.
type Recorder interface {
	Record(ctx context.Context, userID, action, entityType, entityID string, metadata map[string]string)
}

// Mirror receives a copy of every recorded entry, e.g. a Kafka topic feeding
// a SIEM. Implementations must not block the caller.
type Mirror interface {
	PublishAsync(e *domain.Entry)
}

// Logger implements Recorder over the audit repository with an optional mirror.
type Logger struct {
	repo   auditrepo.Repository
	mirror Mirror
	logger *slog.Logger
}

// NewLogger returns a Recorder persisting to repo. mirror may be nil.
func NewLogger(repo auditrepo.Repository, mirror Mirror, logger *slog.Logger) *Logger {
	return &Logger{repo: repo, mirror: mirror, logger: logger}
}

// Record appends one audit entry. Best-effort: errors are logged and not
// returned, and the mirror copy is fire-and-forget.
func (l *Logger) Record(ctx context.Context, userID, action, entityType, entityID string, metadata map[string]string) {
	if l == nil || l.repo == nil {
		return
	}
	e := &domain.Entry{
		ID:         uuid.New().String(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     userID,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, e); err != nil {
		l.logger.ErrorContext(ctx, "audit append failed",
			"action", action, "entity_type", entityType, "entity_id", entityID, "error", err)
		return
	}
	if l.mirror != nil {
		l.mirror.PublishAsync(e)
	}
}

// ListByUser returns the user's audit trail, newest first.
func (l *Logger) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.Entry, error) {
	if l == nil || l.repo == nil {
		return nil, nil
	}
	return l.repo.ListByUser(ctx, userID, limit, offset)
}

// NopRecorder discards every event and serves an empty trail. Used in tests
// and when auditing is off.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, string, string, string, string, map[string]string) {}

func (NopRecorder) ListByUser(context.Context, string, int32, int32) ([]*domain.Entry, error) {
	return nil, nil
}
