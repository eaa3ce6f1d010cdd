package actions

import (
	"context"

	auditdomain "account-security-core/internal/audit/domain"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 200
)

// ListAuditLog returns the caller's own audit trail, newest first. limit <= 0
// uses the default page size; offset < 0 is treated as 0.
func (a *Actions) ListAuditLog(ctx context.Context, token string, limit, offset int32) ([]*auditdomain.Entry, error) {
	sess, err := a.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultAuditPageSize
	}
	if limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return a.recorder.ListByUser(ctx, sess.UserID, limit, offset)
}
