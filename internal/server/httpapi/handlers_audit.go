package httpapi

import (
	"net/http"
	"strconv"
	"time"
)

type auditEntryView struct {
	ID         string            `json:"id"`
	Action     string            `json:"action"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  string            `json:"created_at"`
}

func (h *Handler) listAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := queryInt32(r, "limit")
	offset := queryInt32(r, "offset")
	entries, err := h.actions.ListAuditLog(r.Context(), bearerToken(r), limit, offset)
	if err != nil {
		h.writeMappedError(r.Context(), w, "list_audit_log", err)
		return
	}
	views := make([]auditEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, auditEntryView{
			ID:         e.ID,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Metadata:   e.Metadata,
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		})
	}
	writeSuccess(w, http.StatusOK, map[string]any{"entries": views})
}

// queryInt32 parses the named query parameter; absent or malformed values
// come back as 0 and fall through to the action's defaults.
func queryInt32(r *http.Request, name string) int32 {
	n, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 32)
	if err != nil {
		return 0
	}
	return int32(n)
}
