package domain

import (
	"time"
)

// Activity actions.
const (
	ActionCreate           = "create"
	ActionUpdate           = "update"
	ActionDelete           = "delete"
	ActionLogin            = "login"
	ActionLogout           = "logout"
	ActionImpersonateStart = "impersonate_start"
	ActionImpersonateStop  = "impersonate_stop"
)

// ActivityLogEntry records a change or security-relevant event. The caller
// supplies the complete entry; nothing is inferred at write time. TenantID is
// nil for network-level events (tenant lifecycle, impersonation).
type ActivityLogEntry struct {
	ID             string         `json:"id"`
	TenantID       *string        `json:"tenant_id,omitempty"`
	ActorID        string         `json:"actor_id"`
	ImpersonatorID string         `json:"impersonator_id,omitempty"`
	Action         string         `json:"action"`
	ObjectType     string         `json:"object_type"`
	ObjectID       string         `json:"object_id,omitempty"`
	ObjectLabel    string         `json:"object_label,omitempty"`
	ChangesBefore  map[string]any `json:"changes_before,omitempty"`
	ChangesAfter   map[string]any `json:"changes_after,omitempty"`
	IPAddress      string         `json:"ip_address,omitempty"`
	UserAgent      string         `json:"user_agent,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
