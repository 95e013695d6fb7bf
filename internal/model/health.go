package model

import "time"

// HealthyStatus is the only backend status value treated as online.
const HealthyStatus = "healthy"

// HealthResponse is the body returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// Healthy reports whether the response marks the backend as online.
func (h *HealthResponse) Healthy() bool {
	return h != nil && h.Status == HealthyStatus
}

// ServerState enumerates the health monitor states.
type ServerState string

const (
	ServerStateChecking ServerState = "checking"
	ServerStateOnline   ServerState = "online"
	ServerStateOffline  ServerState = "offline"
)

// ServerStatus is a snapshot of the health monitor.
type ServerStatus struct {
	State     ServerState `json:"state"`
	Online    bool        `json:"online"`
	CheckedAt *time.Time  `json:"checked_at,omitempty"`
}
