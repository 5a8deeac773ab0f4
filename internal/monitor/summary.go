package monitor

import "time"

// SessionDetail is the per-session line in a status summary.
type SessionDetail struct {
	SessionID       string    `json:"session_id"`
	CreatedAt       time.Time `json:"created_at"`
	LastAccessed    time.Time `json:"last_accessed"`
	CurrentWorkflow string    `json:"current_workflow,omitempty"`
	CurrentStep     int       `json:"current_step"`
	TotalSteps      int       `json:"total_steps"`
	IsComplete      bool      `json:"is_complete"`
}

// Summary is the monitor's dashboard view: aggregate counts, the current
// alert list, and a detail line per active session.
type Summary struct {
	TotalActive          int             `json:"total_active_sessions"`
	Dormant              int             `json:"dormant_sessions"`
	Stale                int             `json:"stale_sessions"`
	ForgottenCompletions int             `json:"forgotten_completions"`
	Alerts               []Alert         `json:"alerts"`
	Sessions             []SessionDetail `json:"session_details"`
	Timestamp            time.Time       `json:"timestamp"`
}
