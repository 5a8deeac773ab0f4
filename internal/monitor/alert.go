package monitor

import "time"

// AlertType identifies what kind of attention a session needs.
type AlertType string

const (
	AlertDormant     AlertType = "dormant"
	AlertStale       AlertType = "stale"
	AlertForgotten   AlertType = "forgotten_completion"
	AlertAutoArchive AlertType = "auto_archive"
)

// Severity ranks how urgently an alert should be acted on.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Alert flags a session that needs attention. Alerts are monitor output
// only; they are never persisted.
type Alert struct {
	SessionID        string    `json:"session_id"`
	Type             AlertType `json:"type"`
	Severity         Severity  `json:"severity"`
	Message          string    `json:"message"`
	Timestamp        time.Time `json:"timestamp"`
	SuggestedActions []string  `json:"suggested_actions"`
}
