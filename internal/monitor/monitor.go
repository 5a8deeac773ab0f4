// Package monitor watches workflow sessions for signs the agent has stalled
// or silently walked away: dormant and stale inactivity, sessions old
// enough to auto-archive, and free-text responses that read like "done"
// without a matching session transition.
package monitor

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ChamsBouzaiene/sherpa/internal/session"
)

// DefaultCompletionPhrases are the completion indicators scanned for in
// agent responses. The list is heuristic data, not control flow; override
// it through Config when the defaults misfire.
var DefaultCompletionPhrases = []string{
	"task is now complete",
	"task complete",
	"finished implementing",
	"implementation is complete",
	"the work is done",
	"work is complete",
	"that concludes",
	"in summary",
	"to summarize",
	"to conclude",
	"all done",
	"ready for review",
}

// DefaultManagementKeywords suppress a completion alert: mentioning one of
// these is evidence the agent already intends to manage the session.
var DefaultManagementKeywords = []string{
	"advance_workflow",
	"break_workflow",
	"get_workflow_status",
	"list_workflow_sessions",
	"workflow status",
	"next step",
	"continue workflow",
	"complete workflow",
}

// Config controls monitor behavior. Zero-valued fields fall back to the
// defaults.
type Config struct {
	Thresholds         session.Thresholds
	CompletionPhrases  []string
	ManagementKeywords []string
}

// Monitor performs read-mostly analysis over a store's sessions. A session
// archived or removed mid-scan is treated as not found, never as an error.
type Monitor struct {
	store *session.Store
	cfg   Config

	// Recent responses per session, kept for pattern analysis.
	history map[string][]responseRecord
}

type responseRecord struct {
	text string
	at   time.Time
}

const historyLimit = 5

// New creates a monitor over the given store.
func New(store *session.Store, cfg Config) *Monitor {
	if cfg.Thresholds == (session.Thresholds{}) {
		cfg.Thresholds = session.DefaultThresholds()
	}
	if len(cfg.CompletionPhrases) == 0 {
		cfg.CompletionPhrases = DefaultCompletionPhrases
	}
	if len(cfg.ManagementKeywords) == 0 {
		cfg.ManagementKeywords = DefaultManagementKeywords
	}
	return &Monitor{
		store:   store,
		cfg:     cfg,
		history: make(map[string][]responseRecord),
	}
}

// activeIncomplete returns the active sessions that still have work left.
func (m *Monitor) activeIncomplete() []*session.Session {
	all, err := m.store.Sessions()
	if err != nil {
		log.Printf("⚠️  Failed to list sessions: %v", err)
		return nil
	}

	var sessions []*session.Session
	for _, s := range all {
		if !s.IsComplete() {
			sessions = append(sessions, s)
		}
	}
	return sessions
}

// CheckSessionHealth classifies every active, incomplete session and
// returns the alerts that need attention. Stale supersedes dormant for the
// same session; the auto-archive flag is independent of activity.
func (m *Monitor) CheckSessionHealth() []Alert {
	now := time.Now()
	var alerts []Alert

	for _, s := range m.activeIncomplete() {
		switch {
		case m.cfg.Thresholds.IsStale(s, now):
			alerts = append(alerts, m.staleAlert(s, now))
		case m.cfg.Thresholds.IsDormant(s, now):
			alerts = append(alerts, m.dormantAlert(s, now))
		}

		if m.cfg.Thresholds.ShouldArchive(s, now) {
			alerts = append(alerts, m.archiveAlert(s, now))
		}
	}
	return alerts
}

// AnalyzeAgentResponse scans free text for completion indicators. It
// returns a forgotten_completion alert when the text reads like "done", the
// session is still incomplete, and the text does not also mention an
// explicit session-management action. Unknown sessions yield nil.
func (m *Monitor) AnalyzeAgentResponse(sessionID, text string) *Alert {
	m.recordResponse(sessionID, text)

	s, err := m.store.Get(sessionID)
	if err != nil || s.IsComplete() {
		return nil
	}

	lower := strings.ToLower(text)
	if !containsAny(lower, m.cfg.CompletionPhrases) {
		return nil
	}
	if containsAny(lower, m.cfg.ManagementKeywords) {
		// The agent already intends to manage the session.
		return nil
	}

	return &Alert{
		SessionID: sessionID,
		Type:      AlertForgotten,
		Severity:  SeverityHigh,
		Message:   "Agent provided a completion-like response without managing the workflow session",
		Timestamp: time.Now(),
		SuggestedActions: []string{
			"Remind agent to call advance_workflow",
			"Check if the workflow should be completed with break_workflow",
			"Verify workflow status with get_workflow_status",
		},
	}
}

func (m *Monitor) recordResponse(sessionID, text string) {
	records := append(m.history[sessionID], responseRecord{text: text, at: time.Now()})
	if len(records) > historyLimit {
		records = records[len(records)-historyLimit:]
	}
	m.history[sessionID] = records
}

func containsAny(lower string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(lower, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

// GenerateInterventionMessage renders a reminder for the agent naming the
// session and the concrete next actions for the alert type. Returns "" when
// the session no longer exists.
func (m *Monitor) GenerateInterventionMessage(alert Alert) string {
	s, err := m.store.Get(alert.SessionID)
	if err != nil {
		return ""
	}

	step := s.CurrentStep()

	switch alert.Type {
	case AlertForgotten:
		stepInfo := ""
		if step != nil {
			stepInfo = fmt.Sprintf("You are currently on step %d of %d in the %q workflow.\n\n",
				step.StepNumber, step.TotalSteps, step.Workflow)
		}
		return fmt.Sprintf(`Workflow management reminder: you may have completed a task, but session %s is still active.

%sChoose one of the following actions:
- advance_workflow: mark the current step complete and move on
- break_workflow: exit the current workflow if the task is done
- get_workflow_status: check the current workflow status
`, s.ID, stepInfo)

	case AlertDormant:
		workflowName := "unknown"
		if frame := s.CurrentFrame(); frame != nil {
			workflowName = frame.WorkflowName
		}
		return fmt.Sprintf(`Session %s (workflow %q) has been inactive.

Consider:
- get_workflow_status: check what step you are on
- advance_workflow: continue if the current step is done
- break_workflow: exit if the workflow is no longer needed
`, s.ID, workflowName)

	case AlertStale, AlertAutoArchive:
		return fmt.Sprintf(`Session %s has been inactive for a significant time.

Recommended:
- break_workflow: clean up if the workflow is complete or abandoned
- list_workflow_sessions: review all active sessions

Sessions older than %s are archived automatically.
`, s.ID, m.cfg.Thresholds.MaxAge)
	}

	return ""
}

// StatusSummary aggregates counts, per-session details, and the current
// alert list for a monitoring dashboard.
func (m *Monitor) StatusSummary() Summary {
	sessions := m.activeIncomplete()
	alerts := m.CheckSessionHealth()

	summary := Summary{
		TotalActive: len(sessions),
		Alerts:      alerts,
		Timestamp:   time.Now(),
	}
	for _, a := range alerts {
		switch a.Type {
		case AlertDormant:
			summary.Dormant++
		case AlertStale:
			summary.Stale++
		case AlertForgotten:
			summary.ForgottenCompletions++
		}
	}

	for _, s := range sessions {
		detail := SessionDetail{
			SessionID:    s.ID,
			CreatedAt:    s.CreatedAt,
			LastAccessed: s.LastAccessed,
			IsComplete:   s.IsComplete(),
		}
		if frame := s.CurrentFrame(); frame != nil {
			detail.CurrentWorkflow = frame.WorkflowName
			detail.CurrentStep = frame.CurrentStep
			detail.TotalSteps = len(frame.Steps)
		}
		summary.Sessions = append(summary.Sessions, detail)
	}
	return summary
}

// CleanupStaleSessions archives sessions past the auto-archive age, plus
// stale sessions whose work is already finished. Returns the archived ids.
func (m *Monitor) CleanupStaleSessions() []string {
	all, err := m.store.Sessions()
	if err != nil {
		log.Printf("⚠️  Failed to list sessions: %v", err)
		return nil
	}

	now := time.Now()
	var archived []string
	for _, s := range all {
		eligible := m.cfg.Thresholds.ShouldArchive(s, now) ||
			(m.cfg.Thresholds.IsStale(s, now) && s.IsComplete())
		if !eligible {
			continue
		}

		log.Printf("Auto-archiving session %s", s.ID)
		if err := m.store.Archive(s.ID); err != nil {
			if !session.IsNotFound(err) {
				log.Printf("⚠️  Failed to archive session %s: %v", s.ID, err)
			}
			continue
		}
		archived = append(archived, s.ID)
	}
	return archived
}

func (m *Monitor) dormantAlert(s *session.Session, now time.Time) Alert {
	inactive := now.Sub(s.LastAccessed)
	return Alert{
		SessionID: s.ID,
		Type:      AlertDormant,
		Severity:  SeverityMedium,
		Message:   fmt.Sprintf("Session has been inactive for %.1f minutes", inactive.Minutes()),
		Timestamp: now,
		SuggestedActions: []string{
			"Check if the workflow should be advanced",
			"Consider breaking out of the workflow if complete",
			"Verify the session is still needed",
		},
	}
}

func (m *Monitor) staleAlert(s *session.Session, now time.Time) Alert {
	inactive := now.Sub(s.LastAccessed)
	return Alert{
		SessionID: s.ID,
		Type:      AlertStale,
		Severity:  SeverityHigh,
		Message:   fmt.Sprintf("Session has been inactive for %.1f minutes and may be abandoned", inactive.Minutes()),
		Timestamp: now,
		SuggestedActions: []string{
			"Archive the session if no longer needed",
			"Break out of the workflow to clean up",
			"Check if the session was forgotten",
		},
	}
}

func (m *Monitor) archiveAlert(s *session.Session, now time.Time) Alert {
	age := now.Sub(s.CreatedAt)
	return Alert{
		SessionID: s.ID,
		Type:      AlertAutoArchive,
		Severity:  SeverityLow,
		Message:   fmt.Sprintf("Session is %.1f hours old and will be auto-archived", age.Hours()),
		Timestamp: now,
		SuggestedActions: []string{
			"Session will be archived automatically",
			"No action required unless the session is still in use",
		},
	}
}
