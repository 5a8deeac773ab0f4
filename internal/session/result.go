package session

// StepView is the orchestration-facing view of the active step.
type StepView struct {
	Workflow   string `json:"workflow"`
	StepNumber int    `json:"step_number"` // 1-based for display
	TotalSteps int    `json:"total_steps"`
	StepText   string `json:"step_text"`
	IsCommand  bool   `json:"is_command"`
	Depth      int    `json:"depth"`
}

// Result is the JSON-serializable outcome of a store operation. Expected
// failures (unknown session, invalid transition) come back as Success=false
// with Error filled in rather than as Go errors.
type Result struct {
	Success       bool      `json:"success"`
	SessionID     string    `json:"session_id,omitempty"`
	CurrentStep   *StepView `json:"current_step,omitempty"`
	WorkflowStack []string  `json:"workflow_stack,omitempty"`
	IsComplete    bool      `json:"is_complete"`
	Error         string    `json:"error,omitempty"`
}

// resultFor builds a successful result snapshot of the session's state.
func resultFor(s *Session) Result {
	return Result{
		Success:       true,
		SessionID:     s.ID,
		CurrentStep:   s.CurrentStep(),
		WorkflowStack: s.StackNames(),
		IsComplete:    s.IsComplete(),
	}
}

// failure builds a failed result for the given session id.
func failure(id string, err error) Result {
	return Result{
		Success:   false,
		SessionID: id,
		Error:     err.Error(),
	}
}
