package session

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ChamsBouzaiene/sherpa/internal/workflow"
)

// Config holds advisory per-session behavior settings. The engine carries
// these but never enforces them; timeouts and error policies belong to the
// orchestration layer.
type Config struct {
	Interactive     bool `json:"interactive"`
	TimeoutSeconds  int  `json:"timeout_seconds,omitempty"`
	ContinueOnError bool `json:"continue_on_error"`
	MaxSteps        int  `json:"max_steps,omitempty"`
	AgentPrefix     bool `json:"agent_prefix"`
	AgentSuffix     bool `json:"agent_suffix"`
}

// DefaultConfig returns the config used when a caller supplies none.
func DefaultConfig() Config {
	return Config{
		AgentPrefix: true,
		AgentSuffix: true,
	}
}

// InitialWorkflow is a (name, steps) pair supplied by a workflow source at
// session creation.
type InitialWorkflow struct {
	Name  string
	Steps []workflow.Step
}

// Session is a stack of workflow frames plus metadata: one guided,
// possibly-nested execution. Index 0 of the stack is the root workflow; the
// last entry is the currently active frame.
//
// Sessions loaded from a Store must only be mutated through Store methods,
// otherwise the change is never persisted.
type Session struct {
	ID            string    `json:"session_id"`
	Prompt        string    `json:"prompt"`
	WorkflowStack []*Frame  `json:"workflow_stack"`
	CreatedAt     time.Time `json:"created_at"`
	LastAccessed  time.Time `json:"last_accessed"`
	Config        Config    `json:"session_config"`

	classifier StepClassifier
}

// newSessionID generates a short lowercase id. 12 hex characters is enough
// to make collisions a non-issue at this scale, and the store re-rolls on
// the off chance one occurs.
func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// New creates a session with the given initial workflows, all cursors at 0.
func New(prompt string, workflows []InitialWorkflow, cfg *Config) *Session {
	now := time.Now()

	stack := make([]*Frame, 0, len(workflows))
	for _, wf := range workflows {
		stack = append(stack, NewFrame(wf.Name, wf.Steps, nil))
	}

	config := DefaultConfig()
	if cfg != nil {
		config = *cfg
	}

	return &Session{
		ID:            newSessionID(),
		Prompt:        prompt,
		WorkflowStack: stack,
		CreatedAt:     now,
		LastAccessed:  now,
		Config:        config,
	}
}

// SetClassifier overrides the step classifier used for is_command
// annotations. The zero value falls back to the default keyword heuristic.
func (s *Session) SetClassifier(c StepClassifier) { s.classifier = c }

// CurrentFrame returns the active frame (top of stack), or nil if the stack
// is empty.
func (s *Session) CurrentFrame() *Frame {
	if len(s.WorkflowStack) == 0 {
		return nil
	}
	return s.WorkflowStack[len(s.WorkflowStack)-1]
}

// IsComplete reports whether the whole session is done: the stack is empty,
// or every remaining frame has run out of steps.
func (s *Session) IsComplete() bool {
	for _, frame := range s.WorkflowStack {
		if !frame.IsComplete() {
			return false
		}
	}
	return true
}

// StackNames returns the workflow names root→active.
func (s *Session) StackNames() []string {
	names := make([]string, len(s.WorkflowStack))
	for i, frame := range s.WorkflowStack {
		names[i] = frame.WorkflowName
	}
	return names
}

// CurrentStep returns a view of the active frame's current step, or nil if
// the session is complete. The step text is wrapped with agent guidance
// according to the session config; the wrapping never touches stored state.
func (s *Session) CurrentStep() *StepView {
	frame := s.CurrentFrame()
	if frame == nil || frame.IsComplete() {
		return nil
	}

	step := frame.Steps[frame.CurrentStep]
	isCommand := s.classify(step)

	return &StepView{
		Workflow:   frame.WorkflowName,
		StepNumber: frame.CurrentStep + 1,
		TotalSteps: len(frame.Steps),
		StepText:   formatStepText(step.Text, isCommand, s.Config),
		IsCommand:  isCommand,
		Depth:      len(s.WorkflowStack),
	}
}

func (s *Session) classify(step workflow.Step) bool {
	// Explicit step metadata wins over the heuristic.
	if step.Command != "" {
		return true
	}
	c := s.classifier
	if c == nil {
		c = defaultClassifier
	}
	return c.IsCommand(step.Text)
}

// AdvanceStep moves the active frame forward one step, popping the frame if
// that completes it. Popping resumes the parent frame at whatever cursor it
// was left at. Returns true while the stack still holds work, false once the
// stack empties and the session is complete.
func (s *Session) AdvanceStep() bool {
	frame := s.CurrentFrame()
	if frame == nil {
		return false
	}

	s.touch()

	if frame.Advance() && !frame.IsComplete() {
		return true
	}

	// Active frame is complete: pop it and resume the parent, if any.
	s.WorkflowStack = s.WorkflowStack[:len(s.WorkflowStack)-1]
	return len(s.WorkflowStack) > 0
}

// BackStep moves the active frame back one step. Fails at the first step of
// the active frame even when outer frames exist.
func (s *Session) BackStep() bool {
	frame := s.CurrentFrame()
	if frame == nil || !frame.Back() {
		return false
	}
	s.touch()
	return true
}

// RestartSession resets every frame in the stack to step 0. Stack depth,
// order, and per-frame context are preserved.
func (s *Session) RestartSession() {
	for _, frame := range s.WorkflowStack {
		frame.CurrentStep = 0
	}
	s.touch()
}

// BreakWorkflow pops the active frame and returns to the parent. The root
// workflow cannot be broken out of: on a single-frame stack this returns
// false and mutates nothing.
func (s *Session) BreakWorkflow() bool {
	if len(s.WorkflowStack) <= 1 {
		return false
	}
	s.WorkflowStack = s.WorkflowStack[:len(s.WorkflowStack)-1]
	s.touch()
	return true
}

// PushWorkflow nests a new workflow on top of the stack at step 0. The
// previously active frame stays dormant until the new one completes or is
// broken.
func (s *Session) PushWorkflow(name string, steps []workflow.Step, context map[string]any) {
	s.WorkflowStack = append(s.WorkflowStack, NewFrame(name, steps, context))
	s.touch()
}

func (s *Session) touch() {
	s.LastAccessed = time.Now()
}
