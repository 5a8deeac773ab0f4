package session

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ChamsBouzaiene/sherpa/internal/workflow"
)

func newTestSession(t *testing.T, names ...string) *Session {
	t.Helper()
	workflows := make([]InitialWorkflow, len(names))
	for i, name := range names {
		workflows[i] = InitialWorkflow{Name: name, Steps: workflow.TextSteps("a", "b")}
	}
	return New("test prompt", workflows, nil)
}

func TestSessionIDFormat(t *testing.T) {
	s := newTestSession(t, "outer")
	if len(s.ID) < 8 || len(s.ID) > 20 {
		t.Errorf("session id %q has length %d, want 8-20", s.ID, len(s.ID))
	}
	for _, r := range s.ID {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			t.Errorf("session id %q contains invalid character %q", s.ID, r)
		}
	}
}

func TestNestedWorkflowScenario(t *testing.T) {
	cfg := Config{} // No prefix/suffix so step text is comparable.
	s := New("build the feature", []InitialWorkflow{
		{Name: "outer", Steps: workflow.TextSteps("A", "B")},
	}, &cfg)

	step := s.CurrentStep()
	if step == nil {
		t.Fatal("CurrentStep() = nil on fresh session")
	}
	if step.Workflow != "outer" || step.StepNumber != 1 || step.TotalSteps != 2 || step.Depth != 1 {
		t.Fatalf("unexpected first step: %+v", step)
	}
	if step.StepText != "A" {
		t.Errorf("step text = %q, want %q", step.StepText, "A")
	}

	if !s.AdvanceStep() {
		t.Fatal("AdvanceStep() = false, want true")
	}
	step = s.CurrentStep()
	if step.StepNumber != 2 || step.StepText != "B" {
		t.Fatalf("after advance: %+v", step)
	}

	s.PushWorkflow("inner", workflow.TextSteps("X"), nil)
	step = s.CurrentStep()
	if step.Workflow != "inner" || step.Depth != 2 || step.TotalSteps != 1 {
		t.Fatalf("after push: %+v", step)
	}

	// The single-step inner workflow completes and pops; the parent resumes
	// at step 2, not step 1.
	if !s.AdvanceStep() {
		t.Fatal("AdvanceStep() = false while outer work remains")
	}
	step = s.CurrentStep()
	if step == nil {
		t.Fatal("CurrentStep() = nil after inner pop")
	}
	if step.Workflow != "outer" || step.StepNumber != 2 || step.Depth != 1 {
		t.Fatalf("parent not resumed at prior cursor: %+v", step)
	}

	if s.AdvanceStep() {
		t.Error("AdvanceStep() = true on the final step, want false")
	}
	if !s.IsComplete() {
		t.Error("session not complete after final advance")
	}
	if len(s.WorkflowStack) != 0 {
		t.Errorf("stack depth = %d after completion, want 0", len(s.WorkflowStack))
	}
	if s.CurrentStep() != nil {
		t.Error("CurrentStep() != nil on complete session")
	}
}

func TestBackStepStopsAtFrameBoundary(t *testing.T) {
	s := newTestSession(t, "outer")
	s.AdvanceStep()
	s.PushWorkflow("inner", workflow.TextSteps("X", "Y"), nil)

	// At the first step of the inner frame, back fails even though the
	// outer frame has earlier steps.
	if s.BackStep() {
		t.Error("BackStep() crossed a frame boundary")
	}

	s.AdvanceStep()
	if !s.BackStep() {
		t.Error("BackStep() = false inside inner frame, want true")
	}
	if got := s.CurrentFrame().CurrentStep; got != 0 {
		t.Errorf("inner cursor = %d, want 0", got)
	}
}

func TestBreakWorkflow(t *testing.T) {
	s := newTestSession(t, "outer")

	// The root workflow cannot be broken out of.
	if s.BreakWorkflow() {
		t.Error("BreakWorkflow() on single-frame stack = true, want false")
	}
	if len(s.WorkflowStack) != 1 {
		t.Fatalf("stack mutated by failed break: depth %d", len(s.WorkflowStack))
	}

	s.AdvanceStep()
	s.PushWorkflow("inner", workflow.TextSteps("X"), nil)
	if !s.BreakWorkflow() {
		t.Fatal("BreakWorkflow() on two-frame stack = false, want true")
	}
	if len(s.WorkflowStack) != 1 {
		t.Errorf("stack depth = %d after break, want 1", len(s.WorkflowStack))
	}
	// The surviving frame keeps its cursor.
	if got := s.CurrentFrame().CurrentStep; got != 1 {
		t.Errorf("outer cursor = %d after break, want 1", got)
	}
}

func TestRestartSession(t *testing.T) {
	s := newTestSession(t, "outer")
	s.AdvanceStep()
	s.PushWorkflow("inner", workflow.TextSteps("X", "Y"), map[string]any{"key": "value"})
	s.AdvanceStep()

	s.RestartSession()

	if len(s.WorkflowStack) != 2 {
		t.Fatalf("stack depth = %d after restart, want 2", len(s.WorkflowStack))
	}
	for i, frame := range s.WorkflowStack {
		if frame.CurrentStep != 0 {
			t.Errorf("frame %d cursor = %d after restart, want 0", i, frame.CurrentStep)
		}
	}
	if s.WorkflowStack[0].WorkflowName != "outer" || s.WorkflowStack[1].WorkflowName != "inner" {
		t.Error("frame order changed by restart")
	}
	if got := s.WorkflowStack[1].Context["key"]; got != "value" {
		t.Errorf("frame context lost on restart: %v", got)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := New("round trip", []InitialWorkflow{
		{Name: "outer", Steps: workflow.TextSteps("A", "B", "C")},
	}, nil)
	s.AdvanceStep()
	s.PushWorkflow("inner", []workflow.Step{
		{Text: "deploy it", Command: "make deploy", WorkingDir: "/srv/app"},
		{Text: "verify the rollout"},
	}, map[string]any{"attempt": "first"})
	s.AdvanceStep()

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var loaded Session
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if loaded.ID != s.ID || loaded.Prompt != s.Prompt {
		t.Errorf("metadata mismatch: got %s/%q", loaded.ID, loaded.Prompt)
	}
	if len(loaded.WorkflowStack) != len(s.WorkflowStack) {
		t.Fatalf("stack depth = %d, want %d", len(loaded.WorkflowStack), len(s.WorkflowStack))
	}
	for i := range s.WorkflowStack {
		if loaded.WorkflowStack[i].CurrentStep != s.WorkflowStack[i].CurrentStep {
			t.Errorf("frame %d cursor = %d, want %d",
				i, loaded.WorkflowStack[i].CurrentStep, s.WorkflowStack[i].CurrentStep)
		}
	}
	if got := loaded.WorkflowStack[1].Context["attempt"]; got != "first" {
		t.Errorf("context round trip: got %v", got)
	}
	if got := loaded.WorkflowStack[1].Steps[0].Command; got != "make deploy" {
		t.Errorf("step command round trip: got %q", got)
	}

	// Subsequent behavior must be indistinguishable from the original.
	origStep := s.CurrentStep()
	loadedStep := loaded.CurrentStep()
	if *origStep != *loadedStep {
		t.Errorf("CurrentStep mismatch: %+v vs %+v", origStep, loadedStep)
	}
	if s.AdvanceStep() != loaded.AdvanceStep() {
		t.Error("AdvanceStep diverged after round trip")
	}
	if s.IsComplete() != loaded.IsComplete() {
		t.Error("IsComplete diverged after round trip")
	}
}

func TestStepClassification(t *testing.T) {
	tests := []struct {
		name string
		step workflow.Step
		want bool
	}{
		{"run prefix", workflow.Step{Text: "run the test suite"}, true},
		{"git prefix", workflow.Step{Text: "git commit the changes"}, true},
		{"plain guidance", workflow.Step{Text: "review the design doc"}, false},
		{"explicit command wins", workflow.Step{Text: "deploy", Command: "make deploy"}, true},
		{"case insensitive", workflow.Step{Text: "NPM install the deps"}, true},
	}

	cfg := Config{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("p", []InitialWorkflow{{Name: "wf", Steps: []workflow.Step{tt.step}}}, &cfg)
			step := s.CurrentStep()
			if step.IsCommand != tt.want {
				t.Errorf("IsCommand = %v, want %v", step.IsCommand, tt.want)
			}
		})
	}
}

func TestStepFormattingLeavesStateAlone(t *testing.T) {
	cfg := DefaultConfig() // Prefix and suffix enabled.
	s := New("p", []InitialWorkflow{
		{Name: "wf", Steps: workflow.TextSteps("review the code")},
	}, &cfg)

	step := s.CurrentStep()
	if !strings.Contains(step.StepText, "review the code") {
		t.Errorf("wrapped text lost the step body: %q", step.StepText)
	}
	if !strings.HasPrefix(step.StepText, "SHERPA:") {
		t.Errorf("expected agent prefix, got %q", step.StepText)
	}
	if !strings.HasSuffix(step.StepText, stepSuffix) {
		t.Errorf("expected agent suffix, got %q", step.StepText)
	}

	// Presentation must not leak into stored state.
	if got := s.CurrentFrame().Steps[0].Text; got != "review the code" {
		t.Errorf("stored step text mutated: %q", got)
	}
	if got := s.CurrentFrame().CurrentStep; got != 0 {
		t.Errorf("cursor mutated by formatting: %d", got)
	}
}
