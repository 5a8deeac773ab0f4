package session

import (
	"testing"

	"github.com/ChamsBouzaiene/sherpa/internal/workflow"
)

func TestFrameAdvance(t *testing.T) {
	steps := workflow.TextSteps("a", "b", "c")
	f := NewFrame("build", steps, nil)

	// A frame completes after exactly len(steps) successful advances.
	for i := range steps {
		if f.IsComplete() {
			t.Fatalf("frame complete after %d advances, want %d", i, len(steps))
		}
		if !f.Advance() {
			t.Fatalf("Advance() = false at step %d, want true", i)
		}
	}

	if !f.IsComplete() {
		t.Errorf("frame not complete after %d advances", len(steps))
	}
	if f.CurrentStep != len(steps) {
		t.Errorf("cursor = %d, want %d", f.CurrentStep, len(steps))
	}

	// Further advances are no-ops.
	if f.Advance() {
		t.Error("Advance() on complete frame = true, want false")
	}
	if f.CurrentStep != len(steps) {
		t.Errorf("cursor moved on complete frame: %d", f.CurrentStep)
	}
}

func TestFrameBack(t *testing.T) {
	f := NewFrame("build", workflow.TextSteps("a", "b"), nil)

	if f.Back() {
		t.Error("Back() at step 0 = true, want false")
	}

	f.Advance()
	if !f.Back() {
		t.Error("Back() after advance = false, want true")
	}
	if f.CurrentStep != 0 {
		t.Errorf("cursor = %d, want 0", f.CurrentStep)
	}
}

func TestFrameEmptySteps(t *testing.T) {
	f := NewFrame("empty", nil, nil)

	if !f.IsComplete() {
		t.Error("zero-length frame should be immediately complete")
	}
	if f.Advance() {
		t.Error("Advance() on empty frame = true, want false")
	}
	if f.Back() {
		t.Error("Back() on empty frame = true, want false")
	}
	if f.CurrentStepText() != "" {
		t.Errorf("CurrentStepText() = %q, want empty", f.CurrentStepText())
	}
}

func TestFrameCurrentStepText(t *testing.T) {
	f := NewFrame("build", workflow.TextSteps("first", "second"), nil)

	if got := f.CurrentStepText(); got != "first" {
		t.Errorf("CurrentStepText() = %q, want %q", got, "first")
	}
	f.Advance()
	if got := f.CurrentStepText(); got != "second" {
		t.Errorf("CurrentStepText() = %q, want %q", got, "second")
	}
	f.Advance()
	if got := f.CurrentStepText(); got != "" {
		t.Errorf("CurrentStepText() on complete frame = %q, want empty", got)
	}
}
