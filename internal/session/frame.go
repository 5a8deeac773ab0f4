package session

import (
	"github.com/ChamsBouzaiene/sherpa/internal/workflow"
)

// Frame is a single workflow on the execution stack: the workflow's ordered
// steps and a cursor over them. The cursor is 0-based and ranges from 0 to
// len(Steps) inclusive; a cursor equal to len(Steps) means the frame is
// complete.
type Frame struct {
	WorkflowName string          `json:"workflow_name"`
	Steps        []workflow.Step `json:"steps"`
	CurrentStep  int             `json:"current_step"`
	Context      map[string]any  `json:"context"`
}

// NewFrame creates a frame at step 0. A frame with no steps is immediately
// complete.
func NewFrame(name string, steps []workflow.Step, context map[string]any) *Frame {
	if context == nil {
		context = make(map[string]any)
	}
	return &Frame{
		WorkflowName: name,
		Steps:        steps,
		CurrentStep:  0,
		Context:      context,
	}
}

// IsComplete reports whether every step in this frame has been passed.
func (f *Frame) IsComplete() bool {
	return f.CurrentStep >= len(f.Steps)
}

// CurrentStepText returns the text of the current step, or "" if the frame
// is complete.
func (f *Frame) CurrentStepText() string {
	if f.IsComplete() {
		return ""
	}
	return f.Steps[f.CurrentStep].Text
}

// Advance moves the cursor to the next step. Returns false if the frame is
// already complete; returns true otherwise, including the advance that
// causes completion. The owning session is responsible for noticing
// completion and popping the frame.
func (f *Frame) Advance() bool {
	if f.IsComplete() {
		return false
	}
	f.CurrentStep++
	return true
}

// Back moves the cursor to the previous step. Returns false at the first
// step; never crosses into another frame.
func (f *Frame) Back() bool {
	if f.CurrentStep <= 0 {
		return false
	}
	f.CurrentStep--
	return true
}
