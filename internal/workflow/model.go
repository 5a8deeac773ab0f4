package workflow

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Step is a single unit of guidance inside a workflow. Most steps are plain
// text; steps that carry an explicit command also record the command and the
// directory it should run in.
type Step struct {
	Text       string `json:"text" yaml:"text"`
	Command    string `json:"command,omitempty" yaml:"command,omitempty"`
	WorkingDir string `json:"working_dir,omitempty" yaml:"working_dir,omitempty"`
}

// Workflow represents a complete workflow definition: triggers, ordered
// guidance steps, and metadata. Steps are textual guidance, not executable
// commands; commands may be embedded in the guidance when appropriate.
type Workflow struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Triggers     []string `yaml:"triggers"`
	Steps        []Step   `yaml:"steps"`
	Dependencies []string `yaml:"dependencies,omitempty"`
	ProjectTypes []string `yaml:"project_types,omitempty"`
}

// Steps accepts either a bare string or a full mapping in both YAML and
// JSON, so workflow authors can write simple step lists while richer steps
// stay representable.

func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		s.Text = node.Value
		return nil
	}

	type plain Step
	var p plain
	if err := node.Decode(&p); err != nil {
		return fmt.Errorf("failed to decode step: %w", err)
	}
	*s = Step(p)
	return nil
}

func (s *Step) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.Text)
	}

	type plain Step
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode step: %w", err)
	}
	*s = Step(p)
	return nil
}

// MarshalJSON keeps plain-text steps as bare strings so persisted records
// stay compact and diff-friendly.
func (s Step) MarshalJSON() ([]byte, error) {
	if s.Command == "" && s.WorkingDir == "" {
		return json.Marshal(s.Text)
	}
	type plain Step
	return json.Marshal(plain(s))
}

// TextSteps converts a list of plain strings into steps. Convenient for
// callers that build workflows programmatically.
func TextSteps(texts ...string) []Step {
	steps := make([]Step, len(texts))
	for i, t := range texts {
		steps[i] = Step{Text: t}
	}
	return steps
}

// Validate checks the shape of a workflow definition. Step semantics are
// never validated here; only that the definition is usable.
func (w *Workflow) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("workflow has no name")
	}
	if len(w.Steps) == 0 {
		return fmt.Errorf("workflow %q has no steps", w.Name)
	}
	for i, step := range w.Steps {
		if step.Text == "" && step.Command == "" {
			return fmt.Errorf("workflow %q step %d is empty", w.Name, i+1)
		}
	}
	return nil
}
