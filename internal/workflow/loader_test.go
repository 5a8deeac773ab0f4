package workflow

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestLoadSingleWorkflow(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "testing.yaml", `
name: testing
description: run the test suite
triggers: [test, verify]
steps:
  - run go test ./...
  - text: check coverage output
  - text: rerun the flaky suite
    command: go test -count=5 ./internal/...
    working_dir: .
`)

	workflows, err := NewLoader(dir).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	wf, ok := workflows["testing"]
	if !ok {
		t.Fatalf("workflow %q not loaded: %v", "testing", workflows)
	}
	if len(wf.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(wf.Steps))
	}
	if wf.Steps[0].Text != "run go test ./..." {
		t.Errorf("bare-string step text = %q", wf.Steps[0].Text)
	}
	if wf.Steps[2].Command != "go test -count=5 ./internal/..." {
		t.Errorf("step command = %q", wf.Steps[2].Command)
	}
	if wf.Steps[2].WorkingDir != "." {
		t.Errorf("step working dir = %q", wf.Steps[2].WorkingDir)
	}
}

func TestLoadMultiWorkflowFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "core.yaml", `
workflows:
  analysis:
    description: explore the codebase
    triggers: [analyze, investigate]
    steps:
      - map out the affected packages
  implementation:
    description: make the change
    steps:
      - write the code
      - run go build ./...
`)

	workflows, err := NewLoader(dir).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(workflows) != 2 {
		t.Fatalf("loaded %d workflows, want 2", len(workflows))
	}
	if workflows["analysis"].Name != "analysis" {
		t.Errorf("map key did not backfill the name: %+v", workflows["analysis"])
	}
}

func TestLoadSkipsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yaml", "name: good\nsteps: [do the thing]\n")
	writeFile(t, dir, "nosteps.yaml", "name: nosteps\nsteps: []\n")
	writeFile(t, dir, "broken.yaml", ": not yaml : [")
	writeFile(t, dir, "notes.txt", "ignored entirely")

	workflows, err := NewLoader(dir).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(workflows) != 1 {
		t.Fatalf("loaded %d workflows, want 1: %v", len(workflows), workflows)
	}
	if _, ok := workflows["good"]; !ok {
		t.Error("good workflow missing")
	}
}

func TestLoaderGet(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "deploy.yaml", "name: deploy\nsteps: [ship it]\n")

	loader := NewLoader(dir)
	wf, ok := loader.Get("deploy")
	if !ok {
		t.Fatal("Get(deploy) missed")
	}
	if wf.Steps[0].Text != "ship it" {
		t.Errorf("step text = %q", wf.Steps[0].Text)
	}
	if _, ok := loader.Get("nope"); ok {
		t.Error("Get(nope) unexpectedly hit")
	}
}

func TestStepJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		step Step
		want string
	}{
		{"plain text marshals as a string", Step{Text: "review the diff"}, `"review the diff"`},
		{
			"command step marshals as an object",
			Step{Text: "deploy", Command: "make deploy"},
			`{"text":"deploy","command":"make deploy"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.step)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal = %s, want %s", data, tt.want)
			}

			var back Step
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if back != tt.step {
				t.Errorf("round trip = %+v, want %+v", back, tt.step)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		wf      Workflow
		wantErr bool
	}{
		{"valid", Workflow{Name: "wf", Steps: TextSteps("a")}, false},
		{"missing name", Workflow{Steps: TextSteps("a")}, true},
		{"no steps", Workflow{Name: "wf"}, true},
		{"empty step", Workflow{Name: "wf", Steps: []Step{{}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.wf.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
