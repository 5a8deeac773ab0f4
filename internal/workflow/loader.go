package workflow

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader discovers workflow definitions in a directory of YAML files.
// One file may hold a single workflow document or a `workflows:` mapping
// keyed by workflow name.
type Loader struct {
	dir   string
	cache map[string]Workflow
}

type workflowFile struct {
	Workflows map[string]Workflow `yaml:"workflows"`
}

// NewLoader creates a loader for the given directory.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads every .yaml/.yml file in the directory and returns the
// workflows keyed by name. Invalid files are logged and skipped so one bad
// definition cannot take down the rest.
func (l *Loader) Load() (map[string]Workflow, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow directory: %w", err)
	}

	workflows := make(map[string]Workflow)
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		loaded, err := loadFile(path)
		if err != nil {
			log.Printf("⚠️  Skipping workflow file %s: %v", entry.Name(), err)
			continue
		}
		for name, wf := range loaded {
			workflows[name] = wf
		}
	}

	l.cache = workflows
	return workflows, nil
}

// Get returns a cached workflow by name, loading the directory first if it
// has not been read yet.
func (l *Loader) Get(name string) (Workflow, bool) {
	if l.cache == nil {
		if _, err := l.Load(); err != nil {
			return Workflow{}, false
		}
	}
	wf, ok := l.cache[name]
	return wf, ok
}

func loadFile(path string) (map[string]Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Try the multi-workflow format first.
	var file workflowFile
	if err := yaml.Unmarshal(data, &file); err == nil && len(file.Workflows) > 0 {
		result := make(map[string]Workflow, len(file.Workflows))
		for name, wf := range file.Workflows {
			if wf.Name == "" {
				wf.Name = name
			}
			if err := wf.Validate(); err != nil {
				return nil, err
			}
			result[wf.Name] = wf
		}
		return result, nil
	}

	// Fall back to a single workflow document.
	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if wf.Name == "" {
		wf.Name = strings.TrimSuffix(strings.TrimSuffix(filepath.Base(path), ".yaml"), ".yml")
	}
	if err := wf.Validate(); err != nil {
		return nil, err
	}
	return map[string]Workflow{wf.Name: wf}, nil
}

func isYAMLFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
