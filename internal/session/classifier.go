package session

import "strings"

// StepClassifier decides whether a step's text describes an executable
// command rather than plain guidance. It exists as an interface so the
// keyword heuristic below can be swapped for explicit step metadata without
// touching the state machine.
type StepClassifier interface {
	IsCommand(text string) bool
}

// KeywordClassifier flags a step as a command when its text starts with one
// of the configured keywords. It is a heuristic: workflow authors who need
// certainty should set the command field on the step instead.
type KeywordClassifier struct {
	Keywords []string
}

// DefaultCommandKeywords covers the common tool invocations seen at the
// start of command steps.
var DefaultCommandKeywords = []string{
	"run ", "execute ", "install ",
	"npm ", "pip ", "git ", "cd ", "mkdir ", "touch ", "curl ", "wget ",
	"docker ", "python ", "node ", "bun ", "yarn ", "pnpm ", "cargo ", "go ", "rustc ",
}

var defaultClassifier = &KeywordClassifier{Keywords: DefaultCommandKeywords}

// NewKeywordClassifier builds a classifier from a keyword list, falling back
// to the defaults when the list is empty.
func NewKeywordClassifier(keywords []string) *KeywordClassifier {
	if len(keywords) == 0 {
		keywords = DefaultCommandKeywords
	}
	return &KeywordClassifier{Keywords: keywords}
}

func (c *KeywordClassifier) IsCommand(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, kw := range c.Keywords {
		if strings.HasPrefix(lower, kw) {
			return true
		}
	}
	return false
}
