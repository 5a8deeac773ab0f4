package session

import "strings"

// Agent guidance wrapped around step text. Presentation only: the stored
// cursor state never depends on this.
const (
	commandPrefix  = "SHERPA: Execute without interaction. Use quiet/yes flags. Report outcome concisely."
	guidancePrefix = "SHERPA: Verify and report status briefly."
	stepSuffix     = "Remember: Analyze, Reflect, Plan, Execute"
)

// formatStepText wraps step text with the agent prefix and suffix according
// to the session config.
func formatStepText(text string, isCommand bool, cfg Config) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	formatted := text
	if cfg.AgentPrefix {
		prefix := guidancePrefix
		if isCommand {
			prefix = commandPrefix
		}
		formatted = prefix + "\n\n" + formatted
	}
	if cfg.AgentSuffix {
		formatted = formatted + "\n\n" + stepSuffix
	}
	return formatted
}
