package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/ChamsBouzaiene/sherpa/internal/session"
	"github.com/ChamsBouzaiene/sherpa/internal/workflow"
)

// runDemo walks a nested workflow session end to end, printing the result
// of every transition. Useful for eyeballing the engine and for generating
// realistic session records to point the monitor at.
func runDemo(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	rootFlag := fs.String("root", "", "Sessions root directory (default: ~/.sherpa)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := prepareRuntimeEnv(*rootFlag)
	if err != nil {
		return err
	}

	s, err := env.Store.Create("demo: review and ship the feature", []session.InitialWorkflow{
		{
			Name: "implementation",
			Steps: []workflow.Step{
				{Text: "Review the existing code paths touched by the change"},
				{Text: "run go build ./...", Command: "go build ./..."},
				{Text: "Write the change and keep the diff small"},
			},
		},
	}, nil)
	if err != nil {
		return err
	}
	log.Printf("Created session %s", s.ID)

	printResult("current step", env.Store.CurrentStep(s.ID))
	printResult("advance", env.Store.AdvanceStep(s.ID))

	// Nest a testing workflow, finish it, and resume the parent.
	printResult("push testing", env.Store.PushWorkflow(s.ID, "testing", workflow.TextSteps(
		"run go test ./...",
	), nil))
	printResult("advance (pops testing)", env.Store.AdvanceStep(s.ID))

	printResult("advance", env.Store.AdvanceStep(s.ID))
	printResult("advance (completes)", env.Store.AdvanceStep(s.ID))
	printResult("current step after completion", env.Store.CurrentStep(s.ID))

	return nil
}

func printResult(label string, r session.Result) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		log.Printf("failed to marshal result: %v", err)
		return
	}
	fmt.Printf("--- %s\n%s\n", label, data)
}
