package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ChamsBouzaiene/sherpa/internal/workflow"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	args := os.Args[1:]
	command := "status"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	var err error
	switch command {
	case "status":
		err = runStatus(args)
	case "cleanup":
		err = runCleanup(args)
	case "watch":
		err = runWatch(args)
	case "demo":
		err = runDemo(args)
	default:
		err = fmt.Errorf("unknown command %q (expected status, cleanup, watch, or demo)", command)
	}
	if err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

// runStatus prints the monitor's dashboard summary as JSON.
func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	rootFlag := fs.String("root", "", "Sessions root directory (default: ~/.sherpa)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := prepareRuntimeEnv(*rootFlag)
	if err != nil {
		return err
	}

	summary := env.Monitor.StatusSummary()
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// runCleanup archives stale and over-age sessions.
func runCleanup(args []string) error {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	rootFlag := fs.String("root", "", "Sessions root directory (default: ~/.sherpa)")
	maxAge := fs.Duration("max-age", 0, "Also archive sessions older than this age (e.g. 168h)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := prepareRuntimeEnv(*rootFlag)
	if err != nil {
		return err
	}

	archived := env.Monitor.CleanupStaleSessions()
	if *maxAge > 0 {
		older, err := env.Store.CleanupOlderThan(*maxAge)
		if err != nil {
			return err
		}
		archived = append(archived, older...)
	}

	log.Printf("Archived %d session(s)", len(archived))
	for _, id := range archived {
		fmt.Println(id)
	}
	return nil
}

// runWatch periodically scans sessions and prints intervention reminders.
// With a workflows directory configured it also hot-reloads the YAML
// definitions on change.
func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	rootFlag := fs.String("root", "", "Sessions root directory (default: ~/.sherpa)")
	interval := fs.Duration("interval", time.Minute, "Scan interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := prepareRuntimeEnv(*rootFlag)
	if err != nil {
		return err
	}

	if env.Workflows != nil && env.WorkflowsDir != "" {
		watcher, err := workflow.NewWatcher(env.WorkflowsDir, func() {
			if _, err := env.Workflows.Load(); err != nil {
				log.Printf("⚠️  Workflow reload failed: %v", err)
				return
			}
			log.Println("🔄 Workflow definitions reloaded")
		})
		if err != nil {
			log.Printf("⚠️  Workflow hot reload disabled: %v", err)
		} else if err := watcher.Start(); err != nil {
			log.Printf("⚠️  Workflow hot reload disabled: %v", err)
		} else {
			defer watcher.Stop()
		}
	}

	log.Printf("👀 Watching sessions under %s (interval %s)", env.Root, *interval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			log.Println("Shutting down")
			return nil
		case <-ticker.C:
			for _, alert := range env.Monitor.CheckSessionHealth() {
				log.Printf("[%s] %s: %s", alert.Severity, alert.Type, alert.Message)
				if msg := env.Monitor.GenerateInterventionMessage(alert); msg != "" {
					fmt.Println(msg)
				}
			}
			if archived := env.Monitor.CleanupStaleSessions(); len(archived) > 0 {
				log.Printf("Auto-archived %d session(s)", len(archived))
			}
		}
	}
}
