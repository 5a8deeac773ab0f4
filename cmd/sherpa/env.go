package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ChamsBouzaiene/sherpa/internal/config"
	"github.com/ChamsBouzaiene/sherpa/internal/monitor"
	"github.com/ChamsBouzaiene/sherpa/internal/session"
	"github.com/ChamsBouzaiene/sherpa/internal/workflow"
)

type runtimeEnv struct {
	Root         string
	Store        *session.Store
	Monitor      *monitor.Monitor
	Workflows    *workflow.Loader
	WorkflowsDir string
}

// prepareRuntimeEnv resolves the sessions root, loads user configuration,
// and wires up the store and monitor. Precedence for the root: flag, then
// SHERPA_HOME, then config file, then ~/.sherpa.
func prepareRuntimeEnv(rootFlag string) (*runtimeEnv, error) {
	cfg := loadUserConfig()

	root := rootFlag
	if root == "" {
		root = os.Getenv("SHERPA_HOME")
	}
	if root == "" {
		root = cfg.SessionsRoot
	}
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		root = filepath.Join(home, ".sherpa")
	}

	store, err := session.NewStore(root)
	if err != nil {
		return nil, err
	}
	store.SetClassifier(session.NewKeywordClassifier(cfg.CommandKeywords))

	loaded, err := store.LoadAll()
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d active session(s) from %s", loaded, root)

	mon := monitor.New(store, monitor.Config{
		Thresholds: session.Thresholds{
			DormantAfter: cfg.DormantAfter(),
			StaleAfter:   cfg.StaleAfter(),
			MaxAge:       cfg.MaxSessionAge(),
		},
		CompletionPhrases:  cfg.CompletionPhrases,
		ManagementKeywords: cfg.ManagementKeywords,
	})

	env := &runtimeEnv{
		Root:    root,
		Store:   store,
		Monitor: mon,
	}

	if cfg.WorkflowsDir != "" {
		env.WorkflowsDir = cfg.WorkflowsDir
		env.Workflows = workflow.NewLoader(cfg.WorkflowsDir)
	}

	return env, nil
}

func loadUserConfig() *config.Config {
	manager, err := config.NewManager()
	if err != nil {
		log.Printf("⚠️  Failed to initialize config manager: %v", err)
		return &config.Config{}
	}

	cfg, err := manager.Load()
	if err != nil {
		log.Printf("⚠️  Failed to load user config: %v", err)
		return &config.Config{}
	}
	if manager.Exists() {
		log.Printf("User config loaded from: %s", manager.GetConfigPath())
	}
	return cfg
}
