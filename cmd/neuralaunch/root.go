package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/agent"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/backend"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/config"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/engine"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/store"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/workspace"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"

	"github.com/anthropics/anthropic-sdk-go"
)

var rootCmd = &cobra.Command{
	Use:   "neuralaunch",
	Short: "Blueprint-to-application orchestration engine",
	Long: `NeuraLaunch drives a project from a natural-language blueprint to a
deployed application through a fixed phase lifecycle: analysis, research,
validation, planning, plan review, wave execution, deployment, monitoring.

Plan tasks run in dependency-ordered waves of concurrent agents; each wave
lands on its own git branch. Triggers advance one step at a time, so every
command is safe to re-run.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(advanceCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(versionCmd)
}

// openProjectStore opens and migrates the project-local state database.
func openProjectStore() (*store.DB, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}

	db, err := store.OpenProject(cwd)
	if err != nil {
		return nil, "", fmt.Errorf("open state database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("migrate state database: %w", err)
	}
	return db, cwd, nil
}

// buildEngine assembles a fully wired engine for commands that execute
// agents. Commands that only read state open the store directly instead.
func buildEngine(db *store.DB, projectRoot string, cfg *config.Config, emitter *engine.EventEmitter) (*engine.Engine, error) {
	client, err := backend.NewClient(backend.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, err
	}

	registry := agent.NewRegistry()
	for _, kind := range models.AllAgentKinds() {
		registry.Register(backend.NewLLMRunner(client, kind))
	}

	ws := workspace.NewGitWorkspace(projectRoot, nil)
	logger := engine.NewDebugLoggerForProject(projectRoot)

	return engine.New(db, registry, ws, emitter, logger, engine.Options{
		AgentCap:          cfg.Engine.AgentCap,
		MaxFixAttempts:    cfg.Engine.MaxFixAttempts,
		GlobalConcurrency: cfg.Engine.GlobalConcurrency,
		TaskTimeout:       cfg.Engine.TaskTimeout,
		GitPush:           cfg.Git.Push,
		BranchPrefix:      cfg.Git.BranchPrefix,
	}), nil
}
