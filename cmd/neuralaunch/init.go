package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

var (
	initOwner     string
	initBlueprint string
	initForce     bool
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a NeuraLaunch project",
	Long: `Initialize a directory for use with NeuraLaunch.

Creates the .neuralaunch directory structure, the state database, a default
project config, and a project record seeded from the blueprint file.

Examples:
  neuralaunch init --blueprint blueprint.md
  neuralaunch init ./myapp --blueprint spec.md --owner alice
  neuralaunch init --force    # Reinitialize`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initBlueprint, "blueprint", "", "Path to the blueprint file (required)")
	initCmd.Flags().StringVar(&initOwner, "owner", "", "Project owner identifier")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even if already set up")
	initCmd.MarkFlagRequired("blueprint")
}

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}
	if err := os.Chdir(absPath); err != nil {
		return fmt.Errorf("changing to directory %s: %w", absPath, err)
	}

	fmt.Printf("Initializing NeuraLaunch in %s...\n\n", absPath)

	nlDir := filepath.Join(absPath, ".neuralaunch")
	if _, err := os.Stat(nlDir); err == nil && !initForce {
		fmt.Println("Directory already initialized. Use --force to reinitialize.")
		return nil
	}

	blueprint, err := os.ReadFile(initBlueprint)
	if err != nil {
		printStatus("✗", "Blueprint not readable", color.FgRed)
		return fmt.Errorf("read blueprint %s: %w", initBlueprint, err)
	}
	printStatus("✓", "Blueprint loaded", color.FgGreen)

	for _, dir := range []string{nlDir, filepath.Join(nlDir, "logs"), filepath.Join(nlDir, "triggers")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	printStatus("✓", "Created .neuralaunch directory structure", color.FgGreen)

	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		printStatus("⚠", "ANTHROPIC_API_KEY not set (you can set it later)", color.FgYellow)
	} else {
		printStatus("✓", "ANTHROPIC_API_KEY is set", color.FgGreen)
	}

	if err := writeDefaultConfig(absPath); err != nil {
		return err
	}
	printStatus("✓", "Wrote .neuralaunch.yaml", color.FgGreen)

	db, _, err := openProjectStore()
	if err != nil {
		return err
	}
	defer db.Close()

	owner := initOwner
	if owner == "" {
		owner = os.Getenv("USER")
	}
	now := time.Now().UTC()
	project := &models.Project{
		ID:        uuid.NewString(),
		Owner:     owner,
		Phase:     models.PhaseInitializing,
		Blueprint: strings.TrimSpace(string(blueprint)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.CreateProject(project); err != nil {
		return fmt.Errorf("create project record: %w", err)
	}
	printStatus("✓", "Project created", color.FgGreen)

	fmt.Printf("\nProject ID: %s\n", project.ID)
	fmt.Printf("Next: neuralaunch advance %s\n", project.ID)
	return nil
}

// writeDefaultConfig creates .neuralaunch.yaml unless it already exists.
func writeDefaultConfig(root string) error {
	path := filepath.Join(root, ".neuralaunch.yaml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	defaults := map[string]any{
		"anthropic": map[string]any{
			"api_key":     "${ANTHROPIC_API_KEY}",
			"use_bedrock": false,
		},
		"engine": map[string]any{
			"agent_cap":          3,
			"max_fix_attempts":   2,
			"global_concurrency": 10,
			"task_timeout":       "10m",
		},
		"git": map[string]any{
			"push":          false,
			"branch_prefix": "neuralaunch/",
		},
	}
	data, err := yaml.Marshal(defaults)
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func printStatus(symbol, message string, c color.Attribute) {
	color.New(c).Printf("%s ", symbol)
	fmt.Println(message)
}
