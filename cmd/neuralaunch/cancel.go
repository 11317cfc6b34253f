package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <project-id>",
	Short: "Cancel a project",
	Long: `Mark a project cancelled. Cancelled projects refuse every further
trigger; cancellation is not reversible from the CLI.`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

func runCancel(cmd *cobra.Command, args []string) error {
	db, _, err := openProjectStore()
	if err != nil {
		return err
	}
	defer db.Close()

	project, err := db.GetProject(args[0])
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if project.Cancelled {
		fmt.Println("Project is already cancelled.")
		return nil
	}

	project.Cancelled = true
	project.UpdatedAt = time.Now().UTC()
	if err := db.UpdateProject(project); err != nil {
		return fmt.Errorf("persist cancellation: %w", err)
	}

	color.Yellow("⚠ project %s cancelled", project.ID)
	return nil
}
