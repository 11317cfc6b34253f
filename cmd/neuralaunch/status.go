package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/engine"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/store"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/pkg/models"
)

var statusCmd = &cobra.Command{
	Use:   "status [project-id]",
	Short: "Show project state",
	Long: `Display project state from the state database.

Without arguments, lists every project in this directory's database. With a
project ID, shows phase, progress, waves, and recent agent executions.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	if _, err := os.Stat(store.ProjectDBPath(cwd)); os.IsNotExist(err) {
		fmt.Println("No projects here. Run 'neuralaunch init' to start one.")
		return nil
	}

	db, _, err := openProjectStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 0 {
		return printProjectList(db)
	}
	return printProjectDetail(db, args[0])
}

func printProjectList(db *store.DB) error {
	projects, err := db.ListProjects()
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	if len(projects) == 0 {
		fmt.Println("No projects here. Run 'neuralaunch init' to start one.")
		return nil
	}

	for _, p := range projects {
		marker := color.GreenString("●")
		if p.Cancelled {
			marker = color.RedString("●")
		} else if p.Phase != models.PhaseComplete {
			marker = color.YellowString("●")
		}
		fmt.Printf("%s %s  phase=%s  owner=%s  updated=%s\n",
			marker, p.ID, p.Phase, p.Owner, p.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}

func printProjectDetail(db *store.DB, projectID string) error {
	p, err := db.GetProject(projectID)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}

	completed, total, err := db.WaveCounts(p.ID)
	if err != nil {
		return fmt.Errorf("wave counts: %w", err)
	}

	fmt.Printf("Project:  %s\n", p.ID)
	fmt.Printf("Owner:    %s\n", p.Owner)
	fmt.Printf("Phase:    %s\n", p.Phase)
	fmt.Printf("Progress: %d%%\n", engine.Progress(p.Phase, completed, total))
	if p.Cancelled {
		color.Red("Status:   CANCELLED")
	}
	if len(p.CompletedPhases) > 0 {
		phases := make([]string, len(p.CompletedPhases))
		for i, ph := range p.CompletedPhases {
			phases[i] = string(ph)
		}
		fmt.Printf("Done:     %s\n", strings.Join(phases, ", "))
	}

	waves, err := db.ListWaves(p.ID)
	if err != nil {
		return fmt.Errorf("list waves: %w", err)
	}
	if len(waves) > 0 {
		fmt.Println("\nWaves:")
		for _, w := range waves {
			fmt.Printf("  #%d  %-10s phase=%s tasks=%v\n", w.Number, w.Status, w.PlanPhase, w.TaskIndexes)
		}
	}

	execs, err := db.ListExecutions(p.ID, 10)
	if err != nil {
		return fmt.Errorf("list executions: %w", err)
	}
	if len(execs) > 0 {
		fmt.Println("\nRecent executions:")
		for _, e := range execs {
			mark := color.GreenString("✓")
			if !e.Success {
				mark = color.RedString("✗")
			}
			line := fmt.Sprintf("  %s %-8s phase=%s", mark, e.Agent, e.Phase)
			if e.TaskIndex >= 0 {
				line += fmt.Sprintf(" wave=%d task=%d", e.WaveNumber, e.TaskIndex)
			}
			if e.FixAttempt > 0 {
				line += fmt.Sprintf(" fix=%d", e.FixAttempt)
			}
			if e.Error != "" {
				line += " " + e.Error
			}
			fmt.Println(line)
		}
	}
	return nil
}
