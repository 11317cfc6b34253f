package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/config"
	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/engine"
)

var advanceRetryWave bool

var advanceCmd = &cobra.Command{
	Use:   "advance <project-id>",
	Short: "Perform one lifecycle transition for a project",
	Long: `Advance the project one step: run the current phase's agent, start the
next wave, or move to the next phase. Each invocation does exactly one unit
of work and persists before returning; re-running after a crash resumes
where the state database says the project is.

A wave that failed terminally blocks further progress until re-triggered
with --retry-wave, which schedules the failed tasks into a fresh wave.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdvance,
}

func init() {
	advanceCmd.Flags().BoolVar(&advanceRetryWave, "retry-wave", false, "Schedule failed tasks into a new wave")
}

func runAdvance(cmd *cobra.Command, args []string) error {
	db, root, err := openProjectStore()
	if err != nil {
		return err
	}
	defer db.Close()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	e, err := buildEngine(db, root, cfg, nil)
	if err != nil {
		return err
	}

	res, err := e.Advance(context.Background(), args[0], advanceRetryWave)
	if err != nil {
		if errors.Is(err, engine.ErrWaveFailed) {
			color.Red("✗ %v", err)
			return err
		}
		return err
	}

	printAdvanceResult(res)
	return nil
}

func printAdvanceResult(res *engine.AdvanceResult) {
	if res.AwaitingApproval {
		color.Yellow("⚠ plan awaiting approval (phase %s, %d%%)", res.PhaseAfter, res.Progress)
		fmt.Printf("Approve with: neuralaunch approve %s\n", res.ProjectID)
		return
	}

	if res.Cycle != nil && res.Cycle.WaveNumber > 0 {
		if len(res.Cycle.Failed) > 0 {
			color.Red("✗ wave %d failed: tasks %v (succeeded %v)", res.Cycle.WaveNumber, res.Cycle.Failed, res.Cycle.Succeeded)
			fmt.Printf("Retry with: neuralaunch advance %s --retry-wave\n", res.ProjectID)
		} else {
			color.Green("✓ wave %d complete: tasks %v", res.Cycle.WaveNumber, res.Cycle.Succeeded)
		}
	}

	if res.PhaseBefore != res.PhaseAfter {
		color.Green("✓ phase %s → %s (%d%%)", res.PhaseBefore, res.PhaseAfter, res.Progress)
	} else {
		fmt.Printf("phase %s (%d%%)\n", res.PhaseAfter, res.Progress)
	}
}
