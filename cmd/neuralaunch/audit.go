package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	auditLimit     int
	purgeOlderThan time.Duration
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and prune the agent execution log",
}

var auditListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List recent agent executions",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditList,
}

var auditPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete old execution records",
	Args:  cobra.NoArgs,
	RunE:  runAuditPurge,
}

func init() {
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 50, "Maximum records to show")
	auditPurgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 30*24*time.Hour, "Delete records older than this")
	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditPurgeCmd)
}

func runAuditList(cmd *cobra.Command, args []string) error {
	db, _, err := openProjectStore()
	if err != nil {
		return err
	}
	defer db.Close()

	execs, err := db.ListExecutions(args[0], auditLimit)
	if err != nil {
		return fmt.Errorf("list executions: %w", err)
	}
	if len(execs) == 0 {
		fmt.Println("No executions recorded.")
		return nil
	}

	for _, e := range execs {
		mark := color.GreenString("✓")
		if !e.Success {
			mark = color.RedString("✗")
		}
		line := fmt.Sprintf("%s %s %-8s phase=%-14s dur=%s",
			mark, e.Timestamp.Format(time.RFC3339), e.Agent, e.Phase, e.Duration.Round(time.Millisecond))
		if e.TaskIndex >= 0 {
			line += fmt.Sprintf(" wave=%d task=%d", e.WaveNumber, e.TaskIndex)
		}
		if e.FixAttempt > 0 {
			line += fmt.Sprintf(" fix=%d", e.FixAttempt)
		}
		if e.ErrorKind != "" {
			line += fmt.Sprintf(" kind=%s", e.ErrorKind)
		}
		fmt.Println(line)
	}
	return nil
}

func runAuditPurge(cmd *cobra.Command, args []string) error {
	db, _, err := openProjectStore()
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.PurgeOldExecutions(purgeOlderThan)
	if err != nil {
		return fmt.Errorf("purge executions: %w", err)
	}
	fmt.Printf("Deleted %d execution records older than %s.\n", n, purgeOlderThan)
	return nil
}
