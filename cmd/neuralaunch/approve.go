package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var approveBy string

var approveCmd = &cobra.Command{
	Use:   "approve <project-id>",
	Short: "Approve a project's execution plan",
	Long: `Record human approval of the plan produced in the planning phase.
The next advance moves the project into wave execution.`,
	Args: cobra.ExactArgs(1),
	RunE: runApprove,
}

func init() {
	approveCmd.Flags().StringVar(&approveBy, "by", "", "Approver identifier (defaults to $USER)")
}

func runApprove(cmd *cobra.Command, args []string) error {
	db, _, err := openProjectStore()
	if err != nil {
		return err
	}
	defer db.Close()

	by := approveBy
	if by == "" {
		by = os.Getenv("USER")
	}
	if err := db.RecordApproval(args[0], by); err != nil {
		return fmt.Errorf("record approval: %w", err)
	}

	color.Green("✓ plan approved by %s", by)
	fmt.Printf("Continue with: neuralaunch advance %s\n", args[0])
	return nil
}
