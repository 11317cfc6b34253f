package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mansaraysaheedalpha/neuralaunch-sub006/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("neuralaunch version %s\n", version.Get())
	},
}
