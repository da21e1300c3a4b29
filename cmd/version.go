package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracelake/evmetl/internal/version"
)

var runVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and commit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("evmetl %s (%s)\n", version.GetVersion(), version.GetCommit())
	},
}
