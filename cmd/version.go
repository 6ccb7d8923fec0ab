package cmd

import (
	"fmt"

	"github.com/pulseone/pulse-admin/internal/version"
	"github.com/spf13/cobra"
)

var runVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version of pulse-admin",
	Run: func(cmd *cobra.Command, args []string) {
		v := version.GetVersion()
		commit := version.GetCommit()

		fmt.Fprintf(cmd.OutOrStdout(), "PulseAdminVersion: %s\nCommit: %s\n", v, commit)
	},
}
