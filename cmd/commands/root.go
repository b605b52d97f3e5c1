package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modguard",
		Short: "Policy-based resource governance for modular applications",
	}

	rootCmd.AddCommand(
		NewCheckCommand(),
		NewPoliciesCommand(),
		NewVersionCommand(),
	)

	return rootCmd
}
