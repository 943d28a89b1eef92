package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shoplo-hq/shoplo-go/pkg/shoplo"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client library version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cliName, shoplo.Version)
		},
	}
}
