package cli

import (
	"github.com/spf13/cobra"

	"github.com/fieldside/rtp/internal/catalog"
)

// NewStagesCommand creates the stages command.
func NewStagesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stages",
		Short: "Print the stage catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			if rootOpts.Format == "json" {
				return formatter.Success(catalog.Definitions())
			}
			renderStages(cmd.OutOrStdout())
			return nil
		},
	}
	return cmd
}
