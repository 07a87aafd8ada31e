package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewEligibilityCommand creates the eligibility command.
func NewEligibilityCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eligibility <protocol-id>",
		Short: "Check whether a protocol may advance right now",
		Long: `Evaluate advancement eligibility without changing anything.

Reports the unmet gate when the protocol is not ready: remaining
minimum-duration hours, a missing symptom-free check, or clearance.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEligibility(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runEligibility(opts *RootOptions, protocolID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	svc, closeStore, err := openService(opts, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	elig, err := svc.Eligibility(cmd.Context(), protocolID)
	if err != nil {
		return formatter.Failure(err)
	}

	if opts.Format == "json" {
		return formatter.Success(elig)
	}
	fmt.Fprintln(cmd.OutOrStdout(), elig.String())
	return nil
}
