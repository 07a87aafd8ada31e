package cli

import (
	"github.com/spf13/cobra"
)

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	Reason     string
	Supervisor string
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset <protocol-id>",
		Short: "Reset a protocol back to stage 1",
		Long: `Reset an in-progress protocol to stage 1 by staff decision.

The abandoned stage is kept in the audit history with outcome "reset";
nothing is erased. Cleared protocols cannot be reset.

Example:
  rtp reset 0190f0a2-... --reason "headache after training" --supervisor dr-hayes`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Reason, "reason", "", "why the protocol is being reset (required)")
	cmd.Flags().StringVar(&opts.Supervisor, "supervisor", "", "supervising staff member")
	cmd.MarkFlagRequired("reason")

	return cmd
}

func runReset(opts *ResetOptions, protocolID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	svc, closeStore, err := openService(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	p, err := svc.Reset(cmd.Context(), protocolID, opts.Reason, opts.Supervisor)
	if err != nil {
		return formatter.Failure(err)
	}

	if opts.Format == "json" {
		return formatter.Success(p)
	}
	renderProtocol(cmd.OutOrStdout(), p)
	return nil
}
