package cli

import (
	"github.com/spf13/cobra"
)

// AdvanceOptions holds flags for the advance command.
type AdvanceOptions struct {
	*RootOptions
	Supervisor string
	Notes      string
}

// NewAdvanceCommand creates the advance command.
func NewAdvanceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AdvanceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "advance <protocol-id>",
		Short: "Advance a protocol to its next stage",
		Long: `Advance an eligible protocol one stage forward.

Fails with NOT_ELIGIBLE when the minimum duration has not elapsed or a
required symptom-free check is missing. Advancing out of stage 6
completes the protocol.

Example:
  rtp advance 0190f0a2-... --supervisor dr-hayes --notes "tolerated full drills"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdvance(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Supervisor, "supervisor", "", "supervising staff member (required)")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "progression notes for the audit trail")
	cmd.MarkFlagRequired("supervisor")

	return cmd
}

func runAdvance(opts *AdvanceOptions, protocolID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	svc, closeStore, err := openService(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	p, err := svc.Advance(cmd.Context(), protocolID, opts.Supervisor, opts.Notes)
	if err != nil {
		return formatter.Failure(err)
	}

	if opts.Format == "json" {
		return formatter.Success(p)
	}
	renderProtocol(cmd.OutOrStdout(), p)
	return nil
}
