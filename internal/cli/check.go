package cli

import (
	"github.com/spf13/cobra"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	SymptomFree bool
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <protocol-id>",
		Short: "Record a symptom check result",
		Long: `Record the latest symptom assessment on a protocol.

A symptom-free result satisfies the symptom gate for the current
stage. Symptoms returning after stage 1 reset the protocol to stage 1
and raise a high-severity alert.

Example:
  rtp check 0190f0a2-... --symptom-free=false`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.SymptomFree, "symptom-free", false, "the athlete is currently symptom-free")
	cmd.MarkFlagRequired("symptom-free")

	return cmd
}

func runCheck(opts *CheckOptions, protocolID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	svc, closeStore, err := openService(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	p, err := svc.RecordSymptomCheck(cmd.Context(), protocolID, opts.SymptomFree)
	if err != nil {
		return formatter.Failure(err)
	}

	if opts.Format == "json" {
		return formatter.Success(p)
	}
	renderProtocol(cmd.OutOrStdout(), p)
	return nil
}
