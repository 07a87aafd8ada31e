package cli

import (
	"github.com/spf13/cobra"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	SymptomFreeRequired bool
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <incident-id> <player-id>",
		Short: "Start a graduated protocol for an incident",
		Long: `Start a new Return-to-Play protocol at stage 1.

One active protocol is allowed per incident. Whether advancement
requires a symptom-free check is fixed here and cannot change later.

Example:
  rtp create HIA-2031 player-88 --require-symptom-free`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.SymptomFreeRequired, "require-symptom-free", true,
		"require a symptom-free check before each advancement")

	return cmd
}

func runCreate(opts *CreateOptions, incidentID, playerID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	svc, closeStore, err := openService(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	p, err := svc.Create(cmd.Context(), incidentID, playerID, opts.SymptomFreeRequired)
	if err != nil {
		return formatter.Failure(err)
	}

	if opts.Format == "json" {
		return formatter.Success(p)
	}
	renderProtocol(cmd.OutOrStdout(), p)
	return nil
}
