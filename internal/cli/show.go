package cli

import (
	"github.com/spf13/cobra"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Player string
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show [protocol-id]",
		Short: "Show a protocol, or all protocols for a player",
		Args:  cobra.MaximumNArgs(1),
		Example: `  rtp show 0190f0a2-...
  rtp show --player player-88`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runShow(opts, id, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Player, "player", "", "list protocols for a player instead of one ID")

	return cmd
}

func runShow(opts *ShowOptions, protocolID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if (protocolID == "") == (opts.Player == "") {
		return &ExitError{Code: ExitCommandError, Message: "provide either a protocol ID or --player"}
	}

	svc, closeStore, err := openService(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	if protocolID != "" {
		p, err := svc.Get(cmd.Context(), protocolID)
		if err != nil {
			return formatter.Failure(err)
		}
		if opts.Format == "json" {
			return formatter.Success(p)
		}
		renderProtocol(cmd.OutOrStdout(), p)
		return nil
	}

	protocols, err := svc.ListByPlayer(cmd.Context(), opts.Player)
	if err != nil {
		return formatter.Failure(err)
	}
	if opts.Format == "json" {
		return formatter.Success(protocols)
	}
	for _, p := range protocols {
		renderProtocol(cmd.OutOrStdout(), p)
	}
	return nil
}
