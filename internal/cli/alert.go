package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fieldside/rtp/internal/protocol"
)

// AlertOptions holds flags for the alert command.
type AlertOptions struct {
	*RootOptions
	Type     string
	Message  string
	Severity string
}

// NewAlertCommand creates the alert command.
func NewAlertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AlertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "alert <protocol-id>",
		Short: "Raise an alert on a protocol",
		Example: `  rtp alert 0190f0a2-... --type observation --severity medium \
      --message "player reported dizziness after session"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "alert type (required)")
	cmd.Flags().StringVar(&opts.Message, "message", "", "alert message (required)")
	cmd.Flags().StringVar(&opts.Severity, "severity", "medium", "severity (low|medium|high)")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("message")

	return cmd
}

func runAlert(opts *AlertOptions, protocolID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	svc, closeStore, err := openService(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	p, err := svc.RaiseAlert(cmd.Context(), protocolID, opts.Type, opts.Message, protocol.Severity(opts.Severity))
	if err != nil {
		return formatter.Failure(err)
	}

	if opts.Format == "json" {
		return formatter.Success(p)
	}
	renderProtocol(cmd.OutOrStdout(), p)
	return nil
}

// NewAckCommand creates the ack command.
func NewAckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ack <protocol-id> <alert-index>",
		Short: "Acknowledge an alert",
		Long: `Mark one alert as acknowledged.

Acknowledgement is the only mutation permitted on a cleared protocol.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAck(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runAck(opts *RootOptions, protocolID, indexArg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	index, err := strconv.Atoi(indexArg)
	if err != nil {
		return &ExitError{Code: ExitCommandError, Message: "alert-index must be an integer", Err: err}
	}

	svc, closeStore, err := openService(opts, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	p, err := svc.AcknowledgeAlert(cmd.Context(), protocolID, index)
	if err != nil {
		return formatter.Failure(err)
	}

	if opts.Format == "json" {
		return formatter.Success(p)
	}
	renderProtocol(cmd.OutOrStdout(), p)
	return nil
}
