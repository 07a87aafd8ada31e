package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldside/rtp/internal/app"
	"github.com/fieldside/rtp/internal/engine"
	"github.com/fieldside/rtp/internal/notify"
	"github.com/fieldside/rtp/internal/protocol"
	"github.com/fieldside/rtp/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DBPath  string
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rtp CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rtp",
		Short: "Return-to-Play protocol engine",
		Long: `Manage graduated Return-to-Play recovery protocols.

A protocol walks an athlete through six stages after a head injury,
each gated by a minimum duration and, when required, a symptom-free
check. Stage transitions are audited; symptom returns reset the
protocol to stage 1 and raise a high-severity alert.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "rtp.db", "path to the protocol database")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewEligibilityCommand(opts))
	cmd.AddCommand(NewAdvanceCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewAlertCommand(opts))
	cmd.AddCommand(NewAckCommand(opts))
	cmd.AddCommand(NewStagesCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newFormatter builds the output formatter for a command invocation.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openService opens the database and wires the protocol service.
// The returned closer must be called when the command finishes.
func openService(opts *RootOptions, cmd *cobra.Command) (*app.ProtocolService, func() error, error) {
	st, err := store.Open(opts.DBPath)
	if err != nil {
		return nil, nil, &ExitError{Code: ExitCommandError, Message: "open database", Err: err}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(opts),
	}))

	// Events land on stderr in JSON mode so stdout stays parseable.
	eventWriter := cmd.OutOrStdout()
	if opts.Format == "json" {
		eventWriter = cmd.ErrOrStderr()
	}
	sink := notify.MultiSink{
		notify.NewConsoleSink(eventWriter),
		notify.NewSlogSink(logger),
	}

	svc := app.NewProtocolService(st, engine.SystemClock{}, sink, protocol.UUIDv7Generator{}, logger)
	return svc, st.Close, nil
}

func logLevel(opts *RootOptions) slog.Level {
	if opts.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
