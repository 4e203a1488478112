// Package cmd provides the CLI commands for ahnlichd.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ahnlich/ahnlich-go/internal/logging"
	"github.com/ahnlich/ahnlich-go/pkg/version"
)

const (
	exitClean          = 0
	exitConfigError    = 1
	exitSnapshotError  = 2
	exitAlreadyRunning = 3
)

var debugMode bool

// NewRootCmd creates the root command for the ahnlichd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ahnlichd",
		Short: "In-memory vector key-value store daemon",
		Long: `ahnlichd is an in-memory vector key-value store that supports
similarity search, metadata predicate filtering, and hybrid queries
over a pipelined RPC interface.`,
		Version: version.Version,
	}

	cmd.SetVersionTemplate("ahnlichd version {{.Version}}\n")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.ahnlich/logs/")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newStoresCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func setupLogging() func() {
	if !debugMode {
		// Without --debug the default slog logger writes to stderr only.
		return func() {}
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		// Logging is not essential; fall back to the default slog logger.
		fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		return func() {}
	}
	slog.SetDefault(logger)
	return cleanup
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		if code, ok := err.(exitCoder); ok {
			return code.ExitCode()
		}
		return exitConfigError
	}
	return exitClean
}

// exitCoder lets a subcommand carry a specific process exit code through
// cobra's plain error return.
type exitCoder interface {
	error
	ExitCode() int
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) ExitCode() int { return e.code }

func newExitError(code int, err error) error {
	return &exitError{code: code, err: err}
}
