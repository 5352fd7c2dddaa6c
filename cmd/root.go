package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/canvasfmt/internal/config"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger  *zap.Logger
	options config.Options
)

var rootCmd = &cobra.Command{
	Use:              "canvasfmt [paths...]",
	Short:            "canvasfmt - an opinionated formatter for Canvas templates",
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		if cmd == initCmd {
			return nil
		}
		options, err = config.Load(cfgFile, cmd.Flags())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 {
			return cmd.Help()
		}
		// canvasfmt [path1 path2 ...] behaves like the fmt subcommand
		return fmtCmd.RunE(fmtCmd, args)
	},
}

// ExitError carries the process exit status of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	if err != nil {
		return 2
	}
	return 0
}

// Execute runs the command line.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Path to the configuration file (default .canvasfmt.yaml)")
	flags.DurationVar(&timeout, "timeout", defaultTimeout, "Abort after this duration")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable development logging")
	flags.BoolVar(&noCache, "no-cache", false, "Do not skip files formatted by a previous run")
	flags.StringVar(&cacheDir, "cache-dir", defaultCacheDir(), "Directory of the format cache")
	config.RegisterFlags(flags)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(inspectCmd)
}
