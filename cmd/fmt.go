package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/canvasfmt/runner"
)

var (
	write bool
	list  bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [paths...]",
	Short: "Format Canvas templates",
	Long: `Formats the given files and directories. Formatted output goes to stdout
unless --write is set. With no path, or the path "-", stdin is formatted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := newEngine()
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		defer saveCache(engine)

		if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
			return runFmtStdin(ctx, engine, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		}
		return runFmt(ctx, engine, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	fmtCmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result to the source files")
	fmtCmd.Flags().BoolVarP(&list, "list", "l", false, "List files whose formatting differs")
}

func runFmtStdin(ctx context.Context, engine *runner.Engine, in io.Reader, stdout, stderr io.Writer) error {
	source, err := io.ReadAll(in)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}
	results, err := runner.ProcessSources(ctx, logger, engine, [][]byte{source})
	if reportErrors(stderr, err) {
		return &ExitError{Code: 2}
	}
	_, err = io.WriteString(stdout, results[0].Formatted)
	return err
}

func runFmt(ctx context.Context, engine *runner.Engine, paths []string, stdout, stderr io.Writer) error {
	results, err := runner.ProcessFiles(ctx, logger, engine, paths, runner.ProcessFile)
	failed := reportErrors(stderr, err)

	for _, r := range results {
		switch {
		case list:
			if r.Changed {
				fmt.Fprintln(stdout, r.Path)
			}
		case !write:
			fmt.Fprint(stdout, r.Formatted)
		}
	}

	if write {
		if err := runner.Write(results); err != nil {
			logger.Error("Error writing files", zap.Error(err))
			return &ExitError{Code: 2, Err: err}
		}
		for _, r := range results {
			if r.Changed {
				engine.MarkWritten(r)
				logger.Debug("Formatted file", zap.String("path", r.Path))
			}
		}
	}

	if failed {
		return &ExitError{Code: 2}
	}
	return nil
}
