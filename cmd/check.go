package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/gnolang/canvasfmt/internal/diagnostic"
	"github.com/gnolang/canvasfmt/runner"
)

var (
	showDiff        bool
	checkJSONOutput bool
	outPath         string
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Report files that are not formatted",
	Long: `Reports every file whose formatting differs and exits with status 1 when
there is one. Files that cannot be parsed are reported with exit status 2.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := newEngine()
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		defer saveCache(engine)

		return runCheck(ctx, engine, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	checkCmd.Flags().BoolVarP(&showDiff, "diff", "d", false, "Print a unified diff of the changes")
	checkCmd.Flags().BoolVar(&checkJSONOutput, "json", false, "Output diagnostics in JSON format")
	checkCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
}

func runCheck(ctx context.Context, engine runner.FormatEngine, paths []string, stdout, stderr io.Writer) error {
	results, err := runner.ProcessFiles(ctx, logger, engine, paths, runner.ProcessFile)
	byFile, sources, other := fileDiagnostics(err)
	failed := err != nil

	unformatted := 0
	for _, r := range results {
		if !r.Changed {
			continue
		}
		unformatted++
		src := diagnostic.NewSource(r.Original)
		sources[r.Path] = src
		byFile[r.Path] = append(byFile[r.Path], diagnostic.Unformatted(r.Path, src, r.Formatted))
	}

	switch {
	case checkJSONOutput:
		if err := writeJSON(stdout, outPath, byFile); err != nil {
			return &ExitError{Code: 2, Err: err}
		}
	case showDiff:
		for _, r := range results {
			if r.Changed {
				fmt.Fprint(stdout, unifiedDiff(r))
			}
		}
		printDiagnostics(stderr, errorsOnly(byFile), sources)
	default:
		printDiagnostics(stderr, byFile, sources)
	}
	for _, e := range other {
		fmt.Fprintln(stderr, color.RedString("error: ")+e.Error())
	}

	switch {
	case failed:
		return &ExitError{Code: 2}
	case unformatted > 0:
		fmt.Fprintf(stderr, "%d file(s) not formatted\n", unformatted)
		return &ExitError{Code: 1}
	}
	return nil
}

func errorsOnly(byFile map[string][]diagnostic.Diagnostic) map[string][]diagnostic.Diagnostic {
	out := make(map[string][]diagnostic.Diagnostic)
	for file, ds := range byFile {
		for _, d := range ds {
			if d.Severity == diagnostic.SeverityError {
				out[file] = append(out[file], d)
			}
		}
	}
	return out
}

func unifiedDiff(r runner.Result) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(r.Original),
		B:        difflib.SplitLines(r.Formatted),
		FromFile: r.Path,
		ToFile:   r.Path + " (formatted)",
		Context:  3,
	})
	if err != nil {
		return fmt.Sprintf("cannot diff %s: %v\n", r.Path, err)
	}
	return diff
}
