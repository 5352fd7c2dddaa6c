// Package runner formats files and directories of Canvas templates.
package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/canvasfmt"
)

// FormatEngine formats single files or sources.
type FormatEngine interface {
	FormatFile(path string) (Result, error)
	FormatSource(name string, source []byte) (Result, error)
	IgnorePath(pattern string)
	IsIgnored(path string) bool
}

// Result is the outcome of formatting one file.
type Result struct {
	Path      string
	Original  string
	Formatted string
	Changed   bool
	// Cached is set when the file was skipped as already formatted.
	Cached bool
}

// FileError is a failure to format one file.
type FileError struct {
	Path   string
	Source string
	Err    error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Errors splits an error returned by this package into its parts.
func Errors(err error) []error {
	return multierr.Errors(err)
}

type Processor func(FormatEngine, string) (Result, error)

// ProcessFile formats the file at path.
func ProcessFile(engine FormatEngine, path string) (Result, error) {
	return engine.FormatFile(path)
}

// ProcessSources formats in-memory sources named by index.
func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine FormatEngine,
	sources [][]byte,
) ([]Result, error) {
	results := make([]Result, 0, len(sources))
	var errs error
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		name := fmt.Sprintf("<source %d>", i)
		r, err := engine.FormatSource(name, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			errs = multierr.Append(errs, &FileError{Path: name, Source: string(source), Err: err})
			continue
		}
		results = append(results, r)
	}
	return results, errs
}

// ProcessFiles formats every path, descending into directories. Failures
// of single files are collected; the other files are still formatted.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine FormatEngine,
	paths []string,
	processor Processor,
) ([]Result, error) {
	var all []Result
	var errs error
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, engine, path, processor)
		all = append(all, results...)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			errs = multierr.Append(errs, err)
		}
	}
	return all, errs
}

// ProcessPath formats a file, or all Canvas files below a directory with a
// bounded worker pool. Results are sorted by path.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine FormatEngine,
	path string,
	processor Processor,
) ([]Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if engine.IsIgnored(path) {
			return nil, nil
		}
		r, err := processor(engine, path)
		if err != nil {
			return nil, err
		}
		return []Result{r}, nil
	}

	files, err := collectFiles(engine, path)
	if err != nil {
		return nil, err
	}

	bar := newProgressBar(path, len(files))
	defer bar.Finish()

	var (
		mu      sync.Mutex
		results = make([]Result, 0, len(files))
		errs    error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, file := range files {
		file := file
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := processor(engine, file)
			_ = bar.Add(1)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", file), zap.Error(err))
				}
				errs = multierr.Append(errs, err)
				return nil
			}
			results = append(results, r)
			return nil
		})
	}
	waitErr := g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	if waitErr != nil {
		return results, waitErr
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, errs
}

func collectFiles(engine FormatEngine, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if engine.IsIgnored(p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && canvasfmt.HasExtension(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}
	return files, nil
}

func newProgressBar(description string, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetVisibility(isatty.IsTerminal(os.Stderr.Fd())),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

// Write stores the formatted content of changed results in place.
func Write(results []Result) error {
	var errs error
	for _, r := range results {
		if !r.Changed {
			continue
		}
		info, err := os.Stat(r.Path)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if err := os.WriteFile(r.Path, []byte(r.Formatted), info.Mode().Perm()); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("writing %s: %w", r.Path, err))
		}
	}
	return errs
}
