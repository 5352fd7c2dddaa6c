package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/gnolang/canvasfmt/internal/cache"
	"github.com/gnolang/canvasfmt/internal/diagnostic"
	"github.com/gnolang/canvasfmt/runner"
)

var (
	noCache  bool
	cacheDir string
)

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".canvasfmt-cache"
	}
	return filepath.Join(dir, "canvasfmt")
}

type cacheSaver interface {
	SaveCache() error
}

// saveCache persists the engine cache. A failure only costs the next run
// its cache hits.
func saveCache(engine cacheSaver) {
	if err := engine.SaveCache(); err != nil {
		logger.Warn("Error saving cache", zap.Error(err))
	}
}

func newEngine() (*runner.Engine, error) {
	var c *cache.Cache
	if !noCache {
		var err error
		c, err = cache.New(cacheDir)
		if err != nil {
			logger.Warn("Cache disabled", zap.String("dir", cacheDir), zap.Error(err))
			c = nil
		}
	}
	return runner.New(options, c)
}

// fileDiagnostics turns the failures of a run into diagnostics, grouped by
// file.
func fileDiagnostics(err error) (map[string][]diagnostic.Diagnostic, map[string]*diagnostic.Source, []error) {
	byFile := make(map[string][]diagnostic.Diagnostic)
	sources := make(map[string]*diagnostic.Source)
	var other []error
	for _, e := range runner.Errors(err) {
		var fe *runner.FileError
		if !errors.As(e, &fe) || fe.Source == "" {
			other = append(other, e)
			continue
		}
		src := diagnostic.NewSource(fe.Source)
		sources[fe.Path] = src
		byFile[fe.Path] = append(byFile[fe.Path], diagnostic.FromError(fe.Path, src, fe.Err))
	}
	return byFile, sources, other
}

func printDiagnostics(w io.Writer, byFile map[string][]diagnostic.Diagnostic, sources map[string]*diagnostic.Source) {
	for _, filename := range sortedKeys(byFile) {
		ds := byFile[filename]
		diagnostic.Sort(ds)
		fmt.Fprintln(w, diagnostic.Render(ds, sources[filename]))
	}
}

func writeJSON(w io.Writer, path string, v any) error {
	d, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling JSON: %w", err)
	}
	if path == "" {
		_, err = fmt.Fprintln(w, string(d))
		return err
	}
	return os.WriteFile(path, d, 0o644)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// reportErrors prints failures and reports whether there were any.
func reportErrors(w io.Writer, err error) bool {
	if err == nil {
		return false
	}
	byFile, sources, other := fileDiagnostics(err)
	printDiagnostics(w, byFile, sources)
	for _, e := range other {
		logger.Error("Error processing files", zap.Error(e))
	}
	return true
}
