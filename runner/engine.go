package runner

import (
	"fmt"
	"os"
	"sync"

	"github.com/gnolang/canvasfmt"
	"github.com/gnolang/canvasfmt/internal/cache"
	"github.com/gnolang/canvasfmt/internal/config"
)

// Engine formats files with fixed options, skipping files the cache
// knows to be formatted.
type Engine struct {
	opts        config.Options
	optionsHash string
	cache       *cache.Cache

	mu          sync.RWMutex
	ignorePaths []string
}

var _ FormatEngine = (*Engine)(nil)

// New returns an engine. c may be nil to disable caching.
func New(opts config.Options, c *cache.Cache) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		opts:        opts,
		optionsHash: cache.Hash([]byte(fmt.Sprintf("%+v", opts))),
		cache:       c,
		ignorePaths: append([]string(nil), opts.Ignore...),
	}, nil
}

// Options returns the engine options.
func (e *Engine) Options() config.Options {
	return e.opts
}

// FormatFile formats the file at path without writing it.
func (e *Engine) FormatFile(path string) (Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Result{}, &FileError{Path: path, Err: err}
	}
	if e.cache != nil && e.cache.IsFormatted(path, content, e.optionsHash) {
		return Result{Path: path, Original: string(content), Formatted: string(content), Cached: true}, nil
	}
	r, err := e.FormatSource(path, content)
	if err != nil {
		return Result{}, err
	}
	if e.cache != nil && !r.Changed {
		e.cache.MarkFormatted(path, content, e.optionsHash)
	}
	return r, nil
}

// FormatSource formats source, reporting it under name.
func (e *Engine) FormatSource(name string, source []byte) (Result, error) {
	formatted, err := canvasfmt.Format(string(source), e.opts)
	if err != nil {
		return Result{}, &FileError{Path: name, Source: string(source), Err: err}
	}
	return Result{
		Path:      name,
		Original:  string(source),
		Formatted: formatted,
		Changed:   formatted != string(source),
	}, nil
}

// MarkWritten records that path now holds its formatted content.
func (e *Engine) MarkWritten(r Result) {
	if e.cache != nil {
		e.cache.MarkFormatted(r.Path, []byte(r.Formatted), e.optionsHash)
	}
}

// IgnorePath adds a glob pattern of paths to skip.
func (e *Engine) IgnorePath(pattern string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ignorePaths = append(e.ignorePaths, pattern)
}

// IsIgnored matches path against the ignore patterns.
func (e *Engine) IsIgnored(path string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return config.Match(e.ignorePaths, path)
}

// SaveCache persists the cache, if any.
func (e *Engine) SaveCache() error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Save()
}
