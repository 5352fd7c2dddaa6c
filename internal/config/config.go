// Package config loads formatter options from .canvasfmt.yaml, the
// environment and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/canvasfmt/internal/whitespace"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".canvasfmt.yaml"

// EnvPrefix prefixes environment overrides, e.g. CANVASFMT_PRINTWIDTH.
const EnvPrefix = "CANVASFMT"

// Options are the formatter options.
type Options struct {
	PrintWidth                int             `mapstructure:"printWidth" yaml:"printWidth"`
	TabWidth                  int             `mapstructure:"tabWidth" yaml:"tabWidth"`
	SingleQuote               bool            `mapstructure:"singleQuote" yaml:"singleQuote"`
	CanvasSingleQuote         bool            `mapstructure:"canvasSingleQuote" yaml:"canvasSingleQuote"`
	HTMLWhitespaceSensitivity whitespace.Mode `mapstructure:"htmlWhitespaceSensitivity" yaml:"htmlWhitespaceSensitivity"`
	SingleAttributePerLine    bool            `mapstructure:"singleAttributePerLine" yaml:"singleAttributePerLine"`
	BracketSameLine           bool            `mapstructure:"bracketSameLine" yaml:"bracketSameLine"`
	// Ignore lists glob patterns of paths that are never formatted.
	Ignore []string `mapstructure:"ignore" yaml:"ignore,omitempty"`
}

// Default returns the default options.
func Default() Options {
	return Options{
		PrintWidth:                80,
		TabWidth:                  2,
		CanvasSingleQuote:         true,
		HTMLWhitespaceSensitivity: whitespace.CSS,
	}
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	if o.PrintWidth <= 0 {
		return fmt.Errorf("printWidth must be positive, got %d", o.PrintWidth)
	}
	if o.TabWidth <= 0 {
		return fmt.Errorf("tabWidth must be positive, got %d", o.TabWidth)
	}
	if _, err := whitespace.ParseMode(string(o.HTMLWhitespaceSensitivity)); err != nil {
		return err
	}
	for _, pattern := range o.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// Load reads options from path, or from FileName in the working
// directory when path is empty. A missing default file is not an error.
// Environment variables and the changed flags in flags override the
// file.
func Load(path string, flags *pflag.FlagSet) (Options, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("printWidth", def.PrintWidth)
	v.SetDefault("tabWidth", def.TabWidth)
	v.SetDefault("singleQuote", def.SingleQuote)
	v.SetDefault("canvasSingleQuote", def.CanvasSingleQuote)
	v.SetDefault("htmlWhitespaceSensitivity", string(def.HTMLWhitespaceSensitivity))
	v.SetDefault("singleAttributePerLine", def.SingleAttributePerLine)
	v.SetDefault("bracketSameLine", def.BracketSameLine)
	v.SetDefault("ignore", []string{})

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = FileName
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case !explicit && (errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)):
		default:
			return Options{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if _, known := flagKeys[f.Name]; known && bindErr == nil {
				bindErr = v.BindPFlag(flagKeys[f.Name], f)
			}
		})
		if bindErr != nil {
			return Options{}, fmt.Errorf("binding flags: %w", bindErr)
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return Options{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return opts, nil
}

// flagKeys maps command line flag names to option keys.
var flagKeys = map[string]string{
	"print-width":                 "printWidth",
	"tab-width":                   "tabWidth",
	"single-quote":                "singleQuote",
	"canvas-single-quote":         "canvasSingleQuote",
	"html-whitespace-sensitivity": "htmlWhitespaceSensitivity",
	"single-attribute-per-line":   "singleAttributePerLine",
	"bracket-same-line":           "bracketSameLine",
}

// RegisterFlags adds one flag per option to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	def := Default()
	flags.Int("print-width", def.PrintWidth, "Line width the printer wraps at")
	flags.Int("tab-width", def.TabWidth, "Spaces per indentation level")
	flags.Bool("single-quote", def.SingleQuote, "Use single quotes in HTML attributes")
	flags.Bool("canvas-single-quote", def.CanvasSingleQuote, "Use single quotes in template strings")
	flags.String("html-whitespace-sensitivity", string(def.HTMLWhitespaceSensitivity), "Whitespace sensitivity: css, strict or ignore")
	flags.Bool("single-attribute-per-line", def.SingleAttributePerLine, "Print one attribute per line when breaking")
	flags.Bool("bracket-same-line", def.BracketSameLine, "Keep the closing > of a broken tag on the last attribute line")
}

// Write stores opts as YAML at path.
func Write(path string, opts Options) error {
	if path == "" {
		path = FileName
	}
	d, err := yaml.Marshal(opts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}

// IsIgnored reports whether path matches one of the ignore patterns.
func (o Options) IsIgnored(path string) bool {
	return Match(o.Ignore, path)
}

// Match reports whether path, or its base name, matches a glob pattern.
func Match(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}
