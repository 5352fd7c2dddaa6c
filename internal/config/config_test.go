package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/canvasfmt/internal/whitespace"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `printWidth: 100
tabWidth: 4
singleQuote: true
htmlWhitespaceSensitivity: strict
ignore:
  - "*.min.html"
`)
	opts, err := Load(path, nil)
	require.NoError(t, err)

	want := Default()
	want.PrintWidth = 100
	want.TabWidth = 4
	want.SingleQuote = true
	want.HTMLWhitespaceSensitivity = whitespace.Strict
	want.Ignore = []string{"*.min.html"}
	assert.Equal(t, want, opts)
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err, "an explicit path must exist")
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"zero width", "printWidth: 0\n"},
		{"negative tab", "tabWidth: -2\n"},
		{"unknown sensitivity", "htmlWhitespaceSensitivity: loose\n"},
		{"bad pattern", "ignore: ['[']\n"},
		{"not yaml", "printWidth: [\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeFile(t, tt.content), nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeFile(t, "printWidth: 100\ntabWidth: 4\n")
	t.Setenv("CANVASFMT_TABWIDTH", "8")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse([]string{"--print-width=120", "--bracket-same-line"}))

	opts, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 120, opts.PrintWidth)
	assert.Equal(t, 8, opts.TabWidth)
	assert.True(t, opts.BracketSameLine)
	assert.True(t, opts.CanvasSingleQuote, "unchanged flags keep the default")
}

func TestWriteRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	opts := Default()
	opts.SingleAttributePerLine = true
	require.NoError(t, Write(path, opts))

	loaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, opts.SingleAttributePerLine, loaded.SingleAttributePerLine)
	assert.Equal(t, opts.PrintWidth, loaded.PrintWidth)
	assert.Equal(t, opts.HTMLWhitespaceSensitivity, loaded.HTMLWhitespaceSensitivity)
}

func TestIsIgnored(t *testing.T) {
	t.Parallel()

	opts := Default()
	opts.Ignore = []string{"*.min.html", "vendor/*"}
	assert.True(t, opts.IsIgnored("templates/app.min.html"))
	assert.True(t, opts.IsIgnored("vendor/x.canvas"))
	assert.False(t, opts.IsIgnored("templates/app.html"))
}
