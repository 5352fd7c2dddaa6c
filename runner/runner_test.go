package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockFormatEngine struct {
	mock.Mock
}

func (m *mockFormatEngine) FormatFile(path string) (Result, error) {
	args := m.Called(path)
	return args.Get(0).(Result), args.Error(1)
}

func (m *mockFormatEngine) FormatSource(name string, source []byte) (Result, error) {
	args := m.Called(name, source)
	return args.Get(0).(Result), args.Error(1)
}

func (m *mockFormatEngine) IgnorePath(pattern string) {
	m.Called(pattern)
}

func (m *mockFormatEngine) IsIgnored(path string) bool {
	return m.Called(path).Bool(0)
}

func createTempFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(paths[i]), 0o755))
		require.NoError(t, os.WriteFile(paths[i], []byte("<div></div>\n"), 0o644))
	}
	return paths
}

func TestProcessFile(t *testing.T) {
	t.Parallel()

	want := Result{Path: "a.canvas", Original: "x", Formatted: "x"}
	engine := new(mockFormatEngine)
	engine.On("FormatFile", "a.canvas").Return(want, nil)

	got, err := ProcessFile(engine, "a.canvas")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	engine.AssertExpectations(t)
}

func TestProcessPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := createTempFiles(t, dir, "b.canvas", "a.html", "nested/c.canvas", "skip.txt")

	engine := new(mockFormatEngine)
	engine.On("IsIgnored", mock.Anything).Return(false)
	for _, p := range paths[:3] {
		engine.On("FormatFile", p).Return(Result{Path: p}, nil)
	}

	results, err := ProcessPath(context.Background(), zap.NewNop(), engine, dir, ProcessFile)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, paths[1], results[0].Path, "results are sorted")
	engine.AssertExpectations(t)
	engine.AssertNotCalled(t, "FormatFile", paths[3])
}

func TestProcessPathIgnored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := createTempFiles(t, dir, "keep.canvas", "vendor/lib.canvas")

	engine := new(mockFormatEngine)
	engine.On("IsIgnored", filepath.Join(dir, "vendor")).Return(true)
	engine.On("IsIgnored", mock.Anything).Return(false)
	engine.On("FormatFile", paths[0]).Return(Result{Path: paths[0]}, nil)

	results, err := ProcessPath(context.Background(), zap.NewNop(), engine, dir, ProcessFile)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	engine.AssertNotCalled(t, "FormatFile", paths[1])
}

func TestProcessFilesCollectsErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := createTempFiles(t, dir, "ok.canvas", "bad.canvas")
	boom := errors.New("boom")

	engine := new(mockFormatEngine)
	engine.On("IsIgnored", mock.Anything).Return(false)
	engine.On("FormatFile", paths[0]).Return(Result{Path: paths[0]}, nil)
	engine.On("FormatFile", paths[1]).Return(Result{}, &FileError{Path: paths[1], Err: boom})

	results, err := ProcessFiles(context.Background(), zap.NewNop(), engine, paths, ProcessFile)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, results, 1)
	assert.Len(t, Errors(err), 1)
}

func TestProcessFilesMissingPath(t *testing.T) {
	t.Parallel()

	engine := new(mockFormatEngine)
	_, err := ProcessFiles(context.Background(), nil, engine, []string{filepath.Join(t.TempDir(), "nope")}, ProcessFile)
	assert.Error(t, err)
}

func TestProcessPathContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	createTempFiles(t, dir, "a.canvas", "b.canvas")

	engine := new(mockFormatEngine)
	engine.On("IsIgnored", mock.Anything).Return(false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ProcessPath(ctx, nil, engine, dir, ProcessFile)
	assert.ErrorIs(t, err, context.Canceled)
	engine.AssertNotCalled(t, "FormatFile", mock.Anything)
}

func TestProcessSources(t *testing.T) {
	t.Parallel()

	engine := new(mockFormatEngine)
	engine.On("FormatSource", "<source 0>", []byte("a")).Return(Result{Path: "<source 0>"}, nil)
	engine.On("FormatSource", "<source 1>", []byte("b")).Return(Result{}, errors.New("bad"))

	results, err := ProcessSources(context.Background(), zap.NewNop(), engine, [][]byte{[]byte("a"), []byte("b")})
	assert.Len(t, results, 1)
	require.Error(t, err)

	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "<source 1>", fe.Path)
	assert.Equal(t, "b", fe.Source)
}

func TestWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := createTempFiles(t, dir, "a.canvas", "b.canvas")

	err := Write([]Result{
		{Path: paths[0], Formatted: "<p></p>\n", Changed: true},
		{Path: paths[1], Formatted: "ignored\n"},
	})
	require.NoError(t, err)

	got, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "<p></p>\n", string(got))
	got, err = os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, "<div></div>\n", string(got))
}
