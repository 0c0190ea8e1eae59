package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codectx/codectx/processor"
	"github.com/codectx/codectx/scheduler"
	"github.com/codectx/codectx/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	}
}

func testOptions(root string) Options {
	return Options{
		Root:           root,
		OutputFile:     "codectx.md",
		Mode:           processor.ModeMock,
		TokenThreshold: 200,
		MaxFileSize:    10 * 1024 * 1024,
		Concurrency:    2,
		Retry:          scheduler.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond},
		Timeout:        time.Second,
		Now:            fixedClock(),
	}
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func bigSource(prefix string) string {
	out := prefix + "\n"
	for len(out) < 5000 {
		out += "# padding to push the file over the raw-embed threshold\n"
	}
	return out
}

func TestRun_InitialScan(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.py": "x = 1\n",
		"b.py": bigSource("import os"),
	})

	report, err := Run(context.Background(), testOptions(root))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Updated)
	assert.Zero(t, report.Failed)

	entries, err := summary.Load(filepath.Join(root, "codectx.md"))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Small file embedded raw, large file mocked.
	assert.Equal(t, summary.KindRaw, entries["a.py"].Kind)
	assert.Equal(t, "x = 1\n", entries["a.py"].Body)
	assert.Equal(t, summary.KindMock, entries["b.py"].Kind)
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.py": "x = 1\n",
		"b.py": bigSource("import os"),
	})
	opts := testOptions(root)

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(root, "codectx.md"))
	require.NoError(t, err)

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(root, "codectx.md"))
	require.NoError(t, err)

	assert.Zero(t, report.Updated)
	assert.Equal(t, 2, report.Unchanged)
	assert.Equal(t, string(first), string(second))
}

func TestRun_DetectsModification(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.py": "x = 1\n", "b.py": "y = 2\n"})
	opts := testOptions(root)

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	writeFiles(t, root, map[string]string{"a.py": "x = 42\n"})
	report, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Unchanged)

	entries, err := summary.Load(filepath.Join(root, "codectx.md"))
	require.NoError(t, err)
	assert.Equal(t, "x = 42\n", entries["a.py"].Body)
}

func TestRun_RemovesDeletedFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.py": "x = 1\n", "c.py": "z = 3\n"})
	opts := testOptions(root)

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "c.py")))
	report, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Deleted)
	entries, err := summary.Load(filepath.Join(root, "codectx.md"))
	require.NoError(t, err)
	assert.NotContains(t, entries, "c.py")
	assert.Contains(t, entries, "a.py")
}

func TestRun_ScanAllReprocessesEverything(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.py": "x = 1\n"})
	opts := testOptions(root)

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	opts.ScanAll = true
	report, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	assert.Zero(t, report.Unchanged)
}

func TestRun_OutputFileNeverScanned(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.py": "x = 1\n"})
	opts := testOptions(root)

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	report, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Total)
	entries, err := summary.Load(filepath.Join(root, "codectx.md"))
	require.NoError(t, err)
	assert.NotContains(t, entries, "codectx.md")
}

func TestRun_CopyModeEmbedsEverything(t *testing.T) {
	root := t.TempDir()
	big := bigSource("import os")
	writeFiles(t, root, map[string]string{"big.py": big})
	opts := testOptions(root)
	opts.Mode = processor.ModeCopy

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	entries, err := summary.Load(filepath.Join(root, "codectx.md"))
	require.NoError(t, err)
	assert.Equal(t, summary.KindRaw, entries["big.py"].Kind)
	assert.Equal(t, big, entries["big.py"].Body)
}

type downProvider struct{}

func (downProvider) Summarize(ctx context.Context, relPath string, content string) (string, error) {
	return "", processor.Terminal(errors.New("connection refused"))
}

func TestRun_PerFileFailureStillSucceeds(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.py":   "x = 1\n",
		"big.py": bigSource("import os"),
	})
	opts := testOptions(root)
	opts.Mode = processor.ModeAI
	opts.Provider = downProvider{}

	// Partial progress is valid: the unreachable provider fails one
	// file, the run itself completes and persists what it has.
	report, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []string{"big.py"}, report.FailedFiles)
	assert.Equal(t, 1, report.Updated)

	entries, err := summary.Load(filepath.Join(root, "codectx.md"))
	require.NoError(t, err)
	assert.Contains(t, entries, "a.py")
	assert.NotContains(t, entries, "big.py")
}

func TestRun_CancelledContextLeavesOutputUntouched(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.py": "x = 1\n"})
	opts := testOptions(root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, opts)
	assert.Error(t, err)

	_, statErr := os.Stat(filepath.Join(root, "codectx.md"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestInspect_ReportsPendingWork(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.py": "x = 1\n", "b.py": "y = 2\n"})
	opts := testOptions(root)

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	writeFiles(t, root, map[string]string{"a.py": "x = 9\n", "new.py": "n = 1\n"})
	require.NoError(t, os.Remove(filepath.Join(root, "b.py")))

	status, err := Inspect(opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"new.py"}, status.New)
	assert.Equal(t, []string{"a.py"}, status.Modified)
	assert.Empty(t, status.Unchanged)
	assert.Equal(t, []string{"b.py"}, status.Deleted)

	// Inspect must not rewrite the document.
	entries, err := summary.Load(filepath.Join(root, "codectx.md"))
	require.NoError(t, err)
	assert.Contains(t, entries, "b.py")
}

func TestRun_WarnsOnMalformedPattern(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.py": "x = 1\n"})
	opts := testOptions(root)
	opts.IgnorePatterns = []string{"[broken"}

	var warnings []string
	opts.Warnf = func(format string, args ...interface{}) {
		warnings = append(warnings, format)
	}

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "malformed pattern")
}
