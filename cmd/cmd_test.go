package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planilla-condensada/liquidacion-xlsx/internal/config"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/converter"
	"github.com/planilla-condensada/liquidacion-xlsx/internal/logging"
)

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "config.yaml", resolveConfigPath(false, "config.yaml", ""))
	assert.Equal(t, "/etc/liq.yaml", resolveConfigPath(false, "config.yaml", "/etc/liq.yaml"))
	assert.Equal(t, "mine.yaml", resolveConfigPath(true, "mine.yaml", "/etc/liq.yaml"))
}

func TestErrorMessage(t *testing.T) {
	docErr := fmt.Errorf("%w: broken xref", converter.ErrDocument)

	assert.Equal(t, converter.UserMessage+" (use --verbose for details)", errorMessage(docErr, false))
	assert.Contains(t, errorMessage(docErr, true), "broken xref")
	assert.Equal(t, "disk full", errorMessage(errors.New("disk full"), false))
}

func writeNotPDFs(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(paths[i], []byte("not a pdf"), 0644))
	}
	return paths
}

func TestConvertAll_ContinueOnError(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	files := writeNotPDFs(t, t.TempDir(), "a.pdf", "b.pdf", "c.pdf")

	results := convertAll(files, cfg, logging.Nop())
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, files[i], r.FilePath)
		assert.False(t, r.Success)
		assert.True(t, errors.Is(r.Error, converter.ErrDocument))
	}
}

func TestConvertAll_StopOnError(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.MaxConcurrency = 1
	stop := false
	cfg.ContinueOnError = &stop
	files := writeNotPDFs(t, t.TempDir(), "a.pdf", "b.pdf", "c.pdf")

	results := convertAll(files, cfg, logging.Nop())

	var documentErrors, skipped int
	for _, r := range results {
		switch {
		case errors.Is(r.Error, converter.ErrDocument):
			documentErrors++
		case errors.Is(r.Error, errSkipped):
			skipped++
		}
	}
	assert.Equal(t, 1, documentErrors)
	assert.Equal(t, 2, skipped)
}

func TestRunProcess_WritesLogs(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "output")
	require.NoError(t, os.MkdirAll(cfg.InputDir, 0755))
	writeNotPDFs(t, cfg.InputDir, "roto.pdf")

	require.NoError(t, runProcess(cfg, logging.Nop()))

	summaries, err := filepath.Glob(filepath.Join(cfg.OutputDir, "processing_summary_*.txt"))
	require.NoError(t, err)
	assert.Len(t, summaries, 1)

	errorLogs, err := filepath.Glob(filepath.Join(cfg.OutputDir, "error_log_*.txt"))
	require.NoError(t, err)
	assert.Len(t, errorLogs, 1)
}
