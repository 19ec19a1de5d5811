package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"progressive-quiz/internal/domain"
	"progressive-quiz/internal/report"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := "log:\n  level: error\nstorage:\n  backend: sqlite\n  path: " + filepath.Join(dir, "progress.db") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", cfgPath))
	err := cmd.Execute()
	return out.String(), err
}

func TestPlayCommandsPersistBetweenRuns(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "init", "Ana")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Ana!")

	out, err = run(t, cfg, "question", "beginner", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "[1] int x = 10;")

	out, err = run(t, cfg, "answer", "beginner", "0", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Correct!")

	out, err = run(t, cfg, "answer", "beginner", "1", "0", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Incorrect")

	out, err = run(t, cfg, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Player: Ana")
	assert.Contains(t, out, "2/5")

	_, err = run(t, cfg, "select", "intermediate")
	require.Error(t, err)

	_, err = run(t, cfg, "init", "Bob")
	require.ErrorIs(t, err, domain.ErrProgressExists)
	assert.Contains(t, err.Error(), "quiz reset")

	xlsx := filepath.Join(t.TempDir(), "progress.xlsx")
	_, err = run(t, cfg, "export", "--out", xlsx)
	require.NoError(t, err)
	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	user, err := f.GetCellValue(report.SummarySheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", user)

	_, err = run(t, cfg, "reset")
	require.NoError(t, err)
	_, err = run(t, cfg, "status")
	require.ErrorIs(t, err, domain.ErrNoProgress)

	out, err = run(t, cfg, "init", "Bob")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Bob!")
}

func TestBankValidateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte("levels:\n  beginner: []\n"), 0o644))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"bank", "validate", path})
	assert.Error(t, cmd.Execute())
}
