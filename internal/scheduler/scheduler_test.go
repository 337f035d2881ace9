package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/logger"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}\n"), 0600))
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "backup-20260101T000000.000Z.jsonl")
	writeFile(t, dir, "backup-20260103T000000.000Z.jsonl")
	writeFile(t, dir, "backup-20260102T000000.000Z.jsonl")
	writeFile(t, dir, "words.jsonl")
	writeFile(t, dir, "backup-notes.txt")

	removed, err := Prune(dir, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "backup-20260101T000000.000Z.jsonl")}, removed)

	left, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range left {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{
		"backup-20260102T000000.000Z.jsonl",
		"backup-20260103T000000.000Z.jsonl",
		"words.jsonl",
		"backup-notes.txt",
	}, names)
}

func TestPrune_KeepAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "backup-20260101T000000.000Z.jsonl")

	removed, err := Prune(dir, 0)
	require.NoError(t, err)
	assert.Empty(t, removed)

	removed, err = Prune(dir, 5)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestRunNow(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "backup-20200101T000000.000Z.jsonl")

	var got []string
	backup := func(ctx context.Context, path string) error {
		got = append(got, path)
		return os.WriteFile(path, []byte("{}\n"), 0600)
	}

	s := New(logger.NewNop(), backup, dir, config.BackupConfig{IntervalHours: 24, Keep: 1})
	s.now = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }

	path, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backup-20261019T083000.000Z.jsonl"), path)
	assert.Equal(t, []string{path}, got)

	assert.FileExists(t, path)
	assert.NoFileExists(t, filepath.Join(dir, "backup-20200101T000000.000Z.jsonl"))
}

func TestRunNow_BackupError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "backup-20200101T000000.000Z.jsonl")

	s := New(logger.NewNop(), func(context.Context, string) error {
		return errors.New("disk full")
	}, dir, config.BackupConfig{IntervalHours: 24, Keep: 1})

	_, err := s.RunNow(context.Background())
	assert.EqualError(t, err, "disk full")
	// Nothing is pruned when the backup did not happen.
	assert.FileExists(t, filepath.Join(dir, "backup-20200101T000000.000Z.jsonl"))
}

func TestStart(t *testing.T) {
	noop := func(context.Context, string) error { return nil }

	t.Run("disabled", func(t *testing.T) {
		s := New(logger.NewNop(), noop, t.TempDir(), config.BackupConfig{})
		require.NoError(t, s.Start())
		assert.Equal(t, 0, s.Jobs())
		s.Stop()
	})

	t.Run("scheduled", func(t *testing.T) {
		s := New(logger.NewNop(), noop, t.TempDir(), config.BackupConfig{IntervalHours: 6, Keep: 3})
		require.NoError(t, s.Start())
		assert.Equal(t, 1, s.Jobs())
		s.Stop()
	})
}
