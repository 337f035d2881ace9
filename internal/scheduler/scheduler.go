// Package scheduler runs the periodic vocabulary backup while the web server is up.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/logger"
)

const (
	backupPrefix = "backup-"
	backupExt    = ".jsonl"
	stampLayout  = "20060102T150405.000Z"
)

// BackupFunc writes a full export to path.
type BackupFunc func(ctx context.Context, path string) error

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	log       *logger.Logger
	backup    BackupFunc
	dir       string
	cfg       config.BackupConfig
	now       func() time.Time
}

// New creates a scheduler that writes backups into dir.
func New(log *logger.Logger, backup BackupFunc, dir string, cfg config.BackupConfig) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		log:       log,
		backup:    backup,
		dir:       dir,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Start schedules the backup job and runs the scheduler in the background.
// A zero interval leaves the scheduler idle.
func (s *Scheduler) Start() error {
	if s.cfg.IntervalHours <= 0 {
		s.log.Info("backup job disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.cfg.IntervalHours).Hours().WaitForSchedule().Do(s.runBackup)
	if err != nil {
		return fmt.Errorf("schedule backup: %w", err)
	}

	s.scheduler.StartAsync()
	s.log.Info("backup job scheduled", "interval_hours", s.cfg.IntervalHours, "keep", s.cfg.Keep, "dir", s.dir)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Jobs returns the number of scheduled jobs.
func (s *Scheduler) Jobs() int {
	return s.scheduler.Len()
}

func (s *Scheduler) runBackup() {
	path, err := s.RunNow(context.Background())
	if err != nil {
		s.log.Error("backup failed", "error", err)
		return
	}
	s.log.Info("backup written", "path", path)
}

// RunNow writes one backup and prunes old ones. It returns the new file's path.
func (s *Scheduler) RunNow(ctx context.Context) (string, error) {
	path := filepath.Join(s.dir, backupPrefix+s.now().UTC().Format(stampLayout)+backupExt)
	if err := s.backup(ctx, path); err != nil {
		return "", err
	}

	removed, err := Prune(s.dir, s.cfg.Keep)
	if err != nil {
		s.log.Warn("backup prune failed", "error", err)
	}
	for _, p := range removed {
		s.log.Debug("backup removed", "path", p)
	}
	return path, nil
}

// Prune deletes all but the newest keep backups in dir and returns the removed paths.
// keep <= 0 keeps everything.
func Prune(dir string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range dirEntries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, backupExt) {
			names = append(names, name)
		}
	}
	if len(names) <= keep {
		return nil, nil
	}

	// Timestamps are fixed-width, so name order is age order.
	sort.Strings(names)

	var removed []string
	for _, name := range names[:len(names)-keep] {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			return removed, err
		}
		removed = append(removed, path)
	}
	return removed, nil
}
