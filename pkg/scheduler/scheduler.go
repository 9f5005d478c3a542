// Package scheduler runs periodic content store backups.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Declyn50s/Traine-Savates/pkg/config"
	"github.com/Declyn50s/Traine-Savates/pkg/logger"
	"github.com/Declyn50s/Traine-Savates/pkg/metrics"
)

const (
	backupPrefix = "content-"
	backupSuffix = ".db"
	stampLayout  = "20060102T150405Z"
	// Upper bound for one scheduled backup.
	backupTimeout = 10 * time.Minute
)

// Snapshotter writes a consistent copy of a store to a file.
type Snapshotter interface {
	Backup(ctx context.Context, path string) error
}

type Scheduler struct {
	c      *cron.Cron
	config config.BackupConfig
	db     Snapshotter
	now    func() time.Time
}

func New(cfg config.BackupConfig, db Snapshotter) (*Scheduler, error) {
	s := &Scheduler{
		c:      cron.New(), // standard 5-field spec, runs in server local time
		config: cfg,
		db:     db,
		now:    time.Now,
	}
	_, err := s.c.AddFunc(cfg.CronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
		defer cancel()
		logger.Info("Scheduler tick: running backup job")
		if _, err := s.RunOnce(ctx); err != nil {
			logger.Error("Scheduled backup failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", cfg.CronSpec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	logger.Info("Starting backup scheduler (cron=%s, dir=%s, keep=%d)",
		s.config.CronSpec, s.config.Dir, s.config.Keep)
	s.c.Start()
}

// Stop halts the schedule and waits for a running backup to finish or ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.c.Stop().Done():
	case <-ctx.Done():
		logger.Warn("Backup still running at shutdown")
	}
}

// GetConfig returns the current scheduler configuration
func (s *Scheduler) GetConfig() config.BackupConfig {
	return s.config
}

// RunOnce writes one timestamped backup and prunes old ones.
func (s *Scheduler) RunOnce(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.config.Dir, 0o755); err != nil {
		metrics.Record(metrics.EventBackupFailed)
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	path := filepath.Join(s.config.Dir, backupPrefix+s.now().UTC().Format(stampLayout)+backupSuffix)
	start := time.Now()
	if err := s.db.Backup(ctx, path); err != nil {
		metrics.Record(metrics.EventBackupFailed)
		return "", fmt.Errorf("backup to %s: %w", path, err)
	}
	metrics.Record(metrics.EventBackupWritten)
	logger.Info("Backup written to %s in %s", path, time.Since(start).Round(time.Millisecond))

	removed, err := prune(s.config.Dir, s.config.Keep)
	if err != nil {
		return path, err
	}
	if removed > 0 {
		logger.Debug("Pruned %d old backups", removed)
	}
	return path, nil
}

// prune keeps the newest keep backups in dir. keep <= 0 keeps everything.
func prune(dir string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("list backups: %w", err)
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if !e.IsDir() && strings.HasPrefix(n, backupPrefix) && strings.HasSuffix(n, backupSuffix) {
			names = append(names, n)
		}
	}
	if len(names) <= keep {
		return 0, nil
	}
	// Timestamps sort lexically.
	slices.Sort(names)
	stale := names[:len(names)-keep]
	for _, n := range stale {
		if err := os.Remove(filepath.Join(dir, n)); err != nil {
			return 0, fmt.Errorf("remove old backup: %w", err)
		}
	}
	return len(stale), nil
}
