// Package scheduler provides background maintenance for the script archive.
package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oszuidwest/zwfm-lnkgen/pkg/logger"
)

// Purger deletes archived scripts created before a cutoff.
type Purger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ArchiveCleanupService periodically deletes archived scripts and generated
// script files older than the retention period.
type ArchiveCleanupService struct {
	purger    Purger
	outputDir string
	retention time.Duration
	interval  time.Duration
	now       func() time.Time

	// stopTimeout bounds how long Stop waits for a running cleanup
	stopTimeout time.Duration

	ticker *time.Ticker
	// done is closed by Stop; exited is closed when the loop returns
	done     chan struct{}
	exited   chan struct{}
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewArchiveCleanupService creates the cleanup service. An empty outputDir
// skips the file sweep. The service must be started with Start.
func NewArchiveCleanupService(purger Purger, outputDir string, retention, interval time.Duration) *ArchiveCleanupService {
	return &ArchiveCleanupService{
		purger:    purger,
		outputDir: outputDir,
		retention: retention,
		interval:  interval,
		now:         time.Now,
		stopTimeout: 5 * time.Second,
		done:        make(chan struct{}),
	}
}

// Start runs one cleanup immediately and then one per interval in a
// background goroutine until Stop is called.
func (s *ArchiveCleanupService) Start() {
	logger.Info("Starting archive cleanup service (retention: %s, interval: %s)", s.retention, s.interval)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	s.cleanup(ctx)

	var runCtx context.Context
	runCtx, s.cancel = context.WithCancel(context.Background())
	s.ticker = time.NewTicker(s.interval)
	s.exited = make(chan struct{})

	go func() {
		defer close(s.exited)
		defer s.ticker.Stop()
		for {
			select {
			case <-s.ticker.C:
				func() {
					ctx, cancel := context.WithTimeout(runCtx, 5*time.Minute)
					defer cancel()
					s.cleanup(ctx)
				}()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop gracefully shuts down the cleanup service.
func (s *ArchiveCleanupService) Stop() {
	s.stopOnce.Do(func() {
		logger.Info("Stopping archive cleanup service")
		close(s.done)
		if s.exited == nil {
			return
		}
		s.cancel()
		select {
		case <-s.exited:
		case <-time.After(s.stopTimeout):
			logger.Warn("Archive cleanup still running after %s, leaving it to finish", s.stopTimeout)
		}
	})
}

// cleanup removes expired archive rows and script files.
func (s *ArchiveCleanupService) cleanup(ctx context.Context) {
	cutoff := s.now().Add(-s.retention)

	deleted, err := s.purger.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		logger.Error("Failed to purge archived scripts: %v", err)
	}

	removed, bytesFreed := s.removeExpiredFiles(cutoff)

	if deleted > 0 || removed > 0 {
		logger.Info("Archive cleanup complete: %d records deleted, %d files removed (%.1f KB freed)",
			deleted, removed, float64(bytesFreed)/1024)
	}
}

// removeExpiredFiles deletes generated XML scripts last written before cutoff.
func (s *ArchiveCleanupService) removeExpiredFiles(cutoff time.Time) (int, int64) {
	if s.outputDir == "" {
		return 0, 0
	}

	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		logger.Error("Failed to read output directory %s: %v", s.outputDir, err)
		return 0, 0
	}

	var removed int
	var bytesFreed int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "setup_route") || filepath.Ext(entry.Name()) != ".xml" {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		fullPath := filepath.Join(s.outputDir, entry.Name())
		if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
			logger.Error("Failed to remove script file %s: %v", fullPath, err)
			continue
		}
		removed++
		bytesFreed += info.Size()
	}
	return removed, bytesFreed
}
