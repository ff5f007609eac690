package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/juniorseniors/users-api/internal/api/metrics"
)

const defaultSweepMaxAge = time.Hour

// Sweeper periodically deletes staged files older than maxAge. Requests
// normally clean up after themselves; this catches crashes mid-upload.
type Sweeper struct {
	dir    string
	maxAge time.Duration
	cron   *cron.Cron
	log    zerolog.Logger
	now    func() time.Time
}

func NewSweeper(dir string, maxAge time.Duration, log zerolog.Logger) *Sweeper {
	if maxAge <= 0 {
		maxAge = defaultSweepMaxAge
	}
	return &Sweeper{
		dir:    dir,
		maxAge: maxAge,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:    log.With().Str("job", "upload_sweeper").Logger(),
		now:    time.Now,
	}
}

// Start schedules Sweep with a standard five-field cron spec.
func (s *Sweeper) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return fmt.Errorf("upload: schedule sweeper %q: %w", spec, err)
	}
	s.cron.Start()
	s.log.Info().Str("spec", spec).Dur("max_age", s.maxAge).Msg("sweeper scheduled")
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) run() {
	removed, err := s.Sweep()
	if err != nil {
		s.log.Error().Err(err).Msg("sweep failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("stale uploads removed")
	}
}

// Sweep removes regular files in the staging dir last modified before the
// cutoff and reports how many were removed.
func (s *Sweeper) Sweep() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("upload: read %s: %w", s.dir, err)
	}

	cutoff := s.now().Add(-s.maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", path).Msg("failed to remove stale upload")
			continue
		}
		removed++
	}

	metrics.StagedFilesSweptTotal.Add(float64(removed))
	return removed, nil
}
