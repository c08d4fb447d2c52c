package maintenance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"smart-certify/certify-backend/internal/certificates"
)

// Sweeper removes temp files left in the certificates directory by renders
// that died before publishing.
type Sweeper struct {
	dir    string
	maxAge time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewSweeper creates a sweeper for dir. Temp files younger than maxAge may
// belong to a render still in progress and are left alone.
func NewSweeper(dir string, maxAge time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{dir: dir, maxAge: maxAge, logger: logger, now: time.Now}
}

// Sweep deletes stale temp files and returns how many were removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	cutoff := s.now().Add(-s.maxAge)
	removed := 0
	var errs []error
	for _, entry := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, ".") || !strings.HasSuffix(name, certificates.TempSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("Removed stale certificate temp files", zap.Int("count", removed))
	}
	return removed, errors.Join(errs...)
}
