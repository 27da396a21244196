package catalog

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/maifilter/internal/domain/model"
	"github.com/okian/maifilter/pkg/logger"
	"github.com/okian/maifilter/pkg/metrics"
)

// Store hands out the current catalog snapshot. Load replaces the snapshot
// wholesale; readers holding an older snapshot keep a consistent view.
type Store struct {
	musicDataPath  string
	chartStatsPath string
	aliasPath      string
	logger         logger.Logger

	loadMu  sync.Mutex
	current atomic.Pointer[Snapshot]
	loaded  atomic.Int64 // unix nanos of the last successful load
}

// NewStore creates a store holding an empty snapshot.
func NewStore(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("catalog")
	}
	s.current.Store(NewSnapshot(nil, nil, nil))
	return s
}

// Snapshot returns the active snapshot. Callers should take it once per
// query and use it throughout.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Song implements model.Catalog against the active snapshot.
func (s *Store) Song(id int) (*model.Song, bool) { return s.Snapshot().Song(id) }

// ResolveAlias implements model.Catalog against the active snapshot.
func (s *Store) ResolveAlias(name string) []int { return s.Snapshot().ResolveAlias(name) }

// LoadedAt returns when the active snapshot was loaded, or the zero time.
func (s *Store) LoadedAt() time.Time {
	n := s.loaded.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Load reads the configured files and swaps in a new snapshot. On failure
// the previous snapshot stays active.
func (s *Store) Load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	start := time.Now()
	snap, err := s.read(ctx)
	if err != nil {
		metrics.RecordCatalogReload(metrics.ReloadFailure, time.Since(start), 0, 0)
		s.logger.Error(ctx, "catalog load failed", logger.Error(err))
		return err
	}
	s.current.Store(snap)
	s.loaded.Store(time.Now().UnixNano())
	metrics.RecordCatalogReload(metrics.ReloadSuccess, time.Since(start), snap.Songs(), snap.Aliases())
	s.logger.Info(ctx, "catalog loaded",
		logger.Int("songs", snap.Songs()),
		logger.Int("aliases", snap.Aliases()),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

func (s *Store) read(ctx context.Context) (*Snapshot, error) {
	if s.musicDataPath == "" {
		return nil, ErrNoMusicData
	}
	raw, err := os.ReadFile(s.musicDataPath)
	if err != nil {
		return nil, fmt.Errorf("read music data: %w", err)
	}
	songs, err := ParseMusicData(raw)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var stats map[int][]*model.ChartStats
	if s.chartStatsPath != "" {
		raw, err := os.ReadFile(s.chartStatsPath)
		switch {
		case os.IsNotExist(err):
			s.logger.Warn(ctx, "chart stats missing, fit disabled", logger.String("path", s.chartStatsPath))
		case err != nil:
			return nil, fmt.Errorf("read chart stats: %w", err)
		default:
			if stats, err = ParseChartStats(raw); err != nil {
				return nil, err
			}
		}
	}

	var aliases map[string][]int
	if s.aliasPath != "" {
		raw, err := os.ReadFile(s.aliasPath)
		switch {
		case os.IsNotExist(err):
			s.logger.Warn(ctx, "alias table missing", logger.String("path", s.aliasPath))
		case err != nil:
			return nil, fmt.Errorf("read aliases: %w", err)
		default:
			if aliases, err = ParseAliases(raw); err != nil {
				return nil, err
			}
		}
	}
	return NewSnapshot(songs, stats, aliases), nil
}
