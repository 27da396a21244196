package catalog

import "github.com/okian/maifilter/pkg/logger"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithMusicDataPath sets the music data file. It is required by Load.
func WithMusicDataPath(path string) Option {
	return func(s *Store) {
		s.musicDataPath = path
	}
}

// WithChartStatsPath sets the optional chart statistics file.
func WithChartStatsPath(path string) Option {
	return func(s *Store) {
		s.chartStatsPath = path
	}
}

// WithAliasPath sets the optional alias table file.
func WithAliasPath(path string) Option {
	return func(s *Store) {
		s.aliasPath = path
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
