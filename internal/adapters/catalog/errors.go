package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrInvalidMusicData  = errors.New("invalid music data")
	ErrInvalidChartStats = errors.New("invalid chart stats")
	ErrInvalidAliases    = errors.New("invalid alias table")
	ErrNoMusicData       = errors.New("music data path not configured")
)
