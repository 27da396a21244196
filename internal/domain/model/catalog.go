package model

import "errors"

// Sentinel errors for catalog lookups.
var (
	ErrSongNotFound  = errors.New("song not found")
	ErrChartNotFound = errors.New("chart not found")
)

// Catalog is the read-only view of the song catalog the core consumes.
// Implementations must be safe for concurrent use and must never change
// a Song after handing it out.
type Catalog interface {
	// Song looks up static metadata for a song id.
	Song(id int) (*Song, bool)
	// ResolveAlias returns every song id known under name, or nil.
	ResolveAlias(name string) []int
}

// ChartOf resolves the song and the notes of the chart a record refers to.
func ChartOf(c Catalog, r *ChartRecord) (*Song, Notes, error) {
	song, ok := c.Song(r.SongID)
	if !ok {
		return nil, Notes{}, ErrSongNotFound
	}
	notes, ok := song.Chart(r.LevelIndex)
	if !ok {
		return song, Notes{}, ErrChartNotFound
	}
	return song, notes, nil
}
