// Package catalog loads the song catalog and serves it as immutable
// snapshots.
package catalog

import (
	"strings"

	"github.com/okian/maifilter/internal/domain/model"
)

// Snapshot is one immutable view of the catalog. It is never modified after
// NewSnapshot returns.
type Snapshot struct {
	songs   map[int]*model.Song
	aliases map[string][]int
}

var _ model.Catalog = (*Snapshot)(nil)

// NewSnapshot builds a snapshot from songs, their fitted statistics and the
// alias table. Stats for unknown songs are ignored.
func NewSnapshot(songs []*model.Song, stats map[int][]*model.ChartStats, aliases map[string][]int) *Snapshot {
	s := &Snapshot{
		songs:   make(map[int]*model.Song, len(songs)),
		aliases: make(map[string][]int, len(aliases)),
	}
	for _, in := range songs {
		song := *in
		if st, ok := stats[song.ID]; ok {
			merged := make([]*model.ChartStats, len(song.Charts))
			copy(merged, st)
			song.Stats = merged
		}
		s.songs[song.ID] = &song
	}
	for name, ids := range aliases {
		key := strings.ToLower(name)
		s.aliases[key] = append(s.aliases[key], ids...)
	}
	return s
}

// Song implements model.Catalog.
func (s *Snapshot) Song(id int) (*model.Song, bool) {
	song, ok := s.songs[id]
	return song, ok
}

// ResolveAlias implements model.Catalog. Lookup ignores case.
func (s *Snapshot) ResolveAlias(name string) []int {
	return s.aliases[strings.ToLower(strings.TrimSpace(name))]
}

// Songs returns the number of songs.
func (s *Snapshot) Songs() int { return len(s.songs) }

// Aliases returns the number of alias names.
func (s *Snapshot) Aliases() int { return len(s.aliases) }
