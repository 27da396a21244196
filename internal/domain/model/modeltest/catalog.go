// Package modeltest provides an in-memory catalog for tests.
package modeltest

import (
	"strings"

	"github.com/okian/maifilter/internal/domain/model"
)

// Catalog is a map-backed model.Catalog.
type Catalog struct {
	Songs   map[int]*model.Song
	Aliases map[string][]int
}

var _ model.Catalog = (*Catalog)(nil)

// NewCatalog builds a catalog holding songs.
func NewCatalog(songs ...*model.Song) *Catalog {
	c := &Catalog{
		Songs:   make(map[int]*model.Song, len(songs)),
		Aliases: make(map[string][]int),
	}
	for _, s := range songs {
		c.Songs[s.ID] = s
	}
	return c
}

// WithAlias registers name for ids and returns c.
func (c *Catalog) WithAlias(name string, ids ...int) *Catalog {
	key := strings.ToLower(name)
	c.Aliases[key] = append(c.Aliases[key], ids...)
	return c
}

// Song implements model.Catalog.
func (c *Catalog) Song(id int) (*model.Song, bool) {
	s, ok := c.Songs[id]
	return s, ok
}

// ResolveAlias implements model.Catalog.
func (c *Catalog) ResolveAlias(name string) []int {
	return c.Aliases[strings.ToLower(name)]
}

// Song builds a catalog song with one chart per notes value.
func Song(id int, isNew bool, genre string, charts ...model.Notes) *model.Song {
	return &model.Song{
		ID:     id,
		Type:   model.ChartTypeDX,
		BPM:    150,
		Genre:  genre,
		IsNew:  isNew,
		Charts: charts,
		Stats:  make([]*model.ChartStats, len(charts)),
	}
}
