package query

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/maifilter/internal/domain/model"
	"github.com/okian/maifilter/internal/domain/scoring"
)

// Filter is one clause of a query predicate. The set of implementations is
// closed: DifficultyRange, StarRange, AchievementRange, LevelRange,
// CategorySet and AliasGroup.
type Filter interface {
	// Match reports whether r passes the clause. It never mutates r.
	Match(r *model.ChartRecord, c model.Catalog) bool
	String() string
	filter()
}

// Range is an inclusive interval; a missing bound is unbounded.
type Range[T cmp.Ordered] struct {
	Lower    T
	Upper    T
	HasLower bool
	HasUpper bool
}

// Between returns the closed range [lower, upper].
func Between[T cmp.Ordered](lower, upper T) Range[T] {
	return Range[T]{Lower: lower, Upper: upper, HasLower: true, HasUpper: true}
}

// Contains reports whether v lies inside the range.
func (r Range[T]) Contains(v T) bool {
	if r.HasLower && v < r.Lower {
		return false
	}
	if r.HasUpper && v > r.Upper {
		return false
	}
	return true
}

func (r Range[T]) format(name string) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('=')
	if r.HasLower {
		fmt.Fprint(&b, r.Lower)
	}
	b.WriteByte('~')
	if r.HasUpper {
		fmt.Fprint(&b, r.Upper)
	}
	return b.String()
}

// DifficultyRange keeps records whose difficulty constant is in range.
type DifficultyRange struct{ Range[float64] }

func (f DifficultyRange) Match(r *model.ChartRecord, _ model.Catalog) bool {
	return f.Contains(r.DS)
}

func (f DifficultyRange) String() string { return f.format("diff") }
func (DifficultyRange) filter()          {}

// StarRange keeps records whose DX score star count is in range. Records
// whose chart cannot be resolved never match.
type StarRange struct{ Range[int] }

func (f StarRange) Match(r *model.ChartRecord, c model.Catalog) bool {
	_, stars, err := scoring.Stars(c, r)
	if err != nil {
		return false
	}
	return f.Contains(stars)
}

func (f StarRange) String() string { return f.format("star") }
func (StarRange) filter()          {}

// AchievementRange keeps records whose achievement is in range.
type AchievementRange struct{ Range[float64] }

func (f AchievementRange) Match(r *model.ChartRecord, _ model.Catalog) bool {
	return f.Contains(r.Achievements)
}

func (f AchievementRange) String() string { return f.format("achv") }
func (AchievementRange) filter()          {}

// LevelRange keeps records whose level index is in range.
type LevelRange struct{ Range[int] }

func (f LevelRange) Match(r *model.ChartRecord, _ model.Catalog) bool {
	return f.Contains(r.LevelIndex)
}

func (f LevelRange) String() string { return f.format("lv") }
func (LevelRange) filter()          {}

// CategorySet keeps records whose song genre maps to one of the categories.
type CategorySet struct {
	Categories []Category
}

func (f CategorySet) Match(r *model.ChartRecord, c model.Catalog) bool {
	song, ok := c.Song(r.SongID)
	if !ok {
		return false
	}
	cat, ok := CategoryOf(song.Genre)
	if !ok {
		return false
	}
	return slices.Contains(f.Categories, cat)
}

func (f CategorySet) String() string {
	parts := make([]string, len(f.Categories))
	for i, c := range f.Categories {
		parts[i] = string(c)
	}
	return "cat=" + strings.Join(parts, "+")
}

func (CategorySet) filter() {}

// AliasGroup keeps records of the songs an alias list resolved to.
type AliasGroup struct {
	ids map[int]struct{}
}

// NewAliasGroup builds a membership filter over ids.
func NewAliasGroup(ids ...int) AliasGroup {
	g := AliasGroup{ids: make(map[int]struct{}, len(ids))}
	for _, id := range ids {
		g.ids[id] = struct{}{}
	}
	return g
}

// IDs returns the member song ids in ascending order.
func (f AliasGroup) IDs() []int {
	out := make([]int, 0, len(f.ids))
	for id := range f.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (f AliasGroup) Match(r *model.ChartRecord, _ model.Catalog) bool {
	_, ok := f.ids[r.SongID]
	return ok
}

func (f AliasGroup) String() string {
	ids := f.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return "alias=" + strings.Join(parts, "+")
}

func (AliasGroup) filter() {}

// Predicate is the conjunction of its filters. The empty predicate matches
// every record.
type Predicate []Filter

// Match reports whether r passes every filter.
func (p Predicate) Match(r *model.ChartRecord, c model.Catalog) bool {
	for _, f := range p {
		if !f.Match(r, c) {
			return false
		}
	}
	return true
}
