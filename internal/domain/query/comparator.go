package query

import (
	"math"

	"github.com/okian/maifilter/internal/domain/model"
	"github.com/okian/maifilter/internal/domain/scoring"
)

// minDenominator keeps ratio keys finite.
const minDenominator = 0.0001

// Attr is a record or song attribute a comparator can sort by.
type Attr int

// Comparator attributes.
const (
	AttrOne Attr = iota
	AttrRa
	AttrAchv
	AttrDXS
	AttrCun
	AttrSuo
	AttrID
	AttrBPM
	AttrDS
	AttrFit
	AttrTap
	AttrHold
	AttrSlide
	AttrTouch
	AttrBreak
	AttrNote
)

type attrSpec struct {
	name    string
	extract func(r *model.ChartRecord, c model.Catalog) float64
}

//nolint:gochecknoglobals // attribute table
var (
	attrTable = [...]attrSpec{
		AttrOne:   {"1", func(*model.ChartRecord, model.Catalog) float64 { return 1 }},
		AttrRa:    {"ra", func(r *model.ChartRecord, _ model.Catalog) float64 { return float64(r.Ra) }},
		AttrAchv:  {"achv", func(r *model.ChartRecord, _ model.Catalog) float64 { return r.Achievements }},
		AttrDXS:   {"dxs", dxsOf},
		AttrCun:   {"cun", func(r *model.ChartRecord, _ model.Catalog) float64 { return -scoring.LockDistance(r.Achievements) }},
		AttrSuo:   {"suo", func(r *model.ChartRecord, _ model.Catalog) float64 { return scoring.LockDistance(r.Achievements) }},
		AttrID:    {"id", func(r *model.ChartRecord, _ model.Catalog) float64 { return float64(r.SongID) }},
		AttrBPM:   {"bpm", bpmOf},
		AttrDS:    {"ds", func(r *model.ChartRecord, _ model.Catalog) float64 { return r.DS }},
		AttrFit:   {"fit", fitOf},
		AttrTap:   {"tap", notesOf(func(n model.Notes) int { return n.Tap })},
		AttrHold:  {"hold", notesOf(func(n model.Notes) int { return n.Hold })},
		AttrSlide: {"slide", notesOf(func(n model.Notes) int { return n.Slide })},
		AttrTouch: {"touch", notesOf(func(n model.Notes) int { return n.Touch })},
		AttrBreak: {"break", notesOf(func(n model.Notes) int { return n.Break })},
		AttrNote:  {"note", notesOf(model.Notes.Total)},
	}

	attrNames = func() map[string]Attr {
		m := make(map[string]Attr, len(attrTable)+1)
		for a, spec := range attrTable {
			m[spec.name] = Attr(a)
		}
		m["diff"] = AttrDS
		return m
	}()
)

// ParseAttr resolves an attribute name. diff and ds are synonyms.
func ParseAttr(name string) (Attr, bool) {
	a, ok := attrNames[name]
	return a, ok
}

func (a Attr) String() string {
	if a < 0 || int(a) >= len(attrTable) {
		return "unknown"
	}
	return attrTable[a].name
}

// Value extracts the attribute from r. Attributes that need catalog data
// yield 0 when the song or chart cannot be resolved.
func (a Attr) Value(r *model.ChartRecord, c model.Catalog) float64 {
	if a < 0 || int(a) >= len(attrTable) {
		return 0
	}
	return attrTable[a].extract(r, c)
}

func dxsOf(r *model.ChartRecord, c model.Catalog) float64 {
	ratio, err := scoring.DXRatio(c, r)
	if err != nil {
		return 0
	}
	return ratio
}

func bpmOf(r *model.ChartRecord, c model.Catalog) float64 {
	song, ok := c.Song(r.SongID)
	if !ok {
		return 0
	}
	return song.BPM
}

func fitOf(r *model.ChartRecord, c model.Catalog) float64 {
	song, ok := c.Song(r.SongID)
	if !ok {
		return 0
	}
	fit, ok := song.FitDiff(r.LevelIndex)
	if !ok {
		return 0
	}
	return fit - r.DS
}

func notesOf(pick func(model.Notes) int) func(*model.ChartRecord, model.Catalog) float64 {
	return func(r *model.ChartRecord, c model.Catalog) float64 {
		_, notes, err := model.ChartOf(c, r)
		if err != nil {
			return 0
		}
		return float64(pick(notes))
	}
}

// Comparator orders records by Num / max(Den, 0.0001). Higher keys sort
// first unless Reverse is set.
type Comparator struct {
	Num     Attr
	Den     Attr
	Reverse bool
}

// DefaultComparator sorts by rating, highest first.
func DefaultComparator() Comparator {
	return Comparator{Num: AttrRa, Den: AttrOne}
}

// Key returns the sort key of r.
func (cmp Comparator) Key(r *model.ChartRecord, c model.Catalog) float64 {
	return cmp.Num.Value(r, c) / math.Max(cmp.Den.Value(r, c), minDenominator)
}

// Compare returns a negative number when a sorts before b, a positive one
// when b sorts first and 0 when they are equal.
func (cmp Comparator) Compare(a, b *model.ChartRecord, c model.Catalog) int {
	return cmp.CompareKeys(cmp.Key(a, c), cmp.Key(b, c))
}

// CompareKeys orders two precomputed keys the way Compare orders records.
func (cmp Comparator) CompareKeys(ka, kb float64) int {
	var res int
	switch {
	case ka > kb:
		res = -1
	case ka < kb:
		res = 1
	}
	if cmp.Reverse {
		res = -res
	}
	return res
}

func (cmp Comparator) String() string {
	s := "cmp=" + cmp.Num.String()
	if cmp.Den != AttrOne {
		s += "/" + cmp.Den.String()
	}
	if cmp.Reverse {
		s += " rev"
	}
	return s
}
