// Package selection turns a record list and a parsed query into the
// fixed-size best-of buckets the renderer draws.
package selection

import (
	"errors"
	"slices"

	"github.com/okian/maifilter/internal/domain/display"
	"github.com/okian/maifilter/internal/domain/model"
	"github.com/okian/maifilter/internal/domain/query"
	"github.com/okian/maifilter/internal/domain/scoring"
	"github.com/okian/maifilter/internal/domain/types"
)

// Bucket names and capacities.
const (
	BucketOld   = "B35"
	BucketNew   = "B15"
	CapacityOld = 35
	CapacityNew = 15
)

// Sentinel errors.
var (
	ErrNilQuery   = errors.New("selection: nil query")
	ErrNilCatalog = errors.New("selection: nil catalog")
)

type bucketSpec struct {
	name     string
	capacity int
	isNew    bool
}

//nolint:gochecknoglobals // fixed bucket layout
var defaultBuckets = []bucketSpec{
	{name: BucketOld, capacity: CapacityOld, isNew: false},
	{name: BucketNew, capacity: CapacityNew, isNew: true},
}

// Result is the outcome of one selection.
type Result struct {
	Buckets []types.Bucket `json:"buckets"`
	// Rating is the sum of every selected record's rating.
	Rating int `json:"rating"`
	// Misses counts records skipped because their song is not in the catalog.
	Misses int `json:"misses"`
}

// Bucket returns the bucket called name.
func (r *Result) Bucket(name string) (*types.Bucket, bool) {
	for i := range r.Buckets {
		if r.Buckets[i].Name == name {
			return &r.Buckets[i], true
		}
	}
	return nil, false
}

type scored struct {
	rec *model.ChartRecord
	key float64
}

// Select filters, orders and truncates records into the default buckets.
// When q.Fit is set the records are rewritten in place first.
func Select(records []model.ChartRecord, q *query.Query, c model.Catalog) (*Result, error) {
	if q == nil {
		return nil, ErrNilQuery
	}
	if c == nil {
		return nil, ErrNilCatalog
	}
	if q.Fit {
		Fit(records, c)
	}

	res := &Result{Buckets: make([]types.Bucket, 0, len(defaultBuckets))}
	pools := make(map[bool][]scored, 2)
	var all []scored
	for i := range records {
		rec := &records[i]
		song, ok := c.Song(rec.SongID)
		if !ok {
			res.Misses++
			continue
		}
		s := scored{rec: rec, key: q.Comparator.Key(rec, c)}
		all = append(all, s)
		if !q.X50 && q.Match(rec, c) {
			pools[song.IsNew] = append(pools[song.IsNew], s)
		}
	}

	var best *model.ChartRecord
	if q.X50 {
		if top := order(all, q.Comparator); len(top) > 0 {
			best = top[0].rec
		}
	}

	for _, spec := range defaultBuckets {
		b := types.Bucket{Name: spec.name, Capacity: spec.capacity}
		var picked []*model.ChartRecord
		switch {
		case q.X50 && best != nil:
			picked = make([]*model.ChartRecord, spec.capacity)
			for i := range picked {
				picked[i] = best
			}
		case !q.X50:
			for _, s := range truncate(order(pools[spec.isNew], q.Comparator), spec.capacity) {
				picked = append(picked, s.rec)
			}
		}
		b.Entries = make([]types.Entry, len(picked))
		for i, rec := range picked {
			b.Entries[i] = newEntry(i+1, rec, c)
			b.Rating += rec.Ra
		}
		res.Rating += b.Rating
		res.Buckets = append(res.Buckets, b)
	}
	return res, nil
}

// Fit replaces every record's difficulty constant with its chart's fitted
// difficulty and recomputes the rating. Records without a fitted difficulty
// get a rating of 0.
func Fit(records []model.ChartRecord, c model.Catalog) {
	for i := range records {
		rec := &records[i]
		fit, ok := 0.0, false
		if song, found := c.Song(rec.SongID); found {
			fit, ok = song.FitDiff(rec.LevelIndex)
		}
		if !ok {
			rec.Ra = 0
			continue
		}
		rec.DS = fit
		rec.Ra, rec.Rate = scoring.ComputeRa(fit, rec.Achievements)
	}
}

// order returns a stably sorted copy of items.
func order(items []scored, cmp query.Comparator) []scored {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b scored) int {
		return cmp.CompareKeys(a.key, b.key)
	})
	return out
}

func truncate(items []scored, n int) []scored {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func newEntry(rank int, rec *model.ChartRecord, c model.Catalog) types.Entry {
	e := types.Entry{
		Rank:         rank,
		ChartRecord:  *rec,
		ShortTitle:   display.ShortTitle(rec.Title),
		LockDistance: scoring.LockDistance(rec.Achievements),
	}
	if kind, count, err := scoring.Stars(c, rec); err == nil {
		e.StarKind, e.StarCount = kind, count
	}
	if total, err := scoring.TotalDXScore(c, rec); err == nil {
		e.TotalDXScore = total
	}
	return e
}
