// Package types contains the renderer-facing result types shared across the
// application
package types

import "github.com/okian/maifilter/internal/domain/model"

// Entry is one card of a bucket: a selected record plus the values the
// renderer draws next to it.
type Entry struct {
	Rank int `json:"rank"`
	model.ChartRecord
	ShortTitle   string  `json:"short_title"`
	StarKind     int     `json:"star_kind"`
	StarCount    int     `json:"star_count"`
	TotalDXScore int     `json:"total_dx_score"`
	LockDistance float64 `json:"lock_distance"`
}

// Bucket is a named, capacity-bounded list of entries.
type Bucket struct {
	Name     string  `json:"name"`
	Capacity int     `json:"capacity"`
	Rating   int     `json:"rating"`
	Entries  []Entry `json:"entries"`
}

// Len returns the number of entries in the bucket.
func (b *Bucket) Len() int { return len(b.Entries) }

// Full reports whether the bucket holds Capacity entries.
func (b *Bucket) Full() bool { return len(b.Entries) >= b.Capacity }
