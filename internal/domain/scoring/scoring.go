// Package scoring implements the rating model: achievement bands, DX score
// stars, lock distance and rating breakpoints.
package scoring

import (
	"fmt"
	"math"

	"github.com/okian/maifilter/internal/domain/model"
)

// Scoring constants.
const (
	achievementCap  = 100.5
	breakpointScale = 10000
	breakpointStep  = 0.0001
	dxScorePerNote  = 3
)

//nolint:gochecknoglobals // fixed band tables
var (
	// achievementThresholds are the exclusive upper bounds of every band but the last.
	achievementThresholds = []float64{50, 60, 70, 75, 80, 90, 94, 97, 98, 99, 99.5, 100, 100.5}
	baseRatings           = []float64{7.0, 8.0, 9.6, 11.2, 12.0, 13.6, 15.2, 16.8, 20.0, 20.3, 20.8, 21.1, 21.6, 22.4}
	rankLabels            = []string{"D", "C", "B", "BB", "BBB", "A", "AA", "AAA", "S", "Sp", "SS", "SSp", "SSS", "SSSp"}

	ratingPlateThresholds = []int{1000, 2000, 4000, 7000, 10000, 12000, 13000, 14000, 14500, 15000}
)

// band returns the index of the achievement band a falls into.
func band(a float64) int {
	for i, t := range achievementThresholds {
		if a < t {
			return i
		}
	}
	return len(achievementThresholds)
}

// ComputeRa converts a difficulty constant and achievement into a rating and
// rank label. The result is floored, never rounded.
func ComputeRa(ds, achievement float64) (int, string) {
	i := band(achievement)
	ra := math.Floor(ds * (math.Min(achievementCap, achievement) / 100) * baseRatings[i])
	return int(ra), rankLabels[i]
}

// Rating is ComputeRa without the rank label.
func Rating(ds, achievement float64) int {
	ra, _ := ComputeRa(ds, achievement)
	return ra
}

// DXScoreTier classifies a DX score percentage into (star kind, star count).
// Band edges are inclusive on the upper side.
func DXScoreTier(ratioPercent float64) (kind, count int) {
	switch {
	case ratioPercent <= 85:
		return 0, 0
	case ratioPercent <= 90:
		return 0, 1
	case ratioPercent <= 93:
		return 0, 2
	case ratioPercent <= 95:
		return 1, 3
	case ratioPercent <= 97:
		return 1, 4
	default:
		return 2, 5
	}
}

// TotalDXScore returns the maximum DX score of the record's chart.
func TotalDXScore(c model.Catalog, r *model.ChartRecord) (int, error) {
	_, notes, err := model.ChartOf(c, r)
	if err != nil {
		return 0, fmt.Errorf("total dx score of song %d: %w", r.SongID, err)
	}
	return notes.Total() * dxScorePerNote, nil
}

// DXRatio returns the achieved share of the chart's maximum DX score.
// Charts without notes yield 0.
func DXRatio(c model.Catalog, r *model.ChartRecord) (float64, error) {
	total, err := TotalDXScore(c, r)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	return float64(r.DXScore) / float64(total), nil
}

// Stars returns the star kind and count of a record.
func Stars(c model.Catalog, r *model.ChartRecord) (kind, count int, err error) {
	ratio, err := DXRatio(c, r)
	if err != nil {
		return 0, 0, err
	}
	kind, count = DXScoreTier(ratio * 100)
	return kind, count, nil
}

// LockDistance returns goal - achievement, where the goal is the nearest
// milestone at or below the achievement for its band. The perfect sentinel
// maps to 100.5.
func LockDistance(achievement float64) float64 {
	var goal float64
	switch {
	case achievement == model.AchievementPerfect:
		goal = achievementCap
	case achievement >= 97:
		goal = math.Floor(achievement*2) / 2
	case achievement >= 95:
		goal = math.Floor(achievement)
	default:
		goal = math.Floor(achievement/2) * 2
	}
	return goal - achievement
}

// NextBreakpoints lists, in increasing order, every achievement at which the
// rating of a chart with difficulty ds goes up. The list always starts with
// the first canonical threshold and ends with 100.5.
func NextBreakpoints(ds float64) []float64 {
	out := make([]float64, 0, len(achievementThresholds)*2)
	last := len(achievementThresholds) - 1
	for i := 0; i < last; i++ {
		acc, next := achievementThresholds[i], achievementThresholds[i+1]
		out = append(out, acc)
		if ds <= 0 {
			continue
		}
		base := baseRatings[i+1]
		c := stepUp(ds, acc, base)
		for c < next {
			out = append(out, c)
			c = stepUp(ds, c+breakpointStep, base)
		}
	}
	return append(out, achievementThresholds[last])
}

// stepUp returns the smallest 4-decimal achievement that lifts the rating at
// acc by one point under the given base multiplier.
func stepUp(ds, acc, base float64) float64 {
	c := float64(Rating(ds, acc)+1) / ds / base * 100
	return math.Ceil(c*breakpointScale) / breakpointScale
}

// Breakpoint is one achievement step with the rating it yields.
type Breakpoint struct {
	Achievement float64 `json:"achievement"`
	Rating      int     `json:"rating"`
	Rank        string  `json:"rank"`
}

// Breakpoints pairs NextBreakpoints with the rating each step yields.
func Breakpoints(ds float64) []Breakpoint {
	accs := NextBreakpoints(ds)
	out := make([]Breakpoint, len(accs))
	for i, a := range accs {
		ra, rank := ComputeRa(ds, a)
		out[i] = Breakpoint{Achievement: a, Rating: ra, Rank: rank}
	}
	return out
}

// RatingPlate returns the 1-based rating frame tier for a total rating.
func RatingPlate(total int) int {
	for i, t := range ratingPlateThresholds {
		if total < t {
			return i + 1
		}
	}
	return len(ratingPlateThresholds) + 1
}

// DaniPlate returns the course plate index for an additional rating. The
// asset numbering skips one slot after 10.
func DaniPlate(additional int) int {
	if additional <= 10 {
		return additional
	}
	return additional + 1
}
