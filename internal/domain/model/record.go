// Package model contains domain models passed between layers.
package model

// Chart types as reported by the prober.
const (
	ChartTypeSD = "SD"
	ChartTypeDX = "DX"
)

// AchievementPerfect is the sentinel achievement the prober reports for a
// perfect play. It is clamped to 100.5 before any rating math.
const AchievementPerfect = 101.0

// LevelLabels maps a level index to the glyph used in queries.
var LevelLabels = []string{"绿", "黄", "红", "紫", "白"} //nolint:gochecknoglobals // fixed vocabulary

// ChartRecord is one player's performance on one chart.
// DS and Ra are the only fields the core ever rewrites (fit recomputation).
type ChartRecord struct {
	Achievements float64 `json:"achievements"`
	DS           float64 `json:"ds"`
	DXScore      int     `json:"dxScore"`
	FC           string  `json:"fc"`
	FS           string  `json:"fs"`
	Level        string  `json:"level"`
	LevelIndex   int     `json:"level_index"`
	LevelLabel   string  `json:"level_label"`
	Ra           int     `json:"ra"`
	Rate         string  `json:"rate"`
	SongID       int     `json:"song_id"`
	Title        string  `json:"title"`
	Type         string  `json:"type"`
}

// PlayerInfo is the account payload returned by the prober.
type PlayerInfo struct {
	Username         string        `json:"username"`
	Rating           int           `json:"rating"`
	AdditionalRating int           `json:"additional_rating"`
	Nickname         string        `json:"nickname"`
	Plate            string        `json:"plate"`
	Records          []ChartRecord `json:"records"`
}

// Clone returns a copy whose Records can be rewritten without touching p.
func (p *PlayerInfo) Clone() *PlayerInfo {
	if p == nil {
		return nil
	}
	out := *p
	out.Records = append([]ChartRecord(nil), p.Records...)
	return &out
}

// Notes holds the note-type counts of one chart. Standard charts have no
// touch column, HasTouch tells the two layouts apart.
type Notes struct {
	Tap      int
	Hold     int
	Slide    int
	Touch    int
	Break    int
	HasTouch bool
}

// Total returns the sum of all note counts.
func (n Notes) Total() int {
	return n.Tap + n.Hold + n.Slide + n.Touch + n.Break
}

// ChartStats carries community statistics for one chart.
type ChartStats struct {
	FitDiff float64
}

// Song is the static catalog entry for one song id.
type Song struct {
	ID     int
	Title  string
	Type   string
	BPM    float64
	Genre  string
	IsNew  bool
	Charts []Notes
	// Stats is indexed like Charts; a nil element means no statistic.
	Stats []*ChartStats
}

// Chart returns the notes of the chart at levelIndex.
func (s *Song) Chart(levelIndex int) (Notes, bool) {
	if levelIndex < 0 || levelIndex >= len(s.Charts) {
		return Notes{}, false
	}
	return s.Charts[levelIndex], true
}

// FitDiff returns the fitted difficulty of the chart at levelIndex, if any.
func (s *Song) FitDiff(levelIndex int) (float64, bool) {
	if levelIndex < 0 || levelIndex >= len(s.Stats) || s.Stats[levelIndex] == nil {
		return 0, false
	}
	return s.Stats[levelIndex].FitDiff, true
}
