package catalog

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/okian/maifilter/internal/domain/model"
)

// Note column counts of the two chart layouts.
const (
	deluxeNoteColumns   = 5
	standardNoteColumns = 4
)

// ParseMusicData reads the prober's music_data list.
func ParseMusicData(data []byte) ([]*model.Song, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidMusicData)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected a list", ErrInvalidMusicData)
	}
	out := make([]*model.Song, 0, int(root.Get("#").Int()))
	var err error
	root.ForEach(func(_, v gjson.Result) bool {
		id := v.Get("id")
		if !id.Exists() {
			err = fmt.Errorf("%w: song without id", ErrInvalidMusicData)
			return false
		}
		info := v.Get("basic_info")
		song := &model.Song{
			ID:    int(id.Int()),
			Title: v.Get("title").String(),
			Type:  v.Get("type").String(),
			BPM:   info.Get("bpm").Float(),
			Genre: info.Get("genre").String(),
			IsNew: info.Get("is_new").Bool(),
		}
		v.Get("charts").ForEach(func(_, c gjson.Result) bool {
			notes, perr := parseNotes(c.Get("notes"))
			if perr != nil {
				err = fmt.Errorf("%w: song %d: %w", ErrInvalidMusicData, song.ID, perr)
				return false
			}
			song.Charts = append(song.Charts, notes)
			return true
		})
		if err != nil {
			return false
		}
		song.Stats = make([]*model.ChartStats, len(song.Charts))
		out = append(out, song)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// parseNotes reads [tap, hold, slide, touch, break] or, for standard charts,
// [tap, hold, slide, break].
func parseNotes(v gjson.Result) (model.Notes, error) {
	arr := v.Array()
	n := func(i int) int { return int(arr[i].Int()) }
	switch len(arr) {
	case deluxeNoteColumns:
		return model.Notes{Tap: n(0), Hold: n(1), Slide: n(2), Touch: n(3), Break: n(4), HasTouch: true}, nil
	case standardNoteColumns:
		return model.Notes{Tap: n(0), Hold: n(1), Slide: n(2), Break: n(3)}, nil
	default:
		return model.Notes{}, fmt.Errorf("unexpected %d note columns", len(arr))
	}
}

// ParseChartStats reads the chart_stats document into fitted difficulties
// keyed by song id. Empty objects mean no statistic for that chart.
func ParseChartStats(data []byte) (map[int][]*model.ChartStats, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidChartStats)
	}
	charts := gjson.GetBytes(data, "charts")
	if !charts.IsObject() {
		return nil, fmt.Errorf("%w: missing charts object", ErrInvalidChartStats)
	}
	out := make(map[int][]*model.ChartStats)
	charts.ForEach(func(k, v gjson.Result) bool {
		id := int(k.Int())
		var stats []*model.ChartStats
		v.ForEach(func(_, s gjson.Result) bool {
			var cs *model.ChartStats
			if fit := s.Get("fit_diff"); fit.Exists() {
				cs = &model.ChartStats{FitDiff: fit.Float()}
			}
			stats = append(stats, cs)
			return true
		})
		out[id] = stats
		return true
	})
	return out, nil
}

// ParseAliases reads the alias table into lower-cased names mapped to song
// ids. Entries look like {"SongID": 11, "Name": "...", "Alias": ["..."]}.
func ParseAliases(data []byte) (map[string][]int, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidAliases)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected a list", ErrInvalidAliases)
	}
	out := make(map[string][]int)
	root.ForEach(func(_, v gjson.Result) bool {
		id := int(v.Get("SongID").Int())
		v.Get("Alias").ForEach(func(_, a gjson.Result) bool {
			addAlias(out, a.String(), id)
			return true
		})
		return true
	})
	return out, nil
}

func addAlias(m map[string][]int, name string, id int) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return
	}
	for _, existing := range m[key] {
		if existing == id {
			return
		}
	}
	m[key] = append(m[key], id)
}
