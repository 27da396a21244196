package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/maifilter/internal/domain/model"
	types "github.com/okian/maifilter/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntry(t *testing.T) {
	Convey("Given an Entry wrapping a record", t, func() {
		entry := types.Entry{
			Rank:        1,
			ChartRecord: model.ChartRecord{SongID: 11, Title: "海底谭", Ra: 300, DS: 13.9},
			ShortTitle:  "海底谭",
			StarCount:   4,
		}

		Convey("When encoding it as JSON", func() {
			raw, err := json.Marshal(entry)
			So(err, ShouldBeNil)

			var out map[string]any
			So(json.Unmarshal(raw, &out), ShouldBeNil)

			Convey("Then record fields should be flattened next to the card fields", func() {
				So(out["rank"], ShouldEqual, 1.0)
				So(out["song_id"], ShouldEqual, 11.0)
				So(out["ra"], ShouldEqual, 300.0)
				So(out["star_count"], ShouldEqual, 4.0)
				So(out["short_title"], ShouldEqual, "海底谭")
			})
		})
	})
}

func TestBucket(t *testing.T) {
	Convey("Given a bucket with capacity 2", t, func() {
		b := &types.Bucket{Name: "B15", Capacity: 2}

		Convey("When it is empty", func() {
			So(b.Len(), ShouldEqual, 0)
			So(b.Full(), ShouldBeFalse)
		})

		Convey("When it holds two entries", func() {
			b.Entries = append(b.Entries, types.Entry{Rank: 1}, types.Entry{Rank: 2})
			So(b.Len(), ShouldEqual, 2)
			So(b.Full(), ShouldBeTrue)
		})
	})
}
