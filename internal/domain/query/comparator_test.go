package query_test

import (
	"testing"

	"github.com/okian/maifilter/internal/domain/model"
	"github.com/okian/maifilter/internal/domain/model/modeltest"
	query "github.com/okian/maifilter/internal/domain/query"
	. "github.com/smartystreets/goconvey/convey"
)

func TestComparator(t *testing.T) {
	Convey("Given two records on charts with different slide density", t, func() {
		cat := testCatalog()
		a := &model.ChartRecord{SongID: 11, Ra: 250, Achievements: 99.0}  // 60/420
		b := &model.ChartRecord{SongID: 22, Ra: 240, Achievements: 100.2} // 100/400

		Convey("When sorting by slide/note", func() {
			q, err := query.Parse([]string{"cmp=slide/note"}, cat)
			So(err, ShouldBeNil)

			Convey("Then the key should be the manual ratio", func() {
				So(q.Comparator.Key(a, cat), ShouldAlmostEqual, 60.0/420.0, 1e-12)
				So(q.Comparator.Key(b, cat), ShouldAlmostEqual, 100.0/400.0, 1e-12)
			})

			Convey("Then the denser chart should sort first", func() {
				So(q.Comparator.Compare(b, a, cat), ShouldBeLessThan, 0)
				So(q.Comparator.Compare(a, b, cat), ShouldBeGreaterThan, 0)
				So(q.Comparator.Compare(a, a, cat), ShouldEqual, 0)
			})
		})

		Convey("When rev is appended", func() {
			q, err := query.Parse([]string{"cmp=slide/note", "rev"}, cat)
			So(err, ShouldBeNil)

			Convey("Then the order should flip", func() {
				So(q.Comparator.Compare(a, b, cat), ShouldBeLessThan, 0)
			})
		})

		Convey("When the default comparator is used", func() {
			cmp := query.DefaultComparator()

			Convey("Then higher rating should sort first", func() {
				So(cmp.Compare(a, b, cat), ShouldBeLessThan, 0)
			})
		})

		Convey("When the song is missing from the catalog", func() {
			ghost := &model.ChartRecord{SongID: 404, Ra: 100}

			Convey("Then catalog attributes should fall back to zero", func() {
				So(query.AttrBPM.Value(ghost, cat), ShouldEqual, 0.0)
				So(query.AttrNote.Value(ghost, cat), ShouldEqual, 0.0)
				So(query.AttrFit.Value(ghost, cat), ShouldEqual, 0.0)
				So(query.AttrRa.Value(ghost, cat), ShouldEqual, 100.0)
			})

			Convey("Then a zero denominator should be clamped", func() {
				cmp := query.Comparator{Num: query.AttrRa, Den: query.AttrNote}
				So(cmp.Key(ghost, cat), ShouldAlmostEqual, 100/0.0001, 1e-3)
			})
		})

		Convey("When the chart has no touch column", func() {
			So(query.AttrTouch.Value(a, cat), ShouldEqual, 0.0)
			So(query.AttrTouch.Value(b, cat), ShouldEqual, 30.0)
		})

		Convey("When comparing lock distances", func() {
			So(query.AttrSuo.Value(b, cat), ShouldAlmostEqual, -0.2, 1e-9)
			So(query.AttrCun.Value(b, cat), ShouldAlmostEqual, 0.2, 1e-9)
		})
	})
}

// filterCatalog places each song's counted chart at the level index its
// record uses, so star lookups resolve.
func filterCatalog() *modeltest.Catalog {
	small := model.Notes{Tap: 100}
	return modeltest.NewCatalog(
		modeltest.Song(11, false, "东方Project", small, small, small,
			model.Notes{Tap: 300, Hold: 40, Slide: 60, Break: 20}),
		modeltest.Song(22, true, "POPSアニメ", small, small,
			model.Notes{Tap: 200, Hold: 50, Slide: 100, Touch: 30, Break: 20, HasTouch: true}),
	)
}

func TestFilters(t *testing.T) {
	Convey("Given a catalog and records", t, func() {
		cat := filterCatalog()
		touhou := &model.ChartRecord{SongID: 11, DS: 13.2, LevelIndex: 3, Achievements: 100.1, DXScore: 1200}
		anime := &model.ChartRecord{SongID: 22, DS: 12.8, LevelIndex: 2, Achievements: 98.0, DXScore: 1000}
		ghost := &model.ChartRecord{SongID: 404, DS: 13.0, LevelIndex: 3}

		Convey("When filtering by category", func() {
			f := query.CategorySet{Categories: []query.Category{query.CategoryTouhou}}

			Convey("Then only mapped genres should match", func() {
				So(f.Match(touhou, cat), ShouldBeTrue)
				So(f.Match(anime, cat), ShouldBeFalse)
				So(f.Match(ghost, cat), ShouldBeFalse)
			})
		})

		Convey("When filtering by stars", func() {
			// touhou: 1200/1260 = 95.2% -> 4 stars; anime: 1000/1200 = 83.3% -> 0 stars
			f := query.StarRange{Range: query.Between(4, 5)}

			Convey("Then the star count should decide and misses should fail", func() {
				So(f.Match(touhou, cat), ShouldBeTrue)
				So(f.Match(anime, cat), ShouldBeFalse)
				So(f.Match(ghost, cat), ShouldBeFalse)
			})

			Convey("Then a level index without a chart should fail", func() {
				remaster := &model.ChartRecord{SongID: 11, DS: 13.9, LevelIndex: 4, DXScore: 1200}
				So(f.Match(remaster, cat), ShouldBeFalse)
			})
		})

		Convey("When several clauses are combined", func() {
			q, err := query.Parse([]string{"diff13", "lv紫"}, cat)
			So(err, ShouldBeNil)

			Convey("Then every clause should have to pass", func() {
				So(q.Match(touhou, cat), ShouldBeTrue)
				So(q.Match(anime, cat), ShouldBeFalse)
				So(q.Match(ghost, cat), ShouldBeTrue)
			})
		})

		Convey("When the predicate is empty", func() {
			var p query.Predicate
			So(p.Match(ghost, cat), ShouldBeTrue)
		})
	})
}
