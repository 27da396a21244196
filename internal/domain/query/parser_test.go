package query_test

import (
	"errors"
	"testing"

	"github.com/okian/maifilter/internal/domain/model"
	"github.com/okian/maifilter/internal/domain/model/modeltest"
	query "github.com/okian/maifilter/internal/domain/query"
	. "github.com/smartystreets/goconvey/convey"
)

func testCatalog() *modeltest.Catalog {
	return modeltest.NewCatalog(
		modeltest.Song(11, false, "东方Project", model.Notes{Tap: 300, Hold: 40, Slide: 60, Break: 20}),
		modeltest.Song(22, true, "POPSアニメ", model.Notes{Tap: 200, Hold: 50, Slide: 100, Touch: 30, Break: 20, HasTouch: true}),
		modeltest.Song(33, false, "舞萌", model.Notes{Tap: 100}),
	).WithAlias("海底谭", 11).WithAlias("xx", 22, 33)
}

func TestParseDifficulty(t *testing.T) {
	Convey("Given difficulty tokens", t, func() {
		cat := testCatalog()

		Convey("When a plus lower bound meets a decimal upper bound", func() {
			q, err := query.Parse([]string{"diff12+-13.1"}, cat)

			Convey("Then the range should be [12.7, 13.1]", func() {
				So(err, ShouldBeNil)
				So(q.Predicate, ShouldHaveLength, 1)
				f, ok := q.Predicate[0].(query.DifficultyRange)
				So(ok, ShouldBeTrue)
				So(f.HasLower, ShouldBeTrue)
				So(f.HasUpper, ShouldBeTrue)
				So(f.Lower, ShouldAlmostEqual, 12.7, 1e-9)
				So(f.Upper, ShouldAlmostEqual, 13.1, 1e-9)
			})
		})

		Convey("When a bare integer is given", func() {
			q, err := query.Parse([]string{"diff13"}, cat)

			Convey("Then the range should be [13.0, 13.6]", func() {
				So(err, ShouldBeNil)
				f := q.Predicate[0].(query.DifficultyRange)
				So(f.Lower, ShouldAlmostEqual, 13.0, 1e-9)
				So(f.Upper, ShouldAlmostEqual, 13.6, 1e-9)
			})
		})

		Convey("When a plus level is given alone", func() {
			q, err := query.Parse([]string{"ds=12+"}, cat)

			Convey("Then the range should cover 12.7 to 12.9", func() {
				So(err, ShouldBeNil)
				f := q.Predicate[0].(query.DifficultyRange)
				So(f.Lower, ShouldAlmostEqual, 12.7, 1e-9)
				So(f.Upper, ShouldAlmostEqual, 12.9, 1e-9)
			})
		})

		Convey("When one side is open", func() {
			q, err := query.Parse([]string{"ds=12.1~", "DIFF～13"}, cat)

			Convey("Then the missing bound should be unbounded", func() {
				So(err, ShouldBeNil)
				lower := q.Predicate[0].(query.DifficultyRange)
				So(lower.HasLower, ShouldBeTrue)
				So(lower.HasUpper, ShouldBeFalse)
				So(lower.Lower, ShouldAlmostEqual, 12.1, 1e-9)
				upper := q.Predicate[1].(query.DifficultyRange)
				So(upper.HasLower, ShouldBeFalse)
				So(upper.Upper, ShouldAlmostEqual, 13.6, 1e-9)
			})
		})

		Convey("When the difficulty has two decimals", func() {
			_, err := query.Parse([]string{"ds=12.65"}, cat)

			Convey("Then parsing should fail", func() {
				So(errors.Is(err, query.ErrParse), ShouldBeTrue)
			})
		})
	})
}

func TestParseRanges(t *testing.T) {
	Convey("Given level, star and achievement tokens", t, func() {
		cat := testCatalog()

		Convey("When a level glyph range is given", func() {
			q, err := query.Parse([]string{"lv红-紫"}, cat)

			Convey("Then it should map to level indices [2, 3]", func() {
				So(err, ShouldBeNil)
				f := q.Predicate[0].(query.LevelRange)
				So(f.Range, ShouldResemble, query.Between(2, 3))
			})
		})

		Convey("When a star equality is given", func() {
			q, err := query.Parse([]string{"star=1"}, cat)
			So(err, ShouldBeNil)
			So(q.Predicate[0].(query.StarRange).Range, ShouldResemble, query.Between(1, 1))
		})

		Convey("When a star above five is given", func() {
			_, err := query.Parse([]string{"star6"}, cat)
			So(errors.Is(err, query.ErrParse), ShouldBeTrue)
		})

		Convey("When an achievement range is given", func() {
			q, err := query.Parse([]string{"achv99.5-100.4999"}, cat)
			So(err, ShouldBeNil)
			f := q.Predicate[0].(query.AchievementRange)
			So(f.Lower, ShouldEqual, 99.5)
			So(f.Upper, ShouldEqual, 100.4999)
		})
	})
}

func TestParseSets(t *testing.T) {
	Convey("Given category and alias tokens", t, func() {
		cat := testCatalog()

		Convey("When known categories are joined by mixed separators", func() {
			q, err := query.Parse([]string{"cat=anime+touhou，game"}, cat)

			Convey("Then every code should be kept", func() {
				So(err, ShouldBeNil)
				f := q.Predicate[0].(query.CategorySet)
				So(f.Categories, ShouldResemble, []query.Category{
					query.CategoryAnime, query.CategoryTouhou, query.CategoryGame,
				})
			})
		})

		Convey("When a category is unknown", func() {
			_, err := query.Parse([]string{"cat=anime+jazz"}, cat)

			Convey("Then the error should name it", func() {
				var pe *query.ParseError
				So(errors.As(err, &pe), ShouldBeTrue)
				So(pe.Reason, ShouldEqual, query.ReasonUnknownCategory)
				So(pe.Token, ShouldEqual, "jazz")
			})
		})

		Convey("When aliases resolve to several songs", func() {
			q, err := query.Parse([]string{"alias=海底谭+XX"}, cat)

			Convey("Then the group should hold their union", func() {
				So(err, ShouldBeNil)
				So(q.Predicate[0].(query.AliasGroup).IDs(), ShouldResemble, []int{11, 22, 33})
			})
		})

		Convey("When an alias is unknown", func() {
			_, err := query.Parse([]string{"alias=nope"}, cat)

			Convey("Then parsing should fail with the name", func() {
				So(errors.Is(err, query.ErrParse), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "nope")
			})
		})
	})
}

func TestParseFlagsAndErrors(t *testing.T) {
	Convey("Given flag and comparator tokens", t, func() {
		cat := testCatalog()

		Convey("When no tokens are given", func() {
			q, err := query.Parse(nil, cat)

			Convey("Then the query should sort by rating descending", func() {
				So(err, ShouldBeNil)
				So(q.Predicate, ShouldBeEmpty)
				So(q.Comparator, ShouldResemble, query.DefaultComparator())
				So(q.Fit, ShouldBeFalse)
				So(q.X50, ShouldBeFalse)
			})
		})

		Convey("When cmp is repeated", func() {
			q, err := query.Parse([]string{"cmp=achv", "rev", "cmp＝slide/note"}, cat)

			Convey("Then the last comparator should win and rev should stick", func() {
				So(err, ShouldBeNil)
				So(q.Comparator, ShouldResemble, query.Comparator{
					Num: query.AttrSlide, Den: query.AttrNote, Reverse: true,
				})
			})
		})

		Convey("When diff is used as a comparator attribute", func() {
			q, err := query.Parse([]string{"cmpdiff"}, cat)
			So(err, ShouldBeNil)
			So(q.Comparator.Num, ShouldEqual, query.AttrDS)
		})

		Convey("When the comparator attribute is unknown", func() {
			_, err := query.Parse([]string{"cmp=foo"}, cat)
			var pe *query.ParseError
			So(errors.As(err, &pe), ShouldBeTrue)
			So(pe.Reason, ShouldEqual, query.ReasonUnknownComparator)
			So(pe.Token, ShouldEqual, "cmp=foo")
		})

		Convey("When the comparator is empty", func() {
			_, err := query.Parse([]string{"cmp="}, cat)
			var pe *query.ParseError
			So(errors.As(err, &pe), ShouldBeTrue)
			So(pe.Reason, ShouldEqual, query.ReasonUnknownComparator)
			So(pe.Token, ShouldEqual, "cmp=")
			So(err.Error(), ShouldEndWith, ": cmp=")
		})

		Convey("When auxiliary flags are given", func() {
			q, err := query.Parse([]string{"FIT", "x50"}, cat)
			So(err, ShouldBeNil)
			So(q.Fit, ShouldBeTrue)
			So(q.X50, ShouldBeTrue)
		})

		Convey("When an unknown token is given", func() {
			_, err := query.Parse([]string{"diff12", "zzz"}, cat)

			Convey("Then the message should name the token", func() {
				So(errors.Is(err, query.ErrParse), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "unknown argument: zzz")
			})
		})

		Convey("When a query is rendered", func() {
			q, err := query.Parse([]string{"diff13", "lv紫~", "cmp=ra/ds", "rev", "fit"}, cat)
			So(err, ShouldBeNil)
			So(q.String(), ShouldEqual, "diff=13~13.6 lv=3~ cmp=ra/ds rev fit")
		})
	})
}
