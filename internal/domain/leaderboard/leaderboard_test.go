package leaderboard_test

import (
	"testing"
	"time"

	"github.com/edithlab/growthboard/internal/domain/leaderboard"
	"github.com/edithlab/growthboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func period(year, month, week int) model.RotationPeriod {
	return model.RotationPeriod{Year: year, Month: month, Week: week}
}

func TestSortCycles(t *testing.T) {
	Convey("Given a collection of rotation periods", t, func() {
		cycles := []leaderboard.Cycle{
			{RotationPeriod: period(2023, 12, 5)},
			{RotationPeriod: period(2024, 3, 2)},
			{RotationPeriod: period(2024, 3, 1)},
		}

		Convey("When sorting", func() {
			sorted := leaderboard.SortCycles(cycles)

			Convey("Then periods come back most-recent-first", func() {
				So(sorted[0].RotationPeriod, ShouldResemble, period(2024, 3, 2))
				So(sorted[1].RotationPeriod, ShouldResemble, period(2024, 3, 1))
				So(sorted[2].RotationPeriod, ShouldResemble, period(2023, 12, 5))
			})

			Convey("Then the input order is untouched", func() {
				So(cycles[0].RotationPeriod, ShouldResemble, period(2023, 12, 5))
			})
		})

		Convey("When years tie but months differ", func() {
			sorted := leaderboard.SortCycles([]leaderboard.Cycle{
				{RotationPeriod: period(2024, 1, 4)},
				{RotationPeriod: period(2024, 6, 1)},
			})

			Convey("Then month breaks the tie descending", func() {
				So(sorted[0].Month, ShouldEqual, 6)
			})
		})

		Convey("When sorting the empty collection", func() {
			So(leaderboard.SortCycles(nil), ShouldBeEmpty)
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given submissions with scores", t, func() {
		early := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
		late := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
		subs := []model.Submission{
			{ID: "low", Total: 5, PostedAt: early},
			{ID: "high", Total: 40, PostedAt: late},
			{ID: "tie-late", Total: 20, PostedAt: late},
			{ID: "tie-early", Total: 20, PostedAt: early},
		}

		Convey("When ranking", func() {
			ranked := leaderboard.Rank(subs)

			Convey("Then highest total comes first with 1-based ranks", func() {
				So(ranked[0].ID, ShouldEqual, "high")
				So(ranked[0].Rank, ShouldEqual, 1)
				So(ranked[3].ID, ShouldEqual, "low")
				So(ranked[3].Rank, ShouldEqual, 4)
			})

			Convey("Then equal totals break ties by earliest posted-at", func() {
				So(ranked[1].ID, ShouldEqual, "tie-early")
				So(ranked[2].ID, ShouldEqual, "tie-late")
			})
		})
	})
}
