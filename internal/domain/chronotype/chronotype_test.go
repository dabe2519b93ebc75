package chronotype_test

import (
	"testing"

	"github.com/okian/rhythm/internal/domain/chronotype"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given phases across the day", t, func() {
		Convey("Band edges follow 10, 14 and 18", func() {
			So(chronotype.Classify(9.99).Chronotype, ShouldEqual, chronotype.Lion)
			So(chronotype.Classify(10).Chronotype, ShouldEqual, chronotype.Bear)
			So(chronotype.Classify(13.9).Chronotype, ShouldEqual, chronotype.Bear)
			So(chronotype.Classify(14).Chronotype, ShouldEqual, chronotype.Wolf)
			So(chronotype.Classify(18).Chronotype, ShouldEqual, chronotype.Dolphin)
			So(chronotype.Classify(23.9).Chronotype, ShouldEqual, chronotype.Dolphin)
			So(chronotype.Classify(0.5).Chronotype, ShouldEqual, chronotype.Lion)
		})

		Convey("A phase at an archetype center is fully in sync", func() {
			So(chronotype.Classify(7).OutOfSync, ShouldEqual, 0)
			So(chronotype.Classify(12).OutOfSync, ShouldEqual, 0)
			So(chronotype.Classify(16).OutOfSync, ShouldEqual, 0)
			So(chronotype.Classify(21).OutOfSync, ShouldEqual, 0)
		})

		Convey("Severity grows with distance and is clamped", func() {
			So(chronotype.Classify(7.5).OutOfSync, ShouldEqual, 8)
			So(chronotype.Classify(9).OutOfSync, ShouldEqual, 30)
			So(chronotype.Classify(0.5).OutOfSync, ShouldEqual, 98)
			So(chronotype.Classify(0).OutOfSync, ShouldEqual, 100)
		})

		Convey("Phases outside [0,24) are wrapped first", func() {
			So(chronotype.Classify(31).Chronotype, ShouldEqual, chronotype.Lion)
			So(chronotype.Classify(-3).Chronotype, ShouldEqual, chronotype.Dolphin)
		})

		Convey("Every phase has a severity in [0,100]", func() {
			for h := 0.0; h < 24; h += 0.1 {
				r := chronotype.Classify(h)
				So(r.OutOfSync, ShouldBeBetweenOrEqual, 0, 100)
			}
		})
	})
}
