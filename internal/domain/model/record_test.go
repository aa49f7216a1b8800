package model_test

import (
	"testing"

	"github.com/seedevk8s/scms-competency/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGradeOf(t *testing.T) {
	Convey("Given the grade bands", t, func() {
		Convey("When mapping scores at the band cutoffs", func() {
			So(model.GradeOf(100), ShouldEqual, "A")
			So(model.GradeOf(90), ShouldEqual, "A")
			So(model.GradeOf(89.9), ShouldEqual, "B")
			So(model.GradeOf(80), ShouldEqual, "B")
			So(model.GradeOf(79.9), ShouldEqual, "C")
			So(model.GradeOf(70), ShouldEqual, "C")
			So(model.GradeOf(69.9), ShouldEqual, "D")
			So(model.GradeOf(60), ShouldEqual, "D")
			So(model.GradeOf(59.9), ShouldEqual, "F")
			So(model.GradeOf(0), ShouldEqual, "F")
		})

		Convey("When mapping every integer score in range", func() {
			Convey("Then every score should land in exactly one band", func() {
				for score := 0; score <= 100; score++ {
					grade := model.GradeOf(float64(score))
					So(grade, ShouldBeIn, []string{"A", "B", "C", "D", "F"})
				}
			})

			Convey("Then a higher score should never get a worse grade", func() {
				order := map[string]int{"A": 5, "B": 4, "C": 3, "D": 2, "F": 1}
				prev := model.GradeOf(0)
				for score := 1; score <= 100; score++ {
					grade := model.GradeOf(float64(score))
					So(order[grade], ShouldBeGreaterThanOrEqualTo, order[prev])
					prev = grade
				}
			})
		})
	})
}

func TestScoreLevelOf(t *testing.T) {
	Convey("Given the display tiers", t, func() {
		Convey("When mapping scores at the tier cutoffs", func() {
			So(model.ScoreLevelOf(100), ShouldEqual, "우수")
			So(model.ScoreLevelOf(80), ShouldEqual, "우수")
			So(model.ScoreLevelOf(79), ShouldEqual, "보통")
			So(model.ScoreLevelOf(60), ShouldEqual, "보통")
			So(model.ScoreLevelOf(59), ShouldEqual, "미흡")
			So(model.ScoreLevelOf(0), ShouldEqual, "미흡")
		})
	})
}

func TestAssessmentRecord(t *testing.T) {
	Convey("Given an assessment record", t, func() {
		Convey("When the score is at the boundaries", func() {
			So(model.AssessmentRecord{Score: 0}.IsValidScore(), ShouldBeTrue)
			So(model.AssessmentRecord{Score: 100}.IsValidScore(), ShouldBeTrue)
			So(model.AssessmentRecord{Score: -1}.IsValidScore(), ShouldBeFalse)
			So(model.AssessmentRecord{Score: 101}.IsValidScore(), ShouldBeFalse)
		})

		Convey("When deriving the grade and level", func() {
			rec := model.AssessmentRecord{Score: 85}
			So(rec.Grade(), ShouldEqual, "B")
			So(rec.ScoreLevel(), ShouldEqual, "우수")
		})
	})
}

func TestProgramCompetencyWeight(t *testing.T) {
	Convey("Given a program-competency weight", t, func() {
		Convey("When the weight is on the 1-10 scale", func() {
			So(model.ProgramCompetencyWeight{Weight: 1}.IsValid(), ShouldBeTrue)
			So(model.ProgramCompetencyWeight{Weight: 10}.IsValid(), ShouldBeTrue)
		})

		Convey("When the weight is off the scale", func() {
			So(model.ProgramCompetencyWeight{Weight: 0}.IsValid(), ShouldBeFalse)
			So(model.ProgramCompetencyWeight{Weight: 11}.IsValid(), ShouldBeFalse)
			So(model.ProgramCompetencyWeight{Weight: -3}.IsValid(), ShouldBeFalse)
		})
	})
}
