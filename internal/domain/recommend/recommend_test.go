package recommend_test

import (
	"context"
	"testing"
	"time"

	repository "github.com/seedevk8s/scms-competency/internal/adapters/repository"
	"github.com/seedevk8s/scms-competency/internal/domain/model"
	recommend "github.com/seedevk8s/scms-competency/internal/domain/recommend"
	. "github.com/smartystreets/goconvey/convey"
)

const student = int64(7)

type fixture struct {
	store   *repository.MemoryAssessmentStore
	catalog *repository.MemoryCatalog
	weights *repository.MemoryWeightStore
	engine  *recommend.Engine
}

func newFixture(opts ...recommend.Option) *fixture {
	f := &fixture{
		store:   repository.NewMemoryAssessmentStore(),
		catalog: repository.NewMemoryCatalog(),
		weights: repository.NewMemoryWeightStore(),
	}
	f.engine = recommend.New(f.store, f.weights, f.catalog, opts...)
	return f
}

func (f *fixture) assess(competencyID int64, name string, score int) {
	_, err := f.store.Append(context.Background(), model.AssessmentRecord{
		StudentID:      student,
		CompetencyID:   competencyID,
		CompetencyName: name,
		Score:          score,
		Date:           time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	So(err, ShouldBeNil)
}

func (f *fixture) weight(programID, competencyID int64, weight int) {
	So(f.weights.Add(context.Background(), model.ProgramCompetencyWeight{
		ProgramID:    programID,
		CompetencyID: competencyID,
		Weight:       weight,
	}), ShouldBeNil)
}

func TestEngineRecommend(t *testing.T) {
	ctx := context.Background()

	Convey("Given a recommendation engine", t, func() {
		Convey("When the student has no assessment data", func() {
			f := newFixture()
			programs, err := f.engine.Recommend(ctx, student, 5)

			Convey("Then the result is an empty list, not an error", func() {
				So(err, ShouldBeNil)
				So(programs, ShouldNotBeNil)
				So(programs, ShouldBeEmpty)
			})
		})

		Convey("When the limit is not positive", func() {
			f := newFixture()
			_, errZero := f.engine.Recommend(ctx, student, 0)
			_, errNeg := f.engine.Recommend(ctx, student, -1)

			Convey("Then the call is rejected", func() {
				So(errZero, ShouldWrap, recommend.ErrInvalidLimit)
				So(errNeg, ShouldWrap, recommend.ErrInvalidLimit)
			})
		})

		Convey("When one weak competency maps to one program", func() {
			f := newFixture()
			f.assess(10, "의사소통", 50)
			f.weight(100, 10, 8)

			programs, err := f.engine.Recommend(ctx, student, 5)

			Convey("Then the score is (100-50)*8/10 = 40 with an improvement reason", func() {
				So(err, ShouldBeNil)
				So(programs, ShouldHaveLength, 1)
				So(programs[0].ProgramID, ShouldEqual, 100)
				So(programs[0].Score, ShouldEqual, 40.0)
				So(programs[0].Reasons, ShouldResemble, []string{"의사소통 향상"})
			})
		})

		Convey("When a program addresses several weaknesses", func() {
			f := newFixture()
			f.assess(10, "의사소통", 50)
			f.assess(20, "문제해결", 60)
			f.weight(100, 10, 8) // (100-50)*8/10 = 40
			f.weight(100, 20, 5) // (100-60)*5/10 = 20

			programs, err := f.engine.Recommend(ctx, student, 5)

			Convey("Then contributions accumulate and both reasons appear", func() {
				So(err, ShouldBeNil)
				So(programs, ShouldHaveLength, 1)
				So(programs[0].Score, ShouldEqual, 60.0)
				So(programs[0].Reasons, ShouldResemble, []string{"의사소통 향상", "문제해결 향상"})
			})
		})

		Convey("When two weaknesses would produce the same reason", func() {
			f := newFixture()
			f.assess(10, "의사소통", 50)
			f.assess(20, "의사소통", 40)
			f.weight(100, 10, 4)
			f.weight(100, 20, 4)

			programs, err := f.engine.Recommend(ctx, student, 5)

			Convey("Then the reason appears only once but both contributions count", func() {
				So(err, ShouldBeNil)
				So(programs[0].Reasons, ShouldResemble, []string{"의사소통 향상"})
				So(programs[0].Score, ShouldEqual, 44.0)
			})
		})

		Convey("When the accumulated contribution exceeds 100", func() {
			f := newFixture()
			f.assess(10, "의사소통", 0)
			f.assess(20, "문제해결", 0)
			f.weight(100, 10, 10) // 100
			f.weight(100, 20, 10) // 100

			programs, err := f.engine.Recommend(ctx, student, 5)

			Convey("Then the visible score clamps to exactly 100", func() {
				So(err, ShouldBeNil)
				So(programs[0].Score, ShouldEqual, 100.0)
			})
		})

		Convey("When several programs compete", func() {
			f := newFixture()
			f.assess(10, "의사소통", 50)
			f.weight(100, 10, 8) // 40
			f.weight(200, 10, 5) // 25

			programs, err := f.engine.Recommend(ctx, student, 5)

			Convey("Then programs are ranked by score descending", func() {
				So(err, ShouldBeNil)
				So(programs, ShouldHaveLength, 2)
				So(programs[0].ProgramID, ShouldEqual, 100)
				So(programs[0].Score, ShouldEqual, 40.0)
				So(programs[1].ProgramID, ShouldEqual, 200)
				So(programs[1].Score, ShouldEqual, 25.0)
			})
		})

		Convey("When two programs tie on score", func() {
			f := newFixture()
			f.assess(10, "의사소통", 50)
			f.weight(200, 10, 6)
			f.weight(100, 10, 6)

			programs, err := f.engine.Recommend(ctx, student, 5)

			Convey("Then the lower program id comes first", func() {
				So(err, ShouldBeNil)
				So(programs[0].ProgramID, ShouldEqual, 100)
				So(programs[1].ProgramID, ShouldEqual, 200)
			})
		})

		Convey("When more programs match than the limit allows", func() {
			f := newFixture()
			f.assess(10, "의사소통", 50)
			f.weight(100, 10, 9)
			f.weight(200, 10, 6)
			f.weight(300, 10, 3)

			programs, err := f.engine.Recommend(ctx, student, 2)

			Convey("Then only the top programs are returned", func() {
				So(err, ShouldBeNil)
				So(programs, ShouldHaveLength, 2)
				So(programs[0].ProgramID, ShouldEqual, 100)
				So(programs[1].ProgramID, ShouldEqual, 200)
			})
		})

		Convey("When every score is at or above the threshold", func() {
			f := newFixture()
			f.assess(10, "의사소통", 95)
			f.assess(20, "문제해결", 90)
			f.assess(30, "전공지식", 85)
			f.assess(40, "실무기술", 80)
			f.weight(100, 10, 5)
			f.weight(200, 40, 5) // 40 is the lowest score

			programs, err := f.engine.Recommend(ctx, student, 5)

			Convey("Then the three lowest scores still drive recommendations", func() {
				So(err, ShouldBeNil)
				// Competency 10 (score 95) is not among the bottom three,
				// so program 100 gets nothing.
				So(programs, ShouldHaveLength, 1)
				So(programs[0].ProgramID, ShouldEqual, 200)
				So(programs[0].Score, ShouldEqual, 10.0)
			})
		})

		Convey("When program metadata is registered", func() {
			f := newFixture()
			So(f.catalog.AddProgram(ctx, model.Program{ID: 100, Title: "글쓰기 워크숍"}), ShouldBeNil)
			f.assess(10, "의사소통", 50)
			f.weight(100, 10, 8)

			programs, err := f.engine.Recommend(ctx, student, 5)

			Convey("Then the title is attached to the recommendation", func() {
				So(err, ShouldBeNil)
				So(programs[0].Title, ShouldEqual, "글쓰기 워크숍")
			})
		})

		Convey("When the weakness threshold is customized", func() {
			f := newFixture(recommend.WithWeakThreshold(90), recommend.WithFallbackCount(1))
			f.assess(10, "의사소통", 85)
			f.weight(100, 10, 4)

			programs, err := f.engine.Recommend(ctx, student, 5)

			Convey("Then 85 now counts as a weakness", func() {
				So(err, ShouldBeNil)
				So(programs, ShouldHaveLength, 1)
				So(programs[0].Score, ShouldEqual, 6.0)
			})
		})
	})
}
