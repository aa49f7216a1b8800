package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	api "github.com/seedevk8s/scms-competency/internal/adapters/http/api"
	"github.com/seedevk8s/scms-competency/internal/adapters/repository"
	"github.com/seedevk8s/scms-competency/internal/domain/assessment"
	"github.com/seedevk8s/scms-competency/internal/domain/model"
	"github.com/seedevk8s/scms-competency/internal/domain/recommend"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeService implements api.Dependencies backed by maps and flags the
// tests can poke.
type fakeService struct {
	records     []model.AssessmentRecord
	recordErr   error
	seen        map[string]bool
	enqueued    []model.Submission
	queueFull   bool
	latest      []model.AssessmentRecord
	history     []model.AssessmentRecord
	report      model.CompetencyReport
	reportErr   error
	recommended []model.RecommendedProgram
	stats       model.CompetencyStatistics
	statsErr    error
	catalogErr  error
}

func newFakeService() *fakeService {
	return &fakeService{seen: make(map[string]bool)}
}

func (f *fakeService) RecordAssessment(ctx context.Context, params assessment.RecordParams) (model.AssessmentRecord, error) {
	if f.recordErr != nil {
		return model.AssessmentRecord{}, f.recordErr
	}
	rec := model.AssessmentRecord{
		ID:           "rec-1",
		StudentID:    params.StudentID,
		CompetencyID: params.CompetencyID,
		Score:        params.Score,
		Date:         params.Date,
	}
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeService) SeenAndRecord(ctx context.Context, id string) bool {
	if f.seen[id] {
		return true
	}
	f.seen[id] = true
	return false
}

func (f *fakeService) Unrecord(ctx context.Context, id string) {
	delete(f.seen, id)
}

func (f *fakeService) Enqueue(ctx context.Context, sub model.Submission) bool {
	if f.queueFull {
		return false
	}
	f.enqueued = append(f.enqueued, sub)
	return true
}

func (f *fakeService) Latest(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error) {
	return f.latest, nil
}

func (f *fakeService) History(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error) {
	return f.history, nil
}

func (f *fakeService) Report(ctx context.Context, studentID int64) (model.CompetencyReport, error) {
	if f.reportErr != nil {
		return model.CompetencyReport{}, f.reportErr
	}
	return f.report, nil
}

func (f *fakeService) Recommend(ctx context.Context, studentID int64, limit int) ([]model.RecommendedProgram, error) {
	if limit < 1 {
		return nil, recommend.ErrInvalidLimit
	}
	if limit < len(f.recommended) {
		return f.recommended[:limit], nil
	}
	return f.recommended, nil
}

func (f *fakeService) Statistics(ctx context.Context, competencyID int64) (model.CompetencyStatistics, error) {
	if f.statsErr != nil {
		return model.CompetencyStatistics{}, f.statsErr
	}
	return f.stats, nil
}

func (f *fakeService) AddCategory(ctx context.Context, cat model.CompetencyCategory) error {
	return f.catalogErr
}

func (f *fakeService) AddCompetency(ctx context.Context, comp model.Competency) error {
	return f.catalogErr
}

func (f *fakeService) AddProgram(ctx context.Context, p model.Program) error {
	return f.catalogErr
}

func (f *fakeService) AddWeight(ctx context.Context, w model.ProgramCompetencyWeight) error {
	return f.catalogErr
}

func (f *fakeService) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newMux(svc *fakeService, opts ...api.ServerOption) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(svc, svc, opts...).Register(context.Background(), mux)
	return mux
}

func doJSON(mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestPostAssessment(t *testing.T) {
	Convey("Given the API server", t, func() {
		svc := newFakeService()
		mux := newMux(svc)

		Convey("When posting a valid assessment", func() {
			rr := doJSON(mux, http.MethodPost, "/assessments", map[string]any{
				"student_id": 1, "competency_id": 10, "score": 85, "date": "2026-05-01",
			})

			Convey("Then it is recorded and returned with 201", func() {
				So(rr.Code, ShouldEqual, http.StatusCreated)
				So(svc.records, ShouldHaveLength, 1)
				So(svc.records[0].Score, ShouldEqual, 85)
			})
		})

		Convey("When the body is not JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/assessments", bytes.NewBufferString("not-json"))
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			So(rr.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When required fields are missing", func() {
			rr := doJSON(mux, http.MethodPost, "/assessments", map[string]any{"score": 85})

			So(rr.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the date is malformed", func() {
			rr := doJSON(mux, http.MethodPost, "/assessments", map[string]any{
				"student_id": 1, "competency_id": 10, "score": 85, "date": "05/01/2026",
			})

			So(rr.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the score is out of range", func() {
			svc.recordErr = assessment.ErrScoreOutOfRange
			rr := doJSON(mux, http.MethodPost, "/assessments", map[string]any{
				"student_id": 1, "competency_id": 10, "score": 101,
			})

			So(rr.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the competency is unknown", func() {
			svc.recordErr = assessment.ErrUnknownCompetency
			rr := doJSON(mux, http.MethodPost, "/assessments", map[string]any{
				"student_id": 1, "competency_id": 999, "score": 50,
			})

			So(rr.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPostBulk(t *testing.T) {
	Convey("Given the API server", t, func() {
		svc := newFakeService()
		mux := newMux(svc)

		batch := func(ids ...string) map[string]any {
			subs := make([]map[string]any, 0, len(ids))
			for _, id := range ids {
				subs = append(subs, map[string]any{
					"submission_id": id, "student_id": 1, "competency_id": 10, "score": 70,
				})
			}
			return map[string]any{"submissions": subs}
		}

		Convey("When posting a fresh batch", func() {
			rr := doJSON(mux, http.MethodPost, "/assessments/bulk", batch("s1", "s2"))

			Convey("Then all submissions are accepted with 202", func() {
				So(rr.Code, ShouldEqual, http.StatusAccepted)
				var resp map[string]int
				So(json.Unmarshal(rr.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["accepted"], ShouldEqual, 2)
				So(resp["duplicates"], ShouldEqual, 0)
				So(svc.enqueued, ShouldHaveLength, 2)
			})
		})

		Convey("When the batch repeats a submission id", func() {
			rr := doJSON(mux, http.MethodPost, "/assessments/bulk", batch("s1", "s1"))

			Convey("Then the duplicate is skipped", func() {
				So(rr.Code, ShouldEqual, http.StatusAccepted)
				var resp map[string]int
				So(json.Unmarshal(rr.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["accepted"], ShouldEqual, 1)
				So(resp["duplicates"], ShouldEqual, 1)
				So(svc.enqueued, ShouldHaveLength, 1)
			})
		})

		Convey("When a submission id is omitted", func() {
			rr := doJSON(mux, http.MethodPost, "/assessments/bulk", map[string]any{
				"submissions": []map[string]any{{"student_id": 1, "competency_id": 10, "score": 70}},
			})

			Convey("Then the server generates one and accepts the item", func() {
				So(rr.Code, ShouldEqual, http.StatusAccepted)
				So(svc.enqueued, ShouldHaveLength, 1)
				So(svc.enqueued[0].SubmissionID, ShouldNotBeEmpty)
			})
		})

		Convey("When the queue is saturated", func() {
			svc.queueFull = true
			rr := doJSON(mux, http.MethodPost, "/assessments/bulk", batch("s1"))

			Convey("Then the caller gets 429 and the seen mark is rolled back", func() {
				So(rr.Code, ShouldEqual, http.StatusTooManyRequests)
				So(svc.seen["s1"], ShouldBeFalse)
			})
		})

		Convey("When the batch is empty", func() {
			rr := doJSON(mux, http.MethodPost, "/assessments/bulk", map[string]any{"submissions": []any{}})

			So(rr.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestStudentRoutes(t *testing.T) {
	Convey("Given the API server", t, func() {
		svc := newFakeService()
		mux := newMux(svc, api.WithMaxRecommendationLimit(5))

		Convey("When fetching latest assessments", func() {
			svc.latest = []model.AssessmentRecord{{CompetencyID: 10, Score: 85}}
			rr := doJSON(mux, http.MethodGet, "/students/1/assessments/latest", nil)

			Convey("Then the records are returned", func() {
				So(rr.Code, ShouldEqual, http.StatusOK)
				var recs []model.AssessmentRecord
				So(json.Unmarshal(rr.Body.Bytes(), &recs), ShouldBeNil)
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Score, ShouldEqual, 85)
			})
		})

		Convey("When fetching history with no records", func() {
			rr := doJSON(mux, http.MethodGet, "/students/1/assessments", nil)

			Convey("Then an empty array comes back, not null", func() {
				So(rr.Code, ShouldEqual, http.StatusOK)
				So(rr.Body.String(), ShouldStartWith, "[]")
			})
		})

		Convey("When fetching a report for an unassessed student", func() {
			svc.reportErr = assessment.ErrNoAssessments
			rr := doJSON(mux, http.MethodGet, "/students/1/report", nil)

			So(rr.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When fetching a report", func() {
			svc.report = model.CompetencyReport{StudentID: 1, OverallScore: 85, OverallGrade: "B"}
			rr := doJSON(mux, http.MethodGet, "/students/1/report", nil)

			Convey("Then the report is returned", func() {
				So(rr.Code, ShouldEqual, http.StatusOK)
				var report model.CompetencyReport
				So(json.Unmarshal(rr.Body.Bytes(), &report), ShouldBeNil)
				So(report.OverallGrade, ShouldEqual, "B")
			})
		})

		Convey("When fetching recommendations with a limit", func() {
			svc.recommended = []model.RecommendedProgram{
				{ProgramID: 100, Score: 40}, {ProgramID: 200, Score: 25}, {ProgramID: 300, Score: 10},
			}
			rr := doJSON(mux, http.MethodGet, "/students/1/recommendations?limit=2", nil)

			Convey("Then at most limit programs come back", func() {
				So(rr.Code, ShouldEqual, http.StatusOK)
				var programs []model.RecommendedProgram
				So(json.Unmarshal(rr.Body.Bytes(), &programs), ShouldBeNil)
				So(programs, ShouldHaveLength, 2)
			})
		})

		Convey("When the limit is not a number", func() {
			rr := doJSON(mux, http.MethodGet, "/students/1/recommendations?limit=abc", nil)

			So(rr.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit is not positive", func() {
			rr := doJSON(mux, http.MethodGet, "/students/1/recommendations?limit=0", nil)

			So(rr.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the student id is not numeric", func() {
			rr := doJSON(mux, http.MethodGet, "/students/abc/report", nil)

			So(rr.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the resource is unknown", func() {
			rr := doJSON(mux, http.MethodGet, "/students/1/unknown", nil)

			So(rr.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestCatalogRoutes(t *testing.T) {
	Convey("Given the API server", t, func() {
		svc := newFakeService()
		mux := newMux(svc)

		Convey("When registering valid reference data", func() {
			codes := []int{
				doJSON(mux, http.MethodPost, "/catalog/categories", map[string]any{"id": 1, "name": "기초역량"}).Code,
				doJSON(mux, http.MethodPost, "/catalog/competencies", map[string]any{"id": 10, "name": "의사소통", "category_id": 1}).Code,
				doJSON(mux, http.MethodPost, "/catalog/programs", map[string]any{"id": 100, "title": "글쓰기 워크숍"}).Code,
				doJSON(mux, http.MethodPost, "/catalog/weights", map[string]any{"program_id": 100, "competency_id": 10, "weight": 8}).Code,
			}

			Convey("Then every registration answers 201", func() {
				for _, code := range codes {
					So(code, ShouldEqual, http.StatusCreated)
				}
			})
		})

		Convey("When the payload is incomplete", func() {
			rr := doJSON(mux, http.MethodPost, "/catalog/categories", map[string]any{"id": 1})

			So(rr.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the id already exists", func() {
			svc.catalogErr = repository.ErrDuplicateID
			rr := doJSON(mux, http.MethodPost, "/catalog/categories", map[string]any{"id": 1, "name": "x"})

			So(rr.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When the weight is off the 1-10 scale", func() {
			svc.catalogErr = repository.ErrInvalidWeight
			rr := doJSON(mux, http.MethodPost, "/catalog/weights", map[string]any{"program_id": 100, "competency_id": 10, "weight": 0})

			So(rr.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the referenced category is missing", func() {
			svc.catalogErr = repository.ErrCategoryNotFound
			rr := doJSON(mux, http.MethodPost, "/catalog/competencies", map[string]any{"id": 10, "name": "x", "category_id": 77})

			So(rr.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestStatisticsRoute(t *testing.T) {
	Convey("Given the API server", t, func() {
		svc := newFakeService()
		mux := newMux(svc)

		Convey("When fetching statistics", func() {
			svc.stats = model.CompetencyStatistics{CompetencyID: 10, TotalAssessments: 4, AverageScore: 66.25}
			rr := doJSON(mux, http.MethodGet, "/competencies/10/statistics", nil)

			Convey("Then the aggregates are returned", func() {
				So(rr.Code, ShouldEqual, http.StatusOK)
				var stats model.CompetencyStatistics
				So(json.Unmarshal(rr.Body.Bytes(), &stats), ShouldBeNil)
				So(stats.TotalAssessments, ShouldEqual, 4)
			})
		})

		Convey("When the competency is unknown", func() {
			svc.statsErr = assessment.ErrUnknownCompetency
			rr := doJSON(mux, http.MethodGet, "/competencies/999/statistics", nil)

			So(rr.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the path is malformed", func() {
			rr := doJSON(mux, http.MethodGet, "/competencies/abc/statistics", nil)

			So(rr.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestStatsRoute(t *testing.T) {
	Convey("Given the API server", t, func() {
		svc := newFakeService()
		mux := newMux(svc)

		Convey("When fetching service stats", func() {
			rr := doJSON(mux, http.MethodGet, "/stats", nil)

			Convey("Then the counters are returned as JSON", func() {
				So(rr.Code, ShouldEqual, http.StatusOK)
				var stats map[string]any
				So(json.Unmarshal(rr.Body.Bytes(), &stats), ShouldBeNil)
				So(stats["started"], ShouldEqual, true)
			})
		})

		Convey("When using the wrong method", func() {
			rr := doJSON(mux, http.MethodPost, "/stats", nil)

			So(rr.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
