package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/service"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type responseEnvelope struct {
	Success bool                   `json:"success"`
	Data    interface{}            `json:"data"`
	Error   map[string]string      `json:"error"`
	Meta    map[string]interface{} `json:"meta"`
}

type fakeIdentitySrv struct {
	registered models.RegisterRequest
	filter     models.UserFilter
	err        error
}

func (f *fakeIdentitySrv) Register(_ context.Context, req models.RegisterRequest) (*models.User, error) {
	f.registered = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: req.UserID, Name: req.Name, Email: req.Email, Role: req.Role}, nil
}

func (f *fakeIdentitySrv) Me(_ context.Context, caller *models.Identity) (*models.User, error) {
	return &models.User{ID: caller.UserID, Role: caller.Role, Approved: caller.Approved}, f.err
}

func (f *fakeIdentitySrv) ListUsers(_ context.Context, _ *models.Identity, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	f.filter = filter
	return []models.User{}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize}, f.err
}

func (f *fakeIdentitySrv) Approve(context.Context, *models.Identity, string) error { return f.err }

func (f *fakeIdentitySrv) Delete(context.Context, *models.Identity, string) error { return f.err }

type fakeCourseSrv struct{ err error }

func (f *fakeCourseSrv) List(context.Context) ([]models.Course, error) {
	return []models.Course{{ID: "CS101", Title: "Intro"}}, f.err
}

func (f *fakeCourseSrv) Get(_ context.Context, id string) (*models.Course, error) {
	return &models.Course{ID: id}, f.err
}

func (f *fakeCourseSrv) Create(_ context.Context, _ *models.Identity, req models.CreateCourseRequest) (*models.Course, error) {
	return &models.Course{ID: "new", Title: req.Title}, f.err
}

func (f *fakeCourseSrv) Delete(context.Context, *models.Identity, string) error { return f.err }

func (f *fakeCourseSrv) AssignInstructor(context.Context, *models.Identity, string, models.AssignInstructorRequest) error {
	return f.err
}

func (f *fakeCourseSrv) RemoveInstructor(context.Context, *models.Identity, string, string) error {
	return f.err
}

func (f *fakeCourseSrv) ListInstructors(context.Context, *models.Identity, string) ([]models.CourseInstructor, error) {
	return []models.CourseInstructor{}, f.err
}

func (f *fakeCourseSrv) TaughtCourses(context.Context, *models.Identity) ([]models.InstructorCourse, error) {
	return []models.InstructorCourse{}, f.err
}

type fakeModuleSrv struct{}

func (fakeModuleSrv) Create(_ context.Context, _ *models.Identity, courseID string, req models.CreateModuleRequest) (*models.Module, error) {
	return &models.Module{CourseID: courseID, ModuleNumber: req.ModuleNumber, Name: req.Name}, nil
}

func (fakeModuleSrv) List(context.Context, *models.Identity, string) ([]models.Module, error) {
	return []models.Module{}, nil
}

type fakeEnrollmentSrv struct {
	status string
	err    error
}

func (f *fakeEnrollmentSrv) Enroll(_ context.Context, caller *models.Identity, courseID string) (*models.Enrollment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Enrollment{StudentID: caller.UserID, CourseID: courseID, Status: models.EnrollmentStatusOngoing, EnrollDate: time.Now()}, nil
}

func (f *fakeEnrollmentSrv) ListMine(_ context.Context, _ *models.Identity, status string) ([]models.EnrollmentDetail, error) {
	f.status = status
	return []models.EnrollmentDetail{}, f.err
}

func (f *fakeEnrollmentSrv) Grade(_ context.Context, _ *models.Identity, courseID string, req models.GradeEnrollmentRequest) (*models.Enrollment, error) {
	if f.err != nil {
		return nil, f.err
	}
	grade := req.Grade
	return &models.Enrollment{StudentID: req.StudentID, CourseID: courseID, Status: models.EnrollmentStatusCompleted, Grade: &grade}, nil
}

func (f *fakeEnrollmentSrv) Drop(context.Context, *models.Identity, string, models.DropEnrollmentRequest) error {
	return f.err
}

func (f *fakeEnrollmentSrv) Roster(context.Context, *models.Identity, string) ([]models.RosterEntry, error) {
	return []models.RosterEntry{{StudentID: "s1", Totals: models.NewCourseTotals(15, 50)}}, f.err
}

type fakeExporter struct {
	format string
	err    error
}

func (f *fakeExporter) Gradebook(_ context.Context, _ *models.Identity, courseID, format string) (*service.ExportResult, error) {
	f.format = format
	if f.err != nil {
		return nil, f.err
	}
	return &service.ExportResult{FileName: "gradebook-" + courseID + ".csv", ContentType: "text/csv", Body: []byte("a,b\n")}, nil
}

type fakeAssignmentSrv struct{}

func (fakeAssignmentSrv) Create(_ context.Context, caller *models.Identity, courseID string, req models.CreateAssignmentRequest) (*models.Assignment, error) {
	return &models.Assignment{ID: "a1", CourseID: courseID, InstructorID: caller.UserID, Title: req.Title, MaxMarks: models.DefaultMaxMarks}, nil
}

func (fakeAssignmentSrv) ListForInstructor(context.Context, *models.Identity, string) ([]models.Assignment, error) {
	return []models.Assignment{}, nil
}

func (fakeAssignmentSrv) ListForStudent(context.Context, *models.Identity, string) ([]models.StudentAssignment, error) {
	return []models.StudentAssignment{}, nil
}

func (fakeAssignmentSrv) Get(_ context.Context, _ *models.Identity, id string) (*models.Assignment, error) {
	if id == "missing" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return &models.Assignment{ID: id, CourseID: "CS101", MaxMarks: models.DefaultMaxMarks}, nil
}

type fakeSubmissionSrv struct{ err error }

func (f *fakeSubmissionSrv) Submit(_ context.Context, caller *models.Identity, assignmentID string, req models.SubmitRequest) (*models.Submission, error) {
	return &models.Submission{ID: "sub-1", AssignmentID: assignmentID, StudentID: caller.UserID, SubmissionURL: req.SubmissionURL}, f.err
}

func (f *fakeSubmissionSrv) Grade(_ context.Context, _ *models.Identity, submissionID string, req models.GradeSubmissionRequest) (*models.Submission, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Submission{ID: submissionID, MarksObtained: req.Marks}, nil
}

func (f *fakeSubmissionSrv) List(context.Context, *models.Identity, string) ([]models.SubmissionDetail, error) {
	return []models.SubmissionDetail{}, f.err
}

type fakeAggregationSrv struct{}

func (fakeAggregationSrv) MyTotals(context.Context, *models.Identity, string) (models.CourseTotals, error) {
	return models.NewCourseTotals(15, 50), nil
}

func (fakeAggregationSrv) CourseRollup(_ context.Context, _ *models.Identity, courseID string) (*models.CourseRollup, error) {
	return &models.CourseRollup{CourseID: courseID, Distribution: []models.GradeBucket{}}, nil
}

func (fakeAggregationSrv) PlatformOverview(context.Context, *models.Identity) (*models.PlatformOverview, error) {
	return &models.PlatformOverview{TotalUsers: 3}, nil
}

func (fakeAggregationSrv) CourseStats(context.Context, *models.Identity) ([]models.CourseStat, error) {
	return []models.CourseStat{}, nil
}

func (fakeAggregationSrv) Dashboard(_ context.Context, caller *models.Identity) (*models.Dashboard, error) {
	return &models.Dashboard{Role: caller.Role}, nil
}

type fakeAuditSrv struct{ limit int }

func (f *fakeAuditSrv) Recent(_ context.Context, _ *models.Identity, limit int) ([]models.AuditLog, error) {
	f.limit = limit
	return []models.AuditLog{}, nil
}

type fakeMetrics struct{}

func (fakeMetrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("lms_http_requests_total 1\n"))
	})
}

func (fakeMetrics) Snapshot() models.SystemMetrics {
	return models.SystemMetrics{RequestsTotal: 1}
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }
