package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/middleware"
	"github.com/noah-isme/lms-api/internal/models"
)

// Handlers groups the handlers mounted under the API prefix.
type Handlers struct {
	Identity   *IdentityHandler
	Course     *CourseHandler
	Module     *ModuleHandler
	Enrollment *EnrollmentHandler
	Assignment *AssignmentHandler
	Submission *SubmissionHandler
	Analytics  *AnalyticsHandler
	Audit      *AuditHandler
	Metrics    *MetricsHandler
}

// Guards are the middleware chains routes are protected by. Authenticate
// verifies the bearer token; Resolve loads the approved caller. Audit may be
// nil.
type Guards struct {
	Authenticate gin.HandlerFunc
	Resolve      gin.HandlerFunc
	Audit        func(action, resource string) gin.HandlerFunc
}

func (g Guards) audit(action, resource string) gin.HandlerFunc {
	if g.Audit == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return g.Audit(action, resource)
}

// RegisterRoutes mounts every API route on rg.
func RegisterRoutes(rg *gin.RouterGroup, h Handlers, g Guards) {
	rg.POST("/auth/register", g.Authenticate, h.Identity.Register)

	api := rg.Group("", g.Authenticate, g.Resolve)
	api.GET("/me", h.Identity.Me)
	api.GET("/dashboard", h.Analytics.Dashboard)
	api.GET("/courses", h.Course.List)
	api.GET("/courses/:id", h.Course.Get)
	api.GET("/courses/:id/modules", h.Module.List)
	api.GET("/assignments/:id", h.Assignment.Get)

	student := middleware.RequireRoles(models.RoleStudent)
	api.POST("/courses/:id/enroll", student, h.Enrollment.Enroll)
	api.GET("/me/enrollments", student, h.Enrollment.Mine)

	studentArea := api.Group("/student", student)
	studentArea.GET("/courses/:id/assignments", h.Assignment.ListForStudent)
	studentArea.GET("/courses/:id/totals", h.Analytics.MyTotals)
	studentArea.POST("/assignments/:id/submit", h.Submission.Submit)

	instructor := api.Group("/instructor", middleware.RequireRoles(models.RoleInstructor))
	instructor.GET("/courses", h.Course.Taught)
	instructor.GET("/courses/:id/students", h.Enrollment.Roster)
	instructor.GET("/courses/:id/students/export", h.Enrollment.Export)
	instructor.POST("/courses/:id/grade", g.audit(models.AuditActionEnrollmentGrade, "course"), h.Enrollment.Grade)
	instructor.POST("/courses/:id/drop", g.audit(models.AuditActionEnrollmentDrop, "course"), h.Enrollment.Drop)
	instructor.POST("/courses/:id/modules", h.Module.Create)
	instructor.POST("/courses/:id/assignments", h.Assignment.Create)
	instructor.GET("/courses/:id/assignments", h.Assignment.ListForInstructor)
	instructor.GET("/assignments/:id/submissions", h.Submission.List)
	instructor.POST("/submissions/:id/grade", g.audit(models.AuditActionSubmissionGrade, "submission"), h.Submission.Grade)

	admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdministrator))
	admin.GET("/users", h.Identity.ListUsers)
	admin.POST("/users/:id/approve", g.audit(models.AuditActionUserApprove, "user"), h.Identity.Approve)
	admin.DELETE("/users/:id", g.audit(models.AuditActionUserDelete, "user"), h.Identity.Delete)
	admin.POST("/courses", g.audit(models.AuditActionCourseCreate, "course"), h.Course.Create)
	admin.DELETE("/courses/:id", g.audit(models.AuditActionCourseDelete, "course"), h.Course.Delete)
	admin.GET("/courses/:id/instructors", h.Course.ListInstructors)
	admin.POST("/courses/:id/instructors", g.audit(models.AuditActionInstructorAssign, "course"), h.Course.AssignInstructor)
	admin.DELETE("/courses/:id/instructors/:instructorId", g.audit(models.AuditActionInstructorRemove, "course"), h.Course.RemoveInstructor)
	admin.GET("/audit-logs", h.Audit.List)

	api.GET("/analytics/courses/:id/rollup",
		middleware.RequireRoles(models.RoleAdministrator, models.RoleDataAnalyst, models.RoleInstructor),
		h.Analytics.Rollup)
	analytics := api.Group("/analytics", middleware.RequireRoles(models.RoleAdministrator, models.RoleDataAnalyst))
	analytics.GET("/overview", h.Analytics.Overview)
	analytics.GET("/courses", h.Analytics.Courses)
	analytics.GET("/system", h.Metrics.System)
}

// RegisterHealthRoutes mounts the unauthenticated health and metrics endpoints.
func RegisterHealthRoutes(r gin.IRoutes, h *MetricsHandler, exposeMetrics bool) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	if exposeMetrics {
		r.GET("/metrics", h.Prometheus)
	}
}
