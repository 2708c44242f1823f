package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Audited administrative and grading actions.
const (
	AuditActionUserApprove      = "USER_APPROVE"
	AuditActionUserDelete       = "USER_DELETE"
	AuditActionCourseCreate     = "COURSE_CREATE"
	AuditActionCourseDelete     = "COURSE_DELETE"
	AuditActionInstructorAssign = "INSTRUCTOR_ASSIGN"
	AuditActionInstructorRemove = "INSTRUCTOR_REMOVE"
	AuditActionEnrollmentGrade  = "ENROLLMENT_GRADE"
	AuditActionEnrollmentDrop   = "ENROLLMENT_DROP"
	AuditActionSubmissionGrade  = "SUBMISSION_GRADE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string         `db:"id" json:"id"`
	UserID     *string        `db:"user_id" json:"user_id,omitempty"`
	Action     string         `db:"action" json:"action"`
	Resource   string         `db:"resource" json:"resource"`
	ResourceID *string        `db:"resource_id" json:"resource_id,omitempty"`
	Details    types.JSONText `db:"details" json:"details"`
	IPAddress  string         `db:"ip_address" json:"ip_address"`
	UserAgent  string         `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}
