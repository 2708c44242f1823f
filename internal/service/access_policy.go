package service

import (
	"context"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type teachingChecker interface {
	Teaches(ctx context.Context, instructorID, courseID string) (bool, error)
}

type activeEnrollmentChecker interface {
	IsActive(ctx context.Context, studentID, courseID string) (bool, error)
}

// AccessPolicy answers the authorization questions shared by every
// mutation. Checks read through the caller's transaction when one is open.
type AccessPolicy struct {
	courses     teachingChecker
	enrollments activeEnrollmentChecker
}

// NewAccessPolicy constructs an AccessPolicy.
func NewAccessPolicy(courses teachingChecker, enrollments activeEnrollmentChecker) *AccessPolicy {
	return &AccessPolicy{courses: courses, enrollments: enrollments}
}

// RequireRole ensures the caller is approved and holds one of roles.
func RequireRole(caller *models.Identity, roles ...models.UserRole) error {
	if caller == nil {
		return appErrors.ErrUnauthorized
	}
	if !caller.Approved {
		return appErrors.ErrPendingApproval
	}
	for _, role := range roles {
		if caller.Is(role) {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "insufficient role")
}

// RequireInstructorOf ensures the caller teaches courseID.
func (p *AccessPolicy) RequireInstructorOf(ctx context.Context, caller *models.Identity, courseID string) error {
	if err := RequireRole(caller, models.RoleInstructor); err != nil {
		return err
	}
	ok, err := p.courses.Teaches(ctx, caller.UserID, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify teaching assignment")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrForbidden, "you don't teach this course")
	}
	return nil
}

// RequireActiveStudent ensures the caller holds a non-dropped enrollment in
// courseID.
func (p *AccessPolicy) RequireActiveStudent(ctx context.Context, caller *models.Identity, courseID string) error {
	if err := RequireRole(caller, models.RoleStudent); err != nil {
		return err
	}
	ok, err := p.enrollments.IsActive(ctx, caller.UserID, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify enrollment")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrForbidden, "you are not enrolled in this course")
	}
	return nil
}

// RequireAssignmentOwner ensures the caller created the assignment. Teaching
// the course is not enough.
func (p *AccessPolicy) RequireAssignmentOwner(caller *models.Identity, assignment *models.Assignment) error {
	if err := RequireRole(caller, models.RoleInstructor); err != nil {
		return err
	}
	if assignment.InstructorID != caller.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "you did not create this assignment")
	}
	return nil
}

// CanViewCourse allows staff roles and anyone teaching or actively enrolled.
func (p *AccessPolicy) CanViewCourse(ctx context.Context, caller *models.Identity, courseID string) error {
	if err := RequireRole(caller, models.RoleStudent, models.RoleInstructor, models.RoleAdministrator, models.RoleDataAnalyst); err != nil {
		return err
	}
	switch caller.Role {
	case models.RoleInstructor:
		return p.RequireInstructorOf(ctx, caller, courseID)
	case models.RoleStudent:
		return p.RequireActiveStudent(ctx, caller, courseID)
	}
	return nil
}
