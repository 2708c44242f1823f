package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

func TestRequireRole(t *testing.T) {
	assert.ErrorIs(t, RequireRole(nil, models.RoleStudent), appErrors.ErrUnauthorized)
	assert.ErrorIs(t, RequireRole(pending("stu-1", models.RoleStudent), models.RoleStudent), appErrors.ErrPendingApproval)
	assert.True(t, appErrors.Is(RequireRole(caller("stu-1", models.RoleStudent), models.RoleInstructor), appErrors.ErrForbidden))
	assert.NoError(t, RequireRole(caller("adm", models.RoleAdministrator), models.RoleDataAnalyst, models.RoleAdministrator))
}

func TestAccessPolicyInstructorOf(t *testing.T) {
	ctx := context.Background()
	policy := newPolicy()

	assert.NoError(t, policy.RequireInstructorOf(ctx, caller("inst-1", models.RoleInstructor), "course-1"))

	err := policy.RequireInstructorOf(ctx, caller("inst-2", models.RoleInstructor), "course-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Equal(t, "you don't teach this course", appErrors.FromError(err).Message)

	err = policy.RequireInstructorOf(ctx, caller("adm", models.RoleAdministrator), "course-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestAccessPolicyLookupFailureIsInternal(t *testing.T) {
	policy := NewAccessPolicy(&mockTeaching{err: errStoreDown}, &mockActive{err: errStoreDown})

	err := policy.RequireInstructorOf(context.Background(), caller("inst-1", models.RoleInstructor), "course-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
	assert.ErrorIs(t, err, errStoreDown)

	err = policy.RequireActiveStudent(context.Background(), caller("stu-1", models.RoleStudent), "course-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}

func TestAccessPolicyActiveStudent(t *testing.T) {
	ctx := context.Background()
	policy := newPolicy()

	assert.NoError(t, policy.RequireActiveStudent(ctx, caller("stu-1", models.RoleStudent), "course-1"))

	err := policy.RequireActiveStudent(ctx, caller("stu-2", models.RoleStudent), "course-1")
	assert.Equal(t, "you are not enrolled in this course", appErrors.FromError(err).Message)
}

func TestAccessPolicyAssignmentOwner(t *testing.T) {
	policy := newPolicy()
	assignment := &models.Assignment{ID: "a-1", CourseID: "course-1", InstructorID: "inst-1"}

	assert.NoError(t, policy.RequireAssignmentOwner(caller("inst-1", models.RoleInstructor), assignment))

	// co-instructors of the same course are refused
	err := policy.RequireAssignmentOwner(caller("inst-2", models.RoleInstructor), assignment)
	assert.Equal(t, "you did not create this assignment", appErrors.FromError(err).Message)
}

func TestAccessPolicyCanViewCourse(t *testing.T) {
	ctx := context.Background()
	policy := newPolicy()

	cases := []struct {
		name    string
		caller  *models.Identity
		allowed bool
	}{
		{"teaching instructor", caller("inst-1", models.RoleInstructor), true},
		{"other instructor", caller("inst-2", models.RoleInstructor), false},
		{"enrolled student", caller("stu-1", models.RoleStudent), true},
		{"stranger student", caller("stu-9", models.RoleStudent), false},
		{"administrator", caller("adm", models.RoleAdministrator), true},
		{"analyst", caller("ana", models.RoleDataAnalyst), true},
		{"pending administrator", pending("adm", models.RoleAdministrator), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.CanViewCourse(ctx, tc.caller, "course-1")
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
