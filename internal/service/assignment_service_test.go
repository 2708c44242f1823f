package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type mockAssignmentStore struct {
	created   []*models.Assignment
	createErr error
	student   []models.StudentAssignment
	askedFor  string
}

func (m *mockAssignmentStore) Create(ctx context.Context, assignment *models.Assignment) error {
	if m.createErr != nil {
		return m.createErr
	}
	assignment.ID = "a-new"
	m.created = append(m.created, assignment)
	return nil
}

func (m *mockAssignmentStore) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	for _, a := range m.created {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssignmentStore) ListByCourse(ctx context.Context, courseID string) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range m.created {
		if a.CourseID == courseID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAssignmentStore) ListForStudent(ctx context.Context, courseID, studentID string) ([]models.StudentAssignment, error) {
	m.askedFor = studentID
	return m.student, nil
}

func TestAssignmentServiceCreateDefaults(t *testing.T) {
	store := &mockAssignmentStore{}
	svc := NewAssignmentService(store, newPolicy(), nil, nil, nil)

	assignment, err := svc.Create(context.Background(), caller("inst-1", models.RoleInstructor), "course-1", models.CreateAssignmentRequest{Title: "Essay"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultMaxMarks, assignment.MaxMarks)
	assert.Equal(t, "inst-1", assignment.InstructorID)

	// duplicate titles are allowed
	_, err = svc.Create(context.Background(), caller("inst-1", models.RoleInstructor), "course-1", models.CreateAssignmentRequest{Title: "Essay", MaxMarks: intPtr(50)})
	require.NoError(t, err)
	assert.Len(t, store.created, 2)
	assert.Equal(t, 50, store.created[1].MaxMarks)
}

func TestAssignmentServiceCreateRefusals(t *testing.T) {
	store := &mockAssignmentStore{}
	svc := NewAssignmentService(store, newPolicy(), nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, caller("inst-1", models.RoleInstructor), "course-1", models.CreateAssignmentRequest{Title: "Essay", MaxMarks: intPtr(0)})
	assert.Equal(t, "max_marks must be positive", appErrors.FromError(err).Message)

	_, err = svc.Create(ctx, caller("inst-2", models.RoleInstructor), "course-1", models.CreateAssignmentRequest{Title: "Essay"})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Create(ctx, caller("inst-1", models.RoleInstructor), "course-1", models.CreateAssignmentRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, store.created)
}

func TestAssignmentServiceCreateMapsForeignKeys(t *testing.T) {
	cases := map[string]string{
		"fk_assignments_module":          "module not found",
		"assignments_course_id_fkey":     "course not found",
		"assignments_instructor_id_fkey": "course not found",
	}
	for constraint, message := range cases {
		t.Run(constraint, func(t *testing.T) {
			store := &mockAssignmentStore{createErr: foreignKeyViolation(constraint)}
			svc := NewAssignmentService(store, newPolicy(), nil, nil, nil)

			_, err := svc.Create(context.Background(), caller("inst-1", models.RoleInstructor), "course-1", models.CreateAssignmentRequest{
				Title: "Essay", ModuleNumber: intPtr(3),
			})
			assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
			assert.Equal(t, message, appErrors.FromError(err).Message)
		})
	}
}

func TestAssignmentServiceListings(t *testing.T) {
	store := &mockAssignmentStore{
		created: []*models.Assignment{{ID: "a-1", CourseID: "course-1"}, {ID: "a-2", CourseID: "course-2"}},
		student: []models.StudentAssignment{{Assignment: models.Assignment{ID: "a-1"}, SubmissionID: strPtr("sub-1")}},
	}
	svc := NewAssignmentService(store, newPolicy(), nil, nil, nil)
	ctx := context.Background()

	list, err := svc.ListForInstructor(ctx, caller("inst-1", models.RoleInstructor), "course-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	mine, err := svc.ListForStudent(ctx, caller("stu-1", models.RoleStudent), "course-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Equal(t, "stu-1", store.askedFor)

	_, err = svc.ListForStudent(ctx, caller("stu-2", models.RoleStudent), "course-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	got, err := svc.Get(ctx, caller("inst-1", models.RoleInstructor), "a-1")
	require.NoError(t, err)
	assert.Equal(t, "course-1", got.CourseID)
	_, err = svc.Get(ctx, caller("stu-1", models.RoleStudent), "a-1")
	require.NoError(t, err)
	_, err = svc.Get(ctx, caller("inst-1", models.RoleInstructor), "a-2")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	got, err = svc.Get(ctx, caller("adm", models.RoleAdministrator), "a-2")
	require.NoError(t, err)
	assert.Equal(t, "course-2", got.CourseID)
	_, err = svc.Get(ctx, caller("adm", models.RoleAdministrator), "a-404")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
