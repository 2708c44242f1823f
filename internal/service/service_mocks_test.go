package service

import (
	"context"
	"errors"

	"github.com/lib/pq"

	"github.com/noah-isme/lms-api/internal/models"
)

var errStoreDown = errors.New("store unavailable")

func pairKey(a, b string) string { return a + "|" + b }

type mockTeaching struct {
	courses map[string]bool
	err     error
}

func (m *mockTeaching) Teaches(ctx context.Context, instructorID, courseID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.courses[pairKey(instructorID, courseID)], nil
}

type mockActive struct {
	enrolled map[string]bool
	err      error
}

func (m *mockActive) IsActive(ctx context.Context, studentID, courseID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.enrolled[pairKey(studentID, courseID)], nil
}

// newPolicy builds an AccessPolicy where inst-1 teaches course-1 and stu-1
// is actively enrolled in course-1.
func newPolicy() *AccessPolicy {
	return NewAccessPolicy(
		&mockTeaching{courses: map[string]bool{pairKey("inst-1", "course-1"): true}},
		&mockActive{enrolled: map[string]bool{pairKey("stu-1", "course-1"): true}},
	)
}

type mockMarks struct {
	possible map[string]float64
	obtained map[string]map[string]float64
	err      error
}

func (m *mockMarks) CoursePossibleMarks(ctx context.Context, courseID string) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.possible[courseID], nil
}

func (m *mockMarks) StudentObtainedMarks(ctx context.Context, courseID, studentID string) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.obtained[courseID][studentID], nil
}

func (m *mockMarks) CourseObtainedMarks(ctx context.Context, courseID string) (map[string]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.obtained[courseID], nil
}

func caller(id string, role models.UserRole) *models.Identity {
	return &models.Identity{UserID: id, Role: role, Approved: true}
}

func pending(id string, role models.UserRole) *models.Identity {
	return &models.Identity{UserID: id, Role: role}
}

func uniqueViolation(constraint string) error {
	return &pq.Error{Code: "23505", Constraint: constraint}
}

func foreignKeyViolation(constraint string) error {
	return &pq.Error{Code: "23503", Constraint: constraint}
}

func checkViolation(constraint string) error {
	return &pq.Error{Code: "23514", Constraint: constraint}
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
