package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/database"
)

// ModuleRepository stores numbered course modules.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository constructs a ModuleRepository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// Create inserts a module. A duplicate number surfaces as a unique violation.
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	const query = `INSERT INTO course_modules (course_id, module_number, name, duration) VALUES (:course_id, :module_number, :name, :duration)`
	if _, err := database.Conn(ctx, r.db).NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}

// ListByCourse returns a course's modules ordered by number.
func (r *ModuleRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Module, error) {
	const query = `SELECT course_id, module_number, name, duration FROM course_modules WHERE course_id = $1 ORDER BY module_number ASC`
	var modules []models.Module
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &modules, query, courseID); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}
