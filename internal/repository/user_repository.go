package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/database"
)

// registrationLockKey serialises first-administrator bootstrap checks.
const registrationLockKey = 72_001

const userColumns = `id, name, email, role, approved, created_at`

// UserRepository provides database access for user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := database.Conn(ctx, r.db).GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Identity resolves the role and approval flag for a user id.
func (r *UserRepository) Identity(ctx context.Context, id string) (*models.Identity, error) {
	const query = `SELECT id, role, approved FROM users WHERE id = $1 LIMIT 1`
	var identity models.Identity
	if err := database.Conn(ctx, r.db).GetContext(ctx, &identity, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	return &identity, nil
}

// List returns users based on filters with total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	baseQuery := `FROM users WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Approved != nil {
		conditions = append(conditions, fmt.Sprintf("approved = $%d", len(args)+1))
		args = append(args, *filter.Approved)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(email) LIKE $%d OR LOWER(name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", userColumns, baseQuery, pageSize, offset)

	q := database.Conn(ctx, r.db)
	var users []models.User
	if err := q.SelectContext(ctx, &users, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := q.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, total, nil
}

// LockRegistration takes a transaction-scoped advisory lock so that two
// concurrent administrator sign-ups cannot both observe zero approved admins.
// It must run inside a transaction.
func (r *UserRepository) LockRegistration(ctx context.Context) error {
	if _, err := database.Conn(ctx, r.db).ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, registrationLockKey); err != nil {
		return fmt.Errorf("lock registration: %w", err)
	}
	return nil
}

// CountApprovedAdmins returns the number of approved administrators.
func (r *UserRepository) CountApprovedAdmins(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE role = $1 AND approved = TRUE`
	var total int
	if err := database.Conn(ctx, r.db).GetContext(ctx, &total, query, models.RoleAdministrator); err != nil {
		return 0, fmt.Errorf("count approved admins: %w", err)
	}
	return total, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO users (id, name, email, role, approved, created_at) VALUES (:id, :name, :email, :role, :approved, :created_at)`
	if _, err := database.Conn(ctx, r.db).NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// CreateProfile inserts the role-specific profile row for students and
// instructors. Other roles carry no profile.
func (r *UserRepository) CreateProfile(ctx context.Context, userID string, role models.UserRole) error {
	var query string
	switch role {
	case models.RoleStudent:
		query = `INSERT INTO student_profiles (user_id) VALUES ($1)`
	case models.RoleInstructor:
		query = `INSERT INTO instructor_profiles (user_id) VALUES ($1)`
	default:
		return nil
	}
	if _, err := database.Conn(ctx, r.db).ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("create %s profile: %w", role, err)
	}
	return nil
}

// Approve marks a user approved.
func (r *UserRepository) Approve(ctx context.Context, id string) error {
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, `UPDATE users SET approved = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("approve user: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a user. Profiles, teaching rows, enrollments and
// submissions cascade. An instructor who still owns assignments cannot be
// removed (fk_assignments_instructor).
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res)
}

// CountAll returns the number of registered users.
func (r *UserRepository) CountAll(ctx context.Context) (int, error) {
	var total int
	if err := database.Conn(ctx, r.db).GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

// CountPending returns the number of users awaiting approval.
func (r *UserRepository) CountPending(ctx context.Context) (int, error) {
	var total int
	if err := database.Conn(ctx, r.db).GetContext(ctx, &total, `SELECT COUNT(*) FROM users WHERE approved = FALSE`); err != nil {
		return 0, fmt.Errorf("count pending users: %w", err)
	}
	return total, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
