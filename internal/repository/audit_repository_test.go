package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
)

func TestAuditRepository(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).WillReturnResult(sqlmock.NewResult(1, 1))
	userID := "adm"
	entry := &models.AuditLog{UserID: &userID, Action: models.AuditActionCourseCreate, Resource: "courses", Details: types.JSONText(`{"status":201}`)}
	require.NoError(t, repo.Create(ctx, entry))
	require.NotEmpty(t, entry.ID)

	mock.ExpectQuery(regexp.QuoteMeta("FROM audit_logs ORDER BY created_at DESC LIMIT $1")).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "action", "resource", "resource_id", "details", "ip_address", "user_agent", "created_at"}).
			AddRow("log-1", "adm", "COURSE_CREATE", "courses", nil, []byte(`{"status":201}`), "127.0.0.1", "curl", time.Now()))
	logs, err := repo.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.JSONEq(t, `{"status":201}`, logs[0].Details.String())

	require.NoError(t, mock.ExpectationsWereMet())
}
