package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQuery = `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*external_auth_id,\s*first_name,\s*last_name\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at\s*$`
	selectQuery = `(?s)^SELECT\s+id,\s*email,\s*external_auth_id,\s*first_name,\s*last_name,\s*created_at\s+FROM\s+users\s+WHERE\s+external_auth_id\s*=\s*\$1\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(insertQuery).
		WithArgs("alice@example.com", "ext-1", "Alice", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u-1", created))

	got, err := repo.Create(context.Background(), &models.User{Email: "alice@example.com", ExternalAuthID: "ext-1", FirstName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, created, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).
		WithArgs("alice@example.com", "ext-1", "", "").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.User{Email: "alice@example.com", ExternalAuthID: "ext-1"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Email: "a", ExternalAuthID: "b"})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
}

func TestGetByExternalAuthID_Found(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	created := time.Now().UTC()

	mock.ExpectQuery(selectQuery).
		WithArgs("ext-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "external_auth_id", "first_name", "last_name", "created_at"}).
			AddRow("u-1", "alice@example.com", "ext-1", "Alice", "Smith", created))

	got, err := repo.GetByExternalAuthID(context.Background(), "ext-1")
	require.NoError(t, err)
	assert.Equal(t, &models.User{
		ID: "u-1", Email: "alice@example.com", ExternalAuthID: "ext-1",
		FirstName: "Alice", LastName: "Smith", CreatedAt: created,
	}, got)
}

func TestGetByExternalAuthID_NotFound(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(selectQuery).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByExternalAuthID(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByExternalAuthID_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(selectQuery).WithArgs("ext-1").WillReturnError(errors.New("conn reset"))

	_, err := repo.GetByExternalAuthID(context.Background(), "ext-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
	assert.Contains(t, err.Error(), "db error")
}
