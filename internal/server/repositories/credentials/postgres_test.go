package credentials

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
	insertQuery     = `(?s)^INSERT\s+INTO\s+credentials\s*\(email,\s*password_hash,\s*first_name,\s*last_name\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at\s*$`
	selectByEmailQ  = `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*first_name,\s*last_name,\s*created_at\s+FROM\s+credentials\s+WHERE\s+email\s*=\s*\$1\s*$`
	selectByIDQuery = `(?s)^SELECT\s+id,.*FROM\s+credentials\s+WHERE\s+id\s*=\s*\$1\s*$`
)

var credCols = []string{"id", "email", "password_hash", "first_name", "last_name", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(insertQuery).
		WithArgs("bob@example.com", []byte("hash"), "Bob", "Stone").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("c-1", now))

	got, err := repo.Create(context.Background(), &models.Credential{
		Email: "bob@example.com", PasswordHash: []byte("hash"), FirstName: "Bob", LastName: "Stone",
	})
	require.NoError(t, err)
	assert.Equal(t, "c-1", got.ID)
	assert.Equal(t, now, got.CreatedAt)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.Credential{Email: "bob@example.com", PasswordHash: []byte("h")})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Credential{Email: "bob@example.com"})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
}

func TestGetByEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(selectByEmailQ).
		WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows(credCols).AddRow("c-1", "bob@example.com", []byte("hash"), "Bob", "", now))

	got, err := repo.GetByEmail(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "c-1", got.ID)
	assert.Equal(t, []byte("hash"), got.PasswordHash)
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByEmailQ).WithArgs("nobody@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByIDQuery).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows(credCols).AddRow("c-1", "bob@example.com", []byte("hash"), "Bob", "Stone", time.Now()))

	got, err := repo.GetByID(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Stone", got.LastName)
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByIDQuery).WithArgs("c-1").WillReturnError(errors.New("timeout"))

	_, err := repo.GetByID(context.Background(), "c-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}
