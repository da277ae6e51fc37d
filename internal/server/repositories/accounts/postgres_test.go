package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/mithaimart/internal/common"
	"github.com/dmitrijs2005/mithaimart/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQuery     = `(?s)^INSERT\s+INTO\s+accounts\s*\(name,\s*email,\s*password_hash,\s*role\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at\s*$`
	byEmailQuery    = `(?s)^SELECT\s+id,\s*name,\s*email,\s*password_hash,\s*role,\s*created_at\s+FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1\s*$`
	byIDQuery       = `(?s)^SELECT\s+id,\s*name,\s*email,\s*password_hash,\s*role,\s*created_at\s+FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1\s*$`
	testPHC         = "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA"
	accountID       = "3f0c2b7e-5a8e-4d6f-9a51-0c3f6f6d1c11"
	accountEmail    = "asha@mithaimart.test"
	accountFullName = "Asha"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func accountColumns() []string {
	return []string{"id", "name", "email", "password_hash", "role", "created_at"}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(insertQuery).
		WithArgs(accountFullName, accountEmail, testPHC, "user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(accountID, created))

	got, err := repo.Create(context.Background(), &models.Account{
		Name: accountFullName, Email: accountEmail, PasswordHash: testPHC, Role: common.RoleUser,
	})
	require.NoError(t, err)
	assert.Equal(t, accountID, got.ID)
	assert.Equal(t, created, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WithArgs(accountFullName, accountEmail, testPHC, "user").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})

	_, err := repo.Create(context.Background(), &models.Account{
		Name: accountFullName, Email: accountEmail, PasswordHash: testPHC, Role: common.RoleUser,
	})
	require.ErrorIs(t, err, common.ErrDuplicateAccount)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WithArgs(accountFullName, accountEmail, testPHC, "user").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Account{
		Name: accountFullName, Email: accountEmail, PasswordHash: testPHC, Role: common.RoleUser,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
	assert.NotErrorIs(t, err, common.ErrDuplicateAccount)
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(byEmailQuery).
		WithArgs(accountEmail).
		WillReturnRows(sqlmock.NewRows(accountColumns()).
			AddRow(accountID, accountFullName, accountEmail, testPHC, "admin", created))

	got, err := repo.GetByEmail(context.Background(), accountEmail)
	require.NoError(t, err)
	assert.Equal(t, &models.Account{
		ID: accountID, Name: accountFullName, Email: accountEmail,
		PasswordHash: testPHC, Role: common.RoleAdmin, CreatedAt: created,
	}, got)
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byEmailQuery).WithArgs("nobody@x.io").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@x.io")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetByID_FoundAndDBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byIDQuery).
		WithArgs(accountID).
		WillReturnRows(sqlmock.NewRows(accountColumns()).
			AddRow(accountID, accountFullName, accountEmail, testPHC, "user", time.Now()))
	mock.ExpectQuery(byIDQuery).WithArgs("broken").WillReturnError(errors.New("conn reset"))

	got, err := repo.GetByID(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, common.RoleUser, got.Role)

	_, err = repo.GetByID(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
