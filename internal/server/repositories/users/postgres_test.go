package users

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erisahalipaj/userauth/internal/common"
	"github.com/erisahalipaj/userauth/internal/server/models"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_username_key"}
}

func TestPostgresRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "alice", "$argon2id$hash").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	created, err := repo.Create(context.Background(), &models.User{Username: "alice", PasswordHash: "$argon2id$hash"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID, "store must assign an id")
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, now, created.CreatedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Create_DuplicateUsername(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "alice", "h").
		WillReturnError(uniqueViolation())

	_, err := repo.Create(context.Background(), &models.User{Username: "alice", PasswordHash: "h"})
	require.ErrorIs(t, err, common.ErrDuplicateUsername)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetByUsername(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, password_hash, created_at FROM users")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow("id-1", "alice", "h", now))

	user, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "id-1", user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "h", user.PasswordHash)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetByUsername_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, password_hash, created_at FROM users")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestPostgresRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, password_hash, created_at FROM users")).
		WithArgs("id-404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "id-404")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestPostgresRepository_Update_BothFields(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET username = $1, password_hash = $2 WHERE id = $3")).
		WithArgs("alice2", "h2", "id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	username := "alice2"
	hash := "h2"
	err := repo.Update(context.Background(), "id-1", UpdateFields{Username: &username, PasswordHash: &hash})
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Update_PasswordOnly(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $1 WHERE id = $2")).
		WithArgs("h3", "id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	hash := "h3"
	err := repo.Update(context.Background(), "id-1", UpdateFields{PasswordHash: &hash})
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Update_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET username = $1 WHERE id = $2")).
		WithArgs("alice2", "id-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	username := "alice2"
	err := repo.Update(context.Background(), "id-404", UpdateFields{Username: &username})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestPostgresRepository_Update_DuplicateUsername(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET username = $1 WHERE id = $2")).
		WithArgs("taken", "id-1").
		WillReturnError(uniqueViolation())

	username := "taken"
	err := repo.Update(context.Background(), "id-1", UpdateFields{Username: &username})
	require.ErrorIs(t, err, common.ErrDuplicateUsername)
}

func TestPostgresRepository_Update_NoFieldsIsNoop(t *testing.T) {
	repo, mock := newMockRepo(t)

	err := repo.Update(context.Background(), "id-1", UpdateFields{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet(), "no statement must be issued")
}

func TestPostgresRepository_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "id-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("id-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "id-404")
	require.ErrorIs(t, err, common.ErrNotFound)
}
