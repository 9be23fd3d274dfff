package services

import (
	"context"
	"testing"
	"time"

	"github.com/andrej/teamup-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupUserService(t *testing.T) (*UserService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewUserService(db), mock
}

func TestUserService_Register(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "email", "name", "avatar_url", "password_hash", "created_at", "updated_at"}).
		AddRow(userID, "ana@example.com", "Ana", (*string)(nil), "hashed", now, now)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ana@example.com", "Ana", pgxmock.AnyArg()).
		WillReturnRows(rows)

	user, err := svc.Register(ctx, "ana@example.com", "Ana", "password123")

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Register_EmailTaken(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ana@example.com", "Ana", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := svc.Register(ctx, "ana@example.com", "Ana", "password123")

	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Authenticate(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"id", "email", "name", "avatar_url", "password_hash", "created_at", "updated_at"}).
		AddRow(userID, "ana@example.com", "Ana", (*string)(nil), string(hash), now, now)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email`).
		WithArgs("ana@example.com").
		WillReturnRows(rows)

	user, err := svc.Authenticate(ctx, "ana@example.com", "password123")

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Authenticate_WrongPassword(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	now := time.Now()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"id", "email", "name", "avatar_url", "password_hash", "created_at", "updated_at"}).
		AddRow(uuid.New(), "ana@example.com", "Ana", (*string)(nil), string(hash), now, now)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email`).
		WithArgs("ana@example.com").
		WillReturnRows(rows)

	_, err = svc.Authenticate(ctx, "ana@example.com", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Authenticate_UnknownEmail(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email`).
		WithArgs("ghost@example.com").
		WillReturnError(assert.AnError)

	_, err := svc.Authenticate(ctx, "ghost@example.com", "password123")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Update(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "email", "name", "avatar_url", "password_hash", "created_at", "updated_at"}).
		AddRow(userID, "ana@example.com", "Ana Novak", (*string)(nil), "hashed", now, now)

	mock.ExpectQuery(`UPDATE users SET name`).
		WithArgs("Ana Novak", userID).
		WillReturnRows(rows)

	user, err := svc.Update(ctx, userID, "Ana Novak")

	require.NoError(t, err)
	assert.Equal(t, "Ana Novak", user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
