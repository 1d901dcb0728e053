package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"sharedcal/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users \(username, password_hash, role, created_at, updated_at\)`).
					WithArgs("alice", "hash", domain.RoleUser, ts, ts).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u-uuid-1"))
			},
		},
		{
			name: "duplicate username",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pq.Error{Code: uniqueViolation})
			},
			wantErr: domain.ErrDuplicateUsername,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewUserRepository(db)
			user := &domain.User{Username: "alice", PasswordHash: "hash", Role: domain.RoleUser, CreatedAt: ts, UpdatedAt: ts}
			err = repo.Create(ctx, user)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "u-uuid-1", user.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at", "updated_at"}).
			AddRow("u-uuid-1", "alice", "hash", domain.RoleAdmin, ts, ts)
		mock.ExpectQuery(`SELECT id, username, password_hash, role, created_at, updated_at FROM users WHERE username = \$1`).
			WithArgs("alice").
			WillReturnRows(rows)

		repo := NewUserRepository(db)
		user, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "alice", user.Username)
		require.Equal(t, domain.RoleAdmin, user.Role)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1`).
			WithArgs("nobody").
			WillReturnError(sql.ErrNoRows)

		repo := NewUserRepository(db)
		_, err = repo.GetByUsername(ctx, "nobody")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
