package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"hrdesk/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		expectedKind models.ErrorKind
		expectError  bool
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "login", "password"}).
					AddRow(1, "jdoe", "hash")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
			},
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectError:  true,
			expectedKind: models.KindNotFound,
		},
		{
			name:   "Database Error",
			userID: 2,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
					WithArgs(2, 1).
					WillReturnError(errors.New("connection timeout"))
			},
			expectError:  true,
			expectedKind: models.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectError {
				require.Error(t, err)
				assert.True(t, models.IsKind(err, tt.expectedKind))
				assert.Nil(t, user)
			} else if assert.NotNil(t, user) {
				assert.Equal(t, "jdoe", user.Login)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_NotFoundMessage(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WithArgs(999, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.GetByID(context.Background(), 999)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeUserNotFound, appErr.Code)
	assert.Equal(t, "The user with id 999 was not found", appErr.Message)
}

func TestUserRepository_LoginTaken(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE login = $1`)).
		WithArgs("jdoe").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	taken, err := repo.LoginTaken(ctx, "jdoe", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE login = $1 AND id <> $2`)).
		WithArgs("jdoe", 5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	taken, err = repo.LoginTaken(ctx, "jdoe", 5)
	require.NoError(t, err)
	assert.False(t, taken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicateLogin(t *testing.T) {
	db := setupSQLite(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Login: "jdoe", Password: "x"}))
	err := repo.Create(ctx, &models.User{Login: "jdoe", Password: "y"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepository_Update(t *testing.T) {
	db := setupSQLite(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Login: "jdoe", Password: "x"}
	require.NoError(t, repo.Create(ctx, user))

	user.Login = "jdoe2"
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "jdoe2", got.Login)
}
