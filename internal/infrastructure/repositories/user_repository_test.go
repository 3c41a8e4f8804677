package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/you/classauth/domain"
)

func setupUserRepo(t *testing.T) *UserRepositoryImpl {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&DBUser{}))

	return NewUserRepository(db)
}

func seedUser(t *testing.T, repo *UserRepositoryImpl) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:        "teacher@school.edu",
		Phone:        "+84901234567",
		PasswordHash: "hash",
		Role:         "teacher",
		IsActive:     true,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	require.NotZero(t, user.ID)
	return user
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()
	user := seedUser(t, repo)

	byEmail, err := repo.FindByEmail(ctx, "teacher@school.edu")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byPhone, err := repo.FindByPhone(ctx, "+84901234567")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byPhone.ID)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "teacher", byID.Role)
	assert.True(t, byID.IsActive)
	assert.False(t, byID.PhoneVerified)
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "missing@school.edu")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.FindByPhone(ctx, "+10000000000")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_ActivatePhone(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()
	user := seedUser(t, repo)

	require.NoError(t, repo.ActivatePhone(ctx, user.ID))

	loaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, loaded.PhoneVerified)
}

func TestUserRepository_LookupUserID(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()
	user := seedUser(t, repo)

	id, err := repo.LookupUserID(ctx, "teacher@school.edu")
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	id, err = repo.LookupUserID(ctx, "+84901234567")
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	_, err = repo.LookupUserID(ctx, "nobody@school.edu")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
