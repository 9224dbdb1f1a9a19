package service

import (
	"fmt"
	"testing"

	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/repository"
	"github.com/nongdanviet/nongdanviet-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupFollowServiceTest(t *testing.T) (FollowService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	svc := NewFollowService(
		repository.NewFollowRepository(testDB),
		repository.NewUserRepository(testDB),
	)
	return svc, testDB
}

func createFollowTestUser(t *testing.T, testDB *gorm.DB, n int) *model.User {
	user := &model.User{
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: "hash",
		Username:     fmt.Sprintf("nongdan%02d", n),
		FullName:     fmt.Sprintf("Nông Dân %d", n),
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func TestFollowService_Follow(t *testing.T) {
	svc, testDB := setupFollowServiceTest(t)
	a := createFollowTestUser(t, testDB, 1)
	b := createFollowTestUser(t, testDB, 2)

	require.NoError(t, svc.Follow(a.ID, b.ID))

	following, err := svc.IsFollowing(a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// chiều ngược lại chưa theo dõi
	reverse, err := svc.IsFollowing(b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, reverse)
}

func TestFollowService_Follow_Self(t *testing.T) {
	svc, testDB := setupFollowServiceTest(t)
	a := createFollowTestUser(t, testDB, 1)

	err := svc.Follow(a.ID, a.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)
}

func TestFollowService_Follow_Duplicate(t *testing.T) {
	svc, testDB := setupFollowServiceTest(t)
	a := createFollowTestUser(t, testDB, 1)
	b := createFollowTestUser(t, testDB, 2)

	require.NoError(t, svc.Follow(a.ID, b.ID))
	err := svc.Follow(a.ID, b.ID)
	assert.ErrorIs(t, err, ErrAlreadyFollows)
}

func TestFollowService_Follow_FolloweeNotFound(t *testing.T) {
	svc, testDB := setupFollowServiceTest(t)
	a := createFollowTestUser(t, testDB, 1)

	err := svc.Follow(a.ID, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFollowService_Unfollow(t *testing.T) {
	svc, testDB := setupFollowServiceTest(t)
	a := createFollowTestUser(t, testDB, 1)
	b := createFollowTestUser(t, testDB, 2)

	require.NoError(t, svc.Follow(a.ID, b.ID))
	require.NoError(t, svc.Unfollow(a.ID, b.ID))

	following, err := svc.IsFollowing(a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollowService_Unfollow_NotFollowing(t *testing.T) {
	svc, testDB := setupFollowServiceTest(t)
	a := createFollowTestUser(t, testDB, 1)
	b := createFollowTestUser(t, testDB, 2)

	err := svc.Unfollow(a.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotFollowing)
}

func TestFollowService_GetFollowersAndStats(t *testing.T) {
	svc, testDB := setupFollowServiceTest(t)
	target := createFollowTestUser(t, testDB, 1)
	f1 := createFollowTestUser(t, testDB, 2)
	f2 := createFollowTestUser(t, testDB, 3)
	other := createFollowTestUser(t, testDB, 4)

	require.NoError(t, svc.Follow(f1.ID, target.ID))
	require.NoError(t, svc.Follow(f2.ID, target.ID))
	require.NoError(t, svc.Follow(target.ID, other.ID))

	followers, err := svc.GetFollowers(target.ID)
	require.NoError(t, err)
	assert.Len(t, followers, 2)

	following, err := svc.GetFollowing(target.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, other.ID, following[0].ID)

	stats, err := svc.GetStats(target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Followers)
	assert.Equal(t, int64(1), stats.Following)
}
