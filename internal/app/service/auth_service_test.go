package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/repository"
	"github.com/nongdanviet/nongdanviet-backend/internal/db"
	"github.com/nongdanviet/nongdanviet-backend/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthServiceTest(t *testing.T) AuthService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	return NewAuthService(userRepo, "test-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc := setupAuthServiceTest(t)

	user, tokens, err := svc.Register("tam@example.com", "matkhau123", "nongdan01", "Nguyễn Văn Tám", "Bến Tre")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, tokens)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.False(t, user.IsVerified)

	loggedIn, loginTokens, err := svc.Login("tam@example.com", "matkhau123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, loginTokens.AccessToken)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc := setupAuthServiceTest(t)

	_, _, err := svc.Register("tam@example.com", "matkhau123", "nongdan01", "Nguyễn Văn Tám", "Bến Tre")
	require.NoError(t, err)

	_, _, err = svc.Register("tam@example.com", "khacmatkhau", "nongdan02", "Trần Thị Chín", "Trà Vinh")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	svc := setupAuthServiceTest(t)

	_, _, err := svc.Register("tam@example.com", "matkhau123", "nongdan01", "Nguyễn Văn Tám", "Bến Tre")
	require.NoError(t, err)

	_, _, err = svc.Register("chin@example.com", "matkhau123", "nongdan01", "Trần Thị Chín", "Trà Vinh")
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc := setupAuthServiceTest(t)

	_, _, err := svc.Register("tam@example.com", "matkhau123", "nongdan01", "Nguyễn Văn Tám", "Bến Tre")
	require.NoError(t, err)

	_, _, err = svc.Login("tam@example.com", "saimatkhau")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := setupAuthServiceTest(t)

	_, _, err := svc.Login("khong-ton-tai@example.com", "matkhau123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_RefreshToken(t *testing.T) {
	svc := setupAuthServiceTest(t)

	_, tokens, err := svc.Register("tam@example.com", "matkhau123", "nongdan01", "Nguyễn Văn Tám", "Bến Tre")
	require.NoError(t, err)

	newTokens, err := svc.RefreshToken(tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, newTokens.AccessToken)
	assert.NotEmpty(t, newTokens.RefreshToken)
}

func TestAuthService_RefreshToken_Invalid(t *testing.T) {
	svc := setupAuthServiceTest(t)

	_, err := svc.RefreshToken("khong-phai-token")
	assert.Error(t, err)
}

func TestAuthService_RevokeThenRefresh(t *testing.T) {
	svc := setupAuthServiceTest(t)

	mr := miniredis.RunT(t)
	redis.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		redis.SetClient(nil)
	})

	_, tokens, err := svc.Register("tam@example.com", "matkhau123", "nongdan01", "Nguyễn Văn Tám", "Bến Tre")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(tokens.RefreshToken))

	// Token đã thu hồi thì không cấp lại được cặp token mới
	_, err = svc.RefreshToken(tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
