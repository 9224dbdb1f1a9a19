package service

import (
	"errors"
	"time"

	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/repository"
	"github.com/nongdanviet/nongdanviet-backend/pkg/logger"
	"github.com/nongdanviet/nongdanviet-backend/pkg/mailer"
	"github.com/nongdanviet/nongdanviet-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrResetTokenInvalid = errors.New("reset token is invalid")
	ErrResetTokenExpired = errors.New("reset token has expired")
	ErrResetTokenUsed    = errors.New("reset token has already been used")
)

// Thời hạn hiệu lực của mã đặt lại mật khẩu
const resetTokenExpiry = 1 * time.Hour

type PasswordResetService interface {
	RequestReset(email string) error
	ResetPassword(token, newPassword string) error
	CleanupExpired() error
}

type passwordResetService struct {
	resetRepo repository.PasswordResetRepository
	userRepo  repository.UserRepository
	mailer    *mailer.Mailer
}

func NewPasswordResetService(
	resetRepo repository.PasswordResetRepository,
	userRepo repository.UserRepository,
	m *mailer.Mailer,
) PasswordResetService {
	return &passwordResetService{
		resetRepo: resetRepo,
		userRepo:  userRepo,
		mailer:    m,
	}
}

// RequestReset tạo mã đặt lại và gửi qua email. Email không tồn tại vẫn
// trả về thành công để tránh dò tài khoản.
func (s *passwordResetService) RequestReset(email string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("Password reset requested for unknown email", map[string]interface{}{
				"email": email,
			})
			return nil
		}
		return err
	}

	token, err := util.GenerateSecureToken(32)
	if err != nil {
		logger.Error("Failed to generate reset token", err, nil)
		return err
	}

	reset := &model.PasswordReset{
		Email:     user.Email,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenExpiry),
	}
	if err := s.resetRepo.Create(reset); err != nil {
		logger.Error("Failed to persist reset token", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	if err := s.mailer.SendPasswordReset(user.Email, token); err != nil {
		return err
	}

	logger.Info("Password reset token issued", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// ResetPassword đổi mật khẩu bằng mã hợp lệ; mỗi mã chỉ dùng một lần
func (s *passwordResetService) ResetPassword(token, newPassword string) error {
	reset, err := s.resetRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	if reset.Used {
		return ErrResetTokenUsed
	}
	if time.Now().After(reset.ExpiresAt) {
		return ErrResetTokenExpired
	}

	user, err := s.userRepo.FindByEmail(reset.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	if err := s.resetRepo.MarkUsed(reset.ID); err != nil {
		logger.Error("Failed to mark reset token as used", err, map[string]interface{}{
			"reset_id": reset.ID,
		})
	}

	logger.Info("Password reset completed", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// CleanupExpired dọn token hết hạn (chạy định kỳ qua scheduler)
func (s *passwordResetService) CleanupExpired() error {
	return s.resetRepo.DeleteExpired()
}
