package repository

import (
	"time"

	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"gorm.io/gorm"
)

type PasswordResetRepository interface {
	Create(reset *model.PasswordReset) error
	FindByToken(token string) (*model.PasswordReset, error)
	MarkUsed(id uint) error
	DeleteExpired() error
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(reset *model.PasswordReset) error {
	return r.db.Create(reset).Error
}

func (r *passwordResetRepository) FindByToken(token string) (*model.PasswordReset, error) {
	var reset model.PasswordReset
	if err := r.db.Where("token = ?", token).First(&reset).Error; err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *passwordResetRepository) MarkUsed(id uint) error {
	return r.db.Model(&model.PasswordReset{}).
		Where("id = ?", id).
		Update("used", true).Error
}

// DeleteExpired dọn các token đã hết hạn
func (r *passwordResetRepository) DeleteExpired() error {
	return r.db.Where("expires_at < ?", time.Now()).
		Delete(&model.PasswordReset{}).Error
}
