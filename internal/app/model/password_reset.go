package model

import (
	"time"
)

type PasswordReset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                    // ID bản ghi đặt lại mật khẩu
	Email     string    `gorm:"size:255;not null;index" json:"email"`    // Email yêu cầu
	Token     string    `gorm:"size:255;not null;unique;index" json:"-"` // Token đặt lại (không trả ra ngoài)
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`              // Hạn hiệu lực
	Used      bool      `gorm:"default:false" json:"used"`               // Đã dùng hay chưa
	CreatedAt time.Time `json:"created_at"`                              // Thời điểm tạo
}

func (PasswordReset) TableName() string {
	return "password_resets"
}
