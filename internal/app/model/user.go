package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string // quyền người dùng

const (
	RoleUser  UserRole = "user"  // nông dân / người dùng thường
	RoleAdmin UserRole = "admin" // quản trị viên (duyệt hồ sơ xác minh)
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`                        // ID người dùng
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`           // Email đăng nhập
	PasswordHash string         `gorm:"not null" json:"-"`                           // Mật khẩu đã băm
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`        // Tên tài khoản
	FullName     string         `gorm:"not null" json:"full_name"`                   // Họ và tên hiển thị
	Phone        string         `json:"phone"`                                       // Số điện thoại
	AvatarURL    string         `json:"avatar_url"`                                  // Ảnh đại diện
	Province     string         `json:"province"`                                    // Tỉnh/thành (vd: Bến Tre)
	IsVerified   bool           `gorm:"default:false" json:"is_verified"`            // Đã được xác minh nông dân
	Role         UserRole       `gorm:"type:varchar(20);default:'user'" json:"role"` // Quyền
	CreatedAt    time.Time      `json:"created_at"`                                  // Thời điểm tạo
	UpdatedAt    time.Time      `json:"updated_at"`                                  // Thời điểm cập nhật
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                              // Xoá mềm
}

func (User) TableName() string {
	return "users"
}
