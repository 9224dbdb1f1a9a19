package util

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost 12 cân bằng giữa an toàn và thời gian đăng nhập trên server nhỏ
const bcryptCost = 12

// bcrypt chỉ dùng 72 byte đầu của mật khẩu
const maxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// HashPassword băm mật khẩu bằng bcrypt trước khi lưu
func HashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword so mật khẩu người dùng nhập với hash đã lưu
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
