package util

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSecureToken sinh token ngẫu nhiên an toàn (hex), dùng cho đặt lại mật khẩu
func GenerateSecureToken(byteLength int) (string, error) {
	bytes := make([]byte, byteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
