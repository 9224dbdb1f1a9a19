package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse cấu trúc phản hồi lỗi chuẩn
type ErrorResponse struct {
	Error   string `json:"error"`   // mã lỗi (front-end dùng để ánh xạ)
	Message string `json:"message"` // thông báo tiếng Việt cho người dùng
}

// RespondWithError trả phản hồi lỗi
// statusCode: mã HTTP
// errorCode: hằng mã lỗi (xem codes.go)
// message: thông báo tiếng Việt hiển thị cho người dùng
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// Các hàm rút gọn cho lỗi dùng thường xuyên

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Vui lòng đăng nhập để tiếp tục"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Bạn không có quyền truy cập"
	}
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Đã xảy ra lỗi máy chủ. Vui lòng thử lại sau"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// ValidationError lỗi kiểm tra dữ liệu (nhiều trường)
type ValidationError struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"` // lỗi theo từng trường
}

func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ValidationError{
		Error:   ValidationInvalidInput,
		Message: "Dữ liệu nhập vào không hợp lệ",
		Fields:  fields,
	})
}
