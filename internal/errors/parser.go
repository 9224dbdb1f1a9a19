package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo thông tin lỗi đã phân loại
type ErrorInfo struct {
	Code    string // mã lỗi (xem codes.go)
	Message string // thông báo tiếng Việt
}

// ParseError phân loại lỗi tầng dữ liệu thành mã lỗi + thông báo cho người dùng.
// Không để lộ chi tiết nhạy cảm nhưng vẫn cho người dùng biết cách xử lý.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Đã xảy ra lỗi máy chủ",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. Lỗi GORM cơ bản
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. Lỗi PostgreSQL

	// 2-1. Vi phạm unique constraint (23505)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// 2-2. Vi phạm foreign key constraint (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStr)
	}

	// 2-3. Vi phạm not-null constraint (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "Thiếu thông tin bắt buộc",
		}
	}

	// 3. Lỗi mạng / kết nối
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "Không kết nối được dịch vụ ngoài. Vui lòng thử lại sau",
		}
	}

	// 4. Mặc định: lỗi máy chủ
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// ParseAndRespond phân loại lỗi rồi trả phản hồi; fallbackStatus dùng khi
// không suy ra được mã HTTP phù hợp hơn từ loại lỗi
func ParseAndRespond(c *gin.Context, fallbackStatus int, err error, context string) {
	info := ParseError(err, context)

	status := fallbackStatus
	switch info.Code {
	case ResourceNotFound, SalinityStationNotFound:
		status = http.StatusNotFound
	case AuthEmailAlreadyExists, AuthUsernameExists, FollowAlreadyExists, ResourceAlreadyExists, ResourceConflict:
		status = http.StatusConflict
	case ValidationRequired:
		status = http.StatusBadRequest
	}

	RespondWithError(c, status, info.Code, info.Message)
}

// parseDuplicateKeyError phân loại lỗi trùng khoá unique
func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_users_email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "Email đã được sử dụng",
		}
	}

	if strings.Contains(errLower, "username") || strings.Contains(errLower, "idx_users_username") {
		return ErrorInfo{
			Code:    AuthUsernameExists,
			Message: "Tên tài khoản đã được sử dụng",
		}
	}

	if strings.Contains(errLower, "idx_follows_pair") {
		return ErrorInfo{
			Code:    FollowAlreadyExists,
			Message: "Bạn đã theo dõi người này rồi",
		}
	}

	if strings.Contains(errLower, "code") || strings.Contains(errLower, "idx_salinity_stations_code") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "Mã trạm đo đã tồn tại",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "Dữ liệu đã tồn tại",
	}
}

// parseForeignKeyError phân loại lỗi khoá ngoại
func parseForeignKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "still referenced") || strings.Contains(errLower, "is still referenced by") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "Không thể xoá vì còn dữ liệu liên kết",
		}
	}

	if strings.Contains(errLower, "user_id") || strings.Contains(errLower, "fk_users") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "Người dùng không tồn tại",
		}
	}
	if strings.Contains(errLower, "transaction_id") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "Giao dịch không tồn tại",
		}
	}
	if strings.Contains(errLower, "station_id") {
		return ErrorInfo{
			Code:    SalinityStationNotFound,
			Message: "Trạm đo không tồn tại",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "Không tìm thấy dữ liệu tham chiếu",
	}
}

// getNotFoundMessage thông báo not found theo ngữ cảnh
func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "verification") || strings.Contains(contextLower, "hồ sơ") {
		return "Không tìm thấy hồ sơ xác minh"
	}
	if strings.Contains(contextLower, "user") || strings.Contains(contextLower, "người dùng") {
		return "Không tìm thấy người dùng"
	}
	if strings.Contains(contextLower, "transaction") || strings.Contains(contextLower, "giao dịch") {
		return "Không tìm thấy giao dịch"
	}
	if strings.Contains(contextLower, "station") || strings.Contains(contextLower, "trạm") {
		return "Không tìm thấy trạm đo"
	}
	if strings.Contains(contextLower, "follow") || strings.Contains(contextLower, "theo dõi") {
		return "Không tìm thấy quan hệ theo dõi"
	}

	return "Không tìm thấy dữ liệu yêu cầu"
}

// getDefaultErrorMessage thông báo mặc định theo ngữ cảnh
func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "create") || strings.Contains(contextLower, "tạo") || strings.Contains(contextLower, "nộp") {
		return "Có lỗi khi lưu dữ liệu. Vui lòng thử lại sau"
	}
	if strings.Contains(contextLower, "update") || strings.Contains(contextLower, "cập nhật") || strings.Contains(contextLower, "duyệt") {
		return "Có lỗi khi cập nhật dữ liệu. Vui lòng thử lại sau"
	}
	if strings.Contains(contextLower, "delete") || strings.Contains(contextLower, "xoá") {
		return "Có lỗi khi xoá dữ liệu. Vui lòng thử lại sau"
	}

	return "Đã xảy ra lỗi máy chủ. Vui lòng thử lại sau"
}
