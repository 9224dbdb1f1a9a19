package errors

// Mã lỗi trả về cho front-end
// Định dạng: CATEGORY_SPECIFIC_DETAIL
// Front-end ánh xạ mã này sang thông báo hiển thị

const (
	// ==================== Xác thực (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // cần đăng nhập
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // sai email/mật khẩu
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token hết hạn
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // token không hợp lệ
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // email trùng
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"     // tên tài khoản trùng

	// ==================== Phân quyền (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"      // không có quyền truy cập
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // thiếu thông tin quyền
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"     // chỉ quản trị viên

	// ==================== Kiểm tra dữ liệu (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // dữ liệu không hợp lệ
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // ID không hợp lệ
	ValidationRequired      = "VALIDATION_REQUIRED"       // thiếu trường bắt buộc
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT" // sai định dạng

	// ==================== Tài nguyên (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // không tìm thấy
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // đã tồn tại
	ResourceConflict      = "RESOURCE_CONFLICT"       // xung đột dữ liệu

	// ==================== Hồ sơ xác minh (VERIFICATION_) ====================
	VerificationNotFound        = "VERIFICATION_NOT_FOUND"         // không tìm thấy hồ sơ
	VerificationAlreadyDecided  = "VERIFICATION_ALREADY_DECIDED"   // hồ sơ đã có quyết định
	VerificationMissingEvidence = "VERIFICATION_MISSING_EVIDENCE"  // thiếu ảnh minh chứng
	VerificationMissingReason   = "VERIFICATION_MISSING_REASON"    // thiếu lý do từ chối
	VerificationInvalidAction   = "VERIFICATION_INVALID_ACTION"    // thao tác duyệt không hợp lệ
	VerificationInvalidType     = "VERIFICATION_INVALID_TYPE"      // loại giấy tờ không hợp lệ
	VerificationDuplicate       = "VERIFICATION_DUPLICATE"         // giao dịch đã có hồ sơ chờ/đã duyệt

	// ==================== Theo dõi (FOLLOW_) ====================
	FollowSelfForbidden = "FOLLOW_SELF_FORBIDDEN" // không thể tự theo dõi
	FollowAlreadyExists = "FOLLOW_ALREADY_EXISTS" // đã theo dõi rồi
	FollowNotFound      = "FOLLOW_NOT_FOUND"      // chưa theo dõi

	// ==================== Độ mặn (SALINITY_) ====================
	SalinityStationNotFound = "SALINITY_STATION_NOT_FOUND" // không tìm thấy trạm
	SalinityNoReading       = "SALINITY_NO_READING"        // trạm chưa có số liệu

	// ==================== Tải lên (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // sai định dạng tệp
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"    // tệp quá lớn
	UploadFileRequired    = "UPLOAD_FILE_REQUIRED"     // thiếu tệp
	UploadFailed          = "UPLOAD_FAILED"            // tải lên thất bại

	// ==================== Lỗi hệ thống (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // lỗi máy chủ
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // lỗi cơ sở dữ liệu
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // lỗi dịch vụ ngoài
)
