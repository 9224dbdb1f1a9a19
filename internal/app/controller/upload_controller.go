package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/nongdanviet/nongdanviet-backend/internal/errors"
	"github.com/nongdanviet/nongdanviet-backend/internal/middleware"
	"github.com/nongdanviet/nongdanviet-backend/internal/storage"
)

// UploadController cấp URL tải ảnh đại diện trực tiếp lên S3
type UploadController struct {
	s3Storage *storage.S3Storage
}

func NewUploadController(s3Storage *storage.S3Storage) *UploadController {
	return &UploadController{s3Storage: s3Storage}
}

type PresignRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	FileSize    int64  `json:"file_size" binding:"required,min=1"`
}

// PresignAvatarUpload cấp URL PUT có chữ ký cho ảnh đại diện
// POST /api/v1/uploads/avatar
func (ctrl *UploadController) PresignAvatarUpload(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Vui lòng đăng nhập")
		return
	}

	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Thông tin tệp không hợp lệ")
		return
	}

	if err := ctrl.s3Storage.ValidateFileSize(req.FileSize, storage.MaxAvatarSize); err != nil {
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "Ảnh đại diện không được vượt quá 2MB")
		return
	}
	if err := ctrl.s3Storage.ValidateContentType(req.ContentType, storage.AllowedImageTypes); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Chỉ chấp nhận ảnh JPEG, PNG hoặc WebP")
		return
	}

	resp, err := ctrl.s3Storage.GeneratePresignedURL(req.Filename, req.ContentType, "avatars", userID)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.UploadFailed, "Không tạo được liên kết tải lên. Vui lòng thử lại")
		return
	}

	c.JSON(http.StatusOK, resp)
}
