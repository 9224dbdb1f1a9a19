package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/service"
	apperrors "github.com/nongdanviet/nongdanviet-backend/internal/errors"
	"github.com/nongdanviet/nongdanviet-backend/internal/middleware"
	"github.com/nongdanviet/nongdanviet-backend/internal/storage"
)

// VerificationController hồ sơ xác minh nông dân:
// nông dân nộp giấy tờ, quản trị viên duyệt hoặc từ chối
type VerificationController struct {
	verificationService service.VerificationService
	s3Storage           *storage.S3Storage
}

func NewVerificationController(verificationService service.VerificationService, s3Storage *storage.S3Storage) *VerificationController {
	return &VerificationController{
		verificationService: verificationService,
		s3Storage:           s3Storage,
	}
}

type DecideRequest struct {
	Action string `json:"action" binding:"required"` // approve | reject
	Reason string `json:"reason"`                    // bắt buộc khi reject
}

// SubmitDocument nộp hồ sơ xác minh (multipart: ảnh giấy tờ + thông tin)
// POST /api/v1/verifications
func (ctrl *VerificationController) SubmitDocument(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Vui lòng đăng nhập")
		return
	}

	documentType := c.PostForm("document_type")
	if !model.IsValidDocumentType(documentType) {
		apperrors.BadRequest(c, apperrors.VerificationInvalidType, "Loại giấy tờ không hợp lệ")
		return
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		apperrors.BadRequest(c, apperrors.UploadFileRequired, "Vui lòng đính kèm ảnh giấy tờ")
		return
	}

	if err := ctrl.s3Storage.ValidateFileSize(fileHeader.Size, storage.MaxDocumentSize); err != nil {
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "Ảnh giấy tờ không được vượt quá 5MB")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := ctrl.s3Storage.ValidateContentType(contentType, storage.AllowedImageTypes); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Chỉ chấp nhận ảnh JPEG, PNG hoặc WebP")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", err, nil)
		apperrors.InternalError(c, "Không đọc được tệp tải lên")
		return
	}
	defer file.Close()

	documentURL, err := ctrl.s3Storage.Upload(c.Request.Context(), file, fileHeader.Filename, contentType, "verifications", userID)
	if err != nil {
		log.Error("Failed to upload verification document", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.UploadFailed, "Tải ảnh lên thất bại. Vui lòng thử lại")
		return
	}

	input := service.SubmissionInput{
		DocumentType:  documentType,
		DocumentURL:   documentURL,
		ReferenceLink: c.PostForm("reference_link"),
		Notes:         c.PostForm("notes"),
	}
	if raw := c.PostForm("transaction_id"); raw != "" {
		txID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Mã giao dịch không hợp lệ")
			return
		}
		id := uint(txID)
		input.TransactionID = &id
	}

	doc, err := ctrl.verificationService.SubmitDocument(userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDocumentType):
			apperrors.BadRequest(c, apperrors.VerificationInvalidType, "Loại giấy tờ không hợp lệ")
		case errors.Is(err, service.ErrMissingDocumentURL):
			apperrors.BadRequest(c, apperrors.UploadFileRequired, "Thiếu ảnh giấy tờ")
		case errors.Is(err, service.ErrDuplicateSubmission):
			apperrors.Conflict(c, apperrors.VerificationDuplicate, "Giao dịch này đã có hồ sơ đang chờ hoặc đã được duyệt")
		case errors.Is(err, service.ErrTransactionNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Không tìm thấy giao dịch")
		default:
			log.Error("Failed to submit verification document", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "submit verification")
		}
		return
	}

	log.Info("Verification document submitted", map[string]interface{}{
		"document_id": doc.ID,
		"user_id":     userID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Nộp hồ sơ xác minh thành công. Vui lòng chờ duyệt",
		"document": doc,
	})
}

// GetMyDocuments lịch sử hồ sơ của người dùng hiện tại
// GET /api/v1/verifications/me
func (ctrl *VerificationController) GetMyDocuments(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Vui lòng đăng nhập")
		return
	}

	docs, err := ctrl.verificationService.ListByUser(userID)
	if err != nil {
		log.Error("Failed to list user documents", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list verifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": docs,
		"total":     len(docs),
	})
}

// GetDocument chi tiết một hồ sơ
// GET /api/v1/verifications/:id
func (ctrl *VerificationController) GetDocument(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	documentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := ctrl.verificationService.GetByID(documentID)
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			apperrors.NotFound(c, apperrors.VerificationNotFound, "Không tìm thấy hồ sơ xác minh")
			return
		}
		log.Error("Failed to get verification document", err, map[string]interface{}{
			"document_id": documentID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get verification")
		return
	}

	// Chủ hồ sơ hoặc quản trị viên mới được xem
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)
	if doc.UserID != userID && role != model.RoleAdmin {
		apperrors.Forbidden(c, "Bạn không có quyền xem hồ sơ này")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document": doc,
	})
}

// ListDocuments danh sách hồ sơ cho bảng kiểm duyệt (chỉ quản trị viên)
// GET /api/v1/admin/verifications?status=pending
func (ctrl *VerificationController) ListDocuments(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	status := c.Query("status")
	switch status {
	case "", model.DocumentStatusPending, model.DocumentStatusApproved, model.DocumentStatusRejected:
	default:
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Trạng thái lọc không hợp lệ")
		return
	}

	summaries, err := ctrl.verificationService.List(status)
	if err != nil {
		log.Error("Failed to list verification documents", err, map[string]interface{}{
			"status": status,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list verifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": summaries,
		"total":     len(summaries),
	})
}

// Decide duyệt hoặc từ chối một hồ sơ (chỉ quản trị viên)
// POST /api/v1/admin/verifications/:id/decide
func (ctrl *VerificationController) Decide(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actorID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Vui lòng đăng nhập")
		return
	}

	documentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Thiếu thao tác duyệt")
		return
	}

	doc, err := ctrl.verificationService.Decide(documentID, req.Action, actorID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDocumentNotFound):
			apperrors.NotFound(c, apperrors.VerificationNotFound, "Không tìm thấy hồ sơ xác minh")
		case errors.Is(err, service.ErrAlreadyDecided):
			apperrors.Conflict(c, apperrors.VerificationAlreadyDecided, "Hồ sơ đã được quyết định trước đó")
		case errors.Is(err, service.ErrMissingEvidence):
			apperrors.BadRequest(c, apperrors.VerificationMissingEvidence, "Không thể duyệt hồ sơ thiếu ảnh minh chứng")
		case errors.Is(err, service.ErrMissingReason):
			apperrors.BadRequest(c, apperrors.VerificationMissingReason, "Vui lòng nhập lý do từ chối")
		case errors.Is(err, service.ErrInvalidAction):
			apperrors.BadRequest(c, apperrors.VerificationInvalidAction, "Thao tác duyệt không hợp lệ")
		default:
			log.Error("Failed to decide verification document", err, map[string]interface{}{
				"document_id": documentID,
				"action":      req.Action,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "decide verification")
		}
		return
	}

	log.Info("Verification document decided", map[string]interface{}{
		"document_id": doc.ID,
		"status":      doc.Status,
		"actor_id":    actorID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":  decisionMessage(doc.Status),
		"document": doc,
	})
}

func decisionMessage(status string) string {
	if status == model.DocumentStatusApproved {
		return "Đã duyệt hồ sơ xác minh"
	}
	return "Đã từ chối hồ sơ xác minh"
}

// parseIDParam đọc tham số :id, trả lỗi 400 nếu không phải số dương
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID không hợp lệ")
		return 0, false
	}
	return uint(id), true
}
