package repository

import (
	"time"

	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"github.com/nongdanviet/nongdanviet-backend/pkg/logger"
	"gorm.io/gorm"
)

// DecisionUpdate các trường được ghi cùng lúc với chuyển trạng thái.
// VerifiedBy/VerifiedAt luôn đi kèm status trong cùng một câu UPDATE.
type DecisionUpdate struct {
	Status          string
	VerifiedBy      uint
	VerifiedAt      time.Time
	RejectionReason string
}

type VerificationRepository interface {
	Create(doc *model.VerificationDocument) error
	FindByID(id uint) (*model.VerificationDocument, error)
	FindByTransactionID(transactionID uint) (*model.VerificationDocument, error)
	FindActiveByTransactionID(transactionID uint) (*model.VerificationDocument, error)
	FindByUserID(userID uint) ([]model.VerificationDocument, error)
	FindAll(status string) ([]model.VerificationDocument, error)
	// Decide áp dụng quyết định bằng một câu UPDATE có điều kiện
	// (chỉ thành công khi bản ghi còn pending). Trả về false nếu
	// hồ sơ đã có quyết định trước đó.
	Decide(id uint, update DecisionUpdate) (bool, error)
}

type verificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) Create(doc *model.VerificationDocument) error {
	logger.Debug("Creating verification document in database", map[string]interface{}{
		"user_id":       doc.UserID,
		"document_type": doc.DocumentType,
	})

	if err := r.db.Create(doc).Error; err != nil {
		logger.Error("Failed to create verification document in database", err, map[string]interface{}{
			"user_id": doc.UserID,
		})
		return err
	}

	return nil
}

func (r *verificationRepository) FindByID(id uint) (*model.VerificationDocument, error) {
	var doc model.VerificationDocument
	err := r.db.Preload("User").Preload("Reviewer").First(&doc, id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByTransactionID trả về hồ sơ mới nhất của một giao dịch.
// Nếu dữ liệu ngoài luồng đã tạo nhiều hồ sơ cho cùng giao dịch,
// lấy bản ghi được tạo gần nhất.
func (r *verificationRepository) FindByTransactionID(transactionID uint) (*model.VerificationDocument, error) {
	var doc model.VerificationDocument
	err := r.db.Preload("User").Preload("Reviewer").
		Where("transaction_id = ?", transactionID).
		Order("created_at DESC, id DESC").
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindActiveByTransactionID tìm hồ sơ pending hoặc approved của một giao dịch
// (phục vụ ràng buộc: mỗi giao dịch tối đa một hồ sơ pending/approved)
func (r *verificationRepository) FindActiveByTransactionID(transactionID uint) (*model.VerificationDocument, error) {
	var doc model.VerificationDocument
	err := r.db.
		Where("transaction_id = ? AND status IN ?", transactionID,
			[]string{model.DocumentStatusPending, model.DocumentStatusApproved}).
		Order("created_at DESC, id DESC").
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *verificationRepository) FindByUserID(userID uint) ([]model.VerificationDocument, error) {
	var docs []model.VerificationDocument
	err := r.db.Preload("Reviewer").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// FindAll liệt kê hồ sơ, mới nhất trước; status rỗng nghĩa là tất cả.
// Kèm thông tin người nộp và người duyệt cho bảng điều khiển kiểm duyệt.
func (r *verificationRepository) FindAll(status string) ([]model.VerificationDocument, error) {
	var docs []model.VerificationDocument

	query := r.db.Preload("User").Preload("Reviewer")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	err := query.Order("created_at DESC, id DESC").Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *verificationRepository) Decide(id uint, update DecisionUpdate) (bool, error) {
	logger.Debug("Applying verification decision in database", map[string]interface{}{
		"document_id": id,
		"status":      update.Status,
	})

	// UPDATE có điều kiện: chỉ ghi đè khi trạng thái lưu trữ vẫn là pending.
	// Hai người duyệt đồng thời thì đúng một người thắng; người còn lại
	// thấy RowsAffected == 0.
	result := r.db.Model(&model.VerificationDocument{}).
		Where("id = ? AND status = ?", id, model.DocumentStatusPending).
		Updates(map[string]interface{}{
			"status":           update.Status,
			"verified_by":      update.VerifiedBy,
			"verified_at":      update.VerifiedAt,
			"rejection_reason": update.RejectionReason,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		logger.Error("Failed to apply verification decision in database", result.Error, map[string]interface{}{
			"document_id": id,
		})
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
