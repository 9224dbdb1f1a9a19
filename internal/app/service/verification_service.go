package service

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/repository"
	"github.com/nongdanviet/nongdanviet-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrDocumentNotFound    = errors.New("verification document not found")
	ErrAlreadyDecided      = errors.New("verification document already decided")
	ErrMissingEvidence     = errors.New("verification document has no evidence image")
	ErrMissingReason       = errors.New("rejection requires a non-empty reason")
	ErrInvalidAction       = errors.New("invalid review action")
	ErrInvalidDocumentType = errors.New("invalid document type")
	ErrMissingDocumentURL  = errors.New("document URL is required")
	ErrDuplicateSubmission = errors.New("transaction already has a pending or approved document")
	ErrTransactionNotFound = errors.New("credit transaction not found")
)

// Thao tác duyệt hồ sơ
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// SubmissionInput dữ liệu nộp hồ sơ xác minh
type SubmissionInput struct {
	TransactionID *uint  `json:"transaction_id"`
	DocumentType  string `json:"document_type"`
	DocumentURL   string `json:"document_url"`
	ReferenceLink string `json:"reference_link"`
	Notes         string `json:"notes"`
}

// DocumentSummary hồ sơ kèm danh tính người nộp và người duyệt
// (phục vụ bảng điều khiển kiểm duyệt)
type DocumentSummary struct {
	Document  model.VerificationDocument `json:"document"`
	Submitter IdentityInfo               `json:"submitter"`
	Reviewer  *IdentityInfo              `json:"reviewer,omitempty"`
}

// IdentityInfo danh tính rút gọn hiển thị trên giao diện
type IdentityInfo struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

type VerificationService interface {
	SubmitDocument(userID uint, input SubmissionInput) (*model.VerificationDocument, error)
	Decide(documentID uint, action string, actorID uint, reason string) (*model.VerificationDocument, error)
	GetByID(documentID uint) (*model.VerificationDocument, error)
	GetByTransaction(transactionID uint) (*model.VerificationDocument, error)
	ListByUser(userID uint) ([]model.VerificationDocument, error)
	List(statusFilter string) ([]DocumentSummary, error)
}

type verificationService struct {
	verificationRepo repository.VerificationRepository
	userRepo         repository.UserRepository
	transactionRepo  repository.TransactionRepository
}

func NewVerificationService(
	verificationRepo repository.VerificationRepository,
	userRepo repository.UserRepository,
	transactionRepo repository.TransactionRepository,
) VerificationService {
	return &verificationService{
		verificationRepo: verificationRepo,
		userRepo:         userRepo,
		transactionRepo:  transactionRepo,
	}
}

// SubmitDocument tạo hồ sơ mới ở trạng thái pending.
// Kiểm tra trường bắt buộc và ràng buộc mỗi giao dịch tối đa
// một hồ sơ pending/approved trước khi ghi.
func (s *verificationService) SubmitDocument(userID uint, input SubmissionInput) (*model.VerificationDocument, error) {
	logger.Info("Submitting verification document", map[string]interface{}{
		"user_id":       userID,
		"document_type": input.DocumentType,
	})

	if !model.IsValidDocumentType(input.DocumentType) {
		logger.Warn("Invalid document type submitted", map[string]interface{}{
			"user_id":       userID,
			"document_type": input.DocumentType,
		})
		return nil, ErrInvalidDocumentType
	}

	if strings.TrimSpace(input.DocumentURL) == "" {
		return nil, ErrMissingDocumentURL
	}

	if input.TransactionID != nil {
		if _, err := s.transactionRepo.FindByID(*input.TransactionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTransactionNotFound
			}
			return nil, err
		}

		existing, err := s.verificationRepo.FindActiveByTransactionID(*input.TransactionID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to check existing document for transaction", err, map[string]interface{}{
				"transaction_id": *input.TransactionID,
			})
			return nil, err
		}
		if existing != nil {
			logger.Warn("Transaction already has an active verification document", map[string]interface{}{
				"transaction_id":       *input.TransactionID,
				"existing_document_id": existing.ID,
				"existing_status":      existing.Status,
			})
			return nil, ErrDuplicateSubmission
		}
	}

	doc := &model.VerificationDocument{
		UserID:        userID,
		TransactionID: input.TransactionID,
		DocumentType:  input.DocumentType,
		DocumentURL:   input.DocumentURL,
		ReferenceLink: input.ReferenceLink,
		Notes:         input.Notes,
		Status:        model.DocumentStatusPending,
	}

	if err := s.verificationRepo.Create(doc); err != nil {
		logger.Error("Failed to create verification document", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Verification document submitted", map[string]interface{}{
		"document_id": doc.ID,
		"user_id":     userID,
	})

	return doc, nil
}

// Decide áp dụng quyết định duyệt/từ chối lên một hồ sơ đang chờ.
// Quyết định là vĩnh viễn: không có đường quay lại hay duyệt lại,
// mỗi hồ sơ gắn với đúng một người duyệt.
func (s *verificationService) Decide(documentID uint, action string, actorID uint, reason string) (*model.VerificationDocument, error) {
	logger.Info("Processing verification decision", map[string]interface{}{
		"document_id": documentID,
		"action":      action,
		"actor_id":    actorID,
	})

	doc, err := s.verificationRepo.FindByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		logger.Error("Failed to load document for decision", err, map[string]interface{}{
			"document_id": documentID,
		})
		return nil, err
	}

	if doc.IsDecided() {
		logger.Warn("Decision attempted on already-decided document", map[string]interface{}{
			"document_id": documentID,
			"status":      doc.Status,
		})
		return nil, ErrAlreadyDecided
	}

	update := repository.DecisionUpdate{
		VerifiedBy: actorID,
		VerifiedAt: time.Now(),
	}

	switch action {
	case ActionApprove:
		// Duyệt mà không có ảnh minh chứng sẽ làm hồ sơ kiểm toán vô nghĩa:
		// chặn duyệt thay vì tự động từ chối, để con người xử lý ngoài luồng.
		if strings.TrimSpace(doc.DocumentURL) == "" {
			logger.Warn("Approval blocked: document has no evidence", map[string]interface{}{
				"document_id": documentID,
			})
			return nil, ErrMissingEvidence
		}
		update.Status = model.DocumentStatusApproved

	case ActionReject:
		trimmed := strings.TrimSpace(reason)
		if trimmed == "" {
			return nil, ErrMissingReason
		}
		update.Status = model.DocumentStatusRejected
		update.RejectionReason = trimmed

	default:
		logger.Warn("Unrecognized review action", map[string]interface{}{
			"document_id": documentID,
			"action":      action,
		})
		return nil, ErrInvalidAction
	}

	applied, err := s.verificationRepo.Decide(documentID, update)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Người duyệt khác đã quyết định trước trong lúc xử lý
		logger.Warn("Lost decision race: document decided concurrently", map[string]interface{}{
			"document_id": documentID,
			"actor_id":    actorID,
		})
		return nil, ErrAlreadyDecided
	}

	if update.Status == model.DocumentStatusApproved {
		if err := s.userRepo.MarkVerified(doc.UserID); err != nil {
			// Hồ sơ đã duyệt thành công; chỉ ghi log, không huỷ quyết định
			logger.Error("Failed to mark user as verified after approval", err, map[string]interface{}{
				"user_id":     doc.UserID,
				"document_id": documentID,
			})
		}
	}

	updated, err := s.verificationRepo.FindByID(documentID)
	if err != nil {
		return nil, err
	}

	logger.Info("Verification decision applied", map[string]interface{}{
		"document_id": documentID,
		"status":      updated.Status,
		"actor_id":    actorID,
	})

	return updated, nil
}

func (s *verificationService) GetByID(documentID uint) (*model.VerificationDocument, error) {
	doc, err := s.verificationRepo.FindByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *verificationService) GetByTransaction(transactionID uint) (*model.VerificationDocument, error) {
	doc, err := s.verificationRepo.FindByTransactionID(transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *verificationService) ListByUser(userID uint) ([]model.VerificationDocument, error) {
	return s.verificationRepo.FindByUserID(userID)
}

// List liệt kê hồ sơ kèm danh tính người nộp/người duyệt, mới nhất trước
func (s *verificationService) List(statusFilter string) ([]DocumentSummary, error) {
	docs, err := s.verificationRepo.FindAll(statusFilter)
	if err != nil {
		logger.Error("Failed to list verification documents", err, map[string]interface{}{
			"status": statusFilter,
		})
		return nil, err
	}

	summaries := make([]DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summary := DocumentSummary{
			Document: doc,
			Submitter: IdentityInfo{
				ID:        doc.User.ID,
				Username:  doc.User.Username,
				FullName:  doc.User.FullName,
				AvatarURL: doc.User.AvatarURL,
			},
		}
		if doc.Reviewer != nil {
			summary.Reviewer = &IdentityInfo{
				ID:        doc.Reviewer.ID,
				Username:  doc.Reviewer.Username,
				FullName:  doc.Reviewer.FullName,
				AvatarURL: doc.Reviewer.AvatarURL,
			}
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// FilterByStatus lọc thuần trên một tập hồ sơ cho sẵn: giữ các hồ sơ
// đúng trạng thái (status rỗng nghĩa là tất cả), sắp theo created_at
// giảm dần, ổn định theo id khi trùng thời điểm. Các view "tất cả",
// "chờ duyệt", "đã duyệt", "đã từ chối" dùng chung hàm này.
func FilterByStatus(docs []model.VerificationDocument, status string) []model.VerificationDocument {
	filtered := make([]model.VerificationDocument, 0, len(docs))
	for _, doc := range docs {
		if status == "" || doc.Status == status {
			filtered = append(filtered, doc)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].ID > filtered[j].ID
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	return filtered
}
