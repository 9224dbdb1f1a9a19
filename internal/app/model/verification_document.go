package model

import (
	"time"
)

// VerificationDocument hồ sơ minh chứng xác minh nông dân.
// Trạng thái chỉ chuyển đúng một lần: pending -> approved | rejected (trạng thái cuối).
type VerificationDocument struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Người nộp hồ sơ
	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	// Giao dịch tín dụng liên quan (nếu có); tối đa một hồ sơ pending/approved mỗi giao dịch
	TransactionID *uint              `gorm:"index" json:"transaction_id,omitempty"`
	Transaction   *CreditTransaction `gorm:"foreignKey:TransactionID" json:"-"`

	// Nội dung hồ sơ (bất biến sau khi nộp)
	DocumentType  string `gorm:"type:varchar(30);not null" json:"document_type"`  // farming_certificate, business_license, other
	DocumentURL   string `gorm:"type:text;not null" json:"document_url"`          // URL ảnh minh chứng trên object storage
	ReferenceLink string `gorm:"type:text" json:"reference_link,omitempty"`       // Liên kết mẫu đơn tham khảo
	Notes         string `gorm:"type:text" json:"notes,omitempty"`                // Ghi chú của người nộp

	// Kết quả duyệt
	Status          string     `gorm:"type:varchar(20);default:'pending';index" json:"status"` // pending, approved, rejected
	VerifiedBy      *uint      `json:"verified_by,omitempty"`                                  // Người duyệt; null cho tới khi có quyết định
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`                                  // Thời điểm duyệt
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`            // Lý do từ chối (bắt buộc khi rejected)

	Reviewer *User `gorm:"foreignKey:VerifiedBy" json:"-"`
}

func (VerificationDocument) TableName() string {
	return "verification_documents"
}

// Trạng thái hồ sơ xác minh
const (
	DocumentStatusPending  = "pending"  // chờ duyệt
	DocumentStatusApproved = "approved" // đã duyệt
	DocumentStatusRejected = "rejected" // đã từ chối
)

// Loại giấy tờ được chấp nhận
const (
	DocumentTypeFarmingCertificate = "farming_certificate" // giấy chứng nhận canh tác
	DocumentTypeBusinessLicense    = "business_license"    // giấy phép kinh doanh
	DocumentTypeOther              = "other"               // giấy tờ khác
)

// IsValidDocumentType kiểm tra loại giấy tờ thuộc tập đóng
func IsValidDocumentType(documentType string) bool {
	switch documentType {
	case DocumentTypeFarmingCertificate, DocumentTypeBusinessLicense, DocumentTypeOther:
		return true
	}
	return false
}

// IsDecided trạng thái đã là trạng thái cuối hay chưa
func (d *VerificationDocument) IsDecided() bool {
	return d.Status == DocumentStatusApproved || d.Status == DocumentStatusRejected
}
