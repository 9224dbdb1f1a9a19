package model

import (
	"time"

	"gorm.io/gorm"
)

type TransactionStatus string // trạng thái giao dịch tín dụng

const (
	TransactionStatusOpen      TransactionStatus = "open"      // đang mở, chờ xác minh
	TransactionStatusCompleted TransactionStatus = "completed" // đã hoàn tất
	TransactionStatusCancelled TransactionStatus = "cancelled" // đã huỷ
)

// CreditTransaction giao dịch mua vật tư trả chậm; hồ sơ xác minh có thể gắn vào một giao dịch
type CreditTransaction struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID      uint              `gorm:"not null;index" json:"user_id"` // nông dân vay
	User        User              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Amount      float64           `gorm:"not null" json:"amount"`                                   // số tiền (VND)
	Description string            `gorm:"type:text" json:"description,omitempty"`                   // nội dung giao dịch
	Status      TransactionStatus `gorm:"type:varchar(20);default:'open';index" json:"status"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}
