package repository

import (
	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(tx *model.CreditTransaction) error
	FindByID(id uint) (*model.CreditTransaction, error)
	FindByUserID(userID uint) ([]model.CreditTransaction, error)
	UpdateStatus(id uint, status model.TransactionStatus) error
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(tx *model.CreditTransaction) error {
	return r.db.Create(tx).Error
}

func (r *transactionRepository) FindByID(id uint) (*model.CreditTransaction, error) {
	var tx model.CreditTransaction
	if err := r.db.First(&tx, id).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) FindByUserID(userID uint) ([]model.CreditTransaction, error) {
	var txs []model.CreditTransaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *transactionRepository) UpdateStatus(id uint, status model.TransactionStatus) error {
	return r.db.Model(&model.CreditTransaction{}).
		Where("id = ?", id).
		Update("status", status).Error
}
