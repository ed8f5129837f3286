package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devhours/backend/services/payment-service/models"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.TransactionStatus) error
	UpdateAttempts(ctx context.Context, id uuid.UUID, attempts int) error
}

type gormTransactionRepo struct {
	db *gorm.DB
}

func NewGormTransactionRepo(db *gorm.DB) TransactionRepository {
	return &gormTransactionRepo{db: db}
}

func (r *gormTransactionRepo) Create(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *gormTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *gormTransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TransactionStatus) error {
	return r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *gormTransactionRepo) UpdateAttempts(ctx context.Context, id uuid.UUID, attempts int) error {
	return r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ?", id).
		Update("attempts", attempts).Error
}
