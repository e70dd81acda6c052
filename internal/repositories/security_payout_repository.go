package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fiesta/internal/models/db_models"
)

type SecurityPayoutRepositoryInterface interface {
	Create(ctx context.Context, payout *db_models.SecurityPayout) error
	GetByTransferID(ctx context.Context, transferID string) (*db_models.SecurityPayout, error)
	MarkPaid(ctx context.Context, transferID string) error
}

func NewSecurityPayoutRepository(db *gorm.DB) SecurityPayoutRepositoryInterface {
	return &SecurityPayoutRepository{db: db}
}

type SecurityPayoutRepository struct {
	db *gorm.DB
}

func (r *SecurityPayoutRepository) Create(ctx context.Context, payout *db_models.SecurityPayout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *SecurityPayoutRepository) GetByTransferID(ctx context.Context, transferID string) (*db_models.SecurityPayout, error) {
	var payout db_models.SecurityPayout
	err := r.db.WithContext(ctx).Where("transfer_id = ?", transferID).First(&payout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

func (r *SecurityPayoutRepository) MarkPaid(ctx context.Context, transferID string) error {
	return r.db.WithContext(ctx).
		Model(&db_models.SecurityPayout{}).
		Where("transfer_id = ?", transferID).
		Update("status", db_models.SecurityPayoutPaid).Error
}
