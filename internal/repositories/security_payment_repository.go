package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fiesta/internal/models/db_models"
	"fiesta/pkg/utils"
)

type SecurityPaymentRepositoryInterface interface {
	Create(ctx context.Context, payment *db_models.SecurityPayment) error
	GetByIntentID(ctx context.Context, intentID string) (*db_models.SecurityPayment, error)
	GetByTxPurpose(ctx context.Context, txID string, purpose db_models.SecurityPaymentPurpose) (*db_models.SecurityPayment, error)
	// MarkCaptured records the captured sub-amount; only an active hold can be
	// captured.
	MarkCaptured(ctx context.Context, intentID string, capturedAmountMinor int64) error
	MarkCanceled(ctx context.Context, intentID string) error
}

func NewSecurityPaymentRepository(db *gorm.DB) SecurityPaymentRepositoryInterface {
	return &SecurityPaymentRepository{db: db}
}

type SecurityPaymentRepository struct {
	db *gorm.DB
}

func (r *SecurityPaymentRepository) Create(ctx context.Context, payment *db_models.SecurityPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *SecurityPaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*db_models.SecurityPayment, error) {
	var payment db_models.SecurityPayment
	err := r.db.WithContext(ctx).Where("intent_id = ?", intentID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *SecurityPaymentRepository) GetByTxPurpose(ctx context.Context, txID string, purpose db_models.SecurityPaymentPurpose) (*db_models.SecurityPayment, error) {
	var payment db_models.SecurityPayment
	err := r.db.WithContext(ctx).Where("tx_id = ? AND purpose = ?", txID, purpose).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *SecurityPaymentRepository) MarkCaptured(ctx context.Context, intentID string, capturedAmountMinor int64) error {
	now := utils.NowUnixSeconds()
	res := r.db.WithContext(ctx).
		Model(&db_models.SecurityPayment{}).
		Where("intent_id = ? AND status = ?", intentID, db_models.SecurityPaymentActive).
		Updates(map[string]interface{}{
			"status":                db_models.SecurityPaymentCaptured,
			"captured_amount_minor": capturedAmountMinor,
			"captured_at":           now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrDuplicateOperation
	}
	return nil
}

func (r *SecurityPaymentRepository) MarkCanceled(ctx context.Context, intentID string) error {
	res := r.db.WithContext(ctx).
		Model(&db_models.SecurityPayment{}).
		Where("intent_id = ? AND status = ?", intentID, db_models.SecurityPaymentActive).
		Update("status", db_models.SecurityPaymentCanceled)
	if res.Error != nil {
		return res.Error
	}
	// Releasing an already-released hold is a no-op, not an error.
	return nil
}
