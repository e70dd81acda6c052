package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fiesta/internal/models/db_models"
)

type LedgerRepositoryInterface interface {
	Create(ctx context.Context, row *db_models.FreeTransaction) error
	GetByTxID(ctx context.Context, txID string) (*db_models.FreeTransaction, error)
	// MarkReversed flips the row from transfered to reversed, recording the
	// reversal and refund ids. It reports false when another writer already
	// reversed the row (compare-and-swap on provider_transfer_status).
	MarkReversed(ctx context.Context, txID, reversalID, refundID string) (bool, error)
}

func NewLedgerRepository(db *gorm.DB) LedgerRepositoryInterface {
	return &LedgerRepository{db: db}
}

type LedgerRepository struct {
	db *gorm.DB
}

func (r *LedgerRepository) Create(ctx context.Context, row *db_models.FreeTransaction) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *LedgerRepository) GetByTxID(ctx context.Context, txID string) (*db_models.FreeTransaction, error) {
	var row db_models.FreeTransaction
	err := r.db.WithContext(ctx).Where("tx_id = ?", txID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *LedgerRepository) MarkReversed(ctx context.Context, txID, reversalID, refundID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db_models.FreeTransaction{}).
		Where("tx_id = ? AND provider_transfer_status = ?", txID, db_models.TransferStatusTransfered).
		Updates(map[string]interface{}{
			"provider_transfer_status": db_models.TransferStatusReversed,
			"reversal_id":              reversalID,
			"refund_id":                refundID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
