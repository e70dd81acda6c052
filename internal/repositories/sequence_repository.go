package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fiesta/internal/models/db_models"
)

type SequenceRepositoryInterface interface {
	Get(ctx context.Context, seqType string) (*db_models.Sequence, error)
	// Advance upserts the cursor for seqType, never moving it backwards.
	Advance(ctx context.Context, seqType string, lastID int64) error
}

func NewSequenceRepository(db *gorm.DB) SequenceRepositoryInterface {
	return &SequenceRepository{db: db}
}

type SequenceRepository struct {
	db *gorm.DB
}

func (r *SequenceRepository) Get(ctx context.Context, seqType string) (*db_models.Sequence, error) {
	var seq db_models.Sequence
	err := r.db.WithContext(ctx).Where("type = ?", seqType).First(&seq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &seq, nil
}

func (r *SequenceRepository) Advance(ctx context.Context, seqType string, lastID int64) error {
	seq := db_models.Sequence{Type: seqType, LastID: lastID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "type"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"last_id": lastID}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Lt{Column: clause.Column{Table: "sequences", Name: "last_id"}, Value: lastID},
			}},
		}).
		Create(&seq).Error
}
