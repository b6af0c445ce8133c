package repository

import (
	"context"

	domainRepo "github.com/sangkips/shopdesk-api/internal/domain/repository"
	"gorm.io/gorm"
)

const nextSequenceSQL = `INSERT INTO daily_sequences (day, value, updated_at)
VALUES (?, 1, NOW())
ON CONFLICT (day) DO UPDATE SET value = daily_sequences.value + 1, updated_at = NOW()
RETURNING value`

type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a per-day counter stored in daily_sequences.
// Called inside a sale transaction, the counter row stays locked until commit.
func NewSequenceRepository(db *gorm.DB) domainRepo.SequenceGenerator {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context, day string) (int64, error) {
	var value int64
	if err := conn(ctx, r.db).Raw(nextSequenceSQL, day).Scan(&value).Error; err != nil {
		return 0, err
	}
	return value, nil
}
