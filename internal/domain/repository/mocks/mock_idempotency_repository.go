package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

type MockIdempotencyRepository struct {
	mock.Mock
}

func (m *MockIdempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	args := m.Called(ctx, key, userID)
	if ikey := args.Get(0); ikey != nil {
		return ikey.(*entity.IdempotencyKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	args := m.Called(ctx, ikey)
	return args.Error(0)
}

func (m *MockIdempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
