package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	domainRepo "github.com/sangkips/shopdesk-api/internal/domain/repository"
)

type idempotencyRepository struct {
	store *Store
}

// NewIdempotencyRepository creates an idempotency repository over the store
func NewIdempotencyRepository(store *Store) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{store: store}
}

func idempotencyID(key string, userID uuid.UUID) string {
	return userID.String() + ":" + key
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ikey, ok := r.store.idempotency[idempotencyID(key, userID)]
	if !ok || ikey.IsExpired(r.store.now()) {
		return nil, nil
	}
	return &ikey, nil
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id := idempotencyID(ikey.Key, ikey.UserID)
	if existing, ok := r.store.idempotency[id]; ok && !existing.IsExpired(r.store.now()) {
		return domainRepo.ErrDuplicateKey
	}
	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	ikey.CreatedAt = r.store.now()
	r.store.idempotency[id] = *ikey
	return nil
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var removed int64
	for id, ikey := range r.store.idempotency {
		if ikey.IsExpired(now) {
			delete(r.store.idempotency, id)
			removed++
		}
	}
	return removed, nil
}
