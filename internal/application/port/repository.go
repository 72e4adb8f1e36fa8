package port

import (
	"context"
	"time"

	"github.com/garyjia/billed/internal/domain/entity"
)

// BillRepository defines persistence operations for bills
type BillRepository interface {
	Create(ctx context.Context, bill *entity.StoredBill) error
	GetByKey(ctx context.Context, key string) (*entity.StoredBill, error)
	Update(ctx context.Context, bill *entity.StoredBill) error
	List(ctx context.Context, email string) ([]*entity.StoredBill, error)
	ListDraftsBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entity.StoredBill, error)
	Delete(ctx context.Context, key string) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
