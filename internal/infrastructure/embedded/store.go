// Package embedded serves the bills resource in-process, for offline use
// of the CLI against a local database and receipt directory.
package embedded

import (
	"context"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/domain/entity"
)

// Store implements port.RemoteStore on top of a BillService
type Store struct {
	service service.BillService
}

// NewStore wraps svc
func NewStore(svc service.BillService) *Store {
	return &Store{service: svc}
}

// Bills returns the bills resource
func (s *Store) Bills() port.BillsResource {
	return billsResource{service: s.service}
}

type billsResource struct {
	service service.BillService
}

func (r billsResource) Create(ctx context.Context, req port.CreateRequest) (*entity.UploadResult, error) {
	return r.service.CreateWithReceipt(ctx, req.Email, req.File.Name, req.File.MediaType, req.File.Content)
}

func (r billsResource) Update(ctx context.Context, req port.UpdateRequest) error {
	_, err := r.service.Update(ctx, req.Selector, req.Bill)
	return err
}

func (r billsResource) List(ctx context.Context) ([]entity.Bill, error) {
	stored, err := r.service.List(ctx, "")
	if err != nil {
		return nil, err
	}

	bills := make([]entity.Bill, len(stored))
	for i, s := range stored {
		bills[i] = s.Bill
	}
	return bills, nil
}

var _ port.RemoteStore = (*Store)(nil)
