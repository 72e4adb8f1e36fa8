package port

import (
	"context"

	"github.com/garyjia/billed/internal/domain/entity"
)

// CreateRequest is the multipart payload of a receipt upload
type CreateRequest struct {
	File  entity.Receipt
	Email string
}

// UpdateRequest carries the completed bill and the key returned by the upload
type UpdateRequest struct {
	Bill     entity.Bill
	Selector string
}

// BillsResource is the remote "bills" resource
type BillsResource interface {
	// Create uploads the receipt and reserves a bill record for it
	Create(ctx context.Context, req CreateRequest) (*entity.UploadResult, error)

	// Update persists the bill under req.Selector; an empty selector
	// creates a record without receipt
	Update(ctx context.Context, req UpdateRequest) error

	// List returns every bill visible to the caller
	List(ctx context.Context) ([]entity.Bill, error)
}

// RemoteStore exposes the resources of the persistence API
type RemoteStore interface {
	Bills() BillsResource
}

// Navigator swaps the displayed view for the one registered at path
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a plain function to Navigator
type NavigatorFunc func(path string)

// Navigate calls f(path)
func (f NavigatorFunc) Navigate(path string) {
	f(path)
}
