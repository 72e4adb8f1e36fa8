package port

import "github.com/garyjia/billed/internal/domain/entity"

// FileInput is the receipt file control of the new bill form
type FileInput interface {
	// Files returns the selected files (zero or one)
	Files() []entity.Receipt

	// Value returns the raw input value, possibly a full path
	Value() string

	// ClearValue resets the control so the same file must be picked again
	ClearValue()
}

// NewBillView is the new bill page as seen by the submission workflow
type NewBillView interface {
	FileInput() FileInput
	ShowFileTypeError()
	HideFileTypeError()
	ShowSubmitError(err error)
}
