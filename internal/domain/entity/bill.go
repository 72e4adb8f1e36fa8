package entity

import "time"

// BillStatus is the review status of a submitted bill
type BillStatus string

// IsValid returns true if the status is one of the known review states
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusPending, BillStatusAccepted, BillStatusRefused:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status
func (s BillStatus) String() string {
	return string(s)
}

// Bill represents one expense-report record submitted by an employee.
// Amount is nil when the submitted text could not be parsed as a number.
type Bill struct {
	Email      string     `json:"email" validate:"required"`
	Type       string     `json:"type" validate:"omitempty,expensetype"`
	Name       string     `json:"name"`
	Amount     *int       `json:"amount"`
	Date       string     `json:"date"`
	VAT        string     `json:"vat"`
	Pct        int        `json:"pct"`
	Commentary string     `json:"commentary"`
	FileURL    *string    `json:"fileUrl"`
	FileName   *string    `json:"fileName"`
	Status     BillStatus `json:"status" validate:"required,billstatus"`
}

// HasReceipt returns true if an uploaded receipt is linked to the bill
func (b *Bill) HasReceipt() bool {
	return b.FileURL != nil && *b.FileURL != ""
}

// StoredBill is a bill as kept by the bills resource
type StoredBill struct {
	Bill
	Key       string    `json:"key"`
	FilePath  string    `json:"-"`
	MimeType  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsDraft returns true while the record only holds an uploaded receipt and
// has not yet been completed by the form submission
func (s *StoredBill) IsDraft() bool {
	return s.Name == "" && s.Date == "" && s.Type == ""
}

// UploadResult is returned by the bills resource after a receipt upload
type UploadResult struct {
	FileURL string `json:"fileUrl"`
	Key     string `json:"key"`
}
