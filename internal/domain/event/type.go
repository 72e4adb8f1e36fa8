package event

// Type identifies the type of domain event
type Type string

const (
	TypeFileRejected   Type = "bill.file_rejected"
	TypeUploadStarted  Type = "bill.upload_started"
	TypeUploadComplete Type = "bill.uploaded"
	TypeUploadFailed   Type = "bill.upload_failed"
	TypeSubmitted      Type = "bill.submitted"
	TypeSubmitRejected Type = "bill.submit_rejected"
	TypePersisted      Type = "bill.persisted"
	TypePersistFailed  Type = "bill.persist_failed"
	TypeNavigated      Type = "route.navigated"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeFileRejected,
		TypeUploadStarted,
		TypeUploadComplete,
		TypeUploadFailed,
		TypeSubmitted,
		TypeSubmitRejected,
		TypePersisted,
		TypePersistFailed,
		TypeNavigated:
		return true
	default:
		return false
	}
}

// IsFailure returns true for events that report a failed step
func (t Type) IsFailure() bool {
	return t == TypeUploadFailed || t == TypePersistFailed || t == TypeSubmitRejected || t == TypeFileRejected
}
