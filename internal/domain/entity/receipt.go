package entity

// Receipt is a file picked by the employee in the receipt input
type Receipt struct {
	Name      string
	MediaType string
	Content   []byte
}

// Size returns the content length in bytes
func (r Receipt) Size() int64 {
	return int64(len(r.Content))
}

// ReceiptFile represents stored receipt content served back to clients
type ReceiptFile struct {
	Content  []byte
	FileName string
	MimeType string
	Size     int64
}
