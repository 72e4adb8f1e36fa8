package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// FileTypeErrorMessage is shown when the picked receipt is not an image
const FileTypeErrorMessage = "Seuls les fichiers jpg, jpeg et png sont acceptés"

// FileInput is the receipt control of the terminal form
type FileInput struct {
	mu    sync.Mutex
	files []entity.Receipt
	value string
}

var _ port.FileInput = (*FileInput)(nil)

// NewFileInput holds an already picked file. value is the raw path typed
// by the user.
func NewFileInput(file entity.Receipt, value string) *FileInput {
	return &FileInput{files: []entity.Receipt{file}, value: value}
}

// OpenFileInput reads the file at path and declares its detected media type
func OpenFileInput(path string) (*FileInput, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}

	file := entity.Receipt{
		Name:      filepath.Base(path),
		MediaType: mimetype.Detect(content).String(),
		Content:   content,
	}
	return NewFileInput(file, path), nil
}

// Files returns the picked file, or none once cleared
func (f *FileInput) Files() []entity.Receipt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.Receipt(nil), f.files...)
}

// Value returns the raw input value
func (f *FileInput) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// ClearValue empties the control
func (f *FileInput) ClearValue() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = ""
	f.files = nil
}

// NewBillView is the terminal rendition of the new bill form
type NewBillView struct {
	out   io.Writer
	input *FileInput

	mu            sync.Mutex
	fileTypeError bool
	submitErr     error
}

var _ port.NewBillView = (*NewBillView)(nil)

// NewNewBillView creates the view around a file input
func NewNewBillView(out io.Writer, input *FileInput) *NewBillView {
	return &NewBillView{out: out, input: input}
}

// FileInput returns the receipt control
func (v *NewBillView) FileInput() port.FileInput {
	return v.input
}

// ShowFileTypeError displays the file-type message
func (v *NewBillView) ShowFileTypeError() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fileTypeError = true
	fmt.Fprintln(v.out, FileTypeErrorMessage)
}

// HideFileTypeError hides the file-type message
func (v *NewBillView) HideFileTypeError() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fileTypeError = false
}

// ShowSubmitError reports a failed submission
func (v *NewBillView) ShowSubmitError(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.submitErr = err
	fmt.Fprintf(v.out, "Erreur: %v\n", err)
}

// FileTypeErrorVisible reports whether the file-type message is displayed
func (v *NewBillView) FileTypeErrorVisible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fileTypeError
}

// SubmitError returns the last reported submission error
func (v *NewBillView) SubmitError() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.submitErr
}
