// Package submission drives the new bill page: receipt selection and
// upload, then form submission and persistence of the completed bill.
package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/garyjia/billed/internal/application/dispatcher"
	"github.com/garyjia/billed/internal/application/draft"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/session"
	"github.com/garyjia/billed/internal/application/validation"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/event"
	"github.com/garyjia/billed/internal/domain/workflow"
)

var (
	// ErrFileRejected is returned when the selected receipt is not a png/jpg/jpeg image
	ErrFileRejected = errors.New("receipt file type not accepted")

	// ErrNoStore is returned when a receipt is selected without a configured store
	ErrNoStore = errors.New("no store configured")

	// ErrUploadInFlight is returned when the form is submitted before the receipt upload settled
	ErrUploadInFlight = errors.New("receipt upload still in progress")

	// ErrUploadFailed is returned when the form is submitted after the receipt upload failed
	ErrUploadFailed = errors.New("receipt upload failed")
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Workflow is created once per new bill page visit
type Workflow struct {
	store      port.RemoteStore
	session    *session.Context
	view       port.NewBillView
	navigator  port.Navigator
	draft      *draft.Manager
	dispatcher dispatcher.Dispatcher
	logger     Logger

	wg sync.WaitGroup
}

// Option configures the workflow
type Option func(*Workflow)

// WithDispatcher publishes workflow events through d
func WithDispatcher(d dispatcher.Dispatcher) Option {
	return func(w *Workflow) {
		w.dispatcher = d
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(logger Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// NewWorkflow creates a workflow with a fresh draft. store may be nil.
func NewWorkflow(
	store port.RemoteStore,
	sessionCtx *session.Context,
	view port.NewBillView,
	navigator port.Navigator,
	opts ...Option,
) *Workflow {
	w := &Workflow{
		store:     store,
		session:   sessionCtx,
		view:      view,
		navigator: navigator,
		draft:     draft.NewManager(),
		logger:    nopLogger{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Draft returns the upload state of this page visit
func (w *Workflow) Draft() *draft.Manager {
	return w.draft
}

// Wait blocks until every background upload and persist has settled
func (w *Workflow) Wait() {
	w.wg.Wait()
}

// OnFileSelected validates the picked receipt and starts its upload in the
// background. inputValue is the raw value of the file input.
func (w *Workflow) OnFileSelected(ctx context.Context, file entity.Receipt, inputValue string) error {
	fileName := DisplayName(inputValue)

	if !validation.IsAcceptable(file.MediaType) {
		w.view.FileInput().ClearValue()
		w.view.ShowFileTypeError()
		w.publish(ctx, event.NewEvent(event.TypeFileRejected, "", map[string]interface{}{
			"file_name":  fileName,
			"media_type": file.MediaType,
		}))
		return ErrFileRejected
	}
	w.view.HideFileTypeError()

	if w.store == nil {
		w.logger.Error("Cannot upload receipt", "file_name", fileName, "error", ErrNoStore)
		return ErrNoStore
	}

	email, err := w.session.Email(ctx)
	if err != nil {
		return err
	}

	seq, err := w.draft.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upload: %w", err)
	}
	started := event.NewEvent(event.TypeUploadStarted, "", map[string]interface{}{
		"file_name": fileName,
		"size":      file.Size(),
	})
	w.publish(ctx, started)

	bg := context.WithoutCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.upload(bg, seq, file, email, fileName, started.ID)
	}()

	return nil
}

func (w *Workflow) upload(ctx context.Context, seq uint64, file entity.Receipt, email, fileName, correlationID string) {
	result, err := w.store.Bills().Create(ctx, port.CreateRequest{File: file, Email: email})
	if err == nil && result == nil {
		err = errors.New("empty upload response")
	}
	if err != nil {
		w.logger.Error("Receipt upload failed", "file_name", fileName, "error", err)
		if ferr := w.draft.Fail(ctx, seq, err); ferr != nil {
			w.logger.Error("Failed to record upload failure", "error", ferr)
		}
		w.publish(ctx, event.NewEventWithCorrelation(event.TypeUploadFailed, "", map[string]interface{}{
			"file_name": fileName,
			"error":     err,
		}, correlationID))
		return
	}

	if err := w.draft.Complete(ctx, *result, fileName); err != nil {
		w.logger.Error("Failed to record upload", "key", result.Key, "error", err)
		return
	}
	w.logger.Info("Receipt uploaded", "key", result.Key, "file_name", fileName)
	w.publish(ctx, event.NewEventWithCorrelation(event.TypeUploadComplete, result.Key, map[string]interface{}{
		"file_name": fileName,
		"file_url":  result.FileURL,
	}, correlationID))
}

// OnSubmit assembles the bill from the form and the draft, then persists it
// in the background. Navigation to the bills page happens once the update
// settles; a persistence failure is logged and shown on the view, never
// returned here.
func (w *Workflow) OnSubmit(ctx context.Context, form Form) error {
	email, err := w.session.Email(ctx)
	if err != nil {
		w.reject(ctx, err)
		return err
	}

	snap := w.draft.Snapshot()
	switch snap.State {
	case workflow.StateInFlight:
		w.reject(ctx, ErrUploadInFlight)
		return ErrUploadInFlight
	case workflow.StateFailed:
		err := fmt.Errorf("%w: %v", ErrUploadFailed, snap.Err)
		w.reject(ctx, err)
		return err
	}

	bill := form.Bill(email, snap.Upload)
	billID := ""
	if snap.Upload != nil {
		billID = snap.Upload.Key
	}
	w.publish(ctx, event.NewEvent(event.TypeSubmitted, billID, map[string]interface{}{
		"email":       email,
		"has_receipt": bill.HasReceipt(),
	}))

	bg := context.WithoutCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.Persist(bg, bill, billID); err != nil {
			w.view.ShowSubmitError(err)
		}
		w.navigate(bg, entity.PathBills)
	}()

	return nil
}

func (w *Workflow) reject(ctx context.Context, err error) {
	w.view.ShowSubmitError(err)
	w.publish(ctx, event.NewEvent(event.TypeSubmitRejected, "", map[string]interface{}{
		"error": err,
	}))
}

// Persist sends the bill to the store under billID. It does nothing when no
// store is configured.
func (w *Workflow) Persist(ctx context.Context, bill entity.Bill, billID string) error {
	if w.store == nil {
		return nil
	}

	if err := w.store.Bills().Update(ctx, port.UpdateRequest{Bill: bill, Selector: billID}); err != nil {
		w.logger.Error("Failed to persist bill", "key", billID, "error", err)
		w.publish(ctx, event.NewEvent(event.TypePersistFailed, billID, map[string]interface{}{
			"error": err,
		}))
		return fmt.Errorf("persist bill: %w", err)
	}

	w.logger.Info("Bill persisted", "key", billID, "email", bill.Email)
	w.publish(ctx, event.NewEvent(event.TypePersisted, billID, nil))
	return nil
}

func (w *Workflow) navigate(ctx context.Context, path string) {
	if w.navigator == nil {
		return
	}
	w.navigator.Navigate(path)
	w.publish(ctx, event.NewEvent(event.TypeNavigated, "", map[string]interface{}{
		"path": path,
	}))
}

func (w *Workflow) publish(ctx context.Context, evt *event.Event) {
	if w.dispatcher == nil {
		return
	}
	if err := w.dispatcher.Dispatch(ctx, evt); err != nil {
		w.logger.Error("Failed to dispatch event", "event_type", evt.Type, "error", err)
	}
}
