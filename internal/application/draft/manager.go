// Package draft tracks the receipt upload that belongs to the bill being
// filled in on the new bill page.
package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/workflow"
)

// ErrNoUploadPending is returned when an upload is settled without a matching Begin
var ErrNoUploadPending = errors.New("no upload pending")

// Upload is the payload of a completed upload. Its fields are always set together.
type Upload struct {
	FileURL  string
	FileName string
	Key      string
}

// Snapshot is a consistent view of the draft at one instant
type Snapshot struct {
	State  workflow.State
	Upload *Upload
	Err    error
}

// Manager owns the upload state of one new bill page visit
type Manager struct {
	mu      sync.Mutex
	machine workflow.StateMachine
	pending int
	seq     uint64
	upload  *Upload
	err     error
}

// NewManager creates a draft in the NotStarted state
func NewManager() *Manager {
	m := &Manager{}
	// Guards run inside Fire, which is only called with mu held.
	m.machine = workflow.NewUploadMachine(func(ctx context.Context) bool {
		return m.pending > 0
	})
	return m
}

// Begin records that an upload was sent and returns its sequence number,
// which is handed back to Fail.
func (m *Manager) Begin(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending++
	if err := m.machine.Fire(ctx, workflow.TriggerStart); err != nil {
		m.pending--
		return 0, err
	}
	m.seq++
	return m.seq, nil
}

// Complete records a successful upload. The latest completion replaces any
// earlier payload.
func (m *Manager) Complete(ctx context.Context, result entity.UploadResult, fileName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == 0 {
		return ErrNoUploadPending
	}
	m.pending--
	if err := m.machine.Fire(ctx, workflow.TriggerComplete); err != nil {
		m.pending++
		return fmt.Errorf("complete upload: %w", err)
	}

	m.upload = &Upload{FileURL: result.FileURL, FileName: fileName, Key: result.Key}
	m.err = nil
	return nil
}

// Fail records a failed upload. A failure of the most recently begun upload
// drops any earlier payload. A failure of an upload superseded by a later
// pick leaves the draft as the later uploads made it.
func (m *Manager) Fail(ctx context.Context, seq uint64, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == 0 {
		return ErrNoUploadPending
	}

	superseded := seq != m.seq
	trigger := workflow.TriggerFail
	if superseded && m.upload != nil {
		trigger = workflow.TriggerComplete
	}

	m.pending--
	if err := m.machine.Fire(ctx, trigger); err != nil {
		m.pending++
		return fmt.Errorf("fail upload: %w", err)
	}

	if superseded && (m.pending > 0 || m.upload != nil || m.err != nil) {
		return nil
	}
	m.upload = nil
	m.err = cause
	return nil
}

// Snapshot returns the current state and payload
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{State: m.machine.State(), Err: m.err}
	if m.upload != nil {
		u := *m.upload
		snap.Upload = &u
	}
	return snap
}

// State returns the current upload state
func (m *Manager) State() workflow.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machine.State()
}

// FileURL returns the uploaded receipt URL, nil before any successful upload
func (m *Manager) FileURL() *string {
	snap := m.Snapshot()
	if snap.Upload == nil {
		return nil
	}
	return &snap.Upload.FileURL
}

// FileName returns the display name of the uploaded receipt
func (m *Manager) FileName() *string {
	snap := m.Snapshot()
	if snap.Upload == nil {
		return nil
	}
	return &snap.Upload.FileName
}

// BillID returns the key reserved by the upload
func (m *Manager) BillID() *string {
	snap := m.Snapshot()
	if snap.Upload == nil {
		return nil
	}
	return &snap.Upload.Key
}
