package upload

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/Veraticus/finchat/internal/backend"
	"github.com/Veraticus/finchat/internal/common"
	"github.com/Veraticus/finchat/internal/model"
)

// User-facing upload messages.
const (
	EmptySelectionMessage = "Selecciona al menos un archivo para continuar."
	FailedMessage         = "No se pudo subir el comprobante. Intenta nuevamente."
)

// State is a snapshot of the uploader for rendering.
type State struct {
	Phase   Phase
	Error   string
	Stages  []Stage
	Pending []model.PendingFile
	Busy    bool
}

// Uploader submits receipt files and tracks the pipeline stages.
type Uploader struct {
	processor backend.ReceiptProcessor
	pipeline  *Pipeline
	observers []func(State)
	pending   []model.PendingFile
	errText   string
	inflight  int
	gen       uint64
	mu        sync.Mutex
}

// NewUploader creates an uploader over the default pipeline stages.
func NewUploader(processor backend.ReceiptProcessor) *Uploader {
	return &Uploader{
		processor: processor,
		pipeline:  NewPipeline(),
	}
}

// OnChange registers fn to receive a snapshot after every state change.
// fn runs synchronously and must not call back into the uploader.
func (u *Uploader) OnChange(fn func(State)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.observers = append(u.observers, fn)
}

// Select replaces the pending selection.
func (u *Uploader) Select(files []model.PendingFile) {
	u.mu.Lock()
	u.pending = append([]model.PendingFile(nil), files...)
	u.errText = ""
	u.mu.Unlock()

	u.notify()
}

// Pending returns the files selected but not yet submitted.
func (u *Uploader) Pending() []model.PendingFile {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]model.PendingFile(nil), u.pending...)
}

// SubmitPending submits the current selection.
func (u *Uploader) SubmitPending(ctx context.Context) ([]model.ProcessedReceipt, error) {
	return u.Submit(ctx, u.Pending())
}

// Submit sends files to the backend as one submission. An empty set fails
// with *common.ValidationError before anything is sent. On success every
// stage is done and the selection is cleared; on failure the first stage is
// marked failed, the selection is kept and a *common.UploadError is returned.
func (u *Uploader) Submit(ctx context.Context, files []model.PendingFile) ([]model.ProcessedReceipt, error) {
	if len(files) == 0 {
		u.mu.Lock()
		u.errText = EmptySelectionMessage
		u.mu.Unlock()
		u.notify()
		return nil, &common.ValidationError{Field: "archivos", Message: EmptySelectionMessage}
	}

	u.mu.Lock()
	u.gen++
	gen := u.gen
	u.inflight++
	u.errText = ""
	u.mustApply(EventStart)
	u.mu.Unlock()
	u.notify()

	slog.Info("Submitting receipts", "files", len(files))
	result, err := u.processor.ProcessReceipts(ctx, files)

	u.mu.Lock()
	u.inflight--
	latest := gen == u.gen
	if latest {
		if err != nil {
			u.mustApply(EventFail)
			u.errText = FailedMessage
		} else {
			u.mustApply(EventComplete)
			u.pending = nil
		}
	} else {
		slog.Debug("Discarding stale upload result", "generation", gen, "latest", u.gen)
	}
	u.mu.Unlock()
	u.notify()

	if err != nil {
		common.LogError(err, "Receipt upload failed", common.Fields{"files": len(files)})
		return nil, &common.UploadError{Message: FailedMessage, Err: err}
	}

	receipts := result.Processed
	if len(receipts) > len(files) {
		slog.Warn("Backend returned more results than files submitted", "files", len(files), "results", len(receipts))
		receipts = receipts[:len(files)]
	}
	return receipts, nil
}

// State returns a snapshot of the uploader.
func (u *Uploader) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.stateLocked()
}

// Busy reports whether a submission is in flight.
func (u *Uploader) Busy() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.inflight > 0
}

// Reset returns the stages to pending and clears the error text.
func (u *Uploader) Reset() {
	u.mu.Lock()
	u.mustApply(EventReset)
	u.errText = ""
	u.mu.Unlock()
	u.notify()
}

func (u *Uploader) stateLocked() State {
	return State{
		Phase:   u.pipeline.Phase(),
		Error:   u.errText,
		Stages:  u.pipeline.Stages(),
		Pending: append([]model.PendingFile(nil), u.pending...),
		Busy:    u.inflight > 0,
	}
}

// mustApply applies a transition that is valid by construction. A failure
// here is a programming error and is logged rather than surfaced.
func (u *Uploader) mustApply(ev Event) {
	if err := u.pipeline.Apply(ev); err != nil {
		slog.Error("Pipeline transition rejected", "event", ev, "error", err)
	}
}

func (u *Uploader) notify() {
	u.mu.Lock()
	observers := slices.Clone(u.observers)
	state := u.stateLocked()
	u.mu.Unlock()

	for _, fn := range observers {
		fn(state)
	}
}
