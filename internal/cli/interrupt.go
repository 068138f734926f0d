package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels a long-running command on SIGINT/SIGTERM and
// tells the user what happened to their work.
type InterruptHandler struct {
	writer      io.Writer
	signals     chan os.Signal
	operation   string
	hint        string
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{
		writer:  writer,
		signals: make(chan os.Signal, 1),
	}
}

// HandleInterrupts returns a context canceled on interrupt. operation names
// what was interrupted and hint, when set, tells the user how to resume.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, operation, hint string) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	h.operation = operation
	h.hint = hint

	signal.Notify(h.signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(h.signals)

		select {
		case <-h.signals:
			h.mu.Lock()
			if !h.interrupted {
				h.interrupted = true
				h.showInterruptMessage()
			}
			h.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx
}

func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n\n" + FormatWarning(h.operation+" interrupted!")

	if h.hint != "" {
		msg += "\n" + FormatInfo(h.hint)
	}

	msg += "\n" + FormatInfo("¡Hasta luego!") + "\n"

	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
