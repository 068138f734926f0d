// Package upload tracks the server-side receipt pipeline as a local state
// machine and submits selected files to it.
package upload

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an event does not apply to the
// pipeline's current phase.
var ErrInvalidTransition = errors.New("invalid pipeline transition")

// Status is the state of a single stage.
type Status string

// Stage statuses.
const (
	StatusPending Status = "pending"
	StatusCurrent Status = "current"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// StageID identifies a pipeline stage.
type StageID string

// Pipeline stages, in order.
const (
	StageUpload         StageID = "upload"
	StageOCR            StageID = "ocr"
	StageValidation     StageID = "validation"
	StageClassification StageID = "classification"
)

// Stage is one named phase of the receipt pipeline.
type Stage struct {
	ID     StageID
	Label  string
	Status Status
}

// Definition names a stage without a status.
type Definition struct {
	ID    StageID
	Label string
}

// DefaultStages is the receipt pipeline run by the backend.
var DefaultStages = []Definition{
	{ID: StageUpload, Label: "Subiendo archivo..."},
	{ID: StageOCR, Label: "Extrayendo texto (OCR)..."},
	{ID: StageValidation, Label: "Consultando SUNAT y reglas..."},
	{ID: StageClassification, Label: "Analizando..."},
}

// Event drives a pipeline transition.
type Event int

// Pipeline events.
const (
	// EventReset returns every stage to pending.
	EventReset Event = iota
	// EventStart resets the pipeline and makes the first stage current.
	EventStart
	// EventAdvance completes the current stage and starts the next one.
	EventAdvance
	// EventComplete marks every stage done.
	EventComplete
	// EventFail marks the current stage as failed.
	EventFail
)

func (e Event) String() string {
	switch e {
	case EventReset:
		return "reset"
	case EventStart:
		return "start"
	case EventAdvance:
		return "advance"
	case EventComplete:
		return "complete"
	case EventFail:
		return "fail"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Phase summarizes the stage vector.
type Phase string

// Pipeline phases.
const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// Pipeline is an ordered list of stages changed only through Apply.
// It is not safe for concurrent use.
type Pipeline struct {
	stages []Stage
}

// NewPipeline creates a pipeline with every stage pending. With no
// definitions it uses DefaultStages.
func NewPipeline(defs ...Definition) *Pipeline {
	if len(defs) == 0 {
		defs = DefaultStages
	}

	stages := make([]Stage, len(defs))
	for i, d := range defs {
		stages[i] = Stage{ID: d.ID, Label: d.Label, Status: StatusPending}
	}
	return &Pipeline{stages: stages}
}

// Stages returns a copy of the stage vector.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Phase derives the pipeline phase from the stage statuses.
func (p *Pipeline) Phase() Phase {
	done := 0
	for _, s := range p.stages {
		switch s.Status {
		case StatusError:
			return PhaseFailed
		case StatusCurrent:
			return PhaseRunning
		case StatusDone:
			done++
		}
	}
	if len(p.stages) > 0 && done == len(p.stages) {
		return PhaseSucceeded
	}
	return PhaseIdle
}

// Apply performs the transition for ev. The stage vector is left unchanged
// when an error is returned.
func (p *Pipeline) Apply(ev Event) error {
	next := p.Stages()

	switch ev {
	case EventReset:
		fill(next, StatusPending)

	case EventStart:
		fill(next, StatusPending)
		if len(next) > 0 {
			next[0].Status = StatusCurrent
		}

	case EventAdvance:
		i := p.current()
		if i < 0 {
			return p.invalid(ev)
		}
		next[i].Status = StatusDone
		if i+1 < len(next) {
			next[i+1].Status = StatusCurrent
		}

	case EventComplete:
		if p.current() < 0 {
			return p.invalid(ev)
		}
		fill(next, StatusDone)

	case EventFail:
		i := p.current()
		if i < 0 {
			return p.invalid(ev)
		}
		next[i].Status = StatusError
		for j := i + 1; j < len(next); j++ {
			next[j].Status = StatusPending
		}

	default:
		return p.invalid(ev)
	}

	if err := validate(next); err != nil {
		return err
	}
	p.stages = next
	return nil
}

func (p *Pipeline) current() int {
	for i, s := range p.stages {
		if s.Status == StatusCurrent {
			return i
		}
	}
	return -1
}

func (p *Pipeline) invalid(ev Event) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, ev, p.Phase())
}

// Validate checks the stage vector invariants: at most one stage is
// current, stages before an error are done and stages after it pending.
func (p *Pipeline) Validate() error {
	return validate(p.stages)
}

func validate(stages []Stage) error {
	currents := 0
	failed := -1

	for i, s := range stages {
		switch s.Status {
		case StatusCurrent:
			currents++
		case StatusError:
			if failed >= 0 {
				return fmt.Errorf("%w: stages %d and %d both failed", ErrInvalidTransition, failed, i)
			}
			failed = i
		case StatusPending, StatusDone:
		default:
			return fmt.Errorf("%w: stage %s has unknown status %q", ErrInvalidTransition, s.ID, s.Status)
		}
	}

	if currents > 1 {
		return fmt.Errorf("%w: %d stages current", ErrInvalidTransition, currents)
	}

	if failed < 0 {
		return nil
	}
	for i, s := range stages {
		if i < failed && s.Status != StatusDone {
			return fmt.Errorf("%w: stage %s before failed stage is %s", ErrInvalidTransition, s.ID, s.Status)
		}
		if i > failed && s.Status != StatusPending {
			return fmt.Errorf("%w: stage %s after failed stage is %s", ErrInvalidTransition, s.ID, s.Status)
		}
	}
	return nil
}

func fill(stages []Stage, status Status) {
	for i := range stages {
		stages[i].Status = status
	}
}
