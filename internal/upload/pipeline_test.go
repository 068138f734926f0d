package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statuses(p *Pipeline) []Status {
	out := make([]Status, 0, len(p.stages))
	for _, s := range p.Stages() {
		out = append(out, s.Status)
	}
	return out
}

func TestNewPipeline_Defaults(t *testing.T) {
	p := NewPipeline()

	stages := p.Stages()
	require.Len(t, stages, 4)
	assert.Equal(t, "Subiendo archivo...", stages[0].Label)
	assert.Equal(t, StageClassification, stages[3].ID)
	assert.Equal(t, []Status{StatusPending, StatusPending, StatusPending, StatusPending}, statuses(p))
	assert.Equal(t, PhaseIdle, p.Phase())
}

func TestPipeline_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		events  []Event
		want    []Status
		phase   Phase
		wantErr bool
	}{
		{
			name:   "start",
			events: []Event{EventStart},
			want:   []Status{StatusCurrent, StatusPending, StatusPending, StatusPending},
			phase:  PhaseRunning,
		},
		{
			name:   "complete",
			events: []Event{EventStart, EventComplete},
			want:   []Status{StatusDone, StatusDone, StatusDone, StatusDone},
			phase:  PhaseSucceeded,
		},
		{
			name:   "fail first stage",
			events: []Event{EventStart, EventFail},
			want:   []Status{StatusError, StatusPending, StatusPending, StatusPending},
			phase:  PhaseFailed,
		},
		{
			name:   "advance then fail",
			events: []Event{EventStart, EventAdvance, EventAdvance, EventFail},
			want:   []Status{StatusDone, StatusDone, StatusError, StatusPending},
			phase:  PhaseFailed,
		},
		{
			name:   "advance past last stage",
			events: []Event{EventStart, EventAdvance, EventAdvance, EventAdvance, EventAdvance},
			want:   []Status{StatusDone, StatusDone, StatusDone, StatusDone},
			phase:  PhaseSucceeded,
		},
		{
			name:   "restart after failure",
			events: []Event{EventStart, EventFail, EventStart},
			want:   []Status{StatusCurrent, StatusPending, StatusPending, StatusPending},
			phase:  PhaseRunning,
		},
		{
			name:   "reset after success",
			events: []Event{EventStart, EventComplete, EventReset},
			want:   []Status{StatusPending, StatusPending, StatusPending, StatusPending},
			phase:  PhaseIdle,
		},
		{
			name:    "complete while idle",
			events:  []Event{EventComplete},
			want:    []Status{StatusPending, StatusPending, StatusPending, StatusPending},
			phase:   PhaseIdle,
			wantErr: true,
		},
		{
			name:    "fail after failure",
			events:  []Event{EventStart, EventFail, EventFail},
			want:    []Status{StatusError, StatusPending, StatusPending, StatusPending},
			phase:   PhaseFailed,
			wantErr: true,
		},
		{
			name:    "advance after success",
			events:  []Event{EventStart, EventComplete, EventAdvance},
			want:    []Status{StatusDone, StatusDone, StatusDone, StatusDone},
			phase:   PhaseSucceeded,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline()

			var err error
			for _, ev := range tt.events {
				if err = p.Apply(ev); err != nil {
					break
				}
			}

			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, statuses(p))
			assert.Equal(t, tt.phase, p.Phase())
			assert.NoError(t, p.Validate())
		})
	}
}

func TestPipeline_ValidateRejectsBrokenVectors(t *testing.T) {
	tests := []struct {
		name   string
		vector []Status
	}{
		{name: "two current", vector: []Status{StatusCurrent, StatusCurrent, StatusPending, StatusPending}},
		{name: "done after error", vector: []Status{StatusError, StatusDone, StatusPending, StatusPending}},
		{name: "current after error", vector: []Status{StatusDone, StatusError, StatusCurrent, StatusPending}},
		{name: "pending before error", vector: []Status{StatusPending, StatusError, StatusPending, StatusPending}},
		{name: "unknown status", vector: []Status{"skipped", StatusPending, StatusPending, StatusPending}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline()
			for i, s := range tt.vector {
				p.stages[i].Status = s
			}
			assert.ErrorIs(t, p.Validate(), ErrInvalidTransition)
		})
	}
}

func TestPipeline_StagesIsCopy(t *testing.T) {
	p := NewPipeline()
	stages := p.Stages()
	stages[0].Status = StatusDone

	assert.Equal(t, StatusPending, p.Stages()[0].Status)
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "start", EventStart.String())
	assert.Equal(t, "event(42)", Event(42).String())
}
