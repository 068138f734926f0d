package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Veraticus/finchat/internal/upload"
	"github.com/schollz/progressbar/v3"
)

// StageProgress renders the upload pipeline as a progress bar, one step
// per stage. Update is meant to be passed to upload.Uploader.OnChange.
type StageProgress struct {
	writer   io.Writer
	bar      *progressbar.ProgressBar
	total    int
	finished bool
}

// NewStageProgress creates a progress bar sized to the stage count.
func NewStageProgress(w io.Writer, stages int) *StageProgress {
	p := &StageProgress{writer: w, total: stages}
	p.bar = progressbar.NewOptions(stages,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("[cyan]Preparando...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return p
}

// Update moves the bar to match state.
func (p *StageProgress) Update(state upload.State) {
	if p.finished {
		return
	}

	done := 0
	for _, s := range state.Stages {
		switch s.Status {
		case upload.StatusDone:
			done++
		case upload.StatusCurrent:
			p.bar.Describe("[cyan]" + s.Label + "[reset]")
		case upload.StatusError:
			p.bar.Describe("[red]" + strings.TrimSuffix(s.Label, "...") + " falló[reset]")
		case upload.StatusPending:
		}
	}

	// Reaching the last stage renders the bar for good, so the final
	// description has to be in place first.
	if state.Phase == upload.PhaseSucceeded {
		p.bar.Describe("[green]Listo[reset]")
	}

	if err := p.bar.Set(done); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}

	switch state.Phase {
	case upload.PhaseSucceeded:
		if err := p.bar.Finish(); err != nil {
			slog.Warn("Failed to finish progress bar", "error", err)
		}
		p.finished = true
	case upload.PhaseFailed:
		if err := p.bar.Exit(); err != nil {
			slog.Warn("Failed to stop progress bar", "error", err)
		}
		_, _ = fmt.Fprintln(p.writer)
		p.finished = true
	case upload.PhaseIdle, upload.PhaseRunning:
	}
}

// RenderStages lists the stages with a status marker each.
func RenderStages(stages []upload.Stage) string {
	lines := make([]string, 0, len(stages))
	for _, s := range stages {
		lines = append(lines, stageLine(s))
	}
	return strings.Join(lines, "\n")
}

func stageLine(s upload.Stage) string {
	switch s.Status {
	case upload.StatusDone:
		return SuccessStyle.Render(DoneIcon + " " + s.Label)
	case upload.StatusCurrent:
		return InfoStyle.Render(CurrentIcon + " " + s.Label)
	case upload.StatusError:
		return ErrorStyle.Render(ErrorIcon + " " + s.Label)
	default:
		return SubtleStyle.Render(PendingIcon + " " + s.Label)
	}
}
