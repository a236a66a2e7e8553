package printer

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/slok/wbs/internal/model"
)

var (
	colorDone   = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	colorActive = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
	colorReview = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
)

// styles renders the status aware parts of the output. Colors are only
// used when the writer is a terminal that supports them.
type styles struct {
	enabled bool
	plain   lipgloss.Style
	done    lipgloss.Style
	active  lipgloss.Style
	review  lipgloss.Style
	muted   lipgloss.Style
	header  lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		enabled: color,
		plain:   r.NewStyle(),
		done:    r.NewStyle().Foreground(colorDone),
		active:  r.NewStyle().Foreground(colorActive),
		review:  r.NewStyle().Foreground(colorReview),
		muted:   r.NewStyle().Foreground(colorMuted),
		header:  r.NewStyle().Bold(true),
	}
}

func (s styles) render(st lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return st.Render(text)
}

func (s styles) task(status model.TaskStatus) lipgloss.Style {
	switch status {
	case model.TaskStatusCompleted:
		return s.done
	case model.TaskStatusInProgress:
		return s.active
	case model.TaskStatusReview:
		return s.review
	case model.TaskStatusCancelled:
		return s.muted
	}
	return s.plain
}

func (s styles) project(status model.ProjectStatus) lipgloss.Style {
	switch status {
	case model.ProjectStatusCompleted:
		return s.done
	case model.ProjectStatusInProgress:
		return s.active
	case model.ProjectStatusOnHold:
		return s.review
	case model.ProjectStatusCancelled:
		return s.muted
	}
	return s.plain
}
