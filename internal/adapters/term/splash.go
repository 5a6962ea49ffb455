// Package term renders lifecycle progress and recovery prompts on a
// terminal. Both adapters write plain lines with lipgloss styling and are
// safe to point at any io.Writer, so tests can capture their output.
package term

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/liftlab/liftoff/internal/domain"
)

const splashBarWidth = 30

var (
	splashBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))
	splashPhaseStyle = lipgloss.NewStyle().Bold(true)
	splashMsgStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

// Splash is a single-line terminal progress display. Update repaints the
// line in place; Close finishes it with a newline so later output starts
// clean.
type Splash struct {
	mu      sync.Mutex
	w       io.Writer
	visible bool
}

// NewSplash creates a splash writing to w.
func NewSplash(w io.Writer) *Splash {
	return &Splash{w: w}
}

// Create marks the splash visible.
func (s *Splash) Create() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return fmt.Errorf("term: splash has no writer")
	}
	s.visible = true
	return nil
}

// Close finishes the progress line. Safe to call when not visible.
func (s *Splash) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.visible {
		return nil
	}
	s.visible = false
	_, err := fmt.Fprint(s.w, "\n")
	return err
}

// Visible reports whether the splash is accepting updates.
func (s *Splash) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Update repaints the progress line: bar, percent, phase and the last
// finished hook.
func (s *Splash) Update(phase domain.Phase, percent float64, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.visible {
		return
	}
	line := fmt.Sprintf("%s %5.1f%% %s",
		splashBarStyle.Render(renderBar(percent, splashBarWidth)),
		percent,
		splashPhaseStyle.Render(phase.String()),
	)
	if message != "" {
		line += "  " + splashMsgStyle.Render(message)
	}
	// \r returns to column zero, ESC[K clears leftovers from a longer
	// previous line.
	fmt.Fprintf(s.w, "\r%s\x1b[K", line)
}

func renderBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent) * width / 100
	empty := width - filled
	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return fmt.Sprintf("[%s]", bar)
}
