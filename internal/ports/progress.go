package ports

import "github.com/liftlab/liftoff/internal/domain"

// ProgressSurface displays lifecycle progress to the user: a splash screen,
// a terminal bar, a status line. The engine creates it when startup begins,
// updates it as hooks complete, and closes it when the sequence ends or
// aborts.
type ProgressSurface interface {
	// Create makes the surface visible. Called once before the first
	// update.
	Create() error

	// Close tears the surface down. Safe to call when not visible.
	Close() error

	// Visible reports whether the surface can currently display updates.
	// The engine skips Update calls while false.
	Visible() bool

	// Update renders the current position: the executing phase, the
	// sequence-relative percentage, and a short message (typically the
	// last finished hook).
	Update(phase domain.Phase, percent float64, message string)
}
