package ui

import (
	"context"

	"stf/internal/session"
)

// Viewer displays a session interactively until the user quits. changes
// signals that the persisted filter store may have been written.
type Viewer interface {
	View(ctx context.Context, s *session.Session, changes <-chan struct{}) error
}
