package reconciler

import (
	"context"
)

// Sweeper is a long-running background repair loop owned by a binary's main.
//
//go:generate mockgen -source=sweeper.go -destination=../mocks/sweeper.go -package=mocks -mock_names=Sweeper=MockSweeper
type Sweeper interface {
	// Start blocks, running repair passes until the context is cancelled
	Start(ctx context.Context) error

	// Stop shuts the loop down, waiting for the in-flight pass to finish
	Stop(ctx context.Context) error

	// Name identifies the sweeper in logs
	Name() string
}
