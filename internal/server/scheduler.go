package server

import (
	"context"

	"totals-tracker/internal/scheduler"
)

// Scheduler defines the minimal job runner behavior needed by the server.
type Scheduler interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() scheduler.Status
}
