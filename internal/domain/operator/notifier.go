package operator

import "context"

// Notifier delivers short run reports to the people operating the job.
// Delivery is best effort; callers log errors and move on.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Nop is used when no operator channel is configured.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }
