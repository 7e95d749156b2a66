package notify

import (
	"context"
	"fmt"
	"time"
)

// Sender delivers one formatted message to one recipient.
type Sender interface {
	Send(ctx context.Context, recipientID string, text string) error
}

// Alerter delivers best-effort operational alerts. Implementations never fail the caller.
type Alerter interface {
	Alert(ctx context.Context, text string)
}

// RetryAfterError is returned by a Sender when the provider asks the caller to back off.
type RetryAfterError struct {
	After time.Duration
	Err   error
}

func (e *RetryAfterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("retry after %s: %v", e.After, e.Err)
	}
	return fmt.Sprintf("retry after %s", e.After)
}

func (e *RetryAfterError) Unwrap() error {
	return e.Err
}

// Clock abstracts time so pacing and backoff can be tested without sleeping.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Result is the outcome of fanning one item out to every recipient.
type Result struct {
	// Success is true only if every attempted recipient received the message.
	Success   bool
	Delivered []string
	Skipped   int
	Failures  map[string]error
}
