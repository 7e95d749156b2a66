package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lysyi3m/rss-relay/app/feed"
	"github.com/lysyi3m/rss-relay/app/metrics"
)

// Dispatcher fans an accepted item out to recipients, isolating per-recipient failures.
type Dispatcher struct {
	sender  Sender
	alerter Alerter
	clock   Clock
	limiter *rate.Limiter
	dryRun  bool
}

// NewDispatcher creates a dispatcher that waits at least sendDelay between successive sends.
func NewDispatcher(sender Sender, alerter Alerter, clock Clock, sendDelay time.Duration, dryRun bool) *Dispatcher {
	if clock == nil {
		clock = SystemClock{}
	}

	limit := rate.Inf
	if sendDelay > 0 {
		limit = rate.Every(sendDelay)
	}

	return &Dispatcher{
		sender:  sender,
		alerter: alerter,
		clock:   clock,
		limiter: rate.NewLimiter(limit, 1),
		dryRun:  dryRun,
	}
}

// Dispatch delivers item to every non-blank recipient in order.
func (d *Dispatcher) Dispatch(ctx context.Context, item feed.Item, recipients []string) Result {
	result := Result{Failures: make(map[string]error)}
	text := FormatMessage(item)

	attempted := 0
	for _, recipient := range recipients {
		recipient = strings.TrimSpace(recipient)
		if recipient == "" {
			result.Skipped++
			continue
		}
		attempted++

		if d.dryRun {
			slog.Info("Message delivered", "recipient", recipient, "link", item.Link, "dry_run", true)
			result.Delivered = append(result.Delivered, recipient)
			metrics.RecordDelivery("dry_run")
			continue
		}

		if err := d.deliver(ctx, recipient, text); err != nil {
			slog.Error("Failed to deliver message", "recipient", recipient, "link", item.Link, "error", err)
			result.Failures[recipient] = err
			metrics.RecordDelivery("failed")

			if ctx.Err() == nil && d.alerter != nil {
				d.alerter.Alert(ctx, fmt.Sprintf("Failed to send to %s: %v", recipient, err))
			}
			continue
		}

		slog.Info("Message delivered", "recipient", recipient, "link", item.Link)
		result.Delivered = append(result.Delivered, recipient)
		metrics.RecordDelivery("sent")
	}

	// An item nobody could be sent to is not a success outside dry-run
	result.Success = len(result.Failures) == 0 && (attempted > 0 || d.dryRun)

	return result
}

func (d *Dispatcher) deliver(ctx context.Context, recipient string, text string) error {
	if err := d.pace(ctx); err != nil {
		return err
	}

	err := d.sender.Send(ctx, recipient, text)

	var retryErr *RetryAfterError
	if !errors.As(err, &retryErr) {
		return err
	}

	wait := max(retryErr.After, 0)
	slog.Warn("Delivery throttled, retrying once", "recipient", recipient, "wait", wait)

	if err := d.clock.Sleep(ctx, wait); err != nil {
		return fmt.Errorf("interrupted while waiting to retry: %w", err)
	}

	// The backoff itself satisfies pacing, so the retry does not consume another reservation
	if err := d.sender.Send(ctx, recipient, text); err != nil {
		return fmt.Errorf("retry failed: %w", err)
	}

	return nil
}

func (d *Dispatcher) pace(ctx context.Context) error {
	now := d.clock.Now()
	delay := d.limiter.ReserveN(now, 1).DelayFrom(now)
	if delay <= 0 {
		return nil
	}

	return d.clock.Sleep(ctx, delay)
}
