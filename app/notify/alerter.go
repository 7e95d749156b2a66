package notify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lysyi3m/rss-relay/app/metrics"
)

// AdminAlerter sends alerts to a single admin recipient through a Sender.
// Delivery errors are logged and swallowed.
type AdminAlerter struct {
	sender  Sender
	adminID string
	dryRun  bool
}

var _ Alerter = (*AdminAlerter)(nil)

func NewAdminAlerter(sender Sender, adminID string, dryRun bool) *AdminAlerter {
	return &AdminAlerter{
		sender:  sender,
		adminID: strings.TrimSpace(adminID),
		dryRun:  dryRun,
	}
}

func (a *AdminAlerter) Alert(ctx context.Context, text string) {
	if a.adminID == "" {
		slog.Warn("Admin alert not sent: no admin configured", "alert", text)
		return
	}

	if a.dryRun {
		slog.Info("Admin alert", "alert", text, "dry_run", true)
		metrics.RecordAlert("dry_run")
		return
	}

	if err := a.sender.Send(ctx, a.adminID, text); err != nil {
		slog.Error("Failed to send admin alert", "alert", text, "error", err)
		metrics.RecordAlert("failed")
		return
	}

	metrics.RecordAlert("sent")
}
