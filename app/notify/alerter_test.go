package notify

import (
	"context"
	"errors"
	"testing"
)

func TestAdminAlerter(t *testing.T) {
	t.Run("sends to admin", func(t *testing.T) {
		sender := &mockSender{}
		NewAdminAlerter(sender, " 42 ", false).Alert(context.Background(), "feed is empty")

		if len(sender.calls) != 1 || sender.calls[0].recipient != "42" || sender.calls[0].text != "feed is empty" {
			t.Errorf("Unexpected calls: %+v", sender.calls)
		}
	})

	t.Run("no admin configured", func(t *testing.T) {
		sender := &mockSender{}
		NewAdminAlerter(sender, "", false).Alert(context.Background(), "feed is empty")

		if len(sender.calls) != 0 {
			t.Errorf("Expected no calls, got %d", len(sender.calls))
		}
	})

	t.Run("dry run only logs", func(t *testing.T) {
		sender := &mockSender{}
		NewAdminAlerter(sender, "42", true).Alert(context.Background(), "feed is empty")

		if len(sender.calls) != 0 {
			t.Errorf("Expected no calls, got %d", len(sender.calls))
		}
	})

	t.Run("send failure is swallowed", func(t *testing.T) {
		sender := &mockSender{sendFunc: func(string, int) error { return errors.New("network down") }}
		NewAdminAlerter(sender, "42", false).Alert(context.Background(), "feed is empty")

		if len(sender.calls) != 1 {
			t.Errorf("Expected exactly one attempt, got %d", len(sender.calls))
		}
	})
}
