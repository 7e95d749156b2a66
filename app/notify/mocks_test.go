package notify

import (
	"context"
	"sync"
	"time"
)

type sendCall struct {
	recipient string
	text      string
	at        time.Time
}

type mockSender struct {
	mu       sync.Mutex
	clock    *fakeClock
	calls    []sendCall
	sendFunc func(recipient string, attempt int) error
	attempts map[string]int
}

func (m *mockSender) Send(ctx context.Context, recipientID string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attempts == nil {
		m.attempts = make(map[string]int)
	}
	m.attempts[recipientID]++

	call := sendCall{recipient: recipientID, text: text}
	if m.clock != nil {
		call.at = m.clock.Now()
	}
	m.calls = append(m.calls, call)

	if m.sendFunc != nil {
		return m.sendFunc(recipientID, m.attempts[recipientID])
	}
	return nil
}

type mockAlerter struct {
	alerts []string
}

func (m *mockAlerter) Alert(ctx context.Context, text string) {
	m.alerts = append(m.alerts, text)
}

// fakeClock advances only when Sleep is called.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	if d > 0 {
		c.now = c.now.Add(d)
	}
	return nil
}
