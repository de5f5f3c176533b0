package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"home-gallery/internal/catalogue"
	"home-gallery/internal/logging"
)

// Notification is one pending browser notification.
type Notification struct {
	Count    int       `json:"count"`
	Message  string    `json:"message"`
	QueuedAt time.Time `json:"queuedAt"`
}

// Notifier checks for memories and holds the pending notification until
// the frontend marks it shown.
type Notifier struct {
	cat *catalogue.Catalogue

	mu            sync.Mutex
	pending       *Notification
	lastQueuedDay string // YYYY-MM-DD of the last queued notification
	now           func() time.Time
}

// New returns a Notifier over the catalogue.
func New(cat *catalogue.Catalogue) *Notifier {
	return &Notifier{cat: cat, now: time.Now}
}

// CheckAndQueue queues today's memories notification when there are
// memories and none has been queued yet today. Safe to call repeatedly;
// extra calls in the same day are no-ops.
func (n *Notifier) CheckAndQueue(ctx context.Context) error {
	now := n.now()
	today := now.Format("2006-01-02")

	n.mu.Lock()
	already := n.lastQueuedDay == today
	n.mu.Unlock()
	if already {
		logging.Debug("memories notification already queued today")
		return nil
	}

	count, err := n.cat.CountByMonthDay(ctx, int(now.Month()), now.Day())
	if err != nil {
		return fmt.Errorf("counting today's memories: %w", err)
	}
	if count == 0 {
		logging.Debug("no memories for today, skipping notification")
		return nil
	}

	noun := "memories"
	if count == 1 {
		noun = "memory"
	}

	n.mu.Lock()
	n.pending = &Notification{
		Count:    count,
		Message:  fmt.Sprintf("You have %d %s from this day in previous years", count, noun),
		QueuedAt: now,
	}
	n.lastQueuedDay = today
	n.mu.Unlock()

	logging.Info("memories notification queued: %d %s from this day in previous years", count, noun)
	return nil
}

// Pending returns the queued notification, or nil when there is none.
func (n *Notifier) Pending() *Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pending
}

// MarkShown clears the pending notification. The once-per-day guard
// stays in place, so the same day never queues twice.
func (n *Notifier) MarkShown() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = nil
}
