package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"home-gallery/internal/catalogue"
	"home-gallery/internal/mediatypes"
)

func seedCatalogue(t *testing.T, dates ...time.Time) *catalogue.Catalogue {
	t.Helper()
	cat, err := catalogue.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cat.Close() })

	for i, d := range dates {
		rec := &catalogue.MediaRecord{
			RelPath:     fmt.Sprintf("img-%d.jpg", i),
			MediaKind:   mediatypes.KindImage,
			CaptureDate: d,
			DateSource:  catalogue.SourceExif,
			Year:        d.Year(),
			Month:       int(d.Month()),
			Day:         d.Day(),
		}
		if err := cat.Upsert(context.Background(), rec); err != nil {
			t.Fatal(err)
		}
	}
	return cat
}

func TestCheckAndQueue(t *testing.T) {
	fixed := time.Date(2024, 7, 14, 9, 0, 0, 0, time.UTC)
	cat := seedCatalogue(t,
		time.Date(2019, 7, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 7, 14, 0, 0, 0, 0, time.UTC),
	)

	n := New(cat)
	n.now = func() time.Time { return fixed }

	if err := n.CheckAndQueue(context.Background()); err != nil {
		t.Fatal(err)
	}

	pending := n.Pending()
	if pending == nil {
		t.Fatal("no pending notification")
	}
	if pending.Count != 2 {
		t.Errorf("count = %d, expected 2", pending.Count)
	}
	if pending.Message == "" {
		t.Error("empty message")
	}
}

func TestQueuedAtMostOncePerDay(t *testing.T) {
	fixed := time.Date(2024, 7, 14, 9, 0, 0, 0, time.UTC)
	cat := seedCatalogue(t, time.Date(2019, 7, 14, 0, 0, 0, 0, time.UTC))

	n := New(cat)
	n.now = func() time.Time { return fixed }

	if err := n.CheckAndQueue(context.Background()); err != nil {
		t.Fatal(err)
	}
	n.MarkShown()

	// A second check the same day must not requeue.
	if err := n.CheckAndQueue(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n.Pending() != nil {
		t.Error("notification requeued within the same day")
	}

	// The next day queues again.
	n.now = func() time.Time { return fixed.AddDate(1, 0, 0) }
	if err := n.CheckAndQueue(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n.Pending() == nil {
		t.Error("notification not queued on a new day")
	}
}

func TestNoMemoriesNoNotification(t *testing.T) {
	cat := seedCatalogue(t, time.Date(2019, 12, 25, 0, 0, 0, 0, time.UTC))

	n := New(cat)
	n.now = func() time.Time { return time.Date(2024, 7, 14, 9, 0, 0, 0, time.UTC) }

	if err := n.CheckAndQueue(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n.Pending() != nil {
		t.Error("notification queued although no memories exist for today")
	}
}

func TestSingularMessage(t *testing.T) {
	cat := seedCatalogue(t, time.Date(2019, 7, 14, 0, 0, 0, 0, time.UTC))

	n := New(cat)
	n.now = func() time.Time { return time.Date(2024, 7, 14, 9, 0, 0, 0, time.UTC) }

	if err := n.CheckAndQueue(context.Background()); err != nil {
		t.Fatal(err)
	}
	pending := n.Pending()
	if pending == nil {
		t.Fatal("no pending notification")
	}
	if pending.Message != "You have 1 memory from this day in previous years" {
		t.Errorf("message = %q", pending.Message)
	}
}
