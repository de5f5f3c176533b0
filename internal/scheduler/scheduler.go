package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"home-gallery/internal/logging"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" in 24-hour local time.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// NextAfter returns the next occurrence of the wall-clock time strictly
// after now, in now's location.
func (t TimeOfDay) NextAfter(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

type job struct {
	name    string
	at      TimeOfDay
	run     func(context.Context)
	running bool
	mu      sync.Mutex
}

// Scheduler owns a set of daily jobs.
type Scheduler struct {
	jobs []*job
	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// New returns an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{stop: make(chan struct{})}
}

// Add registers a job to run daily at the given time. Must be called
// before Start.
func (s *Scheduler) Add(name string, at TimeOfDay, run func(context.Context)) {
	s.jobs = append(s.jobs, &job{name: name, at: at, run: run})
}

// Start launches one goroutine per job. ctx cancellation and Stop both
// end the loops.
func (s *Scheduler) Start(ctx context.Context) {
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, j)
		logging.Info("scheduled %s daily at %s", j.name, j.at)
	}
}

// Stop ends all job loops and waits for them to exit. Jobs already
// mid-run finish on their own.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, j *job) {
	defer s.wg.Done()

	for {
		next := j.at.NextAfter(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
			s.fire(ctx, j)
		}
	}
}

// fire runs the job unless its previous run is still active, in which
// case the tick is dropped.
func (s *Scheduler) fire(ctx context.Context, j *job) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		logging.Warn("skipping %s tick: previous run still active", j.name)
		return
	}
	j.running = true
	j.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			j.mu.Lock()
			j.running = false
			j.mu.Unlock()
		}()

		logging.Info("running scheduled job %s", j.name)
		j.run(ctx)
	}()
}
