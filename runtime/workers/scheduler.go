package workers

import (
	"context"
	"log/slog"
	"time"
)

// SchedulerWorker fires the roulette run once a week, at a fixed local time
// in a fixed time zone. It is a plain Worker: the Supervisor restarts it if
// it ever crashes, and cancels it on shutdown.
type SchedulerWorker struct {
	log     *slog.Logger
	run     func(ctx context.Context)
	weekday time.Weekday
	at      time.Duration // offset from local midnight
	loc     *time.Location
	now     func() time.Time
}

func NewSchedulerWorker(log *slog.Logger, run func(ctx context.Context),
	weekday time.Weekday, at time.Duration, loc *time.Location) *SchedulerWorker {
	return &SchedulerWorker{
		log:     log,
		run:     run,
		weekday: weekday,
		at:      at,
		loc:     loc,
		now:     time.Now,
	}
}

func (w *SchedulerWorker) Run(ctx context.Context) error {
	for {
		next := NextFireTime(w.now(), w.weekday, w.at, w.loc)
		w.log.Info("Next scheduled roulette", "at", next.Format(time.RFC1123))

		timer := time.NewTimer(next.Sub(w.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			w.run(ctx)
		}
	}
}

// NextFireTime returns the first instant strictly after now that falls on
// the given weekday at the given offset from midnight, in loc.
// The candidate is built from wall-clock components: adding the offset to
// midnight as an absolute duration would drift an hour on DST-transition days.
func NextFireTime(now time.Time, weekday time.Weekday, at time.Duration, loc *time.Location) time.Time {
	hour := int(at / time.Hour)
	minute := int((at % time.Hour) / time.Minute)

	local := now.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)

	for candidate.Weekday() != weekday || !candidate.After(local) {
		candidate = time.Date(candidate.Year(), candidate.Month(), candidate.Day()+1, hour, minute, 0, 0, loc)
	}
	return candidate
}
