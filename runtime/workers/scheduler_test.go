package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNextFireTime(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	elevenAM := 11 * time.Hour

	tests := []struct {
		description string
		now         time.Time
		weekday     time.Weekday
		at          time.Duration
		loc         *time.Location
		want        time.Time
	}{
		{
			"Midweek jumps to next Monday",
			time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC), // a Wednesday
			time.Monday, elevenAM, time.UTC,
			time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC),
		},
		{
			"Same day before the slot fires today",
			time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), // a Monday
			time.Monday, elevenAM, time.UTC,
			time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
		},
		{
			"Same day after the slot waits a full week",
			time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
			time.Monday, elevenAM, time.UTC,
			time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC),
		},
		{
			"Exactly on the slot waits a full week",
			time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
			time.Monday, elevenAM, time.UTC,
			time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC),
		},
		{
			"Fixed zone is honored",
			time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			time.Monday, elevenAM, paris,
			time.Date(2026, 3, 2, 11, 0, 0, 0, paris),
		},
		{
			// 2026-03-29 is the CET->CEST switch: the slot must stay at
			// 11:00 wall clock, not shift to midnight+11h.
			"Spring-forward day keeps the wall-clock slot",
			time.Date(2026, 3, 29, 1, 0, 0, 0, paris),
			time.Sunday, elevenAM, paris,
			time.Date(2026, 3, 29, 11, 0, 0, 0, paris),
		},
		{
			"Fall-back day keeps the wall-clock slot",
			time.Date(2026, 10, 25, 1, 0, 0, 0, paris),
			time.Sunday, elevenAM, paris,
			time.Date(2026, 10, 25, 11, 0, 0, 0, paris),
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got := NextFireTime(tt.now, tt.weekday, tt.at, tt.loc)
			require.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
			require.Equal(t, tt.weekday, got.Weekday())
		})
	}
}

func TestSchedulerWorker_FiresAndReschedules(t *testing.T) {
	req := require.New(t)

	fired := make(chan struct{}, 4)
	worker := NewSchedulerWorker(slog.Default(), func(ctx context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	}, time.Monday, 11*time.Hour, time.UTC)

	// Freeze the clock just before the slot so the timer is tiny.
	base := time.Date(2026, 3, 2, 10, 59, 59, 950_000_000, time.UTC)
	worker.now = func() time.Time { return base }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		req.Fail("Scheduler never fired")
	}

	cancel()
	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		req.Fail("Scheduler did not stop on cancel")
	}
}

func TestSchedulerWorker_StopsBeforeFiring(t *testing.T) {
	req := require.New(t)

	worker := NewSchedulerWorker(slog.Default(), func(ctx context.Context) {
		req.Fail("run must not fire")
	}, time.Monday, 11*time.Hour, time.UTC)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		req.Fail("Scheduler did not stop on cancel")
	}
}
