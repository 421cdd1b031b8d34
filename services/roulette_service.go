package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"roulette-lab/contract"
	"roulette-lab/domain"
	"roulette-lab/errors"
	"roulette-lab/observability"
)

// Meeting starts are aligned on this boundary so invites land on round times.
const startSlot = 5 * time.Minute

// GroupOutcome is one group's booking result within a run.
type GroupOutcome struct {
	Group      domain.Group
	BookingErr error
}

// RunReport summarizes one full run for logs, tests and the status page.
// Err carries the run-level outcome: nil on a normal run,
// errors.ErrNotEnoughUsers when the channel was too small to draw from,
// or the fetch failure that aborted the run.
type RunReport struct {
	RunID             string
	MemberCount       int
	Groups            []GroupOutcome
	InsufficientInput bool
	Err               error
}

type IRouletteService interface {
	RunOnce(ctx context.Context) RunReport
}

// RouletteService drives one run: fetch members, draw groups, book a meeting
// per group, post the summary. Stateless between runs.
type RouletteService struct {
	log        *slog.Logger
	members    contract.MembershipSource
	booker     contract.MeetingBooker // nil when the calendar is unconfigured
	notifier   contract.Notifier
	monitoring *observability.MonitoringManager
	roulette   *domain.Roulette

	channelID string
	groupSize int
	duration  time.Duration
	leadTime  time.Duration
	now       func() time.Time
}

func NewRouletteService(
	log *slog.Logger,
	members contract.MembershipSource,
	booker contract.MeetingBooker,
	notifier contract.Notifier,
	monitoring *observability.MonitoringManager,
	roulette *domain.Roulette,
	channelID string,
	groupSize int,
	duration, leadTime time.Duration,
) *RouletteService {
	return &RouletteService{
		log:        log,
		members:    members,
		booker:     booker,
		notifier:   notifier,
		monitoring: monitoring,
		roulette:   roulette,
		channelID:  channelID,
		groupSize:  groupSize,
		duration:   duration,
		leadTime:   leadTime,
		now:        time.Now,
	}
}

// RunOnce executes one full run. Booking failures stay local to their group;
// only member-fetching failures abort the run. Always posts something to the
// channel, even when the news is bad.
func (s *RouletteService) RunOnce(ctx context.Context) RunReport {
	report := RunReport{RunID: uuid.NewString()}
	log := s.log.With("run_id", report.RunID)
	s.monitoring.RunStarted(report.RunID, s.now())

	members, err := s.members.FetchMembers(ctx, s.channelID)
	if err != nil {
		log.Error("Member fetching failed", "channel", s.channelID, "error", err)
		s.notify(ctx, log, "Roulette run failed: could not list channel members.")
		s.monitoring.RunFailed()
		report.Err = fmt.Errorf("member fetching failed: %w", err)
		return report
	}
	report.MemberCount = len(members)
	s.monitoring.AddMembersFetched(len(members))

	groups, err := s.roulette.Draw(members, s.groupSize)
	if err != nil {
		// Only a caller contract violation (group size < 2) lands here.
		log.Error("Draw refused", "group_size", s.groupSize, "error", err)
		s.monitoring.RunFailed()
		report.Err = err
		return report
	}
	if len(groups) == 0 {
		log.Info("Not enough users for a draw", "members", len(members))
		s.notify(ctx, log, "Not enough users in the channel for a roulette, need at least 2.")
		s.monitoring.RunCompleted()
		report.InsufficientInput = true
		report.Err = errors.ErrNotEnoughUsers
		return report
	}

	log.Info("Groups drawn", "members", len(members), "groups", len(groups))
	s.monitoring.AddGroupsFormed(len(groups))

	start := s.meetingStart()
	for _, group := range groups {
		report.Groups = append(report.Groups, s.book(ctx, log, group, start))
	}

	s.notify(ctx, log, FormatSummary(report.Groups))
	s.monitoring.RunCompleted()
	return report
}

// book attaches a meeting to the group, or records why it could not.
// One group's failure never aborts the run.
func (s *RouletteService) book(ctx context.Context, log *slog.Logger, group domain.Group, start time.Time) GroupOutcome {
	outcome := GroupOutcome{Group: group}
	if s.booker == nil {
		outcome.BookingErr = errors.ErrCalendarNotConfigured
		return outcome
	}

	meeting, err := s.booker.CreateMeeting(ctx, group, start, s.duration)
	if err != nil {
		log.Warn("Booking failed for group", "members", group.MemberNames(), "error", err)
		s.monitoring.IncrBookingFailed()
		outcome.BookingErr = err
		return outcome
	}

	outcome.Group.Meeting = &meeting
	s.monitoring.IncrBookingOK()
	return outcome
}

func (s *RouletteService) notify(ctx context.Context, log *slog.Logger, text string) {
	if err := s.notifier.Post(ctx, s.channelID, text); err != nil {
		log.Error("Channel notification failed", "error", err)
	}
}

// meetingStart returns now + lead time, rounded up to the next slot boundary.
func (s *RouletteService) meetingStart() time.Time {
	start := s.now().Add(s.leadTime)
	rounded := start.Truncate(startSlot)
	if rounded.Before(start) {
		rounded = rounded.Add(startSlot)
	}
	return rounded
}

// FormatSummary renders the channel message: one line per group plus its
// booking status.
func FormatSummary(outcomes []GroupOutcome) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Roulette results — %d group(s) drawn:\n", len(outcomes)))
	for i, outcome := range outcomes {
		b.WriteString(fmt.Sprintf("Group %d: %s\n", i+1, strings.Join(outcome.Group.MemberNames(), ", ")))
		switch {
		case outcome.Group.Meeting != nil:
			b.WriteString(fmt.Sprintf("  meeting: %s\n", outcome.Group.Meeting.Link))
		case outcome.BookingErr == errors.ErrCalendarNotConfigured:
			b.WriteString("  meeting: no calendar configured, organize yourselves!\n")
		default:
			b.WriteString(fmt.Sprintf("  meeting: booking failed (%v)\n", outcome.BookingErr))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
