package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"roulette-lab/contract"
	"roulette-lab/domain"
	"roulette-lab/errors"
	"roulette-lab/infrastructure/calendar"
	"roulette-lab/infrastructure/chat"
	"roulette-lab/observability"
	"roulette-lab/services"
)

type RouletteRunSuite struct {
	BaseHTTPSuite
}

func TestRouletteRunSuite(t *testing.T) {
	suite.Run(t, new(RouletteRunSuite))
}

func (s *RouletteRunSuite) service(withCalendar bool) *services.RouletteService {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	chatClient := chat.NewClient(log, s.Chat.URL(), "e2e-token", 2*time.Second)

	var booker contract.MeetingBooker
	if withCalendar {
		booker = calendar.NewClient(log, s.Calendar.URL(), "cal-token", "roulette@example.com", 2*time.Second)
	}

	return services.NewRouletteService(
		log, chatClient, booker, chatClient,
		observability.NewMonitoringManager(log),
		domain.NewSeededRoulette(11, 13),
		"C-e2e", 3, 15*time.Minute, 15*time.Minute,
	)
}

func (s *RouletteRunSuite) TestFullRunBooksAndNotifies() {
	s.Header(s.T(), "Full run: members -> groups -> bookings -> summary")

	for i := 0; i < 7; i++ {
		s.Chat.AddMember(fmt.Sprintf("U%d", i), fmt.Sprintf("user-%d", i),
			fmt.Sprintf("user-%d@example.com", i), false)
	}
	s.Chat.AddMember("B1", "beep-bot", "", true)

	report := s.service(true).RunOnce(context.Background())

	s.Require().NoError(report.Err)
	s.Require().Equal(7, report.MemberCount, "the bot must be filtered out")
	s.Require().Len(report.Groups, 2, "7 people at target 3 form 2 groups")
	for _, outcome := range report.Groups {
		s.Require().NoError(outcome.BookingErr)
		s.Require().NotNil(outcome.Group.Meeting)
	}

	s.Require().Len(s.Calendar.Events(), 2)

	posts := s.Chat.Posts()
	s.Require().Len(posts, 1)
	s.Require().Contains(posts[0], "2 group(s)")
	s.Require().Contains(posts[0], "https://meet.example.com/")
}

func (s *RouletteRunSuite) TestRunSurvivesCalendarOutage() {
	s.Header(s.T(), "Calendar outage: groups still announced")

	for i := 0; i < 6; i++ {
		s.Chat.AddMember(fmt.Sprintf("U%d", i), fmt.Sprintf("user-%d", i),
			fmt.Sprintf("user-%d@example.com", i), false)
	}
	s.Calendar.FailNext()

	report := s.service(true).RunOnce(context.Background())

	s.Require().NoError(report.Err, "booking failures never fail the run")
	s.Require().Len(report.Groups, 2)
	for _, outcome := range report.Groups {
		s.Require().ErrorContains(outcome.BookingErr, "calendar down")
	}

	posts := s.Chat.Posts()
	s.Require().Len(posts, 1)
	s.Require().Contains(posts[0], "booking failed")
}

func (s *RouletteRunSuite) TestRunWithoutCalendar() {
	s.Header(s.T(), "No calendar configured: announcement-only run")

	for i := 0; i < 4; i++ {
		s.Chat.AddMember(fmt.Sprintf("U%d", i), fmt.Sprintf("user-%d", i),
			fmt.Sprintf("user-%d@example.com", i), false)
	}

	report := s.service(false).RunOnce(context.Background())

	s.Require().NoError(report.Err)
	s.Require().NotEmpty(report.Groups)
	s.Require().Empty(s.Calendar.Events())

	posts := s.Chat.Posts()
	s.Require().Len(posts, 1)
	s.Require().Contains(posts[0], "no calendar configured")
}

func (s *RouletteRunSuite) TestNotEnoughUsers() {
	s.Header(s.T(), "Lone member: polite refusal, no bookings")

	s.Chat.AddMember("U0", "only-one", "only-one@example.com", false)

	report := s.service(true).RunOnce(context.Background())

	s.Require().ErrorIs(report.Err, errors.ErrNotEnoughUsers)
	s.Require().True(report.InsufficientInput)
	s.Require().Empty(s.Calendar.Events())

	posts := s.Chat.Posts()
	s.Require().Len(posts, 1)
	s.Require().True(strings.Contains(posts[0], "Not enough users"))
}
