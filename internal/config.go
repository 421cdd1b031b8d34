package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config is the full environment surface of the roulette process.
// The calendar block is optional as a whole: either all three values are
// set or booking is disabled and runs stay announcement-only.
type Config struct {
	BotToken    string `env:"BOT_TOKEN,required=true" validate:"required"`
	ChannelID   string `env:"CHANNEL_ID,required=true" validate:"required"`
	ChatBaseURL string `env:"CHAT_BASE_URL,required=true" validate:"required,url"`

	GroupSize       int           `env:"GROUP_SIZE,default=3" validate:"gte=2"`
	MeetingDuration time.Duration `env:"MEETING_DURATION,default=15m" validate:"gt=0"`
	MeetingLeadTime time.Duration `env:"MEETING_LEAD_TIME,default=15m" validate:"gte=0"`

	ScheduleWeekday  string `env:"SCHEDULE_WEEKDAY,default=Monday"`
	ScheduleTime     string `env:"SCHEDULE_TIME,default=11:00"`
	ScheduleTimezone string `env:"SCHEDULE_TIMEZONE,default=UTC"`

	CalendarBaseURL   string `env:"CALENDAR_BASE_URL" validate:"omitempty,url"`
	CalendarToken     string `env:"CALENDAR_TOKEN"`
	CalendarOrganizer string `env:"CALENDAR_ORGANIZER" validate:"omitempty,email"`

	HTTPPort        int           `env:"HTTP_PORT,default=8080" validate:"gt=0"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT,default=10s" validate:"gt=0"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=1s" validate:"gt=0"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
}

// Validate checks struct tags plus the cross-field and parse rules the tags
// cannot express. Fatal at startup: a process with a bad config never runs.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if _, err := ParseWeekday(c.ScheduleWeekday); err != nil {
		return err
	}
	if _, err := ParseClock(c.ScheduleTime); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.ScheduleTimezone); err != nil {
		return fmt.Errorf("SCHEDULE_TIMEZONE is not a valid zone: %w", err)
	}

	calendarFields := []string{c.CalendarBaseURL, c.CalendarToken, c.CalendarOrganizer}
	set := 0
	for _, f := range calendarFields {
		if f != "" {
			set++
		}
	}
	if set != 0 && set != len(calendarFields) {
		return fmt.Errorf("CALENDAR_BASE_URL, CALENDAR_TOKEN and CALENDAR_ORGANIZER must be set together")
	}
	return nil
}

// CalendarConfigured reports whether the optional booking integration is on.
func (c Config) CalendarConfigured() bool {
	return c.CalendarBaseURL != "" && c.CalendarToken != "" && c.CalendarOrganizer != ""
}

func (c Config) Weekday() time.Weekday {
	wd, _ := ParseWeekday(c.ScheduleWeekday)
	return wd
}

func (c Config) ClockOffset() time.Duration {
	at, _ := ParseClock(c.ScheduleTime)
	return at
}

func (c Config) Location() *time.Location {
	loc, _ := time.LoadLocation(c.ScheduleTimezone)
	return loc
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func ParseWeekday(str string) (time.Weekday, error) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(str))]
	if !ok {
		return 0, fmt.Errorf("SCHEDULE_WEEKDAY must be a weekday name, got %q", str)
	}
	return wd, nil
}

// ParseClock converts "HH:MM" into an offset from midnight.
func ParseClock(str string) (time.Duration, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(str))
	if err != nil {
		return 0, fmt.Errorf("SCHEDULE_TIME must be HH:MM, got %q", str)
	}
	return time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute, nil
}
