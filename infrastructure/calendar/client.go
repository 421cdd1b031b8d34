// Package calendar books video-call events for roulette groups over the
// calendar service's JSON API, impersonating a configured organizer.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"roulette-lab/domain"
	"roulette-lab/errors"
)

// Client implements contract.MeetingBooker.
type Client struct {
	log       *slog.Logger
	http      *http.Client
	baseURL   string
	token     string
	organizer string
}

func NewClient(log *slog.Logger, baseURL, token, organizer string, timeout time.Duration) *Client {
	return &Client{
		log:       log,
		http:      &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		token:     token,
		organizer: organizer,
	}
}

type attendee struct {
	Email string `json:"email"`
}

type eventTime struct {
	DateTime string `json:"dateTime"`
}

type eventRequest struct {
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	Start       eventTime  `json:"start"`
	End         eventTime  `json:"end"`
	Attendees   []attendee `json:"attendees"`
	ConferenceData struct {
		CreateRequest struct {
			RequestID string `json:"requestId"`
		} `json:"createRequest"`
	} `json:"conferenceData"`
}

type eventResponse struct {
	ID          string `json:"id"`
	HangoutLink string `json:"hangoutLink"`
	Error       struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateMeeting books one event for the whole group. Every member needs a
// contact address; there is no partial-invite fallback.
func (c *Client) CreateMeeting(ctx context.Context, group domain.Group, start time.Time, duration time.Duration) (domain.Meeting, error) {
	if !group.FullyReachable() {
		return domain.Meeting{}, errors.ErrMissingEmail
	}

	event := eventRequest{
		Summary:     "Roulette chat",
		Description: "Randomly drawn discussion group. Enjoy!",
		Start:       eventTime{DateTime: start.Format(time.RFC3339)},
		End:         eventTime{DateTime: start.Add(duration).Format(time.RFC3339)},
		Attendees: lo.Map(group.Emails(), func(email string, _ int) attendee {
			return attendee{Email: email}
		}),
	}
	event.ConferenceData.CreateRequest.RequestID = uuid.NewString()

	body, err := json.Marshal(event)
	if err != nil {
		return domain.Meeting{}, err
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, c.organizer)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Meeting{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("event creation failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Error bodies are not always JSON (a proxy 502 is plain text);
		// the status line is the one thing always worth reporting.
		var out eventResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err == nil && out.Error.Message != "" {
			return domain.Meeting{}, fmt.Errorf("event creation returned %s: %s", resp.Status, out.Error.Message)
		}
		return domain.Meeting{}, fmt.Errorf("event creation returned %s", resp.Status)
	}

	var out eventResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Meeting{}, fmt.Errorf("event response decoding failed: %w", err)
	}

	c.log.Debug("Meeting booked", "event_id", out.ID, "attendees", len(event.Attendees))
	return domain.Meeting{Link: out.HangoutLink, EventID: out.ID}, nil
}
