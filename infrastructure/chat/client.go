// Package chat implements the chat-platform side of the roulette:
// listing channel members and posting messages over the platform's
// JSON Web API.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/samber/lo"

	"roulette-lab/domain"
)

const defaultPageLimit = 200

// Client talks to the chat platform with a bot token.
// It implements contract.MembershipSource and contract.Notifier.
type Client struct {
	log       *slog.Logger
	http      *http.Client
	baseURL   string
	token     string
	pageLimit int
}

func NewClient(log *slog.Logger, baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		log:       log,
		http:      &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		token:     token,
		pageLimit: defaultPageLimit,
	}
}

type member struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RealName string `json:"real_name"`
	Deleted  bool   `json:"deleted"`
	IsBot    bool   `json:"is_bot"`
	Profile  struct {
		Email string `json:"email"`
	} `json:"profile"`
}

type memberPage struct {
	OK               bool     `json:"ok"`
	Error            string   `json:"error"`
	Members          []member `json:"members"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

// FetchMembers walks the paginated member list of a channel and returns the
// human participants. Bot and deleted accounts are dropped here so callers
// never see them.
func (c *Client) FetchMembers(ctx context.Context, channelID string) ([]domain.Participant, error) {
	var all []member
	cursor := ""
	for {
		page, err := c.fetchPage(ctx, channelID, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Members...)

		cursor = page.ResponseMetadata.NextCursor
		if cursor == "" {
			break
		}
	}

	humans := lo.Filter(all, func(m member, _ int) bool {
		return !m.IsBot && !m.Deleted
	})
	c.log.Debug("Fetched channel members",
		"channel", channelID, "total", len(all), "humans", len(humans))

	return lo.Map(humans, func(m member, _ int) domain.Participant {
		name := m.RealName
		if name == "" {
			name = m.Name
		}
		return domain.Participant{
			ID:    m.ID,
			Name:  name,
			Email: m.Profile.Email,
		}
	}), nil
}

func (c *Client) fetchPage(ctx context.Context, channelID, cursor string) (*memberPage, error) {
	query := url.Values{}
	query.Set("channel", channelID)
	query.Set("limit", fmt.Sprintf("%d", c.pageLimit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	endpoint := fmt.Sprintf("%s/conversations.members?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("member page request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("member page request returned %s", resp.Status)
	}

	var page memberPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("member page decoding failed: %w", err)
	}
	if !page.OK {
		return nil, fmt.Errorf("chat platform refused member listing: %s", page.Error)
	}
	return &page, nil
}

type postMessageRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Post sends a text message to a channel.
func (c *Client) Post(ctx context.Context, channelID string, text string) error {
	body, err := json.Marshal(postMessageRequest{Channel: channelID, Text: text})
	if err != nil {
		return err
	}

	endpoint := c.baseURL + "/chat.postMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("message posting failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("message posting returned %s", resp.Status)
	}

	var out postMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("message response decoding failed: %w", err)
	}
	if !out.OK {
		return fmt.Errorf("chat platform refused message: %s", out.Error)
	}
	return nil
}
