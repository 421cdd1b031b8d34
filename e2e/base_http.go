package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

// BaseHTTPSuite hosts stub chat and calendar servers so scenarios can drive
// the real HTTP clients end to end without external services.
type BaseHTTPSuite struct {
	suite.Suite
	Config Config

	Chat     *ChatStub
	Calendar *CalendarStub
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

func (s *BaseHTTPSuite) SetupTest() {
	s.Chat = NewChatStub()
	s.Calendar = NewCalendarStub()
}

func (s *BaseHTTPSuite) TearDownTest() {
	s.Chat.Close()
	s.Calendar.Close()
}

// Header prints a colorized scenario header in the test logs.
func (s *BaseHTTPSuite) Header(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// ChatStub fakes the chat platform: one channel worth of members and a
// record of every posted message.
type ChatStub struct {
	server *httptest.Server

	mu      sync.Mutex
	members []map[string]any
	posts   []string
}

func NewChatStub() *ChatStub {
	stub := &ChatStub{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /conversations.members", func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		defer stub.mu.Unlock()

		// Two pages: everything but the last member, then the last one.
		cursor := r.URL.Query().Get("cursor")
		page := map[string]any{"ok": true}
		split := len(stub.members)
		if split > 1 {
			split--
		}
		if cursor == "" {
			page["members"] = stub.members[:split]
			next := ""
			if split < len(stub.members) {
				next = "page-2"
			}
			page["response_metadata"] = map[string]any{"next_cursor": next}
		} else {
			page["members"] = stub.members[split:]
			page["response_metadata"] = map[string]any{"next_cursor": ""}
		}
		_ = json.NewEncoder(w).Encode(page)
	})
	mux.HandleFunc("POST /chat.postMessage", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		stub.mu.Lock()
		stub.posts = append(stub.posts, body.Text)
		stub.mu.Unlock()

		fmt.Fprint(w, `{"ok": true}`)
	})

	stub.server = httptest.NewServer(mux)
	return stub
}

func (s *ChatStub) URL() string { return s.server.URL }
func (s *ChatStub) Close()      { s.server.Close() }

func (s *ChatStub) AddMember(id, name, email string, bot bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = append(s.members, map[string]any{
		"id":        id,
		"name":      name,
		"real_name": name,
		"is_bot":    bot,
		"deleted":   false,
		"profile":   map[string]any{"email": email},
	})
}

func (s *ChatStub) Posts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.posts...)
}

// CalendarStub fakes the calendar service and records booked events.
type CalendarStub struct {
	server *httptest.Server

	mu     sync.Mutex
	events []map[string]any
	fail   bool
}

func NewCalendarStub() *CalendarStub {
	stub := &CalendarStub{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /calendars/{organizer}/events", func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		defer stub.mu.Unlock()

		if stub.fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error": {"message": "calendar down"}}`)
			return
		}

		var event map[string]any
		_ = json.NewDecoder(r.Body).Decode(&event)
		stub.events = append(stub.events, event)

		fmt.Fprintf(w, `{"id": "evt-%d", "hangoutLink": "https://meet.example.com/room-%d"}`,
			len(stub.events), len(stub.events))
	})

	stub.server = httptest.NewServer(mux)
	return stub
}

func (s *CalendarStub) URL() string { return s.server.URL }
func (s *CalendarStub) Close()      { s.server.Close() }

func (s *CalendarStub) FailNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = true
}

func (s *CalendarStub) Events() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.events...)
}
