//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"roulette-lab/domain"
)

// MembershipSource lists the human members of a channel.
// Implementations handle pagination and filter out bot and deleted accounts.
type MembershipSource interface {
	FetchMembers(ctx context.Context, channelID string) ([]domain.Participant, error)
}

// MeetingBooker books a video call for one group.
// Every member must have a contact address; there is no partial-invite fallback.
type MeetingBooker interface {
	CreateMeeting(ctx context.Context, group domain.Group, start time.Time, duration time.Duration) (domain.Meeting, error)
}

// Notifier posts a text message to a destination channel.
type Notifier interface {
	Post(ctx context.Context, channelID string, text string) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
