// Package domain contains core concepts of the roulette system.
// This file defines Participant and Group entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"github.com/samber/lo"
)

// Participant is a channel member eligible for grouping.
// Immutable once fetched for a run. Email may be empty: such a
// participant can be grouped but not invited to a meeting.
type Participant struct {
	ID    string
	Name  string
	Email string
}

// Meeting is the external reference of a booked video call.
type Meeting struct {
	Link    string
	EventID string
}

// Group is one partition cell of a draw. Member order carries no meaning.
// Meeting is attached after booking, never by the partitioner.
type Group struct {
	Members []Participant
	Meeting *Meeting
}

func (g Group) Size() int {
	return len(g.Members)
}

// MemberNames returns the display names of the group, for summaries.
func (g Group) MemberNames() []string {
	return lo.Map(g.Members, func(p Participant, _ int) string {
		return p.Name
	})
}

// Emails returns the contact addresses of members that have one.
func (g Group) Emails() []string {
	return lo.FilterMap(g.Members, func(p Participant, _ int) (string, bool) {
		return p.Email, p.Email != ""
	})
}

// FullyReachable reports whether every member has a contact address.
// Booking requires this: there is no partial-invite fallback.
func (g Group) FullyReachable() bool {
	return lo.EveryBy(g.Members, func(p Participant) bool {
		return p.Email != ""
	})
}
