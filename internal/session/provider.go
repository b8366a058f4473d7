// Package session defines the boundary to the host's session-membership provider
// and an in-memory roster implementation of it.
package session

import (
	"errors"

	"github.com/ajitpratap0/modaudit/internal/models"
)

// ErrUnknownParticipant is returned when a handle is not in the live roster.
var ErrUnknownParticipant = errors.New("unknown participant")

// Participant is a point-in-time view of one roster entry. Handle is the
// session-local key; UserID is the stable account identifier.
type Participant struct {
	Handle      string
	UserID      string
	NickName    string
	ActorNumber int
	Metadata    models.Metadata
}

// Provider exposes the host's session state. Implementations own participant
// lifetimes; callers hold handles only and must tolerate lookups failing.
type Provider interface {
	// CurrentSession returns the active session name, or ok=false outside a session.
	CurrentSession() (name string, ok bool)

	// InSession reports whether the local process is joined to a session.
	InSession() bool

	// Participants returns the handles of every participant currently known.
	Participants() []string

	// Lookup resolves a handle. ok is false when the participant has left or
	// has no owning network identity yet.
	Lookup(handle string) (p Participant, ok bool)

	// NickName returns the display name of a listed participant, with or
	// without a network identity. ok is false once the participant has left.
	NickName(handle string) (name string, ok bool)
}
