package session

import (
	"slices"
	"sync"

	"github.com/ajitpratap0/modaudit/internal/models"
)

// Roster is an in-memory Provider. It is safe for concurrent use.
type Roster struct {
	mu        sync.RWMutex
	session   string
	inSession bool
	order     []string
	entries   map[string]Participant
}

// NewRoster creates a roster that is not in a session.
func NewRoster() *Roster {
	return &Roster{entries: make(map[string]Participant)}
}

// Join enters the named session. Participants are kept; call Reset to drop them.
func (r *Roster) Join(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = name
	r.inSession = true
}

// Leave exits the current session and forgets every participant.
func (r *Roster) Leave() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = ""
	r.inSession = false
	r.order = nil
	r.entries = make(map[string]Participant)
}

// Upsert adds or replaces a participant, keeping its original roster position.
func (r *Roster) Upsert(p Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[p.Handle]; !exists {
		r.order = append(r.order, p.Handle)
	}
	p.Metadata = cloneMetadata(p.Metadata)
	r.entries[p.Handle] = p
}

// Remove drops a participant. It returns ErrUnknownParticipant if the handle is not present.
func (r *Roster) Remove(handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[handle]; !exists {
		return ErrUnknownParticipant
	}
	delete(r.entries, handle)
	r.order = slices.DeleteFunc(r.order, func(h string) bool { return h == handle })
	return nil
}

// Replace swaps the whole session state at once and returns the handles that
// were present before but are missing from participants.
func (r *Roster) Replace(name string, inSession bool, participants []Participant) (left []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.order {
		if !slices.ContainsFunc(participants, func(p Participant) bool { return p.Handle == h }) {
			left = append(left, h)
		}
	}
	r.session = name
	r.inSession = inSession
	r.order = make([]string, 0, len(participants))
	r.entries = make(map[string]Participant, len(participants))
	for _, p := range participants {
		if _, exists := r.entries[p.Handle]; !exists {
			r.order = append(r.order, p.Handle)
		}
		p.Metadata = cloneMetadata(p.Metadata)
		r.entries[p.Handle] = p
	}
	return left
}

// CurrentSession implements Provider.
func (r *Roster) CurrentSession() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session, r.inSession
}

// InSession implements Provider.
func (r *Roster) InSession() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inSession
}

// Participants implements Provider.
func (r *Roster) Participants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Lookup implements Provider. Entries without a user id have no owning network
// identity and are reported as not found.
func (r *Roster) Lookup(handle string) (Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.entries[handle]
	if !ok || p.UserID == "" {
		return Participant{}, false
	}
	p.Metadata = cloneMetadata(p.Metadata)
	return p, true
}

// NickName implements Provider.
func (r *Roster) NickName(handle string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.entries[handle]
	return p.NickName, ok
}

func cloneMetadata(m models.Metadata) models.Metadata {
	if m == nil {
		return nil
	}
	return slices.Clone(m)
}
