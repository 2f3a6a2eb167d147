// Package session fans out session events (sign-in, sign-out, upload
// progress) to the observers of each user.
package session

import (
	"sync"
)

type Kind string

const (
	KindSignedIn       Kind = "signed_in"
	KindSignedOut      Kind = "signed_out"
	KindUploadProgress Kind = "upload_progress"
)

// State is the current authentication state of a client.
type State struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
}

// Anonymous is the state of a client without a valid session.
var Anonymous = State{}

type UploadProgress struct {
	Target  string `json:"target"`
	Percent int    `json:"percent"`
}

type Event struct {
	Kind   Kind            `json:"kind"`
	State  *State          `json:"state,omitempty"`
	Upload *UploadProgress `json:"upload,omitempty"`
}

func SignedIn(userID, email string) Event {
	return Event{
		Kind:  KindSignedIn,
		State: &State{Authenticated: true, UserID: userID, Email: email},
	}
}

func SignedOut() Event {
	state := Anonymous
	return Event{Kind: KindSignedOut, State: &state}
}

func Progress(target string, percent int) Event {
	return Event{Kind: KindUploadProgress, Upload: &UploadProgress{Target: target, Percent: percent}}
}

// Observer is called for each event published to its user. It must not
// block or call back into the Hub.
type Observer func(Event)

type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]Observer
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uint64]Observer)}
}

// Subscribe registers fn for the events of userID. The returned function
// removes the subscription and may be called more than once.
func (h *Hub) Subscribe(userID string, fn Observer) (unsubscribe func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[uint64]Observer)
	}
	h.subs[userID][id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
		})
	}
}

// Publish delivers e to every observer of userID.
func (h *Hub) Publish(userID string, e Event) {
	h.mu.RLock()
	observers := make([]Observer, 0, len(h.subs[userID]))
	for _, fn := range h.subs[userID] {
		observers = append(observers, fn)
	}
	h.mu.RUnlock()

	for _, fn := range observers {
		fn(e)
	}
}

// Observers returns the number of subscriptions for userID.
func (h *Hub) Observers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
