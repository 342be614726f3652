// Package session holds per-browser state: the ephemeral list engine and the
// flash messages shown on the next page.
//
// A Session tracks its own dirtiness. Every method that changes it marks it
// dirty, and Manager.Save only re-encodes sessions that are dirty, so callers
// never flag modifications by hand.
package session

import (
	"slices"

	"github.com/roach88/todolists/internal/list"
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message displayed on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Session is the state of one browser session.
// A Session is not safe for concurrent use.
type Session struct {
	token   string
	lists   []list.List
	flashes []Flash
	dirty   bool
	isNew   bool
}

// New returns an empty session identified by token.
func New(token string) *Session {
	return &Session{token: token, lists: []list.List{}, isNew: true}
}

// Token returns the session identifier.
func (s *Session) Token() string {
	return s.token
}

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool {
	return s.dirty
}

// IsNew reports whether the session was created for this request.
func (s *Session) IsNew() bool {
	return s.isNew
}

// AddFlash queues a message for the next page.
func (s *Session) AddFlash(kind, message string) {
	s.flashes = append(s.flashes, Flash{Kind: kind, Message: message})
	s.dirty = true
}

// PopFlashes returns the queued messages and clears the queue.
func (s *Session) PopFlashes() []Flash {
	if len(s.flashes) == 0 {
		return nil
	}
	flashes := s.flashes
	s.flashes = nil
	s.dirty = true
	return flashes
}

// Lists returns a deep copy of the session's lists.
func (s *Session) Lists() []list.List {
	lists := make([]list.List, len(s.lists))
	for i, l := range s.lists {
		lists[i] = l.Clone()
	}
	return lists
}

// mutate applies fn to the session's lists. fn reports whether it changed
// anything; only then is the session marked dirty.
func (s *Session) mutate(fn func(lists []list.List) ([]list.List, bool)) {
	lists, changed := fn(s.lists)
	if !changed {
		return
	}
	s.lists = lists
	s.dirty = true
}

// listIndex returns the position of the list with id, or -1.
func (s *Session) listIndex(id int64) int {
	return slices.IndexFunc(s.lists, func(l list.List) bool { return l.ID == id })
}
