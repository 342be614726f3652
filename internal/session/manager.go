package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/todolists/internal/canon"
	"github.com/roach88/todolists/internal/list"
)

// DefaultCookieName names the session cookie when Options leaves it empty.
const DefaultCookieName = "todolists_session"

// TokenGenerator produces session tokens.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session tokens.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Options configures a Manager.
type Options struct {
	// SecretKey signs session cookies. Required.
	SecretKey []byte

	// CookieName defaults to DefaultCookieName.
	CookieName string

	// Tokens defaults to UUIDv7Generator.
	Tokens TokenGenerator
}

// Manager keeps encoded session snapshots in memory, keyed by token, and
// hands the token to the browser in a signed cookie.
//
// Thread-safety: Manager is safe for concurrent use. The Sessions it returns
// are not; each belongs to a single request.
type Manager struct {
	mu         sync.Mutex
	snapshots  map[string][]byte
	secret     []byte
	cookieName string
	tokens     TokenGenerator
}

// NewManager creates a Manager.
func NewManager(opts Options) (*Manager, error) {
	if len(opts.SecretKey) == 0 {
		return nil, fmt.Errorf("session manager: secret key is required")
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.Tokens == nil {
		opts.Tokens = UUIDv7Generator{}
	}
	return &Manager{
		snapshots:  make(map[string][]byte),
		secret:     opts.SecretKey,
		cookieName: opts.CookieName,
		tokens:     opts.Tokens,
	}, nil
}

// Load returns the session named by the request's cookie. A missing,
// tampered, or unknown cookie yields a new empty session.
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return New(m.tokens.Generate())
	}
	token, ok := m.verify(cookie.Value)
	if !ok {
		return New(m.tokens.Generate())
	}

	m.mu.Lock()
	data, found := m.snapshots[token]
	m.mu.Unlock()
	if !found {
		return New(m.tokens.Generate())
	}

	s, err := decodeSnapshot(token, data)
	if err != nil {
		return New(m.tokens.Generate())
	}
	return s
}

// Save stores a dirty session and sets its cookie. Clean sessions are left
// untouched.
func (m *Manager) Save(w http.ResponseWriter, s *Session) error {
	if !s.Dirty() {
		return nil
	}

	data, err := encodeSnapshot(s)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	m.mu.Lock()
	m.snapshots[s.token] = data
	m.mu.Unlock()

	if s.isNew {
		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName,
			Value:    m.sign(s.token),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	s.dirty = false
	s.isNew = false
	return nil
}

// Len returns the number of stored sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snapshots)
}

// sign returns "token.signature".
func (m *Manager) sign(token string) string {
	return token + "." + m.signature(token)
}

func (m *Manager) verify(value string) (string, bool) {
	token, sig, ok := strings.Cut(value, ".")
	if !ok || token == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(m.signature(token))) {
		return "", false
	}
	return token, true
}

func (m *Manager) signature(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

type snapshot struct {
	Lists   []list.List `json:"lists"`
	Flashes []Flash     `json:"flashes"`
}

func encodeSnapshot(s *Session) ([]byte, error) {
	lists := make([]any, len(s.lists))
	for i, l := range s.lists {
		todos := make([]any, len(l.Todos))
		for j, t := range l.Todos {
			todos[j] = map[string]any{
				"id":        t.ID,
				"name":      t.Name,
				"completed": t.Completed,
			}
		}
		lists[i] = map[string]any{
			"id":    l.ID,
			"name":  l.Name,
			"todos": todos,
		}
	}

	flashes := make([]any, len(s.flashes))
	for i, f := range s.flashes {
		flashes[i] = map[string]any{"kind": f.Kind, "message": f.Message}
	}

	return canon.Marshal(map[string]any{
		"lists":   lists,
		"flashes": flashes,
	})
}

func decodeSnapshot(token string, data []byte) (*Session, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", token, err)
	}
	if snap.Lists == nil {
		snap.Lists = []list.List{}
	}
	for i := range snap.Lists {
		if snap.Lists[i].Todos == nil {
			snap.Lists[i].Todos = []list.Todo{}
		}
	}
	return &Session{token: token, lists: snap.Lists, flashes: snap.Flashes}, nil
}
