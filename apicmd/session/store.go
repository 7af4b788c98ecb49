package session

import (
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/go-analyze/bulk"

	"github.com/gcnwokike/API-Commander/apicmd/config"
	"github.com/gcnwokike/API-Commander/apicmd/request"
	"github.com/gcnwokike/API-Commander/apicmd/storage"
)

// metaKey stores which session is active. It shares the backend with the
// session records but never matches the session key prefix.
const metaKey = "_meta"

var ErrSessionNotFound = errors.New("session not found")

type meta struct {
	Active string `msgpack:"a"`
}

// Store manages persisted sessions with thread-safe access. Exactly one
// session is active at a time; saves only ever target the active session so
// that loading or listing can never overwrite another session's state.
type Store struct {
	backend  storage.Storage
	truncate int
	mu       sync.RWMutex
	active   string
}

// NewStore loads the active-session marker from the backend. A marker
// pointing at a record that no longer exists is cleared rather than kept
// dangling.
func NewStore(backend storage.Storage, truncate int) (*Store, error) {
	if truncate <= 0 {
		truncate = config.DefaultNameTruncate
	}
	s := &Store{backend: backend, truncate: truncate}

	data, found, err := s.backend.Get(metaKey)
	if err != nil {
		return nil, err
	}
	if found {
		var m meta
		if err := storage.Deserialize(data, &m); err != nil {
			log.Printf("session store meta decode error: %v", err)
		} else if _, ok := s.getLocked(m.Active); ok {
			s.active = m.Active
		}
	}
	return s, nil
}

// ActiveKey returns the key of the active session, or "" when none is.
func (s *Store) ActiveKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.active
}

// Active returns the active session.
func (s *Store) Active() (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == "" {
		return nil, false
	}
	return s.getLocked(s.active)
}

// Get retrieves a session by key.
func (s *Store) Get(key string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getLocked(key)
}

// getLocked retrieves a session. Caller must hold mu.
func (s *Store) getLocked(key string) (*Session, bool) {
	if !IsSessionKey(key) {
		return nil, false
	}
	data, found, err := s.backend.Get(key)
	if err != nil || !found {
		return nil, false
	}
	var sess Session
	if err := storage.Deserialize(data, &sess); err != nil {
		log.Printf("session store decode error for %s: %v", key, err)
		return nil, false
	}
	if sess.State != nil {
		sess.State.Normalize()
	}
	return &sess, true
}

// Create persists a fresh session around the given state (nil for the
// default request) and makes it active.
func (s *Store) Create(state *request.Spec, now time.Time) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == nil {
		state = request.DefaultSpec()
	}
	sess := &Session{
		Key:       NewKey(now),
		Timestamp: now.UnixMilli(),
		State:     state,
	}
	sess.Name = Name(string(state.Method), state.URL, sess.Timestamp, now, s.truncate)

	if err := s.putLocked(sess); err != nil {
		return nil, err
	}
	return sess, s.setActiveLocked(sess.Key)
}

// SaveActive writes state into the active session, refreshing its name and
// timestamp. A no-op when no session is active: state observed while
// nothing is loaded must never be persisted.
func (s *Store) SaveActive(state *request.Spec, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == "" {
		return nil
	}
	sess := &Session{
		Key:       s.active,
		Timestamp: now.UnixMilli(),
		State:     state,
	}
	sess.Name = Name(string(state.Method), state.URL, sess.Timestamp, now, s.truncate)
	return s.putLocked(sess)
}

// Switch makes the named session active and returns it.
func (s *Store) Switch(key string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.getLocked(key)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, s.setActiveLocked(key)
}

// Delete removes a session. Deleting the active session promotes the most
// recently modified remaining session; when none remain the store is left
// with no active session rather than silently creating one.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.getLocked(key); !ok {
		return ErrSessionNotFound
	}
	if err := s.backend.Remove(key); err != nil {
		return err
	}
	if s.active != key {
		return nil
	}

	next := ""
	if remaining := s.listLocked(); len(remaining) > 0 {
		next = remaining[0].Key
	}
	return s.setActiveLocked(next)
}

// ListAll returns every decodable session, most recently modified first.
func (s *Store) ListAll() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listLocked()
}

// listLocked enumerates sessions. Caller must hold mu (read or write).
// Records that fail to decode are skipped so one corrupt session never
// hides the rest.
func (s *Store) listLocked() []*Session {
	keys, err := s.backend.ListKeys()
	if err != nil {
		log.Printf("session store list error: %v", err)
		return nil
	}
	keys = bulk.SliceFilterInPlace(IsSessionKey, keys)

	sessions := make([]*Session, 0, len(keys))
	for _, key := range keys {
		if sess, ok := s.getLocked(key); ok {
			sessions = append(sessions, sess)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Timestamp != sessions[j].Timestamp {
			return sessions[i].Timestamp > sessions[j].Timestamp
		}
		return sessions[i].Key > sessions[j].Key
	})
	return sessions
}

// putLocked serializes and writes a session. Caller must hold mu.
func (s *Store) putLocked(sess *Session) error {
	data, err := storage.Serialize(sess)
	if err != nil {
		return err
	}
	return s.backend.Set(sess.Key, data)
}

// setActiveLocked updates and persists the active marker. Caller must hold mu.
func (s *Store) setActiveLocked(key string) error {
	s.active = key
	data, err := storage.Serialize(&meta{Active: key})
	if err != nil {
		return err
	}
	return s.backend.Set(metaKey, data)
}
