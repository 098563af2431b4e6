package storage

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/domain"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/workflow"
)

var (
	ErrNotFound       = errors.New("atendimento não encontrado")
	ErrRunInProgress  = errors.New("geração de documentos em andamento")
	errNilSessionFunc = errors.New("nil update func")
)

// Session is one intake in progress. It lives in memory only; the backend
// owns everything that must survive.
type Session struct {
	ID        string                 `json:"id"`
	CreatedAt int64                  `json:"createdAt"`
	UpdatedAt int64                  `json:"updatedAt"`
	Intake    domain.IntakeRecord    `json:"intake"`
	Selected  map[string]bool        `json:"selected"`
	Running   bool                   `json:"running"`
	State     workflow.State         `json:"state"`
	Progress  domain.Progress        `json:"progress"`
	Results   []domain.GeneratedFile `json:"results"`
	Error     string                 `json:"error,omitempty"`
	// LogWarning is set when the interview row could not be written.
	LogWarning string `json:"logWarning,omitempty"`
}

func (s Session) clone() Session {
	s.Intake.ComposicaoFamiliar = slices.Clone(s.Intake.ComposicaoFamiliar)
	s.Selected = maps.Clone(s.Selected)
	s.Results = slices.Clone(s.Results)
	return s
}

// SelectedIDs lists the selected document ids, sorted.
func (s Session) SelectedIDs() []string {
	ids := make([]string, 0, len(s.Selected))
	for id, ok := range s.Selected {
		if ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Reset brings the session back to a blank intake, keeping its id.
func (s *Session) Reset() {
	s.Intake = domain.NewIntakeRecord()
	s.Selected = map[string]bool{}
	s.State = workflow.StateIdle
	s.Progress = domain.Progress{}
	s.Results = []domain.GeneratedFile{}
	s.Error = ""
	s.LogWarning = ""
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{sessions: map[string]Session{}, now: time.Now}
}

func (s *Store) Create() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	session := Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	session.Reset()
	s.sessions[session.ID] = session

	return session.clone()
}

func (s *Store) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return session.clone(), nil
}

// Update applies fn to a copy of the session and stores it when fn returns
// nil. fn runs under the store lock and must not call back into the store.
func (s *Store) Update(id string, fn func(*Session) error) (Session, error) {
	if fn == nil {
		return Session{}, errNilSessionFunc
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}

	next := session.clone()
	if err := fn(&next); err != nil {
		return session.clone(), err
	}
	next.UpdatedAt = s.now().Unix()
	s.sessions[id] = next

	return next.clone(), nil
}

// Edit is Update for changes that are refused while a run is in progress.
func (s *Store) Edit(id string, fn func(*Session) error) (Session, error) {
	return s.Update(id, func(session *Session) error {
		if session.Running {
			return ErrRunInProgress
		}
		return fn(session)
	})
}

// Delete drops a session. A session with a run in progress is kept.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if session.Running {
		return ErrRunInProgress
	}
	delete(s.sessions, id)
	return nil
}

// Sweep drops sessions untouched for longer than ttl, skipping running ones.
func (s *Store) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl).Unix()
	removed := 0
	for id, session := range s.sessions {
		if !session.Running && session.UpdatedAt < cutoff {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
