package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jllopis/agentdir/pkg/agentcard"
	agentdirerrors "github.com/jllopis/agentdir/pkg/errors"
)

// FileStore persists the whole collection as a single pretty-printed JSON
// object keyed by agent name. The collection lives in memory and is loaded
// lazily on first access; every mutation rewrites the file. A mutex serializes
// access within the process; concurrent processes sharing the file race
// (last writer wins, no file locking).
type FileStore struct {
	path   string
	strict bool

	mu     sync.Mutex
	loaded bool
	cards  map[string]agentcard.Card
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithStrictLoad makes an unparseable store file a startup error instead of
// the default warn-and-start-empty behavior.
func WithStrictLoad() FileOption {
	return func(s *FileStore) { s.strict = true }
}

// NewFileStore creates a file-backed store at path. The file is not touched
// until the first operation.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	s := &FileStore{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List implements Store.
func (s *FileStore) List(ctx context.Context) ([]agentcard.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]agentcard.Card, 0, len(s.cards))
	for _, card := range s.cards {
		out = append(out, card.Clone())
	}
	return out, nil
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, name string) (agentcard.Card, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, false, err
	}
	card, ok := s.cards[name]
	if !ok {
		return nil, false, nil
	}
	return card.Clone(), true, nil
}

// Create implements Store.
func (s *FileStore) Create(ctx context.Context, card agentcard.Card) (agentcard.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	name := card.Name()
	if _, exists := s.cards[name]; exists {
		return nil, agentdirerrors.Newf(agentdirerrors.CodeAlreadyExists,
			"agent %q is already registered", name)
	}
	s.cards[name] = card.Clone()
	if err := s.flush(); err != nil {
		delete(s.cards, name)
		return nil, err
	}
	return card, nil
}

// Replace implements Store.
func (s *FileStore) Replace(ctx context.Context, name string, card agentcard.Card) (agentcard.Card, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, false, err
	}
	previous, exists := s.cards[name]
	if !exists {
		return nil, false, nil
	}
	s.cards[name] = card.Clone()
	if err := s.flush(); err != nil {
		s.cards[name] = previous
		return nil, false, err
	}
	return card, true, nil
}

// Delete implements Store.
func (s *FileStore) Delete(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return false, err
	}
	previous, exists := s.cards[name]
	if !exists {
		return false, nil
	}
	delete(s.cards, name)
	if err := s.flush(); err != nil {
		s.cards[name] = previous
		return false, err
	}
	return true, nil
}

func (s *FileStore) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return agentdirerrors.New(agentdirerrors.CodeStorage, "reading store file "+s.path, err)
		}
		s.cards = make(map[string]agentcard.Card)
		s.loaded = true
		return nil
	}
	cards := make(map[string]agentcard.Card)
	if err := json.Unmarshal(data, &cards); err != nil {
		if s.strict {
			return agentdirerrors.New(agentdirerrors.CodeStorage, "parsing store file "+s.path, err)
		}
		slog.WarnContext(ctx, "agent store file is unparseable, starting empty",
			"path", s.path, "error", err)
		cards = make(map[string]agentcard.Card)
	}
	s.cards = cards
	s.loaded = true
	return nil
}

func (s *FileStore) flush() error {
	payload, err := json.MarshalIndent(s.cards, "", "  ")
	if err != nil {
		return agentdirerrors.New(agentdirerrors.CodeStorage, "encoding store file", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return agentdirerrors.New(agentdirerrors.CodeStorage, "creating store directory "+dir, err)
		}
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return agentdirerrors.New(agentdirerrors.CodeStorage, "writing store file "+s.path, err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
