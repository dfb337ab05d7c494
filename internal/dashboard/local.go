package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ridersklan/preorderflow/internal/orders"
)

// localState is the on-disk shape of the local cache.
type localState struct {
	SubmittedOrders     []orders.Order `json:"submittedOrders"`
	DeletedServerOrders []string       `json:"deletedServerOrders"`
}

// LocalStore caches orders submitted from this machine and remembers
// server orders the admin deleted, in one JSON file.
type LocalStore struct {
	mu    sync.Mutex
	path  string
	state localState
}

// OpenLocalStore reads path; a missing file starts an empty cache.
func OpenLocalStore(path string) (*LocalStore, error) {
	s := &LocalStore{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local cache: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("parse local cache %s: %w", path, err)
	}
	return s, nil
}

func (s *LocalStore) flush() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode local cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write local cache: %w", err)
	}
	return nil
}

// Orders returns a copy of the cached orders.
func (s *LocalStore) Orders() []orders.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]orders.Order(nil), s.state.SubmittedOrders...)
}

// Deleted returns the remembered deleted server ids.
func (s *LocalStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.state.DeletedServerOrders...)
}

// AddOrder caches o, replacing any cached order with the same id.
func (s *LocalStore) AddOrder(o orders.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.SubmittedOrders {
		if s.state.SubmittedOrders[i].ID == o.ID {
			s.state.SubmittedOrders[i] = o
			return s.flush()
		}
	}
	s.state.SubmittedOrders = append(s.state.SubmittedOrders, o)
	return s.flush()
}

// UpdateStatus changes a cached order; it reports whether one was found.
func (s *LocalStore) UpdateStatus(id, status string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.SubmittedOrders {
		if s.state.SubmittedOrders[i].ID == id {
			s.state.SubmittedOrders[i].Status = status
			return true, s.flush()
		}
	}
	return false, nil
}

// Remove drops a cached order; it reports whether one was found.
func (s *LocalStore) Remove(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.SubmittedOrders {
		if s.state.SubmittedOrders[i].ID == id {
			s.state.SubmittedOrders = append(s.state.SubmittedOrders[:i], s.state.SubmittedOrders[i+1:]...)
			return true, s.flush()
		}
	}
	return false, nil
}

// MarkDeleted hides a server order from future merges.
func (s *LocalStore) MarkDeleted(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.state.DeletedServerOrders {
		if d == id {
			return nil
		}
	}
	s.state.DeletedServerOrders = append(s.state.DeletedServerOrders, id)
	return s.flush()
}

// ClearDeleted forgets every remembered deletion.
func (s *LocalStore) ClearDeleted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DeletedServerOrders = nil
	return s.flush()
}
