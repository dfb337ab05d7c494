// Package filestore persists orders as a single JSON array in orders.json.
//
// The directory is picked once, when the store is built, from an ordered
// list of candidates: the first one that can be written to wins. When none
// is writable the store keeps orders in memory only. Filesystem failures are
// logged and degrade to the in-memory copy; they are never returned.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/ridersklan/preorderflow/internal/orders"
)

const (
	FileName     = "orders.json"
	sentinelName = ".netlify-write-test"
)

// DefaultDirs is the candidate directory list used when none is configured.
func DefaultDirs() []string {
	dirs := []string{"/tmp", "./.netlify/data", "./.netlify/temp", ".data"}
	if tmp := os.Getenv("TEMP"); tmp != "" {
		dirs = append(dirs, tmp)
	} else if tmp := os.Getenv("TMP"); tmp != "" {
		dirs = append(dirs, tmp)
	}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	return dirs
}

// Store is a flat-file order store with an in-memory fallback.
type Store struct {
	mu         sync.Mutex
	log        *zap.Logger
	candidates []string
	dir        string // empty when memory-only
	fallback   []orders.Order
}

var (
	_ orders.Backend = (*Store)(nil)
	_ orders.Getter  = (*Store)(nil)
)

// New picks the first writable directory out of dirs.
func New(dirs []string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if len(dirs) == 0 {
		dirs = DefaultDirs()
	}
	s := &Store{log: log, candidates: dirs, fallback: []orders.Order{}}
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if err := os.MkdirAll(d, 0o755); err != nil {
			log.Debug("storage dir unavailable", zap.String("dir", d), zap.Error(err))
			continue
		}
		if writable(d) {
			s.dir = d
			break
		}
	}
	if s.dir == "" {
		log.Warn("no writable storage directory, keeping orders in memory", zap.Strings("candidates", dirs))
	} else {
		log.Info("order storage selected", zap.String("path", s.Path()))
	}
	return s
}

func writable(dir string) bool {
	p := filepath.Join(dir, sentinelName)
	if err := os.WriteFile(p, []byte("test"), 0o644); err != nil {
		return false
	}
	_ = os.Remove(p)
	return true
}

// Dir returns the chosen directory, or "" when memory-only.
func (s *Store) Dir() string { return s.dir }

// Path returns the orders file path, or "" when memory-only.
func (s *Store) Path() string {
	if s.dir == "" {
		return ""
	}
	return filepath.Join(s.dir, FileName)
}

// Load returns every stored order.
func (s *Store) Load() []orders.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) memory() []orders.Order {
	out := make([]orders.Order, len(s.fallback))
	copy(out, s.fallback)
	return out
}

func (s *Store) load() []orders.Order {
	if s.dir == "" {
		return s.memory()
	}
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		if werr := os.WriteFile(s.Path(), []byte("[]"), 0o644); werr != nil {
			s.log.Warn("create empty orders file", zap.Error(werr))
		}
		return []orders.Order{}
	}
	if err != nil {
		s.log.Error("read orders file", zap.String("path", s.Path()), zap.Error(err))
		return s.memory()
	}
	var list []orders.Order
	if err := json.Unmarshal(data, &list); err != nil {
		s.log.Error("parse orders file", zap.String("path", s.Path()), zap.Error(err))
		return s.memory()
	}
	if list == nil {
		list = []orders.Order{}
	}
	return list
}

// Save replaces the stored orders and reports whether they reached disk.
// The in-memory copy is always updated.
func (s *Store) Save(list []orders.Order) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(list)
}

func (s *Store) save(list []orders.Order) bool {
	if list == nil {
		list = []orders.Order{}
	}
	s.fallback = make([]orders.Order, len(list))
	copy(s.fallback, list)

	if s.dir == "" {
		return false
	}
	data, err := json.Marshal(list)
	if err != nil {
		s.log.Error("encode orders", zap.Error(err))
		return false
	}
	if err := writeAtomic(s.Path(), data); err != nil {
		s.log.Error("write orders file", zap.String("path", s.Path()), zap.Error(err))
		return false
	}
	s.log.Debug("orders saved", zap.Int("count", len(list)))
	return true
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), FileName+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

func indexOf(list []orders.Order, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// insert appends o unless its id is already stored. persisted is false when
// the order only made it into memory.
func (s *Store) insert(o orders.Order) (created, persisted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.load()
	if indexOf(list, o.ID) >= 0 {
		return false, false
	}
	return true, s.save(append(list, o))
}

func (s *Store) updateStatus(id, status string) (updated *orders.Order, persisted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.load()
	i := indexOf(list, id)
	if i < 0 {
		return nil, false
	}
	list[i].Status = status
	persisted = s.save(list)
	o := list[i]
	return &o, persisted
}

func (s *Store) remove(id string) (found, persisted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.load()
	i := indexOf(list, id)
	if i < 0 {
		return false, false
	}
	return true, s.save(append(list[:i], list[i+1:]...))
}

// AddOrder appends o unless its id is already stored. It reports whether the
// order reached the file.
func (s *Store) AddOrder(o orders.Order) bool {
	created, persisted := s.insert(o)
	return created && persisted
}

// DeleteOrder removes the order with id.
func (s *Store) DeleteOrder(id string) bool {
	found, persisted := s.remove(id)
	return found && persisted
}

// FindOrder returns nil when id is unknown.
func (s *Store) FindOrder(id string) *orders.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.load()
	if i := indexOf(list, id); i >= 0 {
		o := list[i]
		return &o
	}
	return nil
}

// UpdateOrderStatus overwrites the status of the order with id.
func (s *Store) UpdateOrderStatus(id, status string) bool {
	updated, persisted := s.updateStatus(id, status)
	return updated != nil && persisted
}

// ClearOrders removes every order.
func (s *Store) ClearOrders() bool {
	return s.Save([]orders.Order{})
}

// List implements orders.Backend.
func (s *Store) List(context.Context) ([]orders.Order, error) {
	return s.Load(), nil
}

// Get implements orders.Getter.
func (s *Store) Get(_ context.Context, id string) (*orders.Order, error) {
	return s.FindOrder(id), nil
}

// Insert implements orders.Backend. A failed disk write still keeps the
// order in memory, so it counts as created.
func (s *Store) Insert(_ context.Context, o orders.Order) (bool, error) {
	created, _ := s.insert(o)
	return created, nil
}

// UpdateStatus implements orders.Backend.
func (s *Store) UpdateStatus(_ context.Context, id, status string) (*orders.Order, error) {
	updated, _ := s.updateStatus(id, status)
	return updated, nil
}

// Delete implements orders.Backend.
func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	found, _ := s.remove(id)
	return found, nil
}

// Clear implements orders.Backend.
func (s *Store) Clear(context.Context) error {
	s.ClearOrders()
	return nil
}
