package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const maxListedFiles = 10

// DirReport describes one candidate storage directory.
type DirReport struct {
	Exists     bool              `json:"exists"`
	Writable   bool              `json:"writable"`
	FilesCount int               `json:"filesCount"`
	Files      []string          `json:"files"`
	OrdersFile *OrdersFileReport `json:"ordersFile,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// OrdersFileReport describes an orders.json found in a candidate directory.
type OrdersFileReport struct {
	Exists      bool       `json:"exists"`
	Size        int64      `json:"size,omitempty"`
	Modified    *time.Time `json:"modified,omitempty"`
	OrdersCount any        `json:"ordersCount,omitempty"`
	ValidJSON   bool       `json:"validJson"`
	Error       string     `json:"error,omitempty"`
}

// Info summarizes the store's current placement.
type Info struct {
	Dir           string   `json:"dir"`
	Path          string   `json:"path"`
	MemoryOnly    bool     `json:"memoryOnly"`
	FallbackCount int      `json:"fallbackCount"`
	Candidates    []string `json:"candidates"`
}

// Info reports where orders are kept.
func (s *Store) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		Dir:           s.dir,
		Path:          s.Path(),
		MemoryOnly:    s.dir == "",
		FallbackCount: len(s.fallback),
		Candidates:    s.candidates,
	}
}

// Probe inspects every candidate directory without creating any of them.
func (s *Store) Probe() map[string]DirReport {
	out := make(map[string]DirReport, len(s.candidates))
	for _, dir := range s.candidates {
		if dir == "" {
			continue
		}
		out[dir] = probeDir(dir)
	}
	return out
}

func probeDir(dir string) DirReport {
	r := DirReport{Files: []string{}}
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		r.OrdersFile = &OrdersFileReport{Exists: false}
		return r
	}
	r.Exists = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		r.Files = []string{fmt.Sprintf("Error reading directory: %v", err)}
	} else {
		r.FilesCount = len(entries)
		for i, e := range entries {
			if i == maxListedFiles {
				break
			}
			r.Files = append(r.Files, e.Name())
		}
	}
	r.Writable = writable(dir)
	r.OrdersFile = probeOrdersFile(filepath.Join(dir, FileName))
	return r
}

func probeOrdersFile(path string) *OrdersFileReport {
	st, err := os.Stat(path)
	if err != nil {
		return &OrdersFileReport{Exists: false}
	}
	rep := &OrdersFileReport{Exists: true, Size: st.Size()}
	mod := st.ModTime()
	rep.Modified = &mod

	data, err := os.ReadFile(path)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil || list == nil {
		rep.OrdersCount = "Not an array"
		return rep
	}
	rep.OrdersCount = len(list)
	rep.ValidJSON = true
	return rep
}
