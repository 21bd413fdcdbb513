package router

import (
	"errors"
	"slices"
	"sync"

	"loam.dev/pkg/persistent/vector"
)

// ErrNoPrevious is returned by History.Back at the first entry.
var ErrNoPrevious = errors.New("no previous history entry")

// History records navigations. It is the host side of the navigation effect;
// implementations must be safe for concurrent use.
type History interface {
	Push(url string) error
	Replace(url string) error
	// Back drops the current entry and returns the previous one.
	Back() (string, error)
	Current() string
	Entries() []string
}

// MemHistory is a History kept in memory, in a persistent vector.
type MemHistory struct {
	mu      sync.Mutex
	entries vector.Vector[string]
}

var _ History = (*MemHistory)(nil)

// NewMemHistory returns a MemHistory with one entry.
func NewMemHistory(initial string) *MemHistory {
	return &MemHistory{entries: vector.Of(initial)}
}

func (h *MemHistory) Push(url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = h.entries.Conj(url)
	logger.Debug().Str("url", url).Int("depth", h.entries.Len()).Msg("push")
	return nil
}

func (h *MemHistory) Replace(url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.entries.Len()
	h.entries, _ = h.entries.Assoc(max(n-1, 0), url)
	logger.Debug().Str("url", url).Msg("replace")
	return nil
}

func (h *MemHistory) Back() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.entries.Len() < 2 {
		return "", ErrNoPrevious
	}
	h.entries, _ = h.entries.Pop()
	url, _ := h.entries.Last()
	return url, nil
}

func (h *MemHistory) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	url, _ := h.entries.Last()
	return url
}

// Entries returns all entries, oldest first.
func (h *MemHistory) Entries() []string {
	h.mu.Lock()
	entries := h.entries
	h.mu.Unlock()
	return slices.Collect(entries.All())
}
