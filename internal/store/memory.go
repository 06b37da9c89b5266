package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/nhle/noc-desk/internal/model"
)

// MemoryStore keeps everything in process memory. It backs tests and the
// "memory" persistence driver.
type MemoryStore struct {
	mu      sync.Mutex
	marks   map[string]map[string]int64
	tickets map[model.TicketKind][]model.Ticket
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		marks:   make(map[string]map[string]int64),
		tickets: make(map[model.TicketKind][]model.Ticket),
	}
}

func (m *MemoryStore) LoadMarks(_ context.Context, bucket string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.bucket(bucket)), nil
}

func (m *MemoryStore) UpsertMark(_ context.Context, bucket, itemID string, atMs int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bucket(bucket)[itemID] = atMs
	return nil
}

func (m *MemoryStore) UpsertMarks(_ context.Context, bucket string, marks map[string]int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	maps.Copy(m.bucket(bucket), marks)
	return nil
}

func (m *MemoryStore) ResetMarks(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.marks, bucket)
	return nil
}

// bucket returns the named bucket, creating it. Callers hold m.mu.
func (m *MemoryStore) bucket(name string) map[string]int64 {
	b, ok := m.marks[name]
	if !ok {
		b = make(map[string]int64)
		m.marks[name] = b
	}
	return b
}

func (m *MemoryStore) ReplaceTickets(_ context.Context, kind model.TicketKind, tickets []model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := slices.Clone(tickets)
	for i := range snapshot {
		snapshot[i].Kind = kind
	}
	m.tickets[kind] = snapshot
	return nil
}

func (m *MemoryStore) GetTickets(_ context.Context, kind model.TicketKind) ([]model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.tickets[kind])
	slices.SortStableFunc(out, func(a, b model.Ticket) int {
		return b.Date.Compare(a.Date)
	})
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
