package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

const watchBuffer = 64

// Memory is a Store and Watcher backed by a slice.
type Memory struct {
	now func() time.Time

	mu      sync.RWMutex
	records []Record // ascending ID
	nextID  int64
	cap     int // 0 = unbounded
	subs    map[chan Change]struct{}
}

// NewMemory creates an empty table. capacity > 0 bounds it regardless of
// what clients do; the oldest rows go first.
func NewMemory(capacity int) *Memory {
	return &Memory{
		now:    time.Now,
		nextID: 1,
		cap:    capacity,
		subs:   make(map[chan Change]struct{}),
	}
}

// WithClock replaces the CreatedAt source; used by tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

// SetCap changes the hard bound and trims immediately if needed.
func (m *Memory) SetCap(capacity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cap = capacity
	m.enforceCapLocked()
}

func (m *Memory) Insert(ctx context.Context, x, y int, clientID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := Record{
		ID:        m.nextID,
		X:         x,
		Y:         y,
		ClientID:  clientID,
		CreatedAt: m.now().UTC(),
	}
	m.nextID++
	m.records = append(m.records, rec)
	m.publishLocked(Change{Kind: ChangeInsert, Record: rec})
	m.enforceCapLocked()
	return rec, nil
}

func (m *Memory) Recent(ctx context.Context, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := append([]Record(nil), m.records...)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) DeleteBelow(ctx context.Context, id int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// records are ascending by ID
	n := sort.Search(len(m.records), func(i int) bool { return m.records[i].ID >= id })
	m.dropLocked(n)
	return n, nil
}

func (m *Memory) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// Watch subscribes to inserts and deletes. Slow subscribers miss events
// rather than stall writers.
func (m *Memory) Watch(ctx context.Context) (<-chan Change, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := make(chan Change, watchBuffer)
	m.mu.Lock()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, ch)
		close(ch)
		m.mu.Unlock()
	}()
	return ch, nil
}

func (m *Memory) enforceCapLocked() {
	if m.cap > 0 && len(m.records) > m.cap {
		m.dropLocked(len(m.records) - m.cap)
	}
}

// dropLocked removes the n oldest records.
func (m *Memory) dropLocked(n int) {
	if n <= 0 {
		return
	}
	for _, r := range m.records[:n] {
		m.publishLocked(Change{Kind: ChangeDelete, Record: r})
	}
	m.records = append(m.records[:0], m.records[n:]...)
}

func (m *Memory) publishLocked(c Change) {
	for ch := range m.subs {
		select {
		case ch <- c:
		default:
		}
	}
}
