package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultTTL        = 30 * time.Minute
	DefaultMaxEntries = 50000
)

// node is an element of the insertion-ordered list; head is the newest entry.
type node struct {
	key        string
	entry      Entry
	expiresAt  time.Time
	prev, next *node
}

func (n *node) reset() {
	*n = node{}
}

// MemoryStore is an in-process Store with per-entry expiry. When full, the
// oldest written entry is evicted.
type MemoryStore struct {
	mu         sync.Mutex
	items      map[string]*node
	head, tail *node
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	size       atomic.Int64
	nodePool   sync.Pool
	closed     atomic.Bool
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		maxEntries: DefaultMaxEntries,
		ttl:        DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.items = make(map[string]*node)
	m.nodePool = sync.Pool{
		New: func() interface{} {
			return &node{}
		},
	}
	return m
}

func (m *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	if key == "" {
		return Entry{}, false, ErrEmptyKey
	}
	if m.closed.Load() {
		return Entry{}, false, ErrClosed
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.items[key]
	if !ok {
		return Entry{}, false, nil
	}
	if !m.now().Before(n.expiresAt) {
		m.remove(n)
		return Entry{}, false, nil
	}
	return n.entry, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, e Entry) error {
	if key == "" {
		return ErrEmptyKey
	}
	if m.closed.Load() {
		return ErrClosed
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.items[key]; ok {
		m.remove(old)
	}
	if m.maxEntries > 0 {
		for len(m.items) >= m.maxEntries && m.tail != nil {
			m.remove(m.tail)
		}
	}

	n := m.nodePool.Get().(*node)
	n.key = key
	n.entry = e
	n.expiresAt = m.now().Add(m.ttl)
	m.pushFront(n)
	m.items[key] = n
	m.size.Add(1)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.items[key]; ok {
		m.remove(n)
	}
	return nil
}

// Close drops every entry. Later calls to Get and Set fail with ErrClosed.
func (m *MemoryStore) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]*node)
	m.head, m.tail = nil, nil
	m.size.Store(0)
	return nil
}

// Size returns the number of stored entries, expired ones included until
// they are touched or evicted.
func (m *MemoryStore) Size() int64 {
	return m.size.Load()
}

// pushFront must be called with m.mu held.
func (m *MemoryStore) pushFront(n *node) {
	n.prev = nil
	n.next = m.head
	if m.head != nil {
		m.head.prev = n
	}
	m.head = n
	if m.tail == nil {
		m.tail = n
	}
}

// remove must be called with m.mu held.
func (m *MemoryStore) remove(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		m.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		m.tail = n.prev
	}
	delete(m.items, n.key)
	n.reset()
	m.nodePool.Put(n)
	m.size.Add(-1)
}
