package cache

import (
	"context"
	"sync"
	"time"

	"github.com/okian/maifilter/internal/domain/model"
	"github.com/okian/maifilter/pkg/metrics"
)

const defaultMaxSize = 1000

// node is one entry in the insertion-ordered list.
type node struct {
	key     string
	info    *model.PlayerInfo
	expires time.Time
	prev    *node
	next    *node
}

func (n *node) reset() {
	*n = node{}
}

// Memory is a bounded in-process cache. When full, the oldest insertion is
// evicted. Expired entries are dropped on read.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]*node
	head     *node // newest
	tail     *node // oldest
	maxSize  int
	ttl      time.Duration
	now      func() time.Time
	nodePool sync.Pool
}

var _ Cache = (*Memory)(nil)

// NewMemory creates a memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		maxSize: defaultMaxSize,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.entries = make(map[string]*node)
	m.nodePool = sync.Pool{
		New: func() interface{} {
			return &node{}
		},
	}
	return m
}

// Get returns a copy of the entry for key.
func (m *Memory) Get(_ context.Context, key string) (*model.PlayerInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.entries[key]
	if ok && m.expired(n) {
		m.remove(n)
		m.reportSize()
		ok = false
	}
	metrics.RecordCacheLookup(BackendMemory, ok)
	if !ok {
		return nil, false
	}
	return n.info.Clone(), true
}

// Set stores a copy of info under key, replacing any previous entry.
func (m *Memory) Set(_ context.Context, key string, info *model.PlayerInfo) {
	if info == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.entries[key]; ok {
		m.remove(old)
	}
	if m.maxSize > 0 && len(m.entries) >= m.maxSize {
		m.evictOldest()
	}

	n := m.nodePool.Get().(*node)
	n.key = key
	n.info = info.Clone()
	if m.ttl > 0 {
		n.expires = m.now().Add(m.ttl)
	}
	n.next = m.head
	if m.head != nil {
		m.head.prev = n
	}
	m.head = n
	if m.tail == nil {
		m.tail = n
	}
	m.entries[key] = n
	m.reportSize()
}

// Len returns the number of stored entries, including expired ones not yet
// dropped.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) expired(n *node) bool {
	return !n.expires.IsZero() && !m.now().Before(n.expires)
}

// evictOldest drops the tail. Must be called with m.mu held.
func (m *Memory) evictOldest() {
	if m.tail == nil {
		return
	}
	m.remove(m.tail)
	metrics.RecordCacheEviction(BackendMemory)
}

// remove unlinks n and returns it to the pool. Must be called with m.mu held.
func (m *Memory) remove(n *node) {
	delete(m.entries, n.key)
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
	n.reset()
	m.nodePool.Put(n)
}

func (m *Memory) reportSize() {
	metrics.UpdateCacheSize(BackendMemory, len(m.entries))
}
