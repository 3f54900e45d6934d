package cache

import (
	"container/list"
	"encoding/json"
	"sync"
	"time"
)

// MemoryTier is a bounded in-process cache with LRU eviction and TTL
// support. It never returns errors: every failure path reduces to a
// miss or a silent no-op.
type MemoryTier struct {
	maxEntries int

	// LRU implementation: front = most recently touched. Because an
	// insert and a read both move the element to the front, the back
	// of the list is always the entry with the oldest last-access
	// time, falling back to creation time for entries never read.
	items    map[string]*list.Element
	eviction *list.List

	mu sync.Mutex

	// now is replaceable for TTL tests.
	now func() time.Time
}

// NewMemoryTier creates a memory tier bounded to maxEntries entries.
func NewMemoryTier(maxEntries int) *MemoryTier {
	return &MemoryTier{
		maxEntries: maxEntries,
		items:      make(map[string]*list.Element),
		eviction:   list.New(),
		now:        time.Now,
	}
}

// Get retrieves a value. An expired entry is removed and reported as a
// miss. A hit bumps the entry's access bookkeeping.
func (m *MemoryTier) Get(key string) (json.RawMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*Entry)
	if entry.Expired(m.now()) {
		m.removeElement(elem)
		return nil, false
	}

	entry.Touch(m.now())
	m.eviction.MoveToFront(elem)
	return entry.Data, true
}

// Set stores a value. A ttl of zero or less means the entry never
// expires. Inserting a new key at capacity evicts exactly one entry,
// the least recently touched, before the insert.
func (m *MemoryTier) Set(key string, data json.RawMessage, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := newEntry(key, data, m.now(), ttl)

	if elem, ok := m.items[key]; ok {
		// Overwrite resets the entry wholesale, bookkeeping included.
		elem.Value = entry
		m.eviction.MoveToFront(elem)
		return
	}

	if len(m.items) >= m.maxEntries {
		m.evictLRU()
	}

	m.items[key] = m.eviction.PushFront(entry)
}

// Delete removes an entry, reporting whether it existed.
func (m *MemoryTier) Delete(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		return false
	}
	m.removeElement(elem)
	return true
}

// Clear removes all entries unconditionally.
func (m *MemoryTier) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]*list.Element)
	m.eviction.Init()
}

// Stats returns a snapshot of the tier's state. Expired entries still
// count toward TotalEntries until a read purges them.
func (m *MemoryTier) Stats() MemoryStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := MemoryStats{
		TotalEntries: len(m.items),
		MaxEntries:   m.maxEntries,
	}

	now := m.now()
	for _, elem := range m.items {
		entry := elem.Value.(*Entry)
		if entry.Expired(now) {
			stats.ExpiredEntries++
		}
		stats.MemoryUsageBytes += entry.sizeEstimate()
	}
	stats.ActiveEntries = stats.TotalEntries - stats.ExpiredEntries

	return stats
}

// evictLRU removes the least recently touched entry (lock held).
func (m *MemoryTier) evictLRU() {
	if elem := m.eviction.Back(); elem != nil {
		m.removeElement(elem)
	}
}

// removeElement removes an element from the tier (lock held).
func (m *MemoryTier) removeElement(elem *list.Element) {
	m.eviction.Remove(elem)
	delete(m.items, elem.Value.(*Entry).Key)
}
