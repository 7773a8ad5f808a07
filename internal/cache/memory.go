package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store with LRU eviction at a fixed capacity.
// It models the session-lifetime cache: nothing survives the process.
type Memory struct {
	mu      sync.Mutex
	maxSize int
	items   map[string]*list.Element
	lru     *list.List
}

type memoryItem struct {
	key     string
	payload []byte
	ts      time.Time
}

// NewMemory creates a bounded in-memory store.
func NewMemory(maxSize int) *Memory {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Memory{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, exists := m.items[key]
	if !exists {
		return nil, time.Time{}, false
	}
	m.lru.MoveToFront(elem)
	item := elem.Value.(*memoryItem)
	return item.payload, item.ts, true
}

func (m *Memory) Set(_ context.Context, key string, payload []byte, ts time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := &memoryItem{key: key, payload: payload, ts: ts}
	if elem, exists := m.items[key]; exists {
		elem.Value = item
		m.lru.MoveToFront(elem)
		return
	}

	elem := m.lru.PushFront(item)
	m.items[key] = elem

	if m.lru.Len() > m.maxSize {
		if oldest := m.lru.Back(); oldest != nil {
			m.removeElement(oldest)
		}
	}
}

func (m *Memory) Delete(_ context.Context, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		if elem, exists := m.items[key]; exists {
			m.removeElement(elem)
		}
	}
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var toRemove []*list.Element
	for elem := m.lru.Front(); elem != nil; elem = elem.Next() {
		if strings.HasPrefix(elem.Value.(*memoryItem).key, prefix) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		m.removeElement(elem)
	}
}

func (m *Memory) DeleteOlderThan(_ context.Context, cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var toRemove []*list.Element
	for elem := m.lru.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(*memoryItem).ts.Before(cutoff) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		m.removeElement(elem)
	}
	return len(toRemove)
}

// Size returns the current number of entries.
func (m *Memory) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory) removeElement(elem *list.Element) {
	item := elem.Value.(*memoryItem)
	delete(m.items, item.key)
	m.lru.Remove(elem)
}
