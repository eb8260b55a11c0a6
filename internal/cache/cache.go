package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// Store is an LRU cache with per-entry TTL. Entries past their TTL are
// treated as absent on Get and reaped by Sweep.
type Store[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]*list.Element
	order   *list.List
}

type entry[T any] struct {
	key       string
	value     T
	expiresAt time.Time
}

// NewStore creates a Store holding at most maxSize entries, each valid
// for ttl after being set.
func NewStore[T any](maxSize int, ttl time.Duration) *Store[T] {
	return &Store[T]{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Get returns the value for key, or false when missing or expired.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	elem, ok := s.entries[key]
	if !ok {
		return zero, false
	}

	e := elem.Value.(*entry[T])
	if time.Now().After(e.expiresAt) {
		s.remove(elem)
		return zero, false
	}

	s.order.MoveToFront(elem)
	return e.value, true
}

// Set stores value under key, evicting the least recently used entry
// when the cache is full.
func (s *Store[T]) Set(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry[T]{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(s.ttl),
	}

	if elem, ok := s.entries[key]; ok {
		elem.Value = e
		s.order.MoveToFront(elem)
		return
	}

	s.entries[key] = s.order.PushFront(e)

	if s.order.Len() > s.maxSize {
		if oldest := s.order.Back(); oldest != nil {
			s.remove(oldest)
		}
	}
}

// Delete removes key from the cache if present.
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		s.remove(elem)
	}
}

// DeletePrefix removes every entry whose key starts with prefix and
// returns how many were removed.
func (s *Store[T]) DeletePrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doomed []*list.Element
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		if strings.HasPrefix(elem.Value.(*entry[T]).key, prefix) {
			doomed = append(doomed, elem)
		}
	}
	for _, elem := range doomed {
		s.remove(elem)
	}
	return len(doomed)
}

// Sweep removes all expired entries and returns how many were removed.
func (s *Store[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var doomed []*list.Element
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*entry[T]).expiresAt) {
			doomed = append(doomed, elem)
		}
	}
	for _, elem := range doomed {
		s.remove(elem)
	}
	return len(doomed)
}

// Len returns the current number of entries, expired ones included.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store[T]) remove(elem *list.Element) {
	delete(s.entries, elem.Value.(*entry[T]).key)
	s.order.Remove(elem)
}
