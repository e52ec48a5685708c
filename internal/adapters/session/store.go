package session

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/xgxt/internal/domain/model"
)

// Store holds one uploaded dataset per session id.
type Store interface {
	// Get returns the dataset for id and refreshes its expiry.
	Get(ctx context.Context, id string) (*model.Dataset, error)
	// Put replaces the dataset for id.
	Put(ctx context.Context, id string, ds *model.Dataset) error
	// Delete drops id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string)
	// Sweep removes expired sessions and returns how many were removed.
	Sweep(ctx context.Context) int
	Len() int
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an id produced by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

type entry struct {
	id      string
	dataset *model.Dataset
	expires time.Time
}

// memoryStore is an LRU list plus an index. Front of the list is the most
// recently used session.
type memoryStore struct {
	mu          sync.Mutex
	items       map[string]*list.Element
	order       *list.List
	maxSessions int
	ttl         time.Duration
	now         func() time.Time
	onEvict     func(id string)
}

// NewMemoryStore creates an in-memory Store with configuration options.
func NewMemoryStore(opts ...Option) Store {
	s := &memoryStore{
		maxSessions: defaultMaxSessions,
		ttl:         defaultTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.items = make(map[string]*list.Element)
	s.order = list.New()
	return s
}

func (s *memoryStore) Get(_ context.Context, id string) (*model.Dataset, error) {
	const op = "session.get"
	s.mu.Lock()
	el, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	e := el.Value.(*entry)
	now := s.now()
	if s.expired(e, now) {
		s.remove(el)
		s.mu.Unlock()
		s.evicted(id)
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	e.expires = s.deadline(now)
	s.order.MoveToFront(el)
	ds := e.dataset
	s.mu.Unlock()
	return ds, nil
}

func (s *memoryStore) Put(_ context.Context, id string, ds *model.Dataset) error {
	const op = "session.put"
	if !ValidID(id) {
		return fmt.Errorf("%s: %w: %q", op, ErrInvalidID, id)
	}
	var dropped []string
	s.mu.Lock()
	deadline := s.deadline(s.now())
	if el, ok := s.items[id]; ok {
		e := el.Value.(*entry)
		e.dataset = ds
		e.expires = deadline
		s.order.MoveToFront(el)
		s.mu.Unlock()
		return nil
	}
	for s.order.Len() >= s.maxSessions {
		oldest := s.order.Back()
		dropped = append(dropped, oldest.Value.(*entry).id)
		s.remove(oldest)
	}
	s.items[id] = s.order.PushFront(&entry{id: id, dataset: ds, expires: deadline})
	s.mu.Unlock()

	for _, d := range dropped {
		s.evicted(d)
	}
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.items[id]; ok {
		s.remove(el)
	}
}

func (s *memoryStore) Sweep(ctx context.Context) int {
	var dropped []string
	s.mu.Lock()
	now := s.now()
	// Oldest entries sit at the back; expiry follows use order.
	for el := s.order.Back(); el != nil; {
		if ctx.Err() != nil {
			break
		}
		e := el.Value.(*entry)
		if !s.expired(e, now) {
			break
		}
		prev := el.Prev()
		dropped = append(dropped, e.id)
		s.remove(el)
		el = prev
	}
	s.mu.Unlock()

	for _, d := range dropped {
		s.evicted(d)
	}
	return len(dropped)
}

func (s *memoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// remove must be called with s.mu held.
func (s *memoryStore) remove(el *list.Element) {
	delete(s.items, el.Value.(*entry).id)
	s.order.Remove(el)
}

func (s *memoryStore) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && !now.Before(e.expires)
}

func (s *memoryStore) deadline(now time.Time) time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(s.ttl)
}

func (s *memoryStore) evicted(id string) {
	if s.onEvict != nil {
		s.onEvict(id)
	}
}
