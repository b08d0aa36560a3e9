package main

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pthm/hxres"
)

// Status of a todo.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

// Tag labels a todo.
type Tag struct {
	Name  string
	Color string
}

// Todo is the domain object served by the example.
type Todo struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Tags        []Tag
	CreatedAt   time.Time `hx:"created_at"`
}

// Done reports whether the todo is complete.
func (t Todo) Done() bool { return t.Status == StatusDone }

// Store is an in-memory todo store.
type Store struct {
	mu     sync.RWMutex
	todos  map[string]*Todo
	nextID int
}

// NewStore creates a new store with sample data.
func NewStore() *Store {
	s := &Store{
		todos:  make(map[string]*Todo),
		nextID: 1,
	}

	work := Tag{Name: "work", Color: "blue"}
	urgent := Tag{Name: "urgent", Color: "red"}
	personal := Tag{Name: "personal", Color: "green"}

	s.Add("Buy groceries", "Milk, eggs, bread", personal)
	s.Add("Review PR #123", "Check the authentication changes", work, urgent)
	s.Add("Write documentation", "Update API docs for v2", work)
	return s
}

// Add creates a new todo and returns its ID.
func (s *Store) Add(title, description string, tags ...Tag) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("todo-%d", s.nextID)
	s.nextID++
	s.todos[id] = &Todo{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      StatusPending,
		Tags:        tags,
		CreatedAt:   time.Now(),
	}
	return id
}

// Get returns a copy of a todo, or an error wrapping hxres.ErrNotFound.
func (s *Store) Get(id string) (*Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.todos[id]
	if !ok {
		return nil, fmt.Errorf("todo %s: %w", id, hxres.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

// List returns copies of all todos ordered by creation.
func (s *Store) List() []Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Todo, 0, len(s.todos))
	for _, t := range s.todos {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Toggle flips a todo between pending and done.
func (s *Store) Toggle(id string) (*Todo, error) {
	s.mu.Lock()
	t, ok := s.todos[id]
	if ok {
		if t.Status == StatusDone {
			t.Status = StatusPending
		} else {
			t.Status = StatusDone
		}
	}
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("todo %s: %w", id, hxres.ErrNotFound)
	}
	return s.Get(id)
}
