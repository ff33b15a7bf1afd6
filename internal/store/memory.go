package store

import (
	"context"
	"sync"

	"grant-intake/internal/models"
)

// InMemory is the default backend. Data does not survive a restart.
type InMemory struct {
	mu sync.RWMutex

	applications     map[string]models.Application
	applicationOrder []string

	contacts     map[string]models.Contact
	contactOrder []string
}

func NewInMemory() *InMemory {
	return &InMemory{
		applications: make(map[string]models.Application),
		contacts:     make(map[string]models.Contact),
	}
}

func (s *InMemory) CreateApplication(_ context.Context, in models.ApplicationInput) (*models.Application, error) {
	id, now := stamp()
	app := models.Application{ID: id, ApplicationInput: in, CreatedAt: now}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[id] = app
	s.applicationOrder = append(s.applicationOrder, id)
	return &app, nil
}

func (s *InMemory) GetApplication(_ context.Context, id string) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if app, ok := s.applications[id]; ok {
		return &app, nil
	}
	return nil, ErrNotFound
}

func (s *InMemory) ListApplications(_ context.Context) ([]models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Application, 0, len(s.applicationOrder))
	for _, id := range s.applicationOrder {
		out = append(out, s.applications[id])
	}
	return out, nil
}

func (s *InMemory) CreateContact(_ context.Context, in models.ContactInput) (*models.Contact, error) {
	id, now := stamp()
	c := models.Contact{ID: id, ContactInput: in, CreatedAt: now}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[id] = c
	s.contactOrder = append(s.contactOrder, id)
	return &c, nil
}

func (s *InMemory) GetContact(_ context.Context, id string) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.contacts[id]; ok {
		return &c, nil
	}
	return nil, ErrNotFound
}

func (s *InMemory) ListContacts(_ context.Context) ([]models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Contact, 0, len(s.contactOrder))
	for _, id := range s.contactOrder {
		out = append(out, s.contacts[id])
	}
	return out, nil
}

func (s *InMemory) Ping(context.Context) error { return nil }

func (s *InMemory) Close() error { return nil }
