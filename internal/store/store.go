// Package store persists accepted applications and contact inquiries.
// Records are append-only: there is no update and no delete.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"grant-intake/internal/common/config"
	"grant-intake/internal/common/database"
	"grant-intake/internal/common/logger"
	"grant-intake/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	// ErrUnknownBackend is a configuration error; retrying cannot fix it.
	ErrUnknownBackend = errors.New("unknown store backend")
)

type Store interface {
	CreateApplication(ctx context.Context, in models.ApplicationInput) (*models.Application, error)
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	// ListApplications returns every application in insertion order.
	ListApplications(ctx context.Context) ([]models.Application, error)

	CreateContact(ctx context.Context, in models.ContactInput) (*models.Contact, error)
	GetContact(ctx context.Context, id string) (*models.Contact, error)
	ListContacts(ctx context.Context) ([]models.Contact, error)

	Ping(ctx context.Context) error
	Close() error
}

// New builds the backend selected by cfg.Store.Backend.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (Store, error) {
	log = log.WithFields(map[string]interface{}{"backend": cfg.Store.Backend})

	switch cfg.Store.Backend {
	case config.BackendMemory, "":
		log.Warn("Using in-memory store, submissions are lost on restart", nil)
		return NewInMemory(), nil

	case config.BackendRedis:
		client, err := database.NewRedis(ctx, cfg.Database.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("Connected to redis store", map[string]interface{}{"address": cfg.Database.Redis.Address})
		return NewRedis(client.Client, cfg.Store.KeyPrefix), nil

	case config.BackendPostgres:
		client, err := database.NewPostgres(ctx, cfg.Database.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s := NewPostgres(client.DB)
		if err := s.Migrate(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		log.Info("Connected to postgres store", map[string]interface{}{
			"host":     cfg.Database.Postgres.Host,
			"database": cfg.Database.Postgres.Database,
		})
		return s, nil

	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownBackend, cfg.Store.Backend)
	}
}

// stamp returns a fresh record id and creation time. Time is truncated to
// microseconds so every backend round-trips it exactly.
func stamp() (string, time.Time) {
	return uuid.New().String(), time.Now().UTC().Truncate(time.Microsecond)
}
