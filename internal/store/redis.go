package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"grant-intake/internal/models"
)

// RedisStore keeps one JSON value per record plus a list of ids per kind that
// preserves insertion order.
//
//	<prefix>:application:<id>  -> JSON
//	<prefix>:application:order -> [id, id, ...]
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedis(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "grant-intake"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) recordKey(kind models.SubmissionKind, id string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, kind, id)
}

func (s *RedisStore) orderKey(kind models.SubmissionKind) string {
	return fmt.Sprintf("%s:%s:order", s.prefix, kind)
}

func (s *RedisStore) CreateApplication(ctx context.Context, in models.ApplicationInput) (*models.Application, error) {
	id, now := stamp()
	app := &models.Application{ID: id, ApplicationInput: in, CreatedAt: now}
	if err := s.insert(ctx, models.KindApplication, id, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *RedisStore) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	return redisGet[models.Application](ctx, s, models.KindApplication, id)
}

func (s *RedisStore) ListApplications(ctx context.Context) ([]models.Application, error) {
	return redisList[models.Application](ctx, s, models.KindApplication)
}

func (s *RedisStore) CreateContact(ctx context.Context, in models.ContactInput) (*models.Contact, error) {
	id, now := stamp()
	c := &models.Contact{ID: id, ContactInput: in, CreatedAt: now}
	if err := s.insert(ctx, models.KindContact, id, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *RedisStore) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	return redisGet[models.Contact](ctx, s, models.KindContact, id)
}

func (s *RedisStore) ListContacts(ctx context.Context) ([]models.Contact, error) {
	return redisList[models.Contact](ctx, s, models.KindContact)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// insert writes the record and appends its id to the order list atomically.
func (s *RedisStore) insert(ctx context.Context, kind models.SubmissionKind, id string, record interface{}) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(kind, id), payload, 0)
		pipe.RPush(ctx, s.orderKey(kind), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert %s: %w", kind, err)
	}
	return nil
}

func redisGet[T any](ctx context.Context, s *RedisStore, kind models.SubmissionKind, id string) (*T, error) {
	raw, err := s.client.Get(ctx, s.recordKey(kind, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", kind, id, err)
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", kind, id, err)
	}
	return &out, nil
}

func redisList[T any](ctx context.Context, s *RedisStore, kind models.SubmissionKind) ([]T, error) {
	ids, err := s.client.LRange(ctx, s.orderKey(kind), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", kind, err)
	}

	out := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(kind, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", kind, err)
	}

	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("list %s: record %s missing", kind, ids[i])
		}
		var rec T
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", kind, ids[i], err)
		}
		out = append(out, rec)
	}
	return out, nil
}
