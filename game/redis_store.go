package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"htmx-tictactoe/models"
)

const (
	sessionKeyPrefix = "session:"
	maxUpdateRetries = 10
)

var ErrTooManyConflicts = errors.New("session updated concurrently too many times")

// RedisStore keeps sessions as JSON values with a sliding expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// ConnectRedis opens a client and checks the server answers.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func (that *RedisStore) Create(ctx context.Context, session *models.Session) error {
	stored := *session
	stored.UpdatedAt = time.Now()

	sessionJSON, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	created, err := that.client.SetNX(ctx, sessionKey(session.ID), sessionJSON, that.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	if !created {
		return fmt.Errorf("session %s already exists", session.ID)
	}

	return nil
}

func (that *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	response, err := that.client.Get(ctx, sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return decodeSession(response)
}

// Update runs fn inside an optimistic WATCH/MULTI transaction and retries
// when another writer touched the session in between.
func (that *RedisStore) Update(ctx context.Context, id string, fn func(session *models.Session) error) (*models.Session, error) {
	key := sessionKey(id)
	var updated *models.Session

	txf := func(tx *redis.Tx) error {
		response, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get session by id: %w", err)
		}

		session, err := decodeSession(response)
		if err != nil {
			return err
		}

		if err = fn(session); err != nil {
			return err
		}
		session.Version++
		session.UpdatedAt = time.Now()

		sessionJSON, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("could not marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, sessionJSON, that.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		updated = session
		return nil
	}

	for range maxUpdateRetries {
		err := that.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrTooManyConflicts, id)
}

func (that *RedisStore) Delete(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session by ID: %w", err)
	}
	if deleted == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func decodeSession(raw string) (*models.Session, error) {
	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}
