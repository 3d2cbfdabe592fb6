package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/scanctum/scanctum-web/config"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "scanctum:session:"

// RedisStore keeps sessions in Redis so multiple front-end replicas can
// share them. Values are JSON, expiry is enforced by Redis TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *utils.Logger
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(cfg config.SessionConfig, log *utils.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	log.WithField("addr", cfg.Redis.Addr).Info("Redis session store connected")

	return &RedisStore{
		client: client,
		ttl:    time.Duration(cfg.TTLHours) * time.Hour,
		log:    log,
	}, nil
}

// Create stores a session under a fresh opaque id with TTL
func (r *RedisStore) Create(ctx context.Context, s Session) (string, error) {
	id := uuid.NewString()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	if err := r.client.Set(ctx, redisKeyPrefix+id, data, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	r.log.WithField("user", s.User.Email).Debug("Session created")
	return id, nil
}

// Get returns the session for an id
func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

// Delete removes a session; deleting an unknown id is not an error
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
