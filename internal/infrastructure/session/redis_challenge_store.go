// File: internal/infrastructure/session/redis_challenge_store.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/inkwell-cms/admin-auth/internal/config"
	domainErrors "github.com/inkwell-cms/admin-auth/internal/domain/errors"
	"github.com/inkwell-cms/admin-auth/internal/domain/interfaces"
	"github.com/inkwell-cms/admin-auth/internal/domain/models"
)

const challengeKeyPrefix = "auth:challenge:"

// NewRedisClient connects to redis and verifies connectivity.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// redisChallengeStore keeps pending login challenges in redis under a TTL,
// so an abandoned login evaporates on its own.
type redisChallengeStore struct {
	client *redis.Client
}

// NewRedisChallengeStore creates a new redisChallengeStore.
func NewRedisChallengeStore(client *redis.Client) interfaces.ChallengeStore {
	return &redisChallengeStore{client: client}
}

func (s *redisChallengeStore) Put(ctx context.Context, token string, challenge *models.PendingChallenge, ttl time.Duration) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}
	if err := s.client.Set(ctx, challengeKeyPrefix+token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}
	return nil
}

func (s *redisChallengeStore) Get(ctx context.Context, token string) (*models.PendingChallenge, error) {
	payload, err := s.client.Get(ctx, challengeKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domainErrors.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}

	challenge := &models.PendingChallenge{}
	if err := json.Unmarshal(payload, challenge); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}
	return challenge, nil
}

func (s *redisChallengeStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, challengeKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	return nil
}

var _ interfaces.ChallengeStore = (*redisChallengeStore)(nil)
