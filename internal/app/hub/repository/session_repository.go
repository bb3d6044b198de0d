package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"farmershub/internal/app/hub/entity"
	"farmershub/pkg/logger"
	"farmershub/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// Префиксы ключей устаревших сессий, оставшихся от старых версий приложения
var legacySessionPrefixes = []string{"farmer_session:", "market_session:"}

type sessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository создает Redis-репозиторий пользовательских сессий.
// Истечение сессий обеспечивается TTL ключей на стороне Redis.
func NewSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &sessionRepository{client: client, ttl: ttl}
}

// Save сохраняет снимок пользователя по токену сессии
func (r *sessionRepository) Save(ctx context.Context, token string, user *entity.SessionUser) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal session user: %w", err)
	}

	key := sessionKeyPrefix + token
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Get возвращает снимок пользователя по токену сессии
func (r *sessionRepository) Get(ctx context.Context, token string) (*entity.SessionUser, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	key := sessionKeyPrefix + token
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var user entity.SessionUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session user: %w", err)
	}

	return &user, nil
}

// Delete удаляет сессию по токену
func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	key := sessionKeyPrefix + token
	if err := r.client.Del(ctx, key).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// MigrateLegacySessions переносит сессии со старыми префиксами ключей
// под текущий префикс. Вызывается хостом один раз при старте приложения.
// Нечитаемые записи удаляются, а не переносятся.
func (r *sessionRepository) MigrateLegacySessions(ctx context.Context) (int, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpScan)
	defer timer.ObserveDuration()

	migrated := 0

	for _, prefix := range legacySessionPrefixes {
		var cursor uint64
		for {
			keys, next, err := r.client.Scan(ctx, cursor, prefix+"*", 100).Result()
			if err != nil {
				metrics.RecordRedisError(serviceName, metrics.RedisOpScan)
				return migrated, fmt.Errorf("failed to scan legacy sessions: %w", err)
			}

			for _, key := range keys {
				if err := r.migrateKey(ctx, key, prefix); err != nil {
					// Поврежденную сессию не переносим - пользователь войдет заново
					logger.Warn().Err(err).Str("key", key).Msg("Dropping unreadable legacy session")
					r.client.Del(ctx, key)
					continue
				}
				migrated++
			}

			cursor = next
			if cursor == 0 {
				break
			}
		}
	}

	return migrated, nil
}

func (r *sessionRepository) migrateKey(ctx context.Context, key, prefix string) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return fmt.Errorf("failed to read legacy session: %w", err)
	}

	var user entity.SessionUser
	if err := json.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("failed to unmarshal legacy session: %w", err)
	}

	token := strings.TrimPrefix(key, prefix)
	if err := r.Save(ctx, token, &user); err != nil {
		return err
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete legacy session: %w", err)
	}

	return nil
}
