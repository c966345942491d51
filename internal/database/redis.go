package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"download-portal/pkg/models"

	"github.com/redis/go-redis/v9"
)

const (
	pageKeyPrefix  = "page:"
	tokenKeyPrefix = "page-token:"
	scanBatchSize  = 200
)

// RedisPageStore keeps download page records in Redis with a TTL matching
// their expiry. The catalog is not stored here.
type RedisPageStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisPageStore connects to Redis using a redis:// URL
func NewRedisPageStore(ctx context.Context, redisURL string) (*RedisPageStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPageStore{client: client, now: time.Now}, nil
}

// Close closes the Redis client
func (s *RedisPageStore) Close() error {
	return s.client.Close()
}

func pageKey(id string) string {
	return pageKeyPrefix + id
}

func tokenKey(token string, gameID int64) string {
	return fmt.Sprintf("%s%d:%s", tokenKeyPrefix, gameID, token)
}

// CreateDownloadPage stores the record and its token index in one transaction
func (s *RedisPageStore) CreateDownloadPage(ctx context.Context, page *models.DownloadPage) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to encode download page: %w", err)
	}

	ttl := page.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("download page %s is already expired", page.ID)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, pageKey(page.ID), data, ttl)
		pipe.Set(ctx, tokenKey(page.Token, page.GameID), page.ID, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create download page: %w", err)
	}
	return nil
}

// GetDownloadPage retrieves a live download page by its composite id
func (s *RedisPageStore) GetDownloadPage(ctx context.Context, id string, now time.Time) (*models.DownloadPage, error) {
	val, err := s.client.Get(ctx, pageKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get download page: %w", err)
	}

	var page models.DownloadPage
	if err := json.Unmarshal([]byte(val), &page); err != nil {
		return nil, fmt.Errorf("failed to decode download page: %w", err)
	}

	if !page.IsLive(now) {
		return nil, nil
	}
	return &page, nil
}

// FindDownloadPageByToken follows the token index to the record
func (s *RedisPageStore) FindDownloadPageByToken(ctx context.Context, token string, gameID int64, now time.Time) (*models.DownloadPage, error) {
	id, err := s.client.Get(ctx, tokenKey(token, gameID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find download page: %w", err)
	}
	return s.GetDownloadPage(ctx, id, now)
}

// DeleteExpiredDownloadPages removes records that expired at or before the
// cutoff. Redis drops most of them through TTLs; this catches the rest.
func (s *RedisPageStore) DeleteExpiredDownloadPages(ctx context.Context, before time.Time) (int64, error) {
	var deleted int64

	iter := s.client.Scan(ctx, 0, pageKeyPrefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		val, err := s.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return deleted, fmt.Errorf("failed to read %s: %w", key, err)
		}

		var page models.DownloadPage
		if err := json.Unmarshal([]byte(val), &page); err != nil {
			continue
		}
		if page.ExpiresAt.After(before) {
			continue
		}

		n, err := s.client.Del(ctx, key, tokenKey(page.Token, page.GameID)).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", key, err)
		}
		if n > 0 {
			deleted++
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan download pages: %w", err)
	}

	return deleted, nil
}
