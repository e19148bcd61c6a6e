package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/suhani1920/Aura-Grow/internal/models"
)

const (
	recommendationKeyPrefix = "recommendation:"
	pendingSetKey           = "recommendations:pending"
)

// RecommendationStore persists AI recommendations and their applied/dismissed
// status as point updates keyed by record ID.
type RecommendationStore interface {
	Add(ctx context.Context, rec models.Recommendation) (models.Recommendation, error)
	Pending(ctx context.Context) ([]models.Recommendation, error)
	SetStatus(ctx context.Context, id string, status models.RecommendationStatus) error
}

// RedisRecommendationStore keeps each recommendation as a JSON value plus a
// set of pending IDs for listing.
type RedisRecommendationStore struct {
	client *redis.Client
}

// NewRedisRecommendationStore connects to Redis and verifies the connection.
func NewRedisRecommendationStore(addr, password string) (*RedisRecommendationStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("could not connect to Redis: %w", err)
	}
	return &RedisRecommendationStore{client: client}, nil
}

func recommendationKey(id string) string {
	return recommendationKeyPrefix + id
}

// Add stores a new recommendation with status pending.
func (s *RedisRecommendationStore) Add(ctx context.Context, rec models.Recommendation) (models.Recommendation, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.Status = models.RecommendationPending

	payload, err := json.Marshal(rec)
	if err != nil {
		return models.Recommendation{}, err
	}

	if err := s.client.Set(ctx, recommendationKey(rec.ID), payload, 0).Err(); err != nil {
		return models.Recommendation{}, fmt.Errorf("error storing recommendation: %w", err)
	}
	if err := s.client.SAdd(ctx, pendingSetKey, rec.ID).Err(); err != nil {
		return models.Recommendation{}, fmt.Errorf("error indexing recommendation: %w", err)
	}
	return rec, nil
}

// Pending lists recommendations not yet applied or dismissed, newest first.
func (s *RedisRecommendationStore) Pending(ctx context.Context) ([]models.Recommendation, error) {
	ids, err := s.client.SMembers(ctx, pendingSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("error listing pending recommendations: %w", err)
	}

	recs := make([]models.Recommendation, 0, len(ids))
	for _, id := range ids {
		payload, err := s.client.Get(ctx, recommendationKey(id)).Result()
		if err == redis.Nil {
			// Record expired or removed out of band; drop the stale index entry.
			s.client.SRem(ctx, pendingSetKey, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error loading recommendation %s: %w", id, err)
		}

		var rec models.Recommendation
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("error decoding recommendation %s: %w", id, err)
		}
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	return recs, nil
}

// SetStatus applies a point update to one recommendation's status and drops
// it from the pending index.
func (s *RedisRecommendationStore) SetStatus(ctx context.Context, id string, status models.RecommendationStatus) error {
	payload, err := s.client.Get(ctx, recommendationKey(id)).Result()
	if err == redis.Nil {
		return fmt.Errorf("recommendation not found: %s", id)
	}
	if err != nil {
		return fmt.Errorf("error loading recommendation %s: %w", id, err)
	}

	var rec models.Recommendation
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return fmt.Errorf("error decoding recommendation %s: %w", id, err)
	}
	rec.Status = status

	updated, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, recommendationKey(id), updated, 0).Err(); err != nil {
		return fmt.Errorf("error updating recommendation %s: %w", id, err)
	}
	if status != models.RecommendationPending {
		if err := s.client.SRem(ctx, pendingSetKey, id).Err(); err != nil {
			return fmt.Errorf("error unindexing recommendation %s: %w", id, err)
		}
	}
	return nil
}
