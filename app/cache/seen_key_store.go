package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/lysyi3m/rss-relay/app/dedup"
)

var _ dedup.Store = (*SeenKeyStore)(nil)

// SeenKeyStore keeps the dedup set as two Redis sets
type SeenKeyStore struct {
	cache *Cache
}

func NewSeenKeyStore(cache *Cache) *SeenKeyStore {
	return &SeenKeyStore{cache: cache}
}

func (s *SeenKeyStore) Load(ctx context.Context) (*dedup.Set, error) {
	links, err := s.cache.client.SMembers(ctx, s.cache.key("seen:links")).Result()
	if err != nil {
		return dedup.NewSet(), fmt.Errorf("failed to load seen links: %w", err)
	}

	titles, err := s.cache.client.SMembers(ctx, s.cache.key("seen:titles")).Result()
	if err != nil {
		return dedup.NewSet(), fmt.Errorf("failed to load seen titles: %w", err)
	}

	slog.Debug("Dedup store loaded", "backend", "redis", "links", len(links), "titles", len(titles))

	return dedup.NewSetFrom(links, titles), nil
}

// Persist replaces both sets inside one MULTI/EXEC block
func (s *SeenKeyStore) Persist(ctx context.Context, set *dedup.Set) error {
	linksKey := s.cache.key("seen:links")
	titlesKey := s.cache.key("seen:titles")

	_, err := s.cache.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, linksKey, titlesKey)
		if links := toMembers(set.Links()); len(links) > 0 {
			pipe.SAdd(ctx, linksKey, links...)
		}
		if titles := toMembers(set.Titles()); len(titles) > 0 {
			pipe.SAdd(ctx, titlesKey, titles...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to persist seen keys: %w", err)
	}

	links, titles := set.Len()
	slog.Info("Dedup store saved", "backend", "redis", "links", links, "titles", titles)

	return nil
}

func toMembers(values []string) []interface{} {
	members := make([]interface{}, len(values))
	for i, value := range values {
		members[i] = value
	}
	return members
}
