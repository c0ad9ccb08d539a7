package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urbanflow/urbanflow-backend/logger"
	"github.com/urbanflow/urbanflow-backend/types"
)

const recentTripsKey = "urbanflow:recent_trips"

// RecentSearch is one cached search result, newest first in the list.
type RecentSearch struct {
	Destination string            `json:"destination"`
	SearchedAt  time.Time         `json:"searchedAt"`
	Itineraries []types.Itinerary `json:"itineraries"`
}

// TripCache keeps a short rolling window of recent searches in Redis. The
// cache is strictly best-effort: a Redis outage never fails a search, it only
// empties the recents list.
type TripCache struct {
	client *redis.Client
	ttl    time.Duration
	max    int64
}

func NewTripCache(client *redis.Client, ttl time.Duration, max int) *TripCache {
	return &TripCache{
		client: client,
		ttl:    ttl,
		max:    int64(max),
	}
}

// StoreSearch pushes a search onto the recents list, trims it to the
// configured size, and refreshes the TTL. Failures are logged and swallowed.
func (c *TripCache) StoreSearch(ctx context.Context, destination string, itineraries []types.Itinerary) {
	log := logger.GetLogger()

	if c.client == nil {
		return
	}

	entry := RecentSearch{
		Destination: destination,
		SearchedAt:  time.Now().UTC(),
		Itineraries: itineraries,
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		log.Warnw("Failed to marshal recent search", "error", err)
		return
	}

	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, recentTripsKey, payload)
	pipe.LTrim(ctx, recentTripsKey, 0, c.max-1)
	pipe.Expire(ctx, recentTripsKey, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warnw("Failed to store recent search", "error", err, "destination", destination)
	}
}

// RecentSearches returns the cached window, newest first. Any failure returns
// an empty list.
func (c *TripCache) RecentSearches(ctx context.Context) []RecentSearch {
	log := logger.GetLogger()

	if c.client == nil {
		return []RecentSearch{}
	}

	raw, err := c.client.LRange(ctx, recentTripsKey, 0, c.max-1).Result()
	if err != nil {
		log.Warnw("Failed to read recent searches", "error", err)
		return []RecentSearch{}
	}

	searches := make([]RecentSearch, 0, len(raw))
	for i, item := range raw {
		var entry RecentSearch
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			log.Warnw("Skipping corrupt recent search entry", "error", err, "index", i)
			continue
		}
		searches = append(searches, entry)
	}

	return searches
}

// Ping reports cache connectivity for health checks.
func (c *TripCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client not configured")
	}
	return c.client.Ping(ctx).Err()
}
