package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"FeatMerge/internal/domain/models"
	"FeatMerge/pkg/cache"
)

// RedisStatusStore keeps the latest outcome of every symbol in a hash
// <prefix>:status:<symbol> and the processed symbols in <prefix>:symbols.
type RedisStatusStore struct {
	rc  *cache.RedisCache
	ttl time.Duration
}

// NewRedisStatusStore creates a status store. The store owns the client.
func NewRedisStatusStore(rc *cache.RedisCache, ttl time.Duration) *RedisStatusStore {
	return &RedisStatusStore{rc: rc, ttl: ttl}
}

// Publish overwrites the status hash of r.Symbol.
func (s *RedisStatusStore) Publish(ctx context.Context, r models.SymbolReport) error {
	key := s.rc.Key("status", r.Symbol)
	fields, err := statusFields(r)
	if err != nil {
		return err
	}

	pipe := s.rc.Client().TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	pipe.SAdd(ctx, s.rc.Key("symbols"), r.Symbol)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis status %s: %w", r.Symbol, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStatusStore) Close() error {
	return s.rc.Close()
}

func statusFields(r models.SymbolReport) (map[string]interface{}, error) {
	available := make([]string, len(r.Available))
	for i, tf := range r.Available {
		available[i] = string(tf)
	}
	fields := map[string]interface{}{
		"outcome":     string(r.Outcome),
		"rows":        strconv.Itoa(r.Rows),
		"columns":     strconv.Itoa(r.Columns),
		"available":   strings.Join(available, ","),
		"locations":   strings.Join(r.Locations, ","),
		"duration_ms": strconv.FormatInt(r.Duration.Milliseconds(), 10),
		"finished_at": r.FinishedAt.UTC().Format(time.RFC3339),
	}
	if len(r.Unavailable) > 0 {
		causes := make(map[string]string, len(r.Unavailable))
		for _, f := range r.Unavailable {
			if f.Err != nil {
				causes[string(f.Timeframe)] = f.Err.Error()
			}
		}
		b, err := json.Marshal(causes)
		if err != nil {
			return nil, fmt.Errorf("marshal unavailable: %w", err)
		}
		fields["unavailable"] = string(b)
	}
	if r.Err != nil {
		fields["error"] = r.Err.Error()
	}
	return fields, nil
}
