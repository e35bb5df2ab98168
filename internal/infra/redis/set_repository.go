package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"wordmatch-service/internal/domain"
)

// SetLoader fetches matching sets from a backing store (e.g., Postgres).
type SetLoader interface {
	LoadSet(ctx context.Context, setID string) (domain.MatchingSet, error)
}

// SetWriter is implemented by loaders that can also store sets.
type SetWriter interface {
	SaveSet(ctx context.Context, set domain.MatchingSet) error
}

// SetRepository caches sets in Redis (hash per set) and falls back to a loader on cache miss.
// Sets are stored as: HSET wordmatch:set:{setID} title {title} items {json} created_at {rfc3339}
type SetRepository struct {
	client *redis.Client
	loader SetLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSetRepository(client *redis.Client, loader SetLoader, ttl time.Duration) *SetRepository {
	return &SetRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *SetRepository) GetSet(ctx context.Context, setID string) (domain.MatchingSet, error) {
	if set, ok := r.fromCache(ctx, setID); ok {
		return set, nil
	}

	result, err, _ := r.sf.Do(setID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if set, ok := r.fromCache(ctx, setID); ok {
			return set, nil
		}

		set, err := r.loader.LoadSet(ctx, setID)
		if err != nil {
			return domain.MatchingSet{}, err
		}
		// best-effort: a failed cache write only costs a reload
		_ = r.cache(ctx, set)
		return set, nil
	})
	if err != nil {
		return domain.MatchingSet{}, err
	}
	return result.(domain.MatchingSet), nil
}

// SaveSet writes through to the loader when it can store sets, then refreshes the cache.
func (r *SetRepository) SaveSet(ctx context.Context, set domain.MatchingSet) error {
	if w, ok := r.loader.(SetWriter); ok {
		if err := w.SaveSet(ctx, set); err != nil {
			return err
		}
	}
	return r.cache(ctx, set)
}

func (r *SetRepository) fromCache(ctx context.Context, setID string) (domain.MatchingSet, bool) {
	fields, err := r.client.HGetAll(ctx, r.key(setID)).Result()
	if err != nil || len(fields) == 0 {
		return domain.MatchingSet{}, false
	}
	set, err := buildSetFromCache(setID, fields)
	if err != nil {
		return domain.MatchingSet{}, false
	}
	return set, true
}

func (r *SetRepository) cache(ctx context.Context, set domain.MatchingSet) error {
	items, err := json.Marshal(set.Items)
	if err != nil {
		return fmt.Errorf("encode set %s: %w", set.ID, err)
	}
	key := r.key(set.ID)
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		"title", set.Title,
		"items", string(items),
		"created_at", set.CreatedAt.UTC().Format(time.RFC3339Nano))
	if ttl := r.ttlWithJitter(); ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *SetRepository) key(setID string) string {
	return "wordmatch:set:" + setID
}

func buildSetFromCache(setID string, fields map[string]string) (domain.MatchingSet, error) {
	set := domain.MatchingSet{ID: setID, Title: fields["title"]}
	if err := json.Unmarshal([]byte(fields["items"]), &set.Items); err != nil {
		return domain.MatchingSet{}, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields["created_at"]); err == nil && !ts.IsZero() {
		set.CreatedAt = ts
	}
	return set, nil
}

func (r *SetRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
