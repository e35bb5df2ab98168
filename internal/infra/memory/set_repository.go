package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"wordmatch-service/internal/domain"
)

// SetLoader fetches matching sets from a backing store (e.g., Postgres).
type SetLoader interface {
	LoadSet(ctx context.Context, setID string) (domain.MatchingSet, error)
}

// SetRepository caches sets with TTL to avoid repeated DB hits.
type SetRepository struct {
	loader SetLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedSet
}

type cachedSet struct {
	set       domain.MatchingSet
	expiresAt time.Time
}

func NewSetRepository(loader SetLoader, ttl time.Duration) *SetRepository {
	return &SetRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
	}
}

func (r *SetRepository) GetSet(ctx context.Context, setID string) (domain.MatchingSet, error) {
	if set, ok := r.cached(setID); ok {
		return set, nil
	}

	result, err, _ := r.sf.Do(setID, func() (interface{}, error) {
		if set, ok := r.cached(setID); ok {
			return set, nil
		}
		set, err := r.loader.LoadSet(ctx, setID)
		if err != nil {
			return domain.MatchingSet{}, err
		}
		r.store(set)
		return set, nil
	})
	if err != nil {
		return domain.MatchingSet{}, err
	}
	return result.(domain.MatchingSet), nil
}

// SaveSet writes through to the loader when it can store sets and refreshes
// the cache.
func (r *SetRepository) SaveSet(ctx context.Context, set domain.MatchingSet) error {
	if w, ok := r.loader.(interface {
		SaveSet(context.Context, domain.MatchingSet) error
	}); ok {
		if err := w.SaveSet(ctx, set); err != nil {
			return err
		}
	}
	r.store(set)
	return nil
}

func (r *SetRepository) cached(setID string) (domain.MatchingSet, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[setID]; ok && entry.expiresAt.After(now) {
		return entry.set, true
	}
	return domain.MatchingSet{}, false
}

func (r *SetRepository) store(set domain.MatchingSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[set.ID] = cachedSet{
		set:       set,
		expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
	}
}

func (r *SetRepository) ttlWithJitterLocked() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticSetLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticSetLoader struct {
	mu   sync.RWMutex
	sets map[string]domain.MatchingSet
}

func NewStaticSetLoader(sets map[string]domain.MatchingSet) *StaticSetLoader {
	if sets == nil {
		sets = make(map[string]domain.MatchingSet)
	}
	return &StaticSetLoader{sets: sets}
}

func (l *StaticSetLoader) LoadSet(_ context.Context, setID string) (domain.MatchingSet, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if set, ok := l.sets[setID]; ok {
		return set, nil
	}
	return domain.MatchingSet{}, domain.ErrSetNotFound
}

func (l *StaticSetLoader) SaveSet(_ context.Context, set domain.MatchingSet) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sets[set.ID] = set
	return nil
}
