package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"wordmatch-service/internal/app"
	"wordmatch-service/internal/config"
	"wordmatch-service/internal/domain"
	"wordmatch-service/internal/infra/memory"
	pgstore "wordmatch-service/internal/infra/postgres"
	redisstore "wordmatch-service/internal/infra/redis"
	"wordmatch-service/internal/infra/xlsx"
	"wordmatch-service/internal/lookup"
)

// setStore reads and writes sets.
type setStore interface {
	app.SetRepository
	app.SetWriter
}

// stores holds the backing services picked from config: Postgres and Redis
// when configured, in-memory otherwise.
type stores struct {
	sets     setStore
	sessions app.SessionRepository
	lexicon  lookup.Service
	pgSets   *pgstore.SetLoader
	pgLex    *pgstore.Lexicon

	closers []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (*stores, error) {
	s := &stores{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closers = append(s.closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		s.pgSets = pgstore.NewSetLoader(pool)
		s.pgLex = pgstore.NewLexicon(pool)
	}

	var loader memory.SetLoader = memory.NewStaticSetLoader(sampleSets())
	if s.pgSets != nil {
		loader = s.pgSets
	}

	setTTL := config.TTLDuration(cfg.Sets.TTL, 10*time.Minute)
	if redisClient != nil {
		s.sets = redisstore.NewSetRepository(redisClient, loader, setTTL)
		s.sessions = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		s.sets = memory.NewSetRepository(loader, setTTL)
		s.sessions = memory.NewSessionStore()
	}

	if cfg.Sets.Seed != "" {
		if err := seedSet(ctx, s.sets, cfg.Sets.Seed); err != nil {
			s.Close()
			return nil, err
		}
		logger.Info("seeded set", zap.String("file", cfg.Sets.Seed))
	}

	switch {
	case s.pgLex != nil:
		s.lexicon = s.pgLex
	case cfg.Lookup.Seed != "":
		entries, err := readLexiconFile(cfg.Lookup.Seed, lookup.TypeWord)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.lexicon = memory.NewLexicon(entries)
	default:
		s.lexicon = memory.NewLexicon(sampleLexicon())
	}
	return s, nil
}

func seedSet(ctx context.Context, sets app.SetWriter, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	set, err := xlsx.ReadSet(f, setIDFromPath(path))
	if err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}
	return sets.SaveSet(ctx, set)
}

func readLexiconFile(path, kind string) ([]lookup.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return xlsx.ReadLexicon(f, kind)
}

// sampleSets provides a minimal set; swap this loader with the Postgres one in production.
func sampleSets() map[string]domain.MatchingSet {
	return map[string]domain.MatchingSet{
		"places": {
			ID:    "places",
			Title: "장소",
			Items: []domain.SetItem{
				{ID: "word_1", LeftText: "학교", RightText: "학생들이 공부하는 곳"},
				{ID: "word_2", LeftText: "병원", RightText: "아픈 사람을 치료하는 곳"},
				{ID: "word_3", LeftText: "도서관", RightText: "책을 읽거나 빌리는 곳"},
				{ID: "word_4", LeftText: "시장", RightText: "물건을 사고파는 곳"},
			},
		},
	}
}

func sampleLexicon() []lookup.Entry {
	return []lookup.Entry{
		{ID: "word:1", Kind: lookup.TypeWord, Text: "학교", Pos: "명사", Grade: "1급"},
		{ID: "word:2", Kind: lookup.TypeWord, Text: "병원", Pos: "명사", Grade: "1급"},
		{ID: "word:3", Kind: lookup.TypeWord, Text: "도서관", Pos: "명사", Grade: "1급"},
		{ID: "word:4", Kind: lookup.TypeWord, Text: "시장", Pos: "명사", Grade: "1급"},
		{ID: "grammar:1", Kind: lookup.TypeGrammar, Text: "-는데", Meaning: "배경이나 상황을 제시함", Related: []string{"-은데", "-ㄴ데"}, Grade: "2급"},
		{ID: "grammar:2", Kind: lookup.TypeGrammar, Text: "-고 싶다", Meaning: "바람을 나타냄", Grade: "1급"},
	}
}
