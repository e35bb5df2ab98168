package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wordmatch-service/internal/domain"
	"wordmatch-service/internal/drag"
	"wordmatch-service/internal/game"
	"wordmatch-service/internal/geometry"
	"wordmatch-service/internal/lookup"
	"wordmatch-service/internal/score"
)

// SessionRepository abstracts where live tables are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Save(table *Table)
	Get(gameID string) (*Table, bool)
	Delete(gameID string)
}

// SetRepository loads matching sets (from cache/backing store).
type SetRepository interface {
	GetSet(ctx context.Context, setID string) (domain.MatchingSet, error)
}

// SetWriter stores new or imported sets.
type SetWriter interface {
	SaveSet(ctx context.Context, set domain.MatchingSet) error
}

// SetGenerator drafts a set around seed words.
type SetGenerator interface {
	Generate(ctx context.Context, words []string) (domain.MatchingSet, error)
}

// CheckEvent is emitted every time a player checks their answers.
type CheckEvent struct {
	GameID    string             `json:"gameId"`
	SetID     string             `json:"setId"`
	PlayerID  string             `json:"playerId"`
	Result    domain.ScoreResult `json:"result"`
	Passed    bool               `json:"passed"`
	CheckedAt time.Time          `json:"checkedAt"`
}

// CheckPublisher forwards check events to interested parties.
type CheckPublisher interface {
	PublishCheck(ctx context.Context, event CheckEvent) error
}

// GameService contains the matching game use cases.
type GameService struct {
	tables    SessionRepository
	sets      SetRepository
	writer    SetWriter
	generator SetGenerator
	lexicon   lookup.Service
	publisher CheckPublisher
	logger    *zap.Logger
	newID     func() string
	now       func() time.Time
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*GameService)

func WithSetWriter(w SetWriter) ServiceOption {
	return func(s *GameService) { s.writer = w }
}

func WithGenerator(g SetGenerator) ServiceOption {
	return func(s *GameService) { s.generator = g }
}

func WithLexicon(l lookup.Service) ServiceOption {
	return func(s *GameService) { s.lexicon = l }
}

func WithPublisher(p CheckPublisher) ServiceOption {
	return func(s *GameService) { s.publisher = p }
}

func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *GameService) { s.logger = l }
}

// WithClock is for deterministic timestamps in tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *GameService) { s.now = now }
}

// WithIDGenerator replaces uuid game ids.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *GameService) { s.newID = fn }
}

func NewGameService(tables SessionRepository, sets SetRepository, opts ...ServiceOption) *GameService {
	s := &GameService{
		tables: tables,
		sets:   sets,
		logger: zap.NewNop(),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a new game on setID for playerID.
func (s *GameService) Start(ctx context.Context, setID, playerID string) (Snapshot, error) {
	set, err := s.sets.GetSet(ctx, setID)
	if err != nil {
		return Snapshot{}, err
	}

	id := s.newID()
	table, err := newTableWithClock(id, set, playerID, s.now, game.WithLogger(s.logger))
	if err != nil {
		return Snapshot{}, fmt.Errorf("start game on set %s: %w", setID, err)
	}
	s.tables.Save(table)
	s.logger.Info("game started",
		zap.String("game", id),
		zap.String("set", setID),
		zap.String("player", playerID))
	return table.Snapshot(), nil
}

// ReportLayout records where the client drew the board.
func (s *GameService) ReportLayout(_ context.Context, gameID string, report LayoutReport) (Snapshot, error) {
	table, ok := s.tables.Get(gameID)
	if !ok {
		return Snapshot{}, domain.ErrGameNotFound
	}
	return table.applyLayout(report), nil
}

// PointerDown starts a drag on an item.
func (s *GameService) PointerDown(_ context.Context, gameID string, ref domain.ItemRef) (Snapshot, bool, error) {
	table, ok := s.tables.Get(gameID)
	if !ok {
		return Snapshot{}, false, domain.ErrGameNotFound
	}
	snap, started := table.pointerDown(ref)
	return snap, started, nil
}

// PointerMove follows the pointer during a drag.
func (s *GameService) PointerMove(_ context.Context, gameID string, client geometry.Point) (Snapshot, error) {
	table, ok := s.tables.Get(gameID)
	if !ok {
		return Snapshot{}, domain.ErrGameNotFound
	}
	return table.pointerMove(client), nil
}

// PointerUp ends a drag over target, or over whatever item lies under client
// when target is nil.
func (s *GameService) PointerUp(_ context.Context, gameID string, target *domain.ItemRef, client *geometry.Point) (drag.Outcome, Snapshot, error) {
	table, ok := s.tables.Get(gameID)
	if !ok {
		return drag.Outcome{}, Snapshot{}, domain.ErrGameNotFound
	}
	out, snap := table.pointerUp(target, client)
	return out, snap, nil
}

// CancelGesture drops an in-progress drag.
func (s *GameService) CancelGesture(_ context.Context, gameID string) (Snapshot, error) {
	table, ok := s.tables.Get(gameID)
	if !ok {
		return Snapshot{}, domain.ErrGameNotFound
	}
	return table.cancelGesture(), nil
}

// Check scores the game and publishes the result. Publishing failures are
// logged; the player still gets their score.
func (s *GameService) Check(ctx context.Context, gameID string) (score.Report, error) {
	table, ok := s.tables.Get(gameID)
	if !ok {
		return score.Report{}, domain.ErrGameNotFound
	}
	report := table.check()

	if s.publisher != nil {
		event := CheckEvent{
			GameID:    gameID,
			SetID:     table.setID,
			PlayerID:  table.playerID,
			Result:    report.Result,
			Passed:    report.Passed,
			CheckedAt: s.now(),
		}
		if err := s.publisher.PublishCheck(ctx, event); err != nil {
			s.logger.Warn("publish check event failed", zap.String("game", gameID), zap.Error(err))
		}
	}
	return report, nil
}

// Activate passes a picked search result to the game.
func (s *GameService) Activate(_ context.Context, gameID string, rec lookup.Record) (Snapshot, error) {
	table, ok := s.tables.Get(gameID)
	if !ok {
		return Snapshot{}, domain.ErrGameNotFound
	}
	return table.activate(rec), nil
}

// Snapshot returns the current view of a game.
func (s *GameService) Snapshot(_ context.Context, gameID string) (Snapshot, error) {
	table, ok := s.tables.Get(gameID)
	if !ok {
		return Snapshot{}, domain.ErrGameNotFound
	}
	return table.Snapshot(), nil
}

// Subscribe returns a channel that receives a snapshot after every change.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context, gameID string) (<-chan Snapshot, func(), error) {
	table, ok := s.tables.Get(gameID)
	if !ok {
		return nil, nil, domain.ErrGameNotFound
	}
	ch, cancel := table.subscribe()
	return ch, cancel, nil
}

// End drops the game.
func (s *GameService) End(_ context.Context, gameID string) {
	table, ok := s.tables.Get(gameID)
	if !ok {
		return
	}
	s.tables.Delete(gameID)
	table.closeSubscribers()
	s.logger.Info("game ended", zap.String("game", gameID))
}

// Search queries the lexicon, returning at most limit records.
func (s *GameService) Search(ctx context.Context, query, typeFilter string, limit int) ([]lookup.Record, error) {
	if s.lexicon == nil {
		return nil, domain.ErrLookupUnavailable
	}
	if limit <= 0 {
		limit = lookup.DefaultLimit
	}
	recs, err := lookup.Collect(s.lexicon.Search(ctx, query, typeFilter), limit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return recs, nil
}

// GetSet returns a stored set.
func (s *GameService) GetSet(ctx context.Context, setID string) (domain.MatchingSet, error) {
	return s.sets.GetSet(ctx, setID)
}

// SaveSet validates and stores a set.
func (s *GameService) SaveSet(ctx context.Context, set domain.MatchingSet) error {
	if s.writer == nil {
		return fmt.Errorf("save set %s: no set writer configured", set.ID)
	}
	if err := game.ValidateItems(set.Items); err != nil {
		return err
	}
	if set.CreatedAt.IsZero() {
		set.CreatedAt = s.now()
	}
	return s.writer.SaveSet(ctx, set)
}

// GenerateSet drafts a set around words and stores it.
func (s *GameService) GenerateSet(ctx context.Context, words []string) (domain.MatchingSet, error) {
	if len(words) == 0 {
		return domain.MatchingSet{}, domain.ErrNoWords
	}
	if s.generator == nil {
		return domain.MatchingSet{}, fmt.Errorf("generate set: no generator configured")
	}
	set, err := s.generator.Generate(ctx, words)
	if err != nil {
		return domain.MatchingSet{}, fmt.Errorf("generate set: %w", err)
	}
	if set.ID == "" {
		set.ID = s.newID()
	}
	if err := s.SaveSet(ctx, set); err != nil {
		return domain.MatchingSet{}, err
	}
	s.logger.Info("set generated", zap.String("set", set.ID), zap.Int("items", len(set.Items)))
	return set, nil
}
