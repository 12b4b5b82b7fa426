package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/iter"

	"github.com/riskibarqy/statline/internal/domain/game"
	"github.com/riskibarqy/statline/internal/domain/stat"
	basecache "github.com/riskibarqy/statline/internal/platform/cache"
	"github.com/riskibarqy/statline/internal/platform/logging"
)

// StatPoints selects a player's total points instead of a named stat.
const StatPoints = "PTS"

const defaultRollupWorkers = 8

type SeasonQuery struct {
	OwnerID       string
	PersonID      string
	StatName      string
	CompletedOnly bool
	From          *time.Time
	To            *time.Time
}

// SeasonGameLine is one game's contribution to a rollup. Value is the
// player's points for StatPoints, otherwise made plus count of the stat.
type SeasonGameLine struct {
	GameID    string
	Date      time.Time
	Opponent  string
	Made      int
	Missed    int
	Count     int
	Value     int
	Points    int
	PlusMinus int
}

type PlayerSeason struct {
	PersonID     string
	StatName     string
	Games        []SeasonGameLine
	GamesPlayed  int
	Total        int
	Average      float64
	High         int
	TotalMade    int
	TotalMissed  int
	TotalCount   int
	CareerPoints int
}

// SeasonService computes multi-game rollups for one player.
type SeasonService struct {
	games   *GameStore
	cache   *basecache.Store
	workers int
	logger  *logging.Logger
}

// NewSeasonService caches rollups in cache when it is not nil; cached entries
// of an owner are dropped whenever one of their games changes.
func NewSeasonService(games *GameStore, cache *basecache.Store, workers int, logger *logging.Logger) *SeasonService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = defaultRollupWorkers
	}

	s := &SeasonService{
		games:   games,
		cache:   cache,
		workers: workers,
		logger:  logger,
	}
	if cache != nil {
		games.OnChange(func(ctx context.Context, g *game.Game) {
			cache.DeletePrefix(ctx, seasonOwnerPrefix(g.OwnerID))
		})
	}
	return s
}

func (s *SeasonService) PlayerSeason(ctx context.Context, query SeasonQuery) (PlayerSeason, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.PlayerSeason")
	defer span.End()

	query.OwnerID = strings.TrimSpace(query.OwnerID)
	query.PersonID = strings.TrimSpace(query.PersonID)
	query.StatName = strings.TrimSpace(query.StatName)
	if query.OwnerID == "" || query.PersonID == "" {
		return PlayerSeason{}, fmt.Errorf("%w: owner id and person id are required", ErrInvalidInput)
	}
	if query.StatName == "" {
		query.StatName = StatPoints
	}
	if query.From != nil && query.To != nil && query.To.Before(*query.From) {
		return PlayerSeason{}, fmt.Errorf("%w: invalid date range", ErrInvalidInput)
	}

	if s.cache == nil {
		return s.build(ctx, query)
	}

	value, err := s.cache.GetOrLoad(ctx, seasonCacheKey(query), func(ctx context.Context) (any, error) {
		return s.build(ctx, query)
	})
	if err != nil {
		return PlayerSeason{}, err
	}
	season, ok := value.(PlayerSeason)
	if !ok {
		return PlayerSeason{}, fmt.Errorf("unexpected cached season type %T", value)
	}
	season.Games = append([]SeasonGameLine(nil), season.Games...)
	return season, nil
}

func (s *SeasonService) build(ctx context.Context, query SeasonQuery) (PlayerSeason, error) {
	ids, err := s.games.ListIDsByPerson(ctx, query.OwnerID, query.PersonID)
	if err != nil {
		return PlayerSeason{}, err
	}

	loaded, err := s.loadGames(ctx, ids)
	if err != nil {
		return PlayerSeason{}, err
	}

	selected := make([]*game.Game, 0, len(loaded))
	for _, g := range loaded {
		if g == nil || !query.matches(g) {
			continue
		}
		selected = append(selected, g)
	}

	lines := iter.Map(selected, func(g **game.Game) SeasonGameLine {
		return seasonLine(*g, query.PersonID, query.StatName)
	})

	season := PlayerSeason{
		PersonID:    query.PersonID,
		StatName:    query.StatName,
		Games:       lines,
		GamesPlayed: len(lines),
	}
	for i, line := range lines {
		season.Total += line.Value
		season.TotalMade += line.Made
		season.TotalMissed += line.Missed
		season.TotalCount += line.Count
		season.CareerPoints += line.Points
		if i == 0 || line.Value > season.High {
			season.High = line.Value
		}
	}
	if season.GamesPlayed > 0 {
		season.Average = float64(season.Total) / float64(season.GamesPlayed)
	}

	s.logger.DebugContext(ctx, "season rollup built",
		"person_id", query.PersonID,
		"stat", query.StatName,
		"games", season.GamesPlayed,
	)
	return season, nil
}

// loadGames fetches games concurrently, keeping the order of ids. Games
// deleted between listing and loading are skipped.
func (s *SeasonService) loadGames(ctx context.Context, ids []string) ([]*game.Game, error) {
	out := make([]*game.Game, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	workers := s.workers
	if workers > len(ids) {
		workers = len(ids)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for i, gameID := range ids {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()

			g, err := s.games.Get(ctx, gameID)
			if err != nil {
				if isNotFound(err) {
					return
				}
				errOnce.Do(func() { firstErr = err })
				return
			}
			out[i] = g
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func (q SeasonQuery) matches(g *game.Game) bool {
	if q.CompletedOnly && !g.IsCompleted {
		return false
	}
	if q.From != nil && g.Date.Before(*q.From) {
		return false
	}
	if q.To != nil && g.Date.After(*q.To) {
		return false
	}
	return true
}

func seasonLine(g *game.Game, personID, statName string) SeasonGameLine {
	line := SeasonGameLine{
		GameID:   g.ID,
		Date:     g.Date,
		Opponent: g.Opponent,
	}
	person, ok := g.Person(personID)
	if !ok {
		return line
	}

	line.Points = person.TotalPoints()
	line.PlusMinus = person.TotalPlusMinus()
	if statName == StatPoints {
		line.Value = line.Points
		return line
	}

	line.Made = person.AggregatedMade(statName)
	line.Missed = person.AggregatedMissed(statName)
	line.Count = person.AggregatedCount(statName)
	line.Value = line.Made + line.Count
	return line
}

func seasonOwnerPrefix(ownerID string) string {
	return "season:" + ownerID + ":"
}

func seasonCacheKey(q SeasonQuery) string {
	var b strings.Builder
	b.WriteString(seasonOwnerPrefix(q.OwnerID))
	b.WriteString(q.PersonID)
	b.WriteString(":")
	b.WriteString(q.StatName)
	b.WriteString(":")
	b.WriteString(strconv.FormatBool(q.CompletedOnly))
	for _, t := range []*time.Time{q.From, q.To} {
		b.WriteString(":")
		if t != nil {
			b.WriteString(strconv.FormatInt(t.Unix(), 10))
		}
	}
	return b.String()
}
