package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/statline/internal/domain/achievement"
	"github.com/riskibarqy/statline/internal/domain/editlock"
	"github.com/riskibarqy/statline/internal/domain/game"
	"github.com/riskibarqy/statline/internal/domain/stat"
	idgen "github.com/riskibarqy/statline/internal/platform/id"
	"github.com/riskibarqy/statline/internal/platform/logging"
)

type CreateGameInput struct {
	OwnerID  string
	Date     time.Time
	Opponent string
	Location string
	Notes    string
	SportID  string
	TeamID   string
}

// UpdateGameInput carries metadata changes. Nil fields are left untouched.
type UpdateGameInput struct {
	GameID        string
	UserID        string
	Date          *time.Time
	Opponent      *string
	Location      *string
	Notes         *string
	TeamScore     *int
	OpponentScore *int
}

type AddPlayerInput struct {
	GameID     string
	UserID     string
	PersonID   string
	PersonName string
}

// AdjustStatInput targets the game's direct records when PersonID is empty,
// the player's direct records when ShiftNumber is 0, and a shift otherwise.
type AdjustStatInput struct {
	GameID      string
	UserID      string
	PersonID    string
	ShiftNumber int
	StatName    string
	PointValue  int
	Field       stat.Field
	Delta       int
}

type EditShiftInput struct {
	GameID   string
	UserID   string
	PersonID string
	Number   int
	Edit     game.ShiftEdit
}

type CompleteGameResult struct {
	Game     *game.Game
	Unlocked []achievement.Rule
}

type GameService struct {
	games        *GameStore
	locks        *LockService
	achievements *AchievementService
	idGen        idgen.Generator
	logger       *logging.Logger
	now          func() time.Time
}

func NewGameService(
	games *GameStore,
	locks *LockService,
	achievements *AchievementService,
	idGen idgen.Generator,
	logger *logging.Logger,
) *GameService {
	if logger == nil {
		logger = logging.Default()
	}

	return &GameService{
		games:        games,
		locks:        locks,
		achievements: achievements,
		idGen:        idGen,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *GameService) Create(ctx context.Context, input CreateGameInput) (*game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Create")
	defer span.End()

	input.OwnerID = strings.TrimSpace(input.OwnerID)
	if input.OwnerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}

	now := s.now().UTC()
	if input.Date.IsZero() {
		input.Date = now
	}

	gameID, err := s.idGen.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate game id: %w", err)
	}

	g := game.New(gameID, input.OwnerID, input.Date.UTC(), now)
	g.Opponent = strings.TrimSpace(input.Opponent)
	g.Location = strings.TrimSpace(input.Location)
	g.Notes = input.Notes
	g.SportID = strings.TrimSpace(input.SportID)
	g.TeamID = strings.TrimSpace(input.TeamID)

	if err := s.games.Save(ctx, g); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "game created", "game_id", g.ID, "owner_id", g.OwnerID)
	return g, nil
}

func (s *GameService) Get(ctx context.Context, gameID string) (*game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Get")
	defer span.End()

	return s.games.Get(ctx, gameID)
}

func (s *GameService) List(ctx context.Context, ownerID string) ([]*game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.List")
	defer span.End()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}
	return s.games.ListByOwner(ctx, ownerID)
}

func (s *GameService) Update(ctx context.Context, input UpdateGameInput) (*game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Update")
	defer span.End()

	for _, v := range []*int{input.TeamScore, input.OpponentScore} {
		if v != nil && *v < 0 {
			return nil, fmt.Errorf("%w: scores cannot be negative", ErrInvalidInput)
		}
	}
	if input.Date != nil && input.Date.IsZero() {
		return nil, fmt.Errorf("%w: game date cannot be empty", ErrInvalidInput)
	}

	return s.edit(ctx, input.GameID, input.UserID, func(g *game.Game, now time.Time) error {
		if input.Date != nil {
			g.Date = input.Date.UTC()
		}
		if input.Opponent != nil {
			g.Opponent = strings.TrimSpace(*input.Opponent)
		}
		if input.Location != nil {
			g.Location = strings.TrimSpace(*input.Location)
		}
		if input.Notes != nil {
			g.Notes = *input.Notes
		}
		if input.TeamScore != nil {
			g.TeamScore = *input.TeamScore
		}
		if input.OpponentScore != nil {
			g.OpponentScore = *input.OpponentScore
		}
		return nil
	})
}

func (s *GameService) AddPlayer(ctx context.Context, input AddPlayerInput) (*game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.AddPlayer")
	defer span.End()

	input.PersonID = strings.TrimSpace(input.PersonID)
	if input.PersonID == "" {
		return nil, fmt.Errorf("%w: person id is required", ErrInvalidInput)
	}
	aggregateID, err := s.idGen.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate player aggregate id: %w", err)
	}

	return s.edit(ctx, input.GameID, input.UserID, func(g *game.Game, _ time.Time) error {
		person := game.NewPersonGameStats(aggregateID, input.PersonID, strings.TrimSpace(input.PersonName))
		if err := g.AddPerson(person); err != nil {
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil
	})
}

// Complete marks the game completed, clears its lease and evaluates game
// achievements once. Achievement failures are logged, not returned.
func (s *GameService) Complete(ctx context.Context, gameID, userID string) (CompleteGameResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Complete")
	defer span.End()

	g, err := s.edit(ctx, gameID, userID, func(g *game.Game, _ time.Time) error {
		for _, p := range g.People {
			if _, ok := p.EndShift(nil, s.now().UTC()); ok {
				s.logger.InfoContext(ctx, "active shift ended on completion", "game_id", g.ID, "person_id", p.PersonID)
			}
		}
		g.IsCompleted = true
		g.Lock = editlock.Lease{}
		return nil
	})
	if err != nil {
		return CompleteGameResult{}, err
	}
	s.games.Forget(ctx, g.ID)

	result := CompleteGameResult{Game: g}
	if s.achievements == nil {
		return result, nil
	}
	unlocked, err := s.achievements.EvaluateGame(ctx, g)
	if err != nil {
		s.logger.ErrorContext(ctx, "evaluate game achievements failed", "game_id", g.ID, "error", err)
		return result, nil
	}
	result.Unlocked = unlocked
	return result, nil
}

// Delete removes the game and everything it owns. Only the owner may delete.
func (s *GameService) Delete(ctx context.Context, gameID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Delete")
	defer span.End()

	g, err := s.games.Get(ctx, gameID)
	if err != nil {
		return err
	}
	if g.OwnerID != userID {
		return fmt.Errorf("%w: only the owner can delete a game", ErrForbidden)
	}
	if s.locks.IsLockedByOther(g, userID) {
		return ErrEditLocked
	}
	if err := s.games.Delete(ctx, g); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "game deleted", "game_id", g.ID)
	return nil
}

// AdjustStat applies a manual correction to one counter. Results stop at zero.
func (s *GameService) AdjustStat(ctx context.Context, input AdjustStatInput) (*game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.AdjustStat")
	defer span.End()

	input.StatName = strings.TrimSpace(input.StatName)
	if input.StatName == "" {
		return nil, fmt.Errorf("%w: stat name is required", ErrInvalidInput)
	}
	if _, err := stat.ParseField(string(input.Field)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.Delta == 0 {
		return nil, fmt.Errorf("%w: delta cannot be zero", ErrInvalidInput)
	}
	if input.PointValue < 0 {
		return nil, fmt.Errorf("%w: point value cannot be negative", ErrInvalidInput)
	}
	if input.PersonID == "" && input.ShiftNumber != 0 {
		return nil, fmt.Errorf("%w: shift number requires a person id", ErrInvalidInput)
	}

	return s.edit(ctx, input.GameID, input.UserID, func(g *game.Game, now time.Time) error {
		book, err := adjustTarget(g, input.PersonID, input.ShiftNumber)
		if err != nil {
			return err
		}
		rec, ok := book.Get(input.StatName)
		if !ok {
			if input.Delta < 0 {
				// Already at zero; creating an empty record would flip game totals to direct precedence.
				return nil
			}
			rec = book.Ensure(input.StatName, input.PointValue, now)
		}
		rec.Adjust(input.Field, input.Delta, now)
		return nil
	})
}

// EditShift corrects the stored fields of one shift.
func (s *GameService) EditShift(ctx context.Context, input EditShiftInput) (*game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.EditShift")
	defer span.End()

	return s.edit(ctx, input.GameID, input.UserID, func(g *game.Game, _ time.Time) error {
		person, ok := g.Person(input.PersonID)
		if !ok {
			return fmt.Errorf("%w: %v", ErrNotFound, game.ErrPersonNotFound)
		}
		shift, ok := person.ShiftByNumber(input.Number)
		if !ok {
			return fmt.Errorf("%w: %v", ErrNotFound, game.ErrShiftNotFound)
		}
		if err := shift.Apply(input.Edit); err != nil {
			if errors.Is(err, game.ErrShiftActive) {
				return fmt.Errorf("%w: %v", ErrConflict, err)
			}
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil
	})
}

func (s *GameService) Summary(ctx context.Context, gameID string) (GameSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Summary")
	defer span.End()

	g, err := s.games.Get(ctx, gameID)
	if err != nil {
		return GameSummary{}, err
	}
	return BuildGameSummary(g, s.now()), nil
}

// edit runs fn on the game when userID may edit it.
func (s *GameService) edit(ctx context.Context, gameID, userID string, fn func(g *game.Game, now time.Time) error) (*game.Game, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	return s.games.Update(ctx, gameID, func(g *game.Game) error {
		if g.IsCompleted {
			return fmt.Errorf("%w: game is completed", ErrConflict)
		}
		if !s.locks.CanEdit(g, userID) {
			return ErrEditLocked
		}
		now := s.now().UTC()
		if err := fn(g, now); err != nil {
			return err
		}
		g.UpdatedAt = now
		return nil
	})
}

func adjustTarget(g *game.Game, personID string, shiftNumber int) (stat.Book, error) {
	if personID == "" {
		if g.Stats == nil {
			g.Stats = stat.Book{}
		}
		return g.Stats, nil
	}
	person, ok := g.Person(personID)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, game.ErrPersonNotFound)
	}
	if shiftNumber == 0 {
		if person.Stats == nil {
			person.Stats = stat.Book{}
		}
		return person.Stats, nil
	}
	shift, ok := person.ShiftByNumber(shiftNumber)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, game.ErrShiftNotFound)
	}
	if shift.Stats == nil {
		shift.Stats = stat.Book{}
	}
	return shift.Stats, nil
}
