package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/riskibarqy/statline/internal/domain/game"
	"github.com/riskibarqy/statline/internal/domain/stat"
	idgen "github.com/riskibarqy/statline/internal/platform/id"
	"github.com/riskibarqy/statline/internal/platform/logging"
)

// UndoKind is the recording operation a PendingUndo reverts.
type UndoKind string

const (
	UndoMade  UndoKind = "made"
	UndoMiss  UndoKind = "miss"
	UndoCount UndoKind = "count"
)

func (k UndoKind) field() stat.Field {
	switch k {
	case UndoMade:
		return stat.FieldMade
	case UndoMiss:
		return stat.FieldMissed
	default:
		return stat.FieldCount
	}
}

// PendingUndo is the single revertible action of a session. It lives only in
// memory and is replaced by every recording call.
type PendingUndo struct {
	Kind       UndoKind
	StatName   string
	PointValue int
}

type undoShift struct {
	personID string
	shiftID  string
}

// TrackingSession turns recording actions into writes on the game's direct
// records and, when the selected player has an active shift, that shift's
// records. It is not safe for concurrent use.
type TrackingSession struct {
	id       string
	userID   string
	game     *game.Game
	personID string
	pending  *PendingUndo

	// shift that received the pending entry, if any
	pendingShift undoShift
	// set once the game is deleted or completed elsewhere
	detached bool

	games  *GameStore
	locks  *LockService
	idGen  idgen.Generator
	logger *logging.Logger
	now    func() time.Time
}

func NewTrackingSession(
	id string,
	userID string,
	g *game.Game,
	games *GameStore,
	locks *LockService,
	idGen idgen.Generator,
	logger *logging.Logger,
) *TrackingSession {
	if logger == nil {
		logger = logging.Default()
	}

	return &TrackingSession{
		id:     id,
		userID: userID,
		game:   g,
		games:  games,
		locks:  locks,
		idGen:  idGen,
		logger: logger.With("session_id", id, "game_id", g.ID),
		now:    time.Now,
	}
}

func (s *TrackingSession) ID() string {
	return s.id
}

func (s *TrackingSession) UserID() string {
	return s.userID
}

func (s *TrackingSession) Game() *game.Game {
	return s.game
}

func (s *TrackingSession) SelectedPlayer() string {
	return s.personID
}

// PendingUndo returns a copy of the pending entry, or nil.
func (s *TrackingSession) PendingUndo() *PendingUndo {
	if s.pending == nil {
		return nil
	}
	copied := *s.pending
	return &copied
}

// SelectPlayer points shift-level recording at personID. An empty id clears
// the selection.
func (s *TrackingSession) SelectPlayer(personID string) bool {
	personID = strings.TrimSpace(personID)
	if personID == "" {
		s.personID = ""
		return true
	}
	if _, ok := s.game.Person(personID); !ok {
		return false
	}
	s.personID = personID
	return true
}

func (s *TrackingSession) RecordMade(ctx context.Context, name string, pointValue int) bool {
	return s.record(ctx, UndoMade, name, pointValue)
}

func (s *TrackingSession) RecordMiss(ctx context.Context, name string, pointValue int) bool {
	return s.record(ctx, UndoMiss, name, pointValue)
}

// RecordCount records a tally stat; tallies never carry points.
func (s *TrackingSession) RecordCount(ctx context.Context, name string) bool {
	return s.record(ctx, UndoCount, name, 0)
}

// Undo reverts the pending entry by one at game level and, if the shift that
// received it is still active, at shift level. Counters stop at zero.
func (s *TrackingSession) Undo(ctx context.Context) bool {
	if s.pending == nil || !s.canEdit() {
		return false
	}

	entry := *s.pending
	target := s.pendingShift
	s.pending = nil
	s.pendingShift = undoShift{}
	now := s.now().UTC()
	field := entry.Kind.field()

	if rec, ok := s.game.Stats.Get(entry.StatName); ok {
		rec.Decrement(field, now)
	}
	if shift := s.recordedShift(target); shift != nil {
		if rec, ok := shift.Stats.Get(entry.StatName); ok {
			rec.Decrement(field, now)
		}
	}

	s.game.UpdatedAt = now
	s.persist(ctx, "undo")
	return true
}

// StartShift opens a shift for the selected player with the given starting
// score, superseding any shift that is still active.
func (s *TrackingSession) StartShift(ctx context.Context, start game.Score) bool {
	person := s.selected()
	if person == nil || !s.canEdit() || start.Team < 0 || start.Opponent < 0 {
		return false
	}

	shiftID, err := s.idGen.NewID()
	if err != nil {
		s.logger.ErrorContext(ctx, "generate shift id failed", "error", err)
		return false
	}

	now := s.now().UTC()
	started, superseded := person.StartShift(shiftID, start, now)
	if superseded != nil {
		s.logger.InfoContext(ctx, "active shift superseded",
			"person_id", person.PersonID,
			"shift_number", superseded.Number,
		)
	}
	s.logger.DebugContext(ctx, "shift started", "person_id", person.PersonID, "shift_number", started.Number)

	s.game.UpdatedAt = now
	s.persist(ctx, "start_shift")
	return true
}

// EndShift ends the selected player's active shift. A nil score leaves the
// shift's plus/minus undefined.
func (s *TrackingSession) EndShift(ctx context.Context, score *game.Score) bool {
	person := s.selected()
	if person == nil || !s.canEdit() {
		return false
	}
	if score != nil && (score.Team < 0 || score.Opponent < 0) {
		return false
	}

	now := s.now().UTC()
	if _, ended := person.EndShift(score, now); !ended {
		return false
	}

	s.game.UpdatedAt = now
	s.persist(ctx, "end_shift")
	return true
}

// SetScore updates the live scoreboard used as the default shift snapshot.
func (s *TrackingSession) SetScore(ctx context.Context, score game.Score) bool {
	if !s.canEdit() || score.Team < 0 || score.Opponent < 0 {
		return false
	}

	s.game.TeamScore = score.Team
	s.game.OpponentScore = score.Opponent
	s.game.UpdatedAt = s.now().UTC()
	s.persist(ctx, "set_score")
	return true
}

func (s *TrackingSession) record(ctx context.Context, kind UndoKind, name string, pointValue int) bool {
	name = strings.TrimSpace(name)
	if name == "" || pointValue < 0 || !s.canEdit() {
		return false
	}

	now := s.now().UTC()
	field := kind.field()

	s.game.Stats.Ensure(name, pointValue, now).Increment(field, now)
	s.pendingShift = undoShift{}
	if shift := s.activeShift(); shift != nil {
		shift.Stats.Ensure(name, pointValue, now).Increment(field, now)
		s.pendingShift = undoShift{personID: s.personID, shiftID: shift.ID}
	}

	s.pending = &PendingUndo{Kind: kind, StatName: name, PointValue: pointValue}
	s.game.UpdatedAt = now
	s.persist(ctx, "record_"+string(kind))
	return true
}

func (s *TrackingSession) selected() *game.PersonGameStats {
	if s.personID == "" {
		return nil
	}
	person, ok := s.game.Person(s.personID)
	if !ok {
		return nil
	}
	return person
}

func (s *TrackingSession) activeShift() *game.Shift {
	person := s.selected()
	if person == nil {
		return nil
	}
	return person.ActiveShift()
}

// recordedShift returns the shift that received the pending entry while it is
// still active. The current selection plays no part.
func (s *TrackingSession) recordedShift(target undoShift) *game.Shift {
	if target.shiftID == "" {
		return nil
	}
	person, ok := s.game.Person(target.personID)
	if !ok {
		return nil
	}
	for _, shift := range person.Shifts {
		if shift.ID == target.shiftID && shift.IsActive() {
			return shift
		}
	}
	return nil
}

func (s *TrackingSession) canEdit() bool {
	if s.detached {
		return false
	}
	return s.locks.CanEdit(s.game, s.userID)
}

// detach stops the session from editing or writing its game.
func (s *TrackingSession) detach() {
	s.detached = true
}

// persist writes the whole game. Failures are logged and the in-memory state
// is kept, so the next successful write carries it.
func (s *TrackingSession) persist(ctx context.Context, op string) {
	if s.detached {
		return
	}
	if err := s.games.Save(ctx, s.game); err != nil {
		s.logger.ErrorContext(ctx, "persist tracking change failed", "op", op, "error", err)
	}
}
