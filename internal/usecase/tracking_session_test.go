package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/statline/internal/domain/game"
	"github.com/riskibarqy/statline/internal/domain/stat"
	gamemock "github.com/riskibarqy/statline/internal/mocks/domain/game"
	"github.com/riskibarqy/statline/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func newTestSession(t *testing.T, clock *testClock, people ...string) (*TrackingSession, *GameStore) {
	t.Helper()

	locks, store := newTestLockService(clock)
	g := seedGame(t, store, "g1", clock, people...)
	if !locks.Acquire(t.Context(), g, "user-a") {
		t.Fatalf("acquire lock for session")
	}
	session := NewTrackingSession("s1", "user-a", g, store, locks, newSequence("shift-"), logging.NewNop())
	session.now = clock.Now
	return session, store
}

func TestTrackingSession_EndToEnd(t *testing.T) {
	clock := newTestClock()
	session, store := newTestSession(t, clock, "jack")
	ctx := t.Context()
	g := session.Game()

	if !session.RecordMade(ctx, stat.NameTwoPoint, 2) {
		t.Fatalf("record made without shift")
	}
	rec, _ := g.Stats.Get(stat.NameTwoPoint)
	if rec.Made != 1 || rec.Missed != 0 {
		t.Fatalf("expected 2PT made=1 missed=0, got %+v", rec)
	}
	if g.TotalPoints() != 2 {
		t.Fatalf("expected game total 2, got %d", g.TotalPoints())
	}

	if !session.SelectPlayer("jack") {
		t.Fatalf("select player")
	}
	if !session.StartShift(ctx, game.Score{Team: 0, Opponent: 0}) {
		t.Fatalf("start shift")
	}
	clock.Advance(time.Minute)
	if !session.RecordMade(ctx, stat.NameTwoPoint, 2) {
		t.Fatalf("record made with shift")
	}

	jack, _ := g.Person("jack")
	shift := jack.Shifts[0]
	if rec.Made != 2 {
		t.Fatalf("expected game-level made=2, got %d", rec.Made)
	}
	if got := shift.Stats.Value(stat.NameTwoPoint, stat.FieldMade); got != 1 {
		t.Fatalf("expected shift made=1, got %d", got)
	}
	if g.TotalPoints() != 4 {
		t.Fatalf("expected game total 4 under direct precedence, got %d", g.TotalPoints())
	}
	if jack.TotalPoints() != 2 {
		t.Fatalf("expected jack total 2, got %d", jack.TotalPoints())
	}

	if !session.EndShift(ctx, &game.Score{Team: 2, Opponent: 0}) {
		t.Fatalf("end shift")
	}
	pm, ok := shift.PlusMinus()
	if !ok || pm != 2 {
		t.Fatalf("expected plus/minus 2, got %d defined=%t", pm, ok)
	}

	stored, err := store.Get(ctx, "g1")
	if err != nil {
		t.Fatalf("load stored game: %v", err)
	}
	if stored.TotalPoints() != 4 || len(stored.People[0].Shifts) != 1 {
		t.Fatalf("expected every mutation to be persisted, got total=%d", stored.TotalPoints())
	}
}

func TestTrackingSession_UndoRevertsBothScopes(t *testing.T) {
	clock := newTestClock()
	session, _ := newTestSession(t, clock, "jack")
	ctx := t.Context()
	g := session.Game()

	session.SelectPlayer("jack")
	session.StartShift(ctx, game.Score{})
	session.RecordMade(ctx, stat.NameThreePoint, 3)

	pending := session.PendingUndo()
	if pending == nil || pending.Kind != UndoMade || pending.StatName != stat.NameThreePoint || pending.PointValue != 3 {
		t.Fatalf("unexpected pending undo %+v", pending)
	}

	if !session.Undo(ctx) {
		t.Fatalf("expected undo to apply")
	}
	jack, _ := g.Person("jack")
	if got := g.Stats.Value(stat.NameThreePoint, stat.FieldMade); got != 0 {
		t.Fatalf("expected game-level made back to 0, got %d", got)
	}
	if got := jack.ActiveShift().Stats.Value(stat.NameThreePoint, stat.FieldMade); got != 0 {
		t.Fatalf("expected shift-level made back to 0, got %d", got)
	}
	if session.PendingUndo() != nil {
		t.Fatalf("expected pending undo to be consumed")
	}

	if session.Undo(ctx) {
		t.Fatalf("expected second undo to be a no-op")
	}
}

func TestTrackingSession_NewRecordReplacesPendingUndo(t *testing.T) {
	clock := newTestClock()
	session, _ := newTestSession(t, clock)
	ctx := t.Context()
	g := session.Game()

	session.RecordMade(ctx, stat.NameTwoPoint, 2)
	session.RecordMiss(ctx, stat.NameFreeThrow, 1)
	session.Undo(ctx)

	if got := g.Stats.Value(stat.NameTwoPoint, stat.FieldMade); got != 1 {
		t.Fatalf("expected earlier record to survive, got made=%d", got)
	}
	if got := g.Stats.Value(stat.NameFreeThrow, stat.FieldMissed); got != 0 {
		t.Fatalf("expected latest record to be undone, got missed=%d", got)
	}

	session.RecordCount(ctx, stat.NameAssist)
	session.Undo(ctx)
	if session.Undo(ctx) {
		t.Fatalf("undone action must not be undoable again")
	}
	if got := g.Stats.Value(stat.NameTwoPoint, stat.FieldMade); got != 1 {
		t.Fatalf("expected 2PT untouched, got %d", got)
	}
}

func TestTrackingSession_UndoClampsAtZero(t *testing.T) {
	clock := newTestClock()
	session, _ := newTestSession(t, clock)
	ctx := t.Context()
	g := session.Game()

	session.RecordCount(ctx, stat.NameSteal)
	g.Stats[stat.NameSteal].Count = 0

	if !session.Undo(ctx) {
		t.Fatalf("expected undo to apply")
	}
	if got := g.Stats.Value(stat.NameSteal, stat.FieldCount); got != 0 {
		t.Fatalf("expected count clamped at 0, got %d", got)
	}
}

func TestTrackingSession_UndoAfterShiftEndedTouchesGameOnly(t *testing.T) {
	clock := newTestClock()
	session, _ := newTestSession(t, clock, "jack")
	ctx := t.Context()
	g := session.Game()

	session.SelectPlayer("jack")
	session.StartShift(ctx, game.Score{})
	session.RecordMade(ctx, stat.NameTwoPoint, 2)
	session.EndShift(ctx, nil)

	if !session.Undo(ctx) {
		t.Fatalf("expected undo to apply")
	}
	jack, _ := g.Person("jack")
	if got := g.Stats.Value(stat.NameTwoPoint, stat.FieldMade); got != 0 {
		t.Fatalf("expected game-level made=0, got %d", got)
	}
	if got := jack.Shifts[0].Stats.Value(stat.NameTwoPoint, stat.FieldMade); got != 1 {
		t.Fatalf("expected ended shift to keep made=1, got %d", got)
	}
}

func TestTrackingSession_UndoTargetsRecordedShiftAfterReselect(t *testing.T) {
	clock := newTestClock()
	session, _ := newTestSession(t, clock, "jack", "jill")
	ctx := t.Context()
	g := session.Game()

	session.SelectPlayer("jill")
	session.StartShift(ctx, game.Score{})
	session.RecordMade(ctx, stat.NameTwoPoint, 2)
	session.RecordMade(ctx, stat.NameTwoPoint, 2)

	session.SelectPlayer("jack")
	session.StartShift(ctx, game.Score{})
	session.RecordMade(ctx, stat.NameTwoPoint, 2)

	session.SelectPlayer("jill")
	if !session.Undo(ctx) {
		t.Fatalf("expected undo to apply")
	}

	jack, _ := g.Person("jack")
	jill, _ := g.Person("jill")
	if got := jill.ActiveShift().Stats.Value(stat.NameTwoPoint, stat.FieldMade); got != 2 {
		t.Fatalf("expected jill's shift untouched at made=2, got %d", got)
	}
	if got := jack.ActiveShift().Stats.Value(stat.NameTwoPoint, stat.FieldMade); got != 0 {
		t.Fatalf("expected jack's shift back to made=0, got %d", got)
	}
	if got := g.Stats.Value(stat.NameTwoPoint, stat.FieldMade); got != 2 {
		t.Fatalf("expected game-level made=2, got %d", got)
	}
}

func TestTrackingSession_RecordCountForcesZeroPoints(t *testing.T) {
	clock := newTestClock()
	session, _ := newTestSession(t, clock)

	session.RecordCount(t.Context(), stat.NameAssist)
	if pv := session.Game().Stats[stat.NameAssist].PointValue; pv != 0 {
		t.Fatalf("expected tally point value 0, got %d", pv)
	}
	if pending := session.PendingUndo(); pending.Kind != UndoCount || pending.PointValue != 0 {
		t.Fatalf("unexpected pending undo %+v", pending)
	}
}

func TestTrackingSession_StartShiftSupersedesAndNumbers(t *testing.T) {
	clock := newTestClock()
	session, _ := newTestSession(t, clock, "jack")
	ctx := t.Context()

	if session.StartShift(ctx, game.Score{}) {
		t.Fatalf("expected start shift to fail without a selected player")
	}
	if session.SelectPlayer("nobody") {
		t.Fatalf("expected unknown player to be rejected")
	}

	session.SelectPlayer("jack")
	session.StartShift(ctx, game.Score{Team: 1})
	session.StartShift(ctx, game.Score{Team: 3})
	session.EndShift(ctx, &game.Score{Team: 5, Opponent: 1})
	session.StartShift(ctx, game.Score{Team: 5, Opponent: 1})

	jack, _ := session.Game().Person("jack")
	if len(jack.Shifts) != 3 {
		t.Fatalf("expected 3 shifts, got %d", len(jack.Shifts))
	}
	for i, s := range jack.Shifts {
		if s.Number != i+1 {
			t.Fatalf("expected shift number %d, got %d", i+1, s.Number)
		}
	}
	if jack.Shifts[0].EndReason != game.EndReasonSuperseded {
		t.Fatalf("expected first shift superseded, got %q", jack.Shifts[0].EndReason)
	}
	if _, ok := jack.Shifts[0].PlusMinus(); ok {
		t.Fatalf("superseded shift must not have plus/minus")
	}
	if pm, _ := jack.Shifts[1].PlusMinus(); pm != 1 {
		t.Fatalf("expected second shift plus/minus 1, got %d", pm)
	}
	if !jack.Shifts[2].IsActive() {
		t.Fatalf("expected third shift active")
	}
	if !session.EndShift(ctx, nil) {
		t.Fatalf("expected active shift to end")
	}
	if session.EndShift(ctx, nil) {
		t.Fatalf("expected ending with no active shift to be rejected")
	}
}

func TestTrackingSession_RejectsWhenLockedByOther(t *testing.T) {
	clock := newTestClock()
	session, _ := newTestSession(t, clock)
	ctx := t.Context()
	g := session.Game()

	clock.Advance(5 * time.Hour)
	if !session.locks.Acquire(ctx, g, "user-b") {
		t.Fatalf("expected user-b to take over the expired lease")
	}

	if session.RecordMade(ctx, stat.NameTwoPoint, 2) {
		t.Fatalf("expected recording to be rejected")
	}
	if !g.Stats.IsEmpty() {
		t.Fatalf("rejected record must not mutate the game")
	}
}

func TestTrackingSession_PersistFailureKeepsMemoryState(t *testing.T) {
	clock := newTestClock()
	repo := gamemock.NewRepository(t)
	repo.
		On("Save", mock.Anything, mock.AnythingOfType("*game.Game")).
		Return(errors.New("connection reset")).
		Once()
	repo.
		On("Save", mock.Anything, mock.AnythingOfType("*game.Game")).
		Return(nil).
		Once()

	store := NewGameStore(repo)
	locks := NewLockService(store, 4*time.Hour, logging.NewNop())
	locks.now = clock.Now
	g := game.New("g1", "owner-1", clock.Now(), clock.Now())

	session := NewTrackingSession("s1", "user-a", g, store, locks, newSequence("shift-"), logging.NewNop())
	session.now = clock.Now

	if !session.RecordMade(context.Background(), stat.NameTwoPoint, 2) {
		t.Fatalf("expected record to apply despite the failed write")
	}
	if g.TotalPoints() != 2 {
		t.Fatalf("expected in-memory state to keep the record, got %d", g.TotalPoints())
	}

	if !session.RecordMade(context.Background(), stat.NameTwoPoint, 2) {
		t.Fatalf("expected next record to apply")
	}
	saved := repo.Calls[1].Arguments.Get(1).(*game.Game)
	if saved.Stats.Value(stat.NameTwoPoint, stat.FieldMade) != 2 {
		t.Fatalf("expected next successful write to carry both records")
	}
}
