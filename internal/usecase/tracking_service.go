package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/statline/internal/domain/game"
	idgen "github.com/riskibarqy/statline/internal/platform/id"
	"github.com/riskibarqy/statline/internal/platform/logging"
)

// SessionView is a snapshot of a session after an operation.
type SessionView struct {
	SessionID   string
	UserID      string
	PersonID    string
	PendingUndo *PendingUndo
	Game        *game.Game
}

type trackingEntry struct {
	mu      sync.Mutex
	session *TrackingSession
}

// TrackingService owns the open tracking sessions. Each session is driven by
// one request at a time.
type TrackingService struct {
	games  *GameStore
	locks  *LockService
	idGen  idgen.Generator
	logger *logging.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*trackingEntry
}

// NewTrackingService registers the service as the live holder of games with
// an open session, so by-id updates reach the session's copy.
func NewTrackingService(games *GameStore, locks *LockService, idGen idgen.Generator, logger *logging.Logger) *TrackingService {
	if logger == nil {
		logger = logging.Default()
	}

	s := &TrackingService{
		games:    games,
		locks:    locks,
		idGen:    idGen,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*trackingEntry),
	}
	games.SetLive(s)
	return s
}

// Open starts a session for userID on gameID and claims the edit lease. A
// user reopening a game gets the existing session back; sessions of other
// users on the same game are dropped once their lease is taken over.
func (s *TrackingService) Open(ctx context.Context, gameID, userID string) (SessionView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TrackingService.Open")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return SessionView{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	if entry := s.findByGame(gameID); entry != nil && entry.session.UserID() == userID {
		entry.mu.Lock()
		defer entry.mu.Unlock()
		if !s.locks.Acquire(ctx, entry.session.Game(), userID) {
			return SessionView{}, ErrEditLocked
		}
		return snapshot(entry.session), nil
	}

	g, err := s.games.Get(ctx, gameID)
	if err != nil {
		return SessionView{}, err
	}
	if g.IsCompleted {
		return SessionView{}, fmt.Errorf("%w: game is completed", ErrConflict)
	}
	if !s.locks.Acquire(ctx, g, userID) {
		return SessionView{}, ErrEditLocked
	}

	sessionID, err := s.idGen.NewID()
	if err != nil {
		return SessionView{}, fmt.Errorf("generate session id: %w", err)
	}

	session := NewTrackingSession(sessionID, userID, g, s.games, s.locks, s.idGen, s.logger)
	session.now = s.now

	s.mu.Lock()
	for id, entry := range s.sessions {
		if entry.session.Game().ID == g.ID {
			delete(s.sessions, id)
			s.logger.WarnContext(ctx, "stale tracking session replaced", "session_id", id, "game_id", g.ID)
		}
	}
	s.sessions[sessionID] = &trackingEntry{session: session}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "tracking session opened", "session_id", sessionID, "game_id", g.ID, "user_id", userID)
	return snapshot(session), nil
}

// Close drops the session and releases the lease held through it.
func (s *TrackingService) Close(ctx context.Context, sessionID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TrackingService.Close")
	defer span.End()

	entry, err := s.entry(sessionID, userID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	s.locks.Release(ctx, entry.session.Game(), userID)
	s.logger.InfoContext(ctx, "tracking session closed", "session_id", sessionID)
	return nil
}

func (s *TrackingService) Get(_ context.Context, sessionID, userID string) (SessionView, error) {
	entry, err := s.entry(sessionID, userID)
	if err != nil {
		return SessionView{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return snapshot(entry.session), nil
}

func (s *TrackingService) RecordMade(ctx context.Context, sessionID, userID, name string, pointValue int) (SessionView, error) {
	return s.apply(ctx, "usecase.TrackingService.RecordMade", sessionID, userID, func(ctx context.Context, ts *TrackingSession) bool {
		return ts.RecordMade(ctx, name, pointValue)
	})
}

func (s *TrackingService) RecordMiss(ctx context.Context, sessionID, userID, name string, pointValue int) (SessionView, error) {
	return s.apply(ctx, "usecase.TrackingService.RecordMiss", sessionID, userID, func(ctx context.Context, ts *TrackingSession) bool {
		return ts.RecordMiss(ctx, name, pointValue)
	})
}

func (s *TrackingService) RecordCount(ctx context.Context, sessionID, userID, name string) (SessionView, error) {
	return s.apply(ctx, "usecase.TrackingService.RecordCount", sessionID, userID, func(ctx context.Context, ts *TrackingSession) bool {
		return ts.RecordCount(ctx, name)
	})
}

func (s *TrackingService) Undo(ctx context.Context, sessionID, userID string) (SessionView, error) {
	return s.apply(ctx, "usecase.TrackingService.Undo", sessionID, userID, func(ctx context.Context, ts *TrackingSession) bool {
		return ts.Undo(ctx)
	})
}

func (s *TrackingService) SelectPlayer(ctx context.Context, sessionID, userID, personID string) (SessionView, error) {
	return s.apply(ctx, "usecase.TrackingService.SelectPlayer", sessionID, userID, func(_ context.Context, ts *TrackingSession) bool {
		return ts.SelectPlayer(personID)
	})
}

// StartShift uses the game's scoreboard when start is nil.
func (s *TrackingService) StartShift(ctx context.Context, sessionID, userID string, start *game.Score) (SessionView, error) {
	return s.apply(ctx, "usecase.TrackingService.StartShift", sessionID, userID, func(ctx context.Context, ts *TrackingSession) bool {
		score := ts.Game().Score()
		if start != nil {
			score = *start
		}
		return ts.StartShift(ctx, score)
	})
}

func (s *TrackingService) EndShift(ctx context.Context, sessionID, userID string, end *game.Score) (SessionView, error) {
	return s.apply(ctx, "usecase.TrackingService.EndShift", sessionID, userID, func(ctx context.Context, ts *TrackingSession) bool {
		return ts.EndShift(ctx, end)
	})
}

func (s *TrackingService) SetScore(ctx context.Context, sessionID, userID string, score game.Score) (SessionView, error) {
	return s.apply(ctx, "usecase.TrackingService.SetScore", sessionID, userID, func(ctx context.Context, ts *TrackingSession) bool {
		return ts.SetScore(ctx, score)
	})
}

// UpdateLive applies fn to the game held by an open session and saves it. It
// reports false when no session holds gameID.
func (s *TrackingService) UpdateLive(ctx context.Context, gameID string, fn func(g *game.Game) error) (*game.Game, bool, error) {
	entry := s.findByGame(gameID)
	if entry == nil {
		return nil, false, nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	g := entry.session.Game()
	if err := fn(g); err != nil {
		return nil, true, err
	}
	if err := s.games.Save(ctx, g); err != nil {
		return nil, true, err
	}
	return g.Clone(), true, nil
}

// Forget drops every session bound to gameID without touching the lease. It
// waits for in-flight operations on those sessions, which write nothing once
// Forget returns.
func (s *TrackingService) Forget(ctx context.Context, gameID string) {
	var dropped []*trackingEntry

	s.mu.Lock()
	for id, entry := range s.sessions {
		if entry.session.Game().ID == gameID {
			delete(s.sessions, id)
			dropped = append(dropped, entry)
			s.logger.InfoContext(ctx, "tracking session dropped", "session_id", id, "game_id", gameID)
		}
	}
	s.mu.Unlock()

	for _, entry := range dropped {
		entry.mu.Lock()
		entry.session.detach()
		entry.mu.Unlock()
	}
}

func (s *TrackingService) findByGame(gameID string) *trackingEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.sessions {
		if entry.session.Game().ID == gameID {
			return entry
		}
	}
	return nil
}

func (s *TrackingService) apply(
	ctx context.Context,
	spanName string,
	sessionID string,
	userID string,
	fn func(ctx context.Context, ts *TrackingSession) bool,
) (SessionView, error) {
	ctx, span := startUsecaseSpan(ctx, spanName)
	defer span.End()

	entry, err := s.entry(sessionID, userID)
	if err != nil {
		return SessionView{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	ts := entry.session
	if !fn(ctx, ts) {
		if s.locks.IsLockedByOther(ts.Game(), ts.UserID()) {
			return snapshot(ts), ErrEditLocked
		}
		return snapshot(ts), fmt.Errorf("%w: operation not applied", ErrConflict)
	}
	return snapshot(ts), nil
}

func (s *TrackingService) entry(sessionID, userID string) (*trackingEntry, error) {
	s.mu.Lock()
	entry, ok := s.sessions[strings.TrimSpace(sessionID)]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: session=%s", ErrNotFound, sessionID)
	}
	if entry.session.UserID() != userID {
		return nil, fmt.Errorf("%w: session belongs to another user", ErrForbidden)
	}
	return entry, nil
}

func snapshot(ts *TrackingSession) SessionView {
	return SessionView{
		SessionID:   ts.ID(),
		UserID:      ts.UserID(),
		PersonID:    ts.SelectedPlayer(),
		PendingUndo: ts.PendingUndo(),
		Game:        ts.Game().Clone(),
	}
}
