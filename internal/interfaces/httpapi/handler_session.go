package httpapi

import (
	"context"
	"net/http"

	"github.com/riskibarqy/statline/internal/domain/game"
	"github.com/riskibarqy/statline/internal/domain/user"
	"github.com/riskibarqy/statline/internal/usecase"
)

type sessionAction func(ctx context.Context, principal user.Principal, sessionID string) (usecase.SessionView, error)

func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.OpenSession")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	gameID := r.PathValue("gameID")
	view, err := h.trackingService.Open(ctx, gameID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "open tracking session failed", "game_id", gameID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, sessionToDTO(view, h.now()))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSession")
	defer span.End()

	h.runSession(ctx, w, r, "get", func(ctx context.Context, p user.Principal, sessionID string) (usecase.SessionView, error) {
		return h.trackingService.Get(ctx, sessionID, p.UserID)
	})
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CloseSession")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	sessionID := r.PathValue("sessionID")
	if err := h.trackingService.Close(ctx, sessionID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "close tracking session failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"session_id": sessionID})
}

func (h *Handler) RecordMade(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordMade")
	defer span.End()

	var req recordStatRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.runSession(ctx, w, r, "made", func(ctx context.Context, p user.Principal, sessionID string) (usecase.SessionView, error) {
		return h.trackingService.RecordMade(ctx, sessionID, p.UserID, req.StatName, req.PointValue)
	})
}

func (h *Handler) RecordMiss(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordMiss")
	defer span.End()

	var req recordStatRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.runSession(ctx, w, r, "miss", func(ctx context.Context, p user.Principal, sessionID string) (usecase.SessionView, error) {
		return h.trackingService.RecordMiss(ctx, sessionID, p.UserID, req.StatName, req.PointValue)
	})
}

func (h *Handler) RecordCount(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordCount")
	defer span.End()

	var req recordCountRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.runSession(ctx, w, r, "count", func(ctx context.Context, p user.Principal, sessionID string) (usecase.SessionView, error) {
		return h.trackingService.RecordCount(ctx, sessionID, p.UserID, req.StatName)
	})
}

func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Undo")
	defer span.End()

	h.runSession(ctx, w, r, "undo", func(ctx context.Context, p user.Principal, sessionID string) (usecase.SessionView, error) {
		return h.trackingService.Undo(ctx, sessionID, p.UserID)
	})
}

func (h *Handler) SelectPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SelectPlayer")
	defer span.End()

	var req selectPlayerRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.runSession(ctx, w, r, "select player", func(ctx context.Context, p user.Principal, sessionID string) (usecase.SessionView, error) {
		return h.trackingService.SelectPlayer(ctx, sessionID, p.UserID, req.PersonID)
	})
}

func (h *Handler) StartShift(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartShift")
	defer span.End()

	var req shiftScoreRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.runSession(ctx, w, r, "start shift", func(ctx context.Context, p user.Principal, sessionID string) (usecase.SessionView, error) {
		return h.trackingService.StartShift(ctx, sessionID, p.UserID, req.score())
	})
}

func (h *Handler) EndShift(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EndShift")
	defer span.End()

	var req shiftScoreRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.runSession(ctx, w, r, "end shift", func(ctx context.Context, p user.Principal, sessionID string) (usecase.SessionView, error) {
		return h.trackingService.EndShift(ctx, sessionID, p.UserID, req.score())
	})
}

func (h *Handler) SetScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetScore")
	defer span.End()

	var req scoreRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.runSession(ctx, w, r, "set score", func(ctx context.Context, p user.Principal, sessionID string) (usecase.SessionView, error) {
		return h.trackingService.SetScore(ctx, sessionID, p.UserID, game.Score{Team: req.Team, Opponent: req.Opponent})
	})
}

func (h *Handler) runSession(ctx context.Context, w http.ResponseWriter, r *http.Request, op string, action sessionAction) {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	sessionID := r.PathValue("sessionID")
	view, err := action(ctx, principal, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "tracking session "+op+" failed", "session_id", sessionID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(view, h.now()))
}

func (r shiftScoreRequest) score() *game.Score {
	if r.Score == nil {
		return nil
	}
	return &game.Score{Team: r.Score.Team, Opponent: r.Score.Opponent}
}
