package httpapi

import (
	"context"
	"net/http"

	"github.com/riskibarqy/statline/internal/usecase"
)

func (h *Handler) GetLock(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLock")
	defer span.End()

	h.lockAction(ctx, w, r, "read", h.lockService.GameStatus)
}

func (h *Handler) AcquireLock(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AcquireLock")
	defer span.End()

	h.lockAction(ctx, w, r, "acquire", h.lockService.AcquireGame)
}

func (h *Handler) ReleaseLock(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReleaseLock")
	defer span.End()

	h.lockAction(ctx, w, r, "release", h.lockService.ReleaseGame)
}

func (h *Handler) RefreshLock(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshLock")
	defer span.End()

	h.lockAction(ctx, w, r, "refresh", h.lockService.RefreshGame)
}

func (h *Handler) lockAction(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	op string,
	action func(ctx context.Context, gameID, userID string) (usecase.LockStatus, error),
) {
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	gameID := r.PathValue("gameID")
	status, err := action(ctx, gameID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "edit lock "+op+" failed", "game_id", gameID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lockStatusToDTO(status))
}
