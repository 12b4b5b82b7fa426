package httpapi

import (
	"net/http"

	"github.com/riskibarqy/statline/internal/domain/game"
	"github.com/riskibarqy/statline/internal/domain/stat"
	"github.com/riskibarqy/statline/internal/usecase"
)

func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateGame")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createGameRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.CreateGameInput{
		OwnerID:  principal.UserID,
		Opponent: req.Opponent,
		Location: req.Location,
		Notes:    req.Notes,
		SportID:  req.SportID,
		TeamID:   req.TeamID,
	}
	if req.Date != nil {
		input.Date = *req.Date
	}

	g, err := h.gameService.Create(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "create game failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, gameToDTO(g))
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	games, err := h.gameService.List(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list games failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(games))
	for _, g := range games {
		items = append(items, gameToDTO(g))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGame")
	defer span.End()

	summary, err := h.gameService.Summary(ctx, r.PathValue("gameID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summaryToDTO(summary))
}

func (h *Handler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateGame")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateGameRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	gameID := r.PathValue("gameID")
	g, err := h.gameService.Update(ctx, usecase.UpdateGameInput{
		GameID:        gameID,
		UserID:        principal.UserID,
		Date:          req.Date,
		Opponent:      req.Opponent,
		Location:      req.Location,
		Notes:         req.Notes,
		TeamScore:     req.TeamScore,
		OpponentScore: req.OpponentScore,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update game failed", "game_id", gameID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(g))
}

func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteGame")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	gameID := r.PathValue("gameID")
	if err := h.gameService.Delete(ctx, gameID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "delete game failed", "game_id", gameID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": gameID})
}

func (h *Handler) CompleteGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompleteGame")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	gameID := r.PathValue("gameID")
	result, err := h.gameService.Complete(ctx, gameID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "complete game failed", "game_id", gameID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, completeGameDTO{
		Game:     gameToDTO(result.Game),
		Unlocked: rulesToDTO(result.Unlocked, nil),
	})
}

func (h *Handler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddPlayer")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req addPlayerRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	gameID := r.PathValue("gameID")
	g, err := h.gameService.AddPlayer(ctx, usecase.AddPlayerInput{
		GameID:     gameID,
		UserID:     principal.UserID,
		PersonID:   req.PersonID,
		PersonName: req.PersonName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add player failed", "game_id", gameID, "person_id", req.PersonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, summaryToDTO(usecase.BuildGameSummary(g, h.now())))
}

func (h *Handler) AdjustStat(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdjustStat")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req adjustStatRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	field, err := stat.ParseField(req.Field)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	gameID := r.PathValue("gameID")
	g, err := h.gameService.AdjustStat(ctx, usecase.AdjustStatInput{
		GameID:      gameID,
		UserID:      principal.UserID,
		PersonID:    req.PersonID,
		ShiftNumber: req.ShiftNumber,
		StatName:    req.StatName,
		PointValue:  req.PointValue,
		Field:       field,
		Delta:       req.Delta,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "adjust stat failed", "game_id", gameID, "stat", req.StatName, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summaryToDTO(usecase.BuildGameSummary(g, h.now())))
}

func (h *Handler) EditShift(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EditShift")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	number, err := pathInt(r, "number")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req editShiftRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	gameID := r.PathValue("gameID")
	g, err := h.gameService.EditShift(ctx, usecase.EditShiftInput{
		GameID:   gameID,
		UserID:   principal.UserID,
		PersonID: r.PathValue("personID"),
		Number:   number,
		Edit: game.ShiftEdit{
			StartTime:             req.StartTime,
			EndTime:               req.EndTime,
			StartingTeamScore:     req.StartingTeamScore,
			StartingOpponentScore: req.StartingOpponentScore,
			EndingTeamScore:       req.EndingTeamScore,
			EndingOpponentScore:   req.EndingOpponentScore,
		},
	})
	if err != nil {
		h.logger.WarnContext(ctx, "edit shift failed", "game_id", gameID, "number", number, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summaryToDTO(usecase.BuildGameSummary(g, h.now())))
}
