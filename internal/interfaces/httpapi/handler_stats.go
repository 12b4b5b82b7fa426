package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/statline/internal/usecase"
)

const queryDateLayout = "2006-01-02"

func (h *Handler) GetPlayerSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerSeason")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	query, err := parseSeasonQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	query.OwnerID = principal.UserID

	season, err := h.seasonService.PlayerSeason(ctx, query)
	if err != nil {
		h.logger.WarnContext(ctx, "player season failed", "person_id", query.PersonID, "stat", query.StatName, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(season))
}

func (h *Handler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAchievements")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	ledger, err := h.achievementService.Ledger(ctx, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, achievementsDTO{
		UserID:       ledger.UserID,
		TotalPoints:  ledger.TotalPoints,
		Achievements: rulesToDTO(h.achievementService.Rules(), ledger),
	})
}

func (h *Handler) RecordStreak(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordStreak")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req streakRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	unlocked, err := h.achievementService.RecordStreak(ctx, principal.UserID, req.Streak)
	if err != nil {
		h.logger.WarnContext(ctx, "record streak failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rulesToDTO(unlocked, nil))
}

func parseSeasonQuery(r *http.Request) (usecase.SeasonQuery, error) {
	values := r.URL.Query()
	query := usecase.SeasonQuery{
		PersonID: r.PathValue("personID"),
		StatName: strings.TrimSpace(values.Get("stat")),
	}

	if raw := strings.TrimSpace(values.Get("completed")); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return usecase.SeasonQuery{}, fmt.Errorf("%w: completed must be a boolean", usecase.ErrInvalidInput)
		}
		query.CompletedOnly = completed
	}

	from, err := parseQueryDate(values.Get("from"))
	if err != nil {
		return usecase.SeasonQuery{}, err
	}
	to, err := parseQueryDate(values.Get("to"))
	if err != nil {
		return usecase.SeasonQuery{}, err
	}
	if to != nil {
		// inclusive of the whole "to" day
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	query.From = from
	query.To = to
	return query, nil
}

func parseQueryDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(queryDateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: dates must use YYYY-MM-DD", usecase.ErrInvalidInput)
	}
	return &t, nil
}
