package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/statline/internal/domain/user"
	"github.com/riskibarqy/statline/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/statline/internal/platform/cache"
	"github.com/riskibarqy/statline/internal/platform/id"
	"github.com/riskibarqy/statline/internal/platform/logging"
	"github.com/riskibarqy/statline/internal/usecase"
)

type staticVerifier map[string]string

func (v staticVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	userID, ok := v[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return user.Principal{UserID: userID}, nil
}

func newTestRouter() http.Handler {
	logger := logging.NewNop()
	ids := &id.Sequence{Prefix: "id-"}

	games := usecase.NewGameStore(memory.NewGameRepository())
	locks := usecase.NewLockService(games, 4*time.Hour, logger)
	achievements := usecase.NewAchievementService(nil, memory.NewAchievementRepository(), games, logger)
	gameService := usecase.NewGameService(games, locks, achievements, ids, logger)
	tracking := usecase.NewTrackingService(games, locks, ids, logger)
	season := usecase.NewSeasonService(games, basecache.NewStore(time.Minute), 2, logger)

	handler := NewHandler(gameService, locks, tracking, achievements, season, logger)
	verifier := staticVerifier{"token-coach": "coach", "token-other": "other"}
	return NewRouter(handler, verifier, logger, nil)
}

func call(t *testing.T, router http.Handler, method, path, token, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("%s %s: unmarshal response %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, envelope
}

func dataOf(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", envelope)
	}
	return data
}

func totalPoints(t *testing.T, envelope map[string]any) float64 {
	t.Helper()
	summary, _ := dataOf(t, envelope)["summary"].(map[string]any)
	g, _ := summary["game"].(map[string]any)
	points, ok := g["total_points"].(float64)
	if !ok {
		t.Fatalf("expected summary.game.total_points, got %v", summary)
	}
	return points
}

func TestRouter_TrackingSessionFlow(t *testing.T) {
	router := newTestRouter()

	code, body := call(t, router, http.MethodPost, "/v1/games", "token-coach", `{"opponent":"Falcons"}`)
	if code != http.StatusCreated {
		t.Fatalf("create game: expected 201, got %d %v", code, body)
	}
	gameID, _ := dataOf(t, body)["id"].(string)

	code, body = call(t, router, http.MethodPost, "/v1/games/"+gameID+"/players", "token-coach", `{"person_id":"jack","person_name":"Jack"}`)
	if code != http.StatusCreated {
		t.Fatalf("add player: expected 201, got %d %v", code, body)
	}

	code, body = call(t, router, http.MethodPost, "/v1/games/"+gameID+"/sessions", "token-coach", "")
	if code != http.StatusCreated {
		t.Fatalf("open session: expected 201, got %d %v", code, body)
	}
	sessionID, _ := dataOf(t, body)["session_id"].(string)
	base := "/v1/sessions/" + sessionID

	code, body = call(t, router, http.MethodPost, "/v1/games/"+gameID+"/sessions", "token-other", "")
	if code != http.StatusConflict {
		t.Fatalf("second editor: expected 409, got %d %v", code, body)
	}
	if applied, _ := dataOf(t, body)["applied"].(bool); applied {
		t.Fatalf("expected applied=false for rejected open")
	}

	if code, body = call(t, router, http.MethodPost, base+"/player", "token-coach", `{"person_id":"jack"}`); code != http.StatusOK {
		t.Fatalf("select player: expected 200, got %d %v", code, body)
	}

	code, body = call(t, router, http.MethodPost, base+"/made", "token-coach", `{"stat":"2PT","point_value":2}`)
	if code != http.StatusOK {
		t.Fatalf("record made: expected 200, got %d %v", code, body)
	}
	if got := totalPoints(t, body); got != 2 {
		t.Fatalf("expected 2 points after made shot, got %v", got)
	}
	if _, ok := dataOf(t, body)["pending_undo"].(map[string]any); !ok {
		t.Fatalf("expected pending undo after a record")
	}

	code, body = call(t, router, http.MethodPost, base+"/undo", "token-coach", "")
	if code != http.StatusOK {
		t.Fatalf("undo: expected 200, got %d %v", code, body)
	}
	if got := totalPoints(t, body); got != 0 {
		t.Fatalf("expected undo to remove the points, got %v", got)
	}
	if _, ok := dataOf(t, body)["pending_undo"]; ok {
		t.Fatalf("expected pending undo consumed")
	}

	if code, _ = call(t, router, http.MethodPost, base+"/undo", "token-coach", ""); code != http.StatusConflict {
		t.Fatalf("second undo: expected 409, got %d", code)
	}
	if code, _ = call(t, router, http.MethodPost, base+"/made", "token-other", `{"stat":"2PT","point_value":2}`); code != http.StatusForbidden {
		t.Fatalf("foreign session: expected 403, got %d", code)
	}

	if code, body = call(t, router, http.MethodDelete, base, "token-coach", ""); code != http.StatusOK {
		t.Fatalf("close session: expected 200, got %d %v", code, body)
	}

	code, body = call(t, router, http.MethodPost, "/v1/games/"+gameID+"/lock", "token-other", "")
	if code != http.StatusOK {
		t.Fatalf("acquire after close: expected 200, got %d %v", code, body)
	}
	if holder, _ := dataOf(t, body)["holder"].(string); holder != "other" {
		t.Fatalf("expected other to hold the lock, got %q", holder)
	}

	code, body = call(t, router, http.MethodGet, "/v1/games/"+gameID+"/lock", "token-coach", "")
	if code != http.StatusOK {
		t.Fatalf("lock status: expected 200, got %d %v", code, body)
	}
	if locked, _ := dataOf(t, body)["is_locked_by_other"].(bool); !locked {
		t.Fatalf("expected coach to see the game locked by other: %v", body)
	}
}

func TestRouter_RejectsBadRequests(t *testing.T) {
	router := newTestRouter()

	if code, _ := call(t, router, http.MethodGet, "/v1/games", "", ""); code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", code)
	}
	if code, _ := call(t, router, http.MethodGet, "/v1/games", "token-nobody", ""); code != http.StatusUnauthorized {
		t.Fatalf("unknown token: expected 401, got %d", code)
	}
	if code, _ := call(t, router, http.MethodPost, "/v1/games", "token-coach", `{"opponent":"x","unknown":1}`); code != http.StatusBadRequest {
		t.Fatalf("unknown field: expected 400, got %d", code)
	}
	if code, _ := call(t, router, http.MethodGet, "/v1/games/missing", "token-coach", ""); code != http.StatusNotFound {
		t.Fatalf("missing game: expected 404, got %d", code)
	}
	if code, _ := call(t, router, http.MethodGet, "/v1/people/jack/season?from=yesterday", "token-coach", ""); code != http.StatusBadRequest {
		t.Fatalf("bad date: expected 400, got %d", code)
	}

	_, body := call(t, router, http.MethodPost, "/v1/games", "token-coach", "")
	gameID, _ := dataOf(t, body)["id"].(string)
	code, _ := call(t, router, http.MethodPost, "/v1/games/"+gameID+"/stats/adjust", "token-coach", `{"stat":"2PT","field":"bogus","delta":1}`)
	if code != http.StatusBadRequest {
		t.Fatalf("bad field: expected 400, got %d", code)
	}
	code, _ = call(t, router, http.MethodPut, "/v1/games/"+gameID+"/players/jack/shifts/abc", "token-coach", `{}`)
	if code != http.StatusBadRequest {
		t.Fatalf("bad shift number: expected 400, got %d", code)
	}
	if code, _ = call(t, router, http.MethodDelete, "/v1/games/"+gameID, "token-other", ""); code != http.StatusForbidden {
		t.Fatalf("delete by non-owner: expected 403, got %d", code)
	}
}

func TestRouter_CompleteAndSeason(t *testing.T) {
	router := newTestRouter()

	_, body := call(t, router, http.MethodPost, "/v1/games", "token-coach", `{"date":"2026-05-02T18:00:00Z"}`)
	gameID, _ := dataOf(t, body)["id"].(string)
	call(t, router, http.MethodPost, "/v1/games/"+gameID+"/players", "token-coach", `{"person_id":"jack"}`)

	code, body := call(t, router, http.MethodPost, "/v1/games/"+gameID+"/stats/adjust", "token-coach",
		`{"person_id":"jack","stat":"2PT","point_value":2,"field":"made","delta":6}`)
	if code != http.StatusOK {
		t.Fatalf("adjust: expected 200, got %d %v", code, body)
	}

	code, body = call(t, router, http.MethodPost, "/v1/games/"+gameID+"/complete", "token-coach", "")
	if code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d %v", code, body)
	}
	unlocked, _ := dataOf(t, body)["unlocked"].([]any)
	if len(unlocked) != 2 {
		t.Fatalf("expected first_game and points_10 unlocked, got %v", unlocked)
	}

	if code, _ = call(t, router, http.MethodPost, "/v1/games/"+gameID+"/sessions", "token-coach", ""); code != http.StatusConflict {
		t.Fatalf("session on completed game: expected 409, got %d", code)
	}

	code, body = call(t, router, http.MethodGet, "/v1/people/jack/season?stat=PTS&completed=true&to=2026-05-02", "token-coach", "")
	if code != http.StatusOK {
		t.Fatalf("season: expected 200, got %d %v", code, body)
	}
	season := dataOf(t, body)
	if season["total"] != float64(12) || season["games_played"] != float64(1) {
		t.Fatalf("unexpected season rollup: %v", season)
	}

	code, body = call(t, router, http.MethodGet, "/v1/achievements", "token-coach", "")
	if code != http.StatusOK {
		t.Fatalf("achievements: expected 200, got %d %v", code, body)
	}
	if total := dataOf(t, body)["total_points"]; total != float64(25) {
		t.Fatalf("expected 25 achievement points, got %v", total)
	}
}
