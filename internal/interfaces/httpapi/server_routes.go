package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerGameRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/games", RequireAuth(verifier, http.HandlerFunc(handler.CreateGame)))
	mux.Handle("GET /v1/games", RequireAuth(verifier, http.HandlerFunc(handler.ListGames)))
	mux.Handle("GET /v1/games/{gameID}", RequireAuth(verifier, http.HandlerFunc(handler.GetGame)))
	mux.Handle("PATCH /v1/games/{gameID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateGame)))
	mux.Handle("DELETE /v1/games/{gameID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteGame)))
	mux.Handle("POST /v1/games/{gameID}/complete", RequireAuth(verifier, http.HandlerFunc(handler.CompleteGame)))
	mux.Handle("POST /v1/games/{gameID}/players", RequireAuth(verifier, http.HandlerFunc(handler.AddPlayer)))
	mux.Handle("POST /v1/games/{gameID}/stats/adjust", RequireAuth(verifier, http.HandlerFunc(handler.AdjustStat)))
	mux.Handle("PUT /v1/games/{gameID}/players/{personID}/shifts/{number}", RequireAuth(verifier, http.HandlerFunc(handler.EditShift)))
}

func registerLockRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/games/{gameID}/lock", RequireAuth(verifier, http.HandlerFunc(handler.GetLock)))
	mux.Handle("POST /v1/games/{gameID}/lock", RequireAuth(verifier, http.HandlerFunc(handler.AcquireLock)))
	mux.Handle("DELETE /v1/games/{gameID}/lock", RequireAuth(verifier, http.HandlerFunc(handler.ReleaseLock)))
	mux.Handle("POST /v1/games/{gameID}/lock/refresh", RequireAuth(verifier, http.HandlerFunc(handler.RefreshLock)))
}

func registerSessionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/games/{gameID}/sessions", RequireAuth(verifier, http.HandlerFunc(handler.OpenSession)))
	mux.Handle("GET /v1/sessions/{sessionID}", RequireAuth(verifier, http.HandlerFunc(handler.GetSession)))
	mux.Handle("DELETE /v1/sessions/{sessionID}", RequireAuth(verifier, http.HandlerFunc(handler.CloseSession)))
	mux.Handle("POST /v1/sessions/{sessionID}/made", RequireAuth(verifier, http.HandlerFunc(handler.RecordMade)))
	mux.Handle("POST /v1/sessions/{sessionID}/miss", RequireAuth(verifier, http.HandlerFunc(handler.RecordMiss)))
	mux.Handle("POST /v1/sessions/{sessionID}/count", RequireAuth(verifier, http.HandlerFunc(handler.RecordCount)))
	mux.Handle("POST /v1/sessions/{sessionID}/undo", RequireAuth(verifier, http.HandlerFunc(handler.Undo)))
	mux.Handle("POST /v1/sessions/{sessionID}/player", RequireAuth(verifier, http.HandlerFunc(handler.SelectPlayer)))
	mux.Handle("POST /v1/sessions/{sessionID}/shifts/start", RequireAuth(verifier, http.HandlerFunc(handler.StartShift)))
	mux.Handle("POST /v1/sessions/{sessionID}/shifts/end", RequireAuth(verifier, http.HandlerFunc(handler.EndShift)))
	mux.Handle("PUT /v1/sessions/{sessionID}/score", RequireAuth(verifier, http.HandlerFunc(handler.SetScore)))
}

func registerStatsRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/people/{personID}/season", RequireAuth(verifier, http.HandlerFunc(handler.GetPlayerSeason)))
	mux.Handle("GET /v1/achievements", RequireAuth(verifier, http.HandlerFunc(handler.GetAchievements)))
	mux.Handle("POST /v1/achievements/streak", RequireAuth(verifier, http.HandlerFunc(handler.RecordStreak)))
}
