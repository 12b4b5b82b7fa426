package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/statline/internal/config"
	"github.com/riskibarqy/statline/internal/platform/logging"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:             config.EnvDev,
		HTTPAddr:           ":0",
		ReadTimeout:        time.Second,
		WriteTimeout:       time.Second,
		DBDriver:           config.DBDriverMemory,
		CacheEnabled:       true,
		CacheTTL:           time.Minute,
		EditLockLease:      4 * time.Hour,
		AuthJWTSecret:      "test-secret",
		AuthJWTIssuer:      "statline",
		CORSAllowedOrigins: []string{"*"},
		RollupWorkers:      2,
	}
}

func TestNewHTTPServer_Memory(t *testing.T) {
	srv, err := NewHTTPServer(t.Context(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("build server: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })

	rec := httptest.NewRecorder()
	srv.HTTP.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.HTTP.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/games", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestNewHTTPServer_RequiresAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = ""
	if _, err := NewHTTPServer(t.Context(), cfg, nil); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
