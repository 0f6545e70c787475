package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/box-league/internal/config"
	"github.com/riskibarqy/box-league/internal/platform/logging"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:           config.EnvDev,
		ServiceName:      "box-league-api",
		HTTPAddr:         ":0",
		StorageDriver:    config.StorageMemory,
		CacheEnabled:     true,
		CacheTTL:         time.Minute,
		SwaggerEnabled:   true,
		InternalJobToken: "job-secret",
		JobMaxWorkers:    2,
	}
}

func TestNew_MemoryStorageServesLeagues(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	defer a.Close()

	for _, path := range []string{"/healthz", "/v1/leagues", "/openapi.yaml"} {
		rec := httptest.NewRecorder()
		a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: status %d body %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestNew_RequiresAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = ""
	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}

func TestNewRatingPublisher_DisabledIsNilInterface(t *testing.T) {
	if pub := newRatingPublisher(config.Config{}, logging.NewNop()); pub != nil {
		t.Fatalf("expected nil publisher when rating sync is disabled, got %T", pub)
	}
	cfg := config.Config{RatingSyncEnabled: true, RatingSyncBaseURL: "https://ratings.example.com"}
	if pub := newRatingPublisher(cfg, logging.NewNop()); pub == nil {
		t.Fatalf("expected publisher when rating sync is enabled")
	}
}

func TestRequestBodyTraceBytes(t *testing.T) {
	cfg := config.Config{UptraceCaptureRequestBody: true, UptraceRequestBodyMaxBytes: 2048}
	if got := requestBodyTraceBytes(cfg); got != 0 {
		t.Fatalf("expected capture off without uptrace, got %d", got)
	}
	cfg.UptraceEnabled = true
	if got := requestBodyTraceBytes(cfg); got != 2048 {
		t.Fatalf("expected 2048, got %d", got)
	}
}
