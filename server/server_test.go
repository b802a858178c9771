package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/inventory/component"
	"github.com/kbukum/inventory/errors"
	"github.com/kbukum/inventory/logger"
	"github.com/kbukum/inventory/server"
)

func newServer(checker func(context.Context) []component.Health) *server.Server {
	cfg := server.Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0
	s := server.New(cfg, logger.NewNop())
	s.ApplyDefaults("inventoryd", checker)
	return s
}

func get(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("%s: invalid JSON %q: %v", path, rr.Body.String(), err)
	}
	return rr.Code, body
}

func TestConfig(t *testing.T) {
	var cfg server.Config
	cfg.ApplyDefaults()
	if cfg.Port != 8080 || cfg.ReadTimeout != 15 || cfg.WriteTimeout != 60 || cfg.IdleTimeout != 60 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}

	tests := []server.Config{
		{Port: 70000},
		{Port: 1, ReadTimeout: -1},
		{Port: 1, WriteTimeout: -1},
		{Port: 1, IdleTimeout: -1},
	}
	for _, c := range tests {
		if err := c.Validate(); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
			t.Errorf("expected INVALID_INPUT for %+v, got %v", c, err)
		}
	}
}

func TestDefaultEndpoints(t *testing.T) {
	status := component.StatusHealthy
	s := newServer(func(context.Context) []component.Health {
		return []component.Health{{Name: "registry", Status: status}}
	})

	tests := []struct {
		path       string
		wantStatus int
		field      string
		want       any
	}{
		{"/health", http.StatusOK, "status", "healthy"},
		{"/alive", http.StatusOK, "status", "alive"},
		{"/ready", http.StatusOK, "status", "ready"},
		{"/version", http.StatusOK, "version", "dev"},
		{"/version", http.StatusOK, "service", "inventoryd"},
	}
	for _, tt := range tests {
		code, body := get(t, s.Handler(), tt.path)
		if code != tt.wantStatus {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.wantStatus, code)
		}
		if body[tt.field] != tt.want {
			t.Errorf("%s: expected %s=%v, got %v", tt.path, tt.field, tt.want, body[tt.field])
		}
	}

	status = component.StatusUnhealthy
	if code, body := get(t, s.Handler(), "/health"); code != http.StatusServiceUnavailable || body["status"] != "unhealthy" {
		t.Errorf("expected 503 unhealthy, got %d %v", code, body["status"])
	}
	if code, body := get(t, s.Handler(), "/ready"); code != http.StatusServiceUnavailable || body["status"] != "not_ready" {
		t.Errorf("expected 503 not_ready, got %d %v", code, body["status"])
	}
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ok", func(c *gin.Context) { server.RespondOK(c, []string{"a"}) })
	r.GET("/app", func(c *gin.Context) { server.RespondWithError(c, errors.NotFound("printer", "x")) })
	r.GET("/plain", func(c *gin.Context) { server.RespondWithError(c, context.Canceled) })

	if code, body := get(t, r, "/ok"); code != http.StatusOK || body["data"] == nil {
		t.Errorf("expected data envelope, got %d %v", code, body)
	}

	code, body := get(t, r, "/app")
	if code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
	if e, _ := body["error"].(map[string]any); e["code"] != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %v", body)
	}

	code, body = get(t, r, "/plain")
	if code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", code)
	}
	if e, _ := body["error"].(map[string]any); e["code"] != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %v", body)
	}
}

func TestComponentLifecycle(t *testing.T) {
	s := newServer(nil)
	sc := server.NewComponent(s)
	ctx := context.Background()

	if h := sc.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := sc.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	resp, err := http.Get("http://" + s.Addr() + "/alive")
	if err != nil {
		t.Fatalf("GET /alive failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if h := sc.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy while serving, got %s", h.Status)
	}
	if d := sc.Describe(); d.Type != "server" {
		t.Errorf("expected server description, got %+v", d)
	}

	if err := sc.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if h := sc.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy after stop, got %s", h.Status)
	}
}
