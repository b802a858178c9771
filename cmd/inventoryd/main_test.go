package main

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/inventory/bootstrap"
	"github.com/kbukum/inventory/config"
	"github.com/kbukum/inventory/discovery"
	"github.com/kbukum/inventory/logger"
	"github.com/kbukum/inventory/security"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Name != serviceName {
		t.Errorf("expected name %s, got %s", serviceName, cfg.Name)
	}
	if cfg.Discovery.Provider != "static" {
		t.Errorf("expected static provider, got %s", cfg.Discovery.Provider)
	}
	if cfg.Remote.Retry == nil || cfg.Remote.Retry.MaxAttempts != 3 {
		t.Errorf("expected default remote retry, got %+v", cfg.Remote.Retry)
	}
	if cfg.Discovery.ProviderConfig() != nil {
		t.Errorf("expected no backend section for static, got %v", cfg.Discovery.ProviderConfig())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown provider", func(c *Config) {
			c.Discovery.Enabled = true
			c.Discovery.Provider = "etcd"
		}},
		{"consul tls over http", func(c *Config) {
			c.Discovery.Enabled = true
			c.Discovery.Provider = "consul"
			c.Discovery.Consul.Services = []string{"inventory-provider"}
			c.Discovery.Consul.TLS = &security.TLSConfig{Enabled: true}
		}},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad environment", func(c *Config) { c.Environment = "moon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			tt.modify(cfg)
			cfg.ApplyDefaults()
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestConfig_LoadBundledFile(t *testing.T) {
	t.Setenv("INVENTORY_SERVER_PORT", "9191")

	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, config.WithConfigFile("config.yml"), config.WithEnvPrefix(envPrefix)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected bundled config to validate, got %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("expected env override port 9191, got %d", cfg.Server.Port)
	}
	if len(cfg.Discovery.Static) != 2 {
		t.Fatalf("expected 2 static printers, got %d", len(cfg.Discovery.Static))
	}
	if cfg.Discovery.Static[1].Ranking != 10 || cfg.Discovery.Static[1].Kind != "build" {
		t.Errorf("unexpected build printer %+v", cfg.Discovery.Static[1])
	}
	if cfg.Remote.Timeout != 5*time.Second {
		t.Errorf("expected remote timeout 5s, got %v", cfg.Remote.Timeout)
	}
	if cfg.Remote.Retry.InitialBackoff != 200*time.Millisecond {
		t.Errorf("expected initial backoff 200ms, got %v", cfg.Remote.Retry.InitialBackoff)
	}
	if cfg.Discovery.Consul.Address != "localhost:8500" {
		t.Errorf("expected consul address, got %q", cfg.Discovery.Consul.Address)
	}
}

func TestConfig_LoadMissingFile(t *testing.T) {
	cfg := &Config{}
	err := config.LoadConfig(serviceName, cfg, config.WithConfigFile(filepath.Join(t.TempDir(), "absent.yml")))
	if err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestRun_Flags(t *testing.T) {
	stdout := os.Stdout
	devnull, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatal(err)
	}
	defer devnull.Close()
	os.Stdout = devnull
	defer func() { os.Stdout = stdout }()

	if err := run([]string{"--version"}); err != nil {
		t.Errorf("expected --version to succeed, got %v", err)
	}
	if err := run([]string{"--no-such-flag"}); err == nil {
		t.Error("expected unknown flag to fail")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestDaemon_ServesStaticPrinters(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	cfg.Discovery.Enabled = true
	cfg.Discovery.Static = []discovery.StaticPrinter{
		{Name: "runtime", Title: "Go Runtime", Formats: []string{"text", "json"}, Kind: "runtime"},
		{Name: "build", Title: "Build", Formats: []string{"text", "json"}, Kind: "build"},
		{Name: "broken", Title: "Broken", Formats: []string{"text"}, Kind: "heap"},
	}

	d, err := buildApp(cfg, bootstrap.WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("buildApp failed: %v", err)
	}
	ctx := context.Background()
	if err := d.app.Components.StartAll(ctx); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	defer func() {
		if err := d.app.Shutdown(); err != nil {
			t.Errorf("Shutdown failed: %v", err)
		}
		if n := len(d.registry.AllActive()); n != 0 {
			t.Errorf("expected empty registry after shutdown, got %d", n)
		}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for len(d.registry.AllActive()) < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	base := "http://" + d.server.Addr()
	var list struct {
		Data []struct {
			Name  string   `json:"name"`
			Modes []string `json:"modes"`
		} `json:"data"`
	}
	getJSON(t, base+"/inventory", &list)
	if len(list.Data) != 2 || list.Data[0].Name != "build" || list.Data[1].Name != "runtime" {
		t.Fatalf("expected build and runtime printers, got %+v", list.Data)
	}

	var info map[string]any
	getJSON(t, base+"/inventory/printers/build?mode=json", &info)
	if info["version"] != "dev" {
		t.Errorf("expected build printer output, got %v", info)
	}

	var health map[string]any
	getJSON(t, base+"/health", &health)
	if health["status"] != "healthy" {
		t.Errorf("expected healthy daemon, got %v", health["status"])
	}
}

func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: expected 200, got %d: %s", url, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("GET %s: invalid JSON %q: %v", url, body, err)
	}
}
