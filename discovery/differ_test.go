package discovery

import (
	"testing"

	"github.com/kbukum/inventory/registry"
)

func TestDiffer(t *testing.T) {
	d := NewDiffer()

	first := d.Diff([]ServiceInstance{
		{ID: "b", Address: "10.0.0.2", Port: 80, Metadata: map[string]string{"printer_name": "b"}},
		{ID: "a", Address: "10.0.0.1", Port: 80, Metadata: map[string]string{"printer_name": "a"}},
	})
	if len(first) != 2 || first[0].Key != "a" || first[1].Key != "b" {
		t.Fatalf("expected added a then b, got %v", first)
	}
	for _, ev := range first {
		if ev.Type != Added {
			t.Errorf("expected added, got %s", ev.Type)
		}
	}
	if first[0].Metadata[registry.KeyName] != "a" || first[0].Endpoint != "10.0.0.1:80" {
		t.Errorf("unexpected event %+v", first[0])
	}

	if same := d.Diff([]ServiceInstance{
		{ID: "a", Address: "10.0.0.1", Port: 80, Metadata: map[string]string{"printer_name": "a"}},
		{ID: "b", Address: "10.0.0.2", Port: 80, Metadata: map[string]string{"printer_name": "b"}},
	}); len(same) != 0 {
		t.Errorf("expected no events for identical snapshot, got %v", same)
	}

	next := d.Diff([]ServiceInstance{
		{ID: "b", Address: "10.0.0.2", Port: 81, Metadata: map[string]string{"printer_name": "b"}},
		{ID: "c", Address: "10.0.0.3", Metadata: map[string]string{"printer_name": "c"}},
	})
	want := []struct {
		t   EventType
		key string
	}{{Removed, "a"}, {Modified, "b"}, {Added, "c"}}
	if len(next) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), next)
	}
	for i, w := range want {
		if next[i].Type != w.t || next[i].Key != w.key {
			t.Errorf("event %d: expected %s %s, got %s %s", i, w.t, w.key, next[i].Type, next[i].Key)
		}
	}
	if next[2].Endpoint != "10.0.0.3" {
		t.Errorf("expected bare address endpoint, got %q", next[2].Endpoint)
	}
}

func TestMetadataFromStrings(t *testing.T) {
	m := MetadataFromStrings(map[string]string{
		"printer_format":         "text",
		"service_ranking":        "4",
		"inventory.printer.name": "direct",
		"other":                  "kept",
	})
	if m[registry.KeyFormat] != "text" || m[registry.KeyRanking] != "4" {
		t.Errorf("expected aliases translated, got %v", m)
	}
	if m[registry.KeyName] != "direct" || m["other"] != "kept" {
		t.Errorf("expected other keys kept, got %v", m)
	}
}

func TestIdentities(t *testing.T) {
	ids := NewIdentities()
	a := ids.Next()
	b := ids.Next()
	if a == 0 || b <= a {
		t.Fatalf("expected increasing non-zero identities, got %d %d", a, b)
	}
	ids.Bind("k", a)
	if got, ok := ids.Lookup("k"); !ok || got != a {
		t.Errorf("expected %d, got %d %v", a, got, ok)
	}
	ids.Forget("k")
	if _, ok := ids.Lookup("k"); ok {
		t.Error("expected key to be forgotten")
	}
	if c := ids.Next(); c <= b {
		t.Errorf("expected identities never reused, got %d after %d", c, b)
	}
}

func TestConfig(t *testing.T) {
	cfg := Config{Enabled: true, Static: []StaticPrinter{{Name: "runtime"}, {Name: "runtime"}}}
	cfg.ApplyDefaults()
	if cfg.Provider != "static" || cfg.Static[0].Key != "runtime" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected duplicate key error")
	}

	cfg.Static = cfg.Static[:1]
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
	cfg.Provider = "zookeeper"
	if err := cfg.Validate(); err == nil {
		t.Error("expected unsupported provider error")
	}
}

func TestStaticPrinterMetadata(t *testing.T) {
	p := StaticPrinter{Name: "runtime", Title: "Runtime", Formats: []string{"text", "json"}, Ranking: 2, Kind: "runtime"}
	d, err := registry.Validate(1, p.Metadata(), testPrinter)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if d.Rank != 2 || len(d.Capabilities) != 2 {
		t.Errorf("unexpected descriptor %+v", d)
	}
	if p.Metadata()[KeyKind] != "runtime" {
		t.Error("expected kind in metadata")
	}
}
