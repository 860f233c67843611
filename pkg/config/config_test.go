package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv(TokenEnv, "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.TMDB.BaseURL != DefaultBaseURL || cfg.TMDB.Region != DefaultRegion {
		t.Fatalf("defaults not applied: %+v", cfg.TMDB)
	}
	if cfg.Web.Port != DefaultPort || cfg.Web.SessionTTL.Duration != DefaultSessionTTL {
		t.Fatalf("web defaults not applied: %+v", cfg.Web)
	}
	if !cfg.Enrich.IsEnabled() || cfg.Enrich.BatchSize != DefaultBatchSize {
		t.Fatalf("enrich defaults not applied: %+v", cfg.Enrich)
	}
	if !strings.HasSuffix(cfg.StorageDir, "cinegrid") {
		t.Fatalf("unexpected storage dir %s", cfg.StorageDir)
	}
	if err := cfg.RequireToken(); err != ErrMissingToken {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv(TokenEnv, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `storage_dir = "` + dir + `"

[tmdb]
access_token = "abc"
region = "es"
timeout = "3s"

[enrich]
enabled = false
batch_size = 4

[web]
port = 9090
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.StorageDir != dir || cfg.TMDB.AccessToken != "abc" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.TMDB.Region != "ES" {
		t.Errorf("expected region to be upper cased, got %s", cfg.TMDB.Region)
	}
	if cfg.TMDB.Timeout.Duration != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", cfg.TMDB.Timeout)
	}
	if cfg.Enrich.IsEnabled() || cfg.Enrich.BatchSize != 4 {
		t.Errorf("unexpected enrich config %+v", cfg.Enrich)
	}
	if cfg.Web.Addr() != "127.0.0.1:9090" {
		t.Errorf("unexpected addr %s", cfg.Web.Addr())
	}
}

func TestTokenFromEnvironment(t *testing.T) {
	t.Setenv(TokenEnv, " envtoken ")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("storage_dir = \""+dir+"\"\n[tmdb]\naccess_token = \"file\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TMDB.AccessToken != "envtoken" {
		t.Fatalf("expected env token, got %q", cfg.TMDB.AccessToken)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad base url", Config{TMDB: TMDBConfig{BaseURL: "ftp://x"}}},
		{"relative image url", Config{TMDB: TMDBConfig{ImageBaseURL: "/images"}}},
		{"long region", Config{TMDB: TMDBConfig{Region: "USA"}}},
		{"negative rps", Config{TMDB: TMDBConfig{RequestsPerSecond: -1}}},
		{"negative batch", Config{Enrich: EnrichConfig{BatchSize: -2}}},
		{"port", Config{Web: WebConfig{Port: 70000}}},
		{"negative ttl", Config{Web: WebConfig{SessionTTL: Duration{-time.Hour}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestSaveTemplateConfig(t *testing.T) {
	t.Setenv(TokenEnv, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.toml")
	cfg := &Config{StorageDir: filepath.Join(dir, "data")}
	if err := cfg.SaveTemplateConfig(path); err != nil {
		t.Fatalf("SaveTemplateConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), cfg.StorageDir) {
		t.Fatalf("template does not carry the storage dir:\n%s", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600, got %v", info.Mode().Perm())
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("template should load: %v", err)
	}
	if loaded.StorageDir != cfg.StorageDir || loaded.TMDB.RequestsPerSecond != 20 {
		t.Fatalf("unexpected loaded config %+v", loaded)
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatal(err)
	}
	if d.Duration != 90*time.Second {
		t.Fatalf("got %v", d.Duration)
	}
	out, _ := d.MarshalText()
	if string(out) != "1m30s" {
		t.Fatalf("got %s", out)
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Fatal("expected parse error")
	}
}
