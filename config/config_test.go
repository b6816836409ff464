package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEngineConfig_ApplyDefaults(t *testing.T) {
	cfg := EngineConfig{}
	cfg.ApplyDefaults()

	if cfg.Name != "parmap" {
		t.Errorf("expected default name 'parmap', got %s", cfg.Name)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected environment 'development', got %s", cfg.Environment)
	}
	if !cfg.Debug {
		t.Error("expected debug on in development")
	}
	if cfg.Telemetry.Endpoint != "localhost:4318" {
		t.Errorf("unexpected telemetry endpoint: %s", cfg.Telemetry.Endpoint)
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("unexpected sample rate: %g", cfg.Telemetry.SampleRate)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging defaults applied, got level %q", cfg.Logging.Level)
	}
}

func TestEngineConfig_Validate(t *testing.T) {
	valid := EngineConfig{}
	valid.ApplyDefaults()
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid defaults, got %v", err)
	}

	badEnv := valid
	badEnv.Environment = "qa"
	if err := badEnv.Validate(); err == nil || !strings.Contains(err.Error(), "environment") {
		t.Errorf("expected environment error, got %v", err)
	}

	badBatch := valid
	badBatch.BatchSize = -1
	if err := badBatch.Validate(); err == nil || !strings.Contains(err.Error(), "batch_size") {
		t.Errorf("expected batch_size error, got %v", err)
	}

	badRate := valid
	badRate.Telemetry.SampleRate = 1.5
	if err := badRate.Validate(); err == nil || !strings.Contains(err.Error(), "sample_rate") {
		t.Errorf("expected sample_rate error, got %v", err)
	}

	// Negative parallelism is a valid "all but k" request, not an error.
	allButTwo := valid
	allButTwo.Parallelism = -2
	if err := allButTwo.Validate(); err != nil {
		t.Errorf("expected negative parallelism to validate, got %v", err)
	}
}

func TestLoad_FromConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
name: worker-svc
environment: production
parallelism: 6
batch_size: 12
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	var cfg EngineConfig
	if err := Load("parmap", &cfg, WithConfigFile(path)); err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "worker-svc" || cfg.Parallelism != 6 || cfg.BatchSize != 12 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("batch_size: 4\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PARMAP_BATCH_SIZE", "32")

	var cfg EngineConfig
	if err := Load("parmap", &cfg, WithConfigFile(path)); err != nil {
		t.Fatal(err)
	}
	if cfg.BatchSize != 32 {
		t.Errorf("expected env override 32, got %d", cfg.BatchSize)
	}
}

func TestLoad_NestedEnvBinding(t *testing.T) {
	t.Setenv("PARMAP_LOGGING_LEVEL", "warn")

	var cfg EngineConfig
	if err := Load("parmap", &cfg, WithConfigFile("/nonexistent/config.yml")); err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected logging.level from env, got %q", cfg.Logging.Level)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("PARMAP_PARALLELISM=3\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var cfg EngineConfig
	if err := Load("parmap", &cfg, WithEnvFile(envPath)); err != nil {
		t.Fatal(err)
	}
	if cfg.Parallelism != 3 {
		t.Errorf("expected parallelism 3 from .env, got %d", cfg.Parallelism)
	}
	os.Unsetenv("PARMAP_PARALLELISM")
}

type fakeFS struct {
	files map[string]bool
}

func (f *fakeFS) Exists(path string) bool { return f.files[path] }
func (f *fakeFS) LoadEnv(string) error    { return nil }

func TestFindFile_SearchOrder(t *testing.T) {
	fs := &fakeFS{files: map[string]bool{"config/config.yml": true}}
	if got := findFile(fs, "config.yml"); got != "config/config.yml" {
		t.Errorf("expected config/config.yml, got %q", got)
	}
	fs.files["config.yml"] = true
	if got := findFile(fs, "config.yml"); got != "config.yml" {
		t.Errorf("expected working-dir file to win, got %q", got)
	}
}

func TestKeyVariants(t *testing.T) {
	got := keyVariants("telemetry_sample_rate")
	want := map[string]bool{
		"telemetry_sample_rate": true,
		"telemetry.sample.rate": true,
		"telemetry.sample_rate": true,
	}
	for _, v := range got {
		if !want[v] {
			t.Errorf("unexpected variant %q", v)
		}
	}
	if len(got) != 3 {
		t.Errorf("expected 3 variants, got %v", got)
	}
}
