package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so the host environment does not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvConfigPath, "PORT", "PAPERDIGEST_API_KEY",
		"LLM_PROVIDER", "LLM_API_KEY", "LLM_MODEL", "LLM_BASE_URL", "LLM_TIMEOUT",
		"LLM_REQUESTS_PER_MINUTE", "LLM_TEMPERATURE", "LLM_TOP_P",
		"GROQ_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY",
		"MAX_WORDS_PER_CHUNK", "MAX_COMBINED_CHARS", "CALL_DELAY", "COMBINE_BATCH_SIZE", "CLEAN_TEXT",
		"PDF_MAX_PAGES", "PDF_FALLBACK_PDFTOTEXT",
		"WORKER_COUNT", "MAX_QUEUE_SIZE", "MAX_UPLOAD_BYTES", "JOB_TTL",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paperdigest.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8090" || cfg.LLM.Provider != "groq" {
		t.Errorf("unexpected defaults: port=%q provider=%q", cfg.Port, cfg.LLM.Provider)
	}
	if cfg.Summary.MaxWordsPerChunk != 3000 || cfg.Summary.MaxCombinedChars != 3000 {
		t.Errorf("unexpected budgets: %+v", cfg.Summary)
	}
	if cfg.Summary.CallDelay != time.Second || cfg.Summary.BatchSize != 3 {
		t.Errorf("unexpected delay/batch: %+v", cfg.Summary)
	}
	if cfg.PDF.MaxPages != 30 || !cfg.PDF.FallbackPdftotext {
		t.Errorf("unexpected pdf defaults: %+v", cfg.PDF)
	}
	if cfg.LLM.Temperature != 0.7 || cfg.LLM.TopP != 0.9 {
		t.Errorf("unexpected sampling defaults: %+v", cfg.LLM)
	}
}

func TestLoad_YAMLWithEnvExpansion(t *testing.T) {
	clearEnv(t)
	t.Setenv("MY_GROQ_KEY", "secret-from-env")

	path := writeConfig(t, `
port: "9000"
llm:
  provider: groq
  api_key: ${MY_GROQ_KEY}
  timeout: 30s
summary:
  max_words_per_chunk: 1200
  call_delay: 250ms
  clean_text: true
pdf:
  max_pages: 10
job_ttl: 2h
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.LLM.APIKey != "secret-from-env" {
		t.Errorf("expected expanded api key, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Timeout != 30*time.Second || cfg.JobTTL != 2*time.Hour {
		t.Errorf("durations not decoded: timeout=%v ttl=%v", cfg.LLM.Timeout, cfg.JobTTL)
	}
	if cfg.Summary.MaxWordsPerChunk != 1200 || cfg.Summary.CallDelay != 250*time.Millisecond || !cfg.Summary.CleanText {
		t.Errorf("summary not decoded: %+v", cfg.Summary)
	}
	// Untouched keys keep their defaults.
	if cfg.Summary.MaxCombinedChars != 3000 || cfg.PDF.MaxPages != 10 || !cfg.PDF.FallbackPdftotext {
		t.Errorf("defaults lost: %+v %+v", cfg.Summary, cfg.PDF)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "llm:\n  provider: openai\n  model: gpt-a\n")
	t.Setenv("LLM_MODEL", "gpt-b")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MAX_COMBINED_CHARS", "500")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Model != "gpt-b" {
		t.Errorf("expected env model, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("expected provider key fallback, got %q", cfg.LLM.APIKey)
	}
	if cfg.Summary.MaxCombinedChars != 500 {
		t.Errorf("expected 500, got %d", cfg.Summary.MaxCombinedChars)
	}
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigPath, writeConfig(t, "worker_count: 7\n"))

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorkerCount != 7 {
		t.Errorf("expected worker_count 7, got %d", cfg.WorkerCount)
	}
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "llm: [unclosed")); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("WORKER_COUNT", "-3")
	t.Setenv("MAX_WORDS_PER_CHUNK", "lots")
	t.Setenv("CALL_DELAY", "0s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("expected default worker count, got %d", cfg.WorkerCount)
	}
	if cfg.Summary.MaxWordsPerChunk != 3000 {
		t.Errorf("expected default max words, got %d", cfg.Summary.MaxWordsPerChunk)
	}
	if cfg.Summary.CallDelay != 0 {
		t.Errorf("expected delay disabled, got %v", cfg.Summary.CallDelay)
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "api key") {
		t.Errorf("expected missing key error, got %v", err)
	}

	cfg.LLM.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := cfg.ValidateServer(); err == nil {
		t.Error("expected server validation to require PAPERDIGEST_API_KEY")
	}
	cfg.APIKey = "service"
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.LLM.Provider = "llama"
	if err := cfg.Validate(); err == nil {
		t.Error("expected unsupported provider error")
	}
}

func TestSetProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk-groq")
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.APIKey != "gsk-groq" {
		t.Fatalf("expected groq key, got %q", cfg.LLM.APIKey)
	}

	cfg.SetProvider("OpenAI")
	if cfg.LLM.Provider != "openai" || cfg.LLM.APIKey != "sk-openai" {
		t.Errorf("expected openai with its key, got %s/%q", cfg.LLM.Provider, cfg.LLM.APIKey)
	}

	t.Setenv("LLM_API_KEY", "pinned")
	cfg.LLM.APIKey = "pinned"
	cfg.SetProvider("groq")
	if cfg.LLM.APIKey != "pinned" {
		t.Errorf("LLM_API_KEY must pin the key, got %q", cfg.LLM.APIKey)
	}
}

func TestLoad_ZeroTemperature(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_TEMPERATURE", "0")
	t.Setenv("LLM_API_KEY", "k")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Temperature != 0 {
		t.Errorf("expected temperature 0 to be kept, got %v", cfg.LLM.Temperature)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("temperature 0 should be valid: %v", err)
	}

	cfg.LLM.Temperature = -0.5
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "temperature") {
		t.Errorf("expected temperature error, got %v", err)
	}
}
