package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding an optional YAML file.
const EnvConfigPath = "PAPERDIGEST_CONFIG"

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	LLM     LLMConfig     `yaml:"llm"`
	Summary SummaryConfig `yaml:"summary"`
	PDF     PDFConfig     `yaml:"pdf"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	Log LogConfig `yaml:"log"`
}

type LLMConfig struct {
	Provider          string        `yaml:"provider"`
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model"`
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Temperature       float64       `yaml:"temperature"`
	TopP              float64       `yaml:"top_p"`
}

type SummaryConfig struct {
	MaxWordsPerChunk int `yaml:"max_words_per_chunk"`
	MaxCombinedChars int `yaml:"max_combined_chars"`
	// CallDelay is slept between remote calls; 0 disables it.
	CallDelay time.Duration `yaml:"call_delay"`
	BatchSize int           `yaml:"batch_size"`

	ChunkMaxTokens   int `yaml:"chunk_max_tokens"`
	BatchMaxTokens   int `yaml:"batch_max_tokens"`
	FinalMaxTokens   int `yaml:"final_max_tokens"`
	ExtractMaxTokens int `yaml:"extract_max_tokens"`

	CleanText bool `yaml:"clean_text"`
}

type PDFConfig struct {
	MaxPages          int  `yaml:"max_pages"`
	FallbackPdftotext bool `yaml:"fallback_pdftotext"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port: "8090",
		LLM: LLMConfig{
			Provider:    "groq",
			Timeout:     120 * time.Second,
			Temperature: 0.7,
			TopP:        0.9,
		},
		Summary: SummaryConfig{
			MaxWordsPerChunk: 3000,
			MaxCombinedChars: 3000,
			CallDelay:        time.Second,
			BatchSize:        3,
			ChunkMaxTokens:   1000,
			BatchMaxTokens:   1500,
			FinalMaxTokens:   2000,
			ExtractMaxTokens: 2000,
		},
		PDF: PDFConfig{
			MaxPages:          30,
			FallbackPdftotext: true,
		},
		WorkerCount:    2,
		MaxQueueSize:   50,
		MaxUploadBytes: 52428800, // 50MB
		JobTTL:         1 * time.Hour,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (or at
// $PAPERDIGEST_CONFIG when path is empty) and then the environment.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	normalize(&cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	expanded := expandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
// Unset variables are left as written.
func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

func applyEnv(cfg *Config) {
	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("PAPERDIGEST_API_KEY", cfg.APIKey)

	cfg.LLM.Provider = strings.ToLower(envOr("LLM_PROVIDER", cfg.LLM.Provider))
	cfg.LLM.APIKey = envOr("LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = envOr("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.BaseURL = envOr("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Timeout = envDuration("LLM_TIMEOUT", cfg.LLM.Timeout)
	cfg.LLM.RequestsPerMinute = envInt("LLM_REQUESTS_PER_MINUTE", cfg.LLM.RequestsPerMinute)
	cfg.LLM.Temperature = envFloat("LLM_TEMPERATURE", cfg.LLM.Temperature)
	cfg.LLM.TopP = envFloat("LLM_TOP_P", cfg.LLM.TopP)
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = providerKey(cfg.LLM.Provider)
	}

	cfg.Summary.MaxWordsPerChunk = envInt("MAX_WORDS_PER_CHUNK", cfg.Summary.MaxWordsPerChunk)
	cfg.Summary.MaxCombinedChars = envInt("MAX_COMBINED_CHARS", cfg.Summary.MaxCombinedChars)
	cfg.Summary.CallDelay = envDuration("CALL_DELAY", cfg.Summary.CallDelay)
	cfg.Summary.BatchSize = envInt("COMBINE_BATCH_SIZE", cfg.Summary.BatchSize)
	cfg.Summary.CleanText = envBool("CLEAN_TEXT", cfg.Summary.CleanText)

	cfg.PDF.MaxPages = envInt("PDF_MAX_PAGES", cfg.PDF.MaxPages)
	cfg.PDF.FallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDF.FallbackPdftotext)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)

	cfg.Log.Level = envOr("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = envOr("LOG_FORMAT", cfg.Log.Format)
}

// SetProvider switches the provider after loading. The key follows the new
// provider's conventional variable unless LLM_API_KEY pins it.
func (c *Config) SetProvider(provider string) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" || provider == c.LLM.Provider {
		return
	}
	c.LLM.Provider = provider
	if os.Getenv("LLM_API_KEY") == "" {
		if key := providerKey(provider); key != "" {
			c.LLM.APIKey = key
		}
	}
}

// providerKey falls back to the provider's conventional key variable.
func providerKey(provider string) string {
	switch provider {
	case "groq":
		return os.Getenv("GROQ_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini":
		return envOr("GOOGLE_API_KEY", os.Getenv("GEMINI_API_KEY"))
	}
	return ""
}

func normalize(cfg *Config) {
	d := Defaults()
	if cfg.Port == "" {
		cfg.Port = d.Port
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = d.LLM.Provider
	}
	if cfg.LLM.Timeout <= 0 {
		cfg.LLM.Timeout = d.LLM.Timeout
	}
	if cfg.LLM.TopP <= 0 {
		cfg.LLM.TopP = d.LLM.TopP
	}
	if cfg.Summary.MaxWordsPerChunk <= 0 {
		cfg.Summary.MaxWordsPerChunk = d.Summary.MaxWordsPerChunk
	}
	if cfg.Summary.MaxCombinedChars <= 0 {
		cfg.Summary.MaxCombinedChars = d.Summary.MaxCombinedChars
	}
	if cfg.Summary.CallDelay < 0 {
		cfg.Summary.CallDelay = 0
	}
	if cfg.Summary.BatchSize < 2 {
		cfg.Summary.BatchSize = d.Summary.BatchSize
	}
	if cfg.Summary.ChunkMaxTokens <= 0 {
		cfg.Summary.ChunkMaxTokens = d.Summary.ChunkMaxTokens
	}
	if cfg.Summary.BatchMaxTokens <= 0 {
		cfg.Summary.BatchMaxTokens = d.Summary.BatchMaxTokens
	}
	if cfg.Summary.FinalMaxTokens <= 0 {
		cfg.Summary.FinalMaxTokens = d.Summary.FinalMaxTokens
	}
	if cfg.Summary.ExtractMaxTokens <= 0 {
		cfg.Summary.ExtractMaxTokens = d.Summary.ExtractMaxTokens
	}
	if cfg.PDF.MaxPages <= 0 {
		cfg.PDF.MaxPages = d.PDF.MaxPages
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = d.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = d.MaxQueueSize
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = d.MaxUploadBytes
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = d.JobTTL
	}
}

// Validate checks what every entry point needs: a known provider with a key.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case "groq", "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("config: unsupported llm provider %q (supported: groq, openai, anthropic, gemini)", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("config: llm api key is required (set LLM_API_KEY or the %s provider key)", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("config: llm temperature must be in [0, 2], got %v", c.LLM.Temperature)
	}
	if c.LLM.TopP > 1 {
		return fmt.Errorf("config: llm top_p must be in (0, 1], got %v", c.LLM.TopP)
	}
	return nil
}

// ValidateServer additionally requires the bearer token guarding the HTTP API.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return errors.New("PAPERDIGEST_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
