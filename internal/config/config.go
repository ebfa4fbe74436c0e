package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the interview agent worker.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	BackendURL     string
	InternalAPIKey string
	BackendTimeout time.Duration

	PlatformWSURL  string
	PlatformAPIKey string
	AgentName      string
	PrewarmVAD     bool

	TranscriptQueueSize int
	DrainTimeout        time.Duration

	DatabaseURL string

	Pipeline PipelineConfig
}

// PipelineConfig names the platform-run voice pipeline components.
// The platform executes STT, LLM, TTS, VAD and turn detection; this worker
// only selects them.
type PipelineConfig struct {
	STTModel             string
	STTLanguage          string
	LLMModel             string
	TTSModel             string
	TTSVoice             string
	TurnDetection        string
	PreemptiveGeneration bool
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "iris"),
		BackendURL:       envOrDefault("BACKEND_URL", "http://localhost:3000"),
		InternalAPIKey:   stringsTrimSpace("INTERNAL_API_KEY"),
		PlatformWSURL:    stringsTrimSpace("PLATFORM_WS_URL"),
		PlatformAPIKey:   stringsTrimSpace("PLATFORM_API_KEY"),
		AgentName:        envOrDefault("AGENT_NAME", "iris"),
		DatabaseURL:      stringsTrimSpace("DATABASE_URL"),
		Pipeline: PipelineConfig{
			STTModel:    envOrDefault("PIPELINE_STT_MODEL", "assemblyai/universal-streaming"),
			STTLanguage: envOrDefault("PIPELINE_STT_LANGUAGE", "en"),
			LLMModel:    envOrDefault("PIPELINE_LLM_MODEL", "openai/gpt-4.1-mini"),
			TTSModel:    envOrDefault("PIPELINE_TTS_MODEL", "cartesia/sonic-3"),
			// Default interviewer voice; overridable per deployment.
			TTSVoice:             envOrDefault("PIPELINE_TTS_VOICE", "9626c31c-bec5-4cca-baa8-f8ba9e84c8bc"),
			TurnDetection:        envOrDefault("PIPELINE_TURN_DETECTION", "multilingual"),
			PreemptiveGeneration: true,
		},
		BackendTimeout:      10 * time.Second,
		ShutdownTimeout:     15 * time.Second,
		DrainTimeout:        5 * time.Second,
		TranscriptQueueSize: 64,
		PrewarmVAD:          true,
	}

	var err error
	cfg.BackendTimeout, err = durationFromEnv("BACKEND_TIMEOUT", cfg.BackendTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.DrainTimeout, err = durationFromEnv("APP_DRAIN_TIMEOUT", cfg.DrainTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.TranscriptQueueSize, err = intFromEnv("TRANSCRIPT_QUEUE_SIZE", cfg.TranscriptQueueSize)
	if err != nil {
		return Config{}, err
	}
	cfg.PrewarmVAD, err = boolFromEnv("AGENT_PREWARM_VAD", cfg.PrewarmVAD)
	if err != nil {
		return Config{}, err
	}
	cfg.Pipeline.PreemptiveGeneration, err = boolFromEnv("PIPELINE_PREEMPTIVE_GENERATION", cfg.Pipeline.PreemptiveGeneration)
	if err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.BackendURL) == "" {
		return Config{}, fmt.Errorf("BACKEND_URL must not be empty")
	}
	if cfg.BackendTimeout <= 0 {
		return Config{}, fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if cfg.TranscriptQueueSize <= 0 {
		return Config{}, fmt.Errorf("TRANSCRIPT_QUEUE_SIZE must be positive")
	}
	if cfg.DrainTimeout < 0 {
		return Config{}, fmt.Errorf("APP_DRAIN_TIMEOUT must not be negative")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
