// Package config loads the validated, explicitly-passed configuration
// record every subsystem constructor takes. There is no package-level
// singleton: callers read the environment once at startup (via godotenv +
// spf13/cast, in the style of kadirpekel-hector's env loader) and thread
// the resulting Config through explicitly.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"github.com/kroryan/Generador-de-libros-IA-cli/internal/llm"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/narrative"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/ratelimit"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/retry"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/segment"
)

// ProviderConfig is one configured backend, keyed by its "provider:model"
// identifier pieces.
type ProviderConfig struct {
	Name    string // e.g. "ollama", "groq", "anthropic"
	APIKey  string
	APIBase string
	Model   string
}

// Config is the fully validated, explicit configuration record. It is
// never a package-level singleton; constructors take it as a parameter.
type Config struct {
	Retry     retry.Config
	RateLimit ratelimit.Config
	Narrative narrative.Config
	LLM       llm.Options
	Segment   segment.Config

	ModelType      string
	SelectedModel  string
	ProviderChain  []ProviderConfig
	BreakerConfig  retry.BreakerConfig
}

// Load reads a .env file (if present, via godotenv) then the process
// environment into a validated Config. providerNames lists which
// <PROVIDER>_API_KEY / <PROVIDER>_API_BASE / <PROVIDER>_MODEL triples to
// look for, in fail-over order.
func Load(providerNames []string) (Config, error) {
	_ = godotenv.Load() // optional; absence of a .env file is not an error

	cfg := Config{
		Retry: retry.Config{
			MaxRetries: cast.ToInt(envOr("RETRY_MAX_ATTEMPTS", "3")),
			BaseDelay:  cast.ToDuration(envOr("RETRY_BASE_DELAY", "500ms")),
			MaxDelay:   cast.ToDuration(envOr("RETRY_MAX_DELAY", "30s")),
			Strategy:   parseBackoffStrategy(envOr("RETRY_BACKOFF_STRATEGY", "exponential")),
			Jitter:     true,
		},
		RateLimit: ratelimit.Config{
			Default:     cast.ToDuration(envOr("RATE_LIMIT_DEFAULT_DELAY", "0s")),
			PerProvider: perProviderDelays(providerNames),
		},
		Narrative: narrative.Config{
			MaxContextSize:         cast.ToInt(envOr("CONTEXT_STANDARD_SIZE", "4000")),
			MicroSummaryInterval:   cast.ToInt(envOr("CONTEXT_MICRO_SUMMARY_INTERVAL", "6")),
			RecentParagraphs:       3,
			ChapterSummaryMaxWords: 150,
		},
		LLM: llm.Options{
			Temperature:   cast.ToFloat64(envOr("LLM_TEMPERATURE", "0.8")),
			Streaming:     cast.ToBool(envOr("LLM_STREAMING", "true")),
			TopK:          cast.ToInt(envOr("LLM_TOP_K", "40")),
			TopP:          cast.ToFloat64(envOr("LLM_TOP_P", "0.9")),
			RepeatPenalty: cast.ToFloat64(envOr("LLM_REPEAT_PENALTY", "1.1")),
		},
		Segment: segment.Config{
			Strategy: parseSegmentStrategy(envOr("SEGMENT_EXTRACTION_STRATEGY", "adaptive")),
			N:        cast.ToInt(envOr("SEGMENT_MAX_COUNT", "3")),
			MinSpan:  cast.ToInt(envOr("SEGMENT_BASE_LENGTH", "200")),
		},
		ModelType:     envOr("MODEL_TYPE", ""),
		SelectedModel: envOr("SELECTED_MODEL", ""),
		BreakerConfig: retry.BreakerConfig{
			FailureThreshold: 3,
			Cooldown:         cast.ToDuration("30s"),
			HalfOpenProbes:   1,
		},
	}

	if cast.ToBool(envOr("CONTEXT_ENABLE_MICRO_SUMMARIES", "true")) {
		cfg.Narrative.Mode = narrative.Intelligent
	} else {
		cfg.Narrative.Mode = narrative.Progressive
	}

	for _, name := range providerNames {
		upper := strings.ToUpper(name)
		cfg.ProviderChain = append(cfg.ProviderChain, ProviderConfig{
			Name:    name,
			APIKey:  os.Getenv(upper + "_API_KEY"),
			APIBase: os.Getenv(upper + "_API_BASE"),
			Model:   os.Getenv(upper + "_MODEL"),
		})
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if len(c.ProviderChain) == 0 {
		return fmt.Errorf("config: no providers configured")
	}
	hasKeyOrLocal := false
	for _, p := range c.ProviderChain {
		if p.APIKey != "" || p.Name == "ollama" {
			hasKeyOrLocal = true
		}
	}
	if !hasKeyOrLocal {
		return fmt.Errorf("config: no provider has an API key (or a local backend) configured")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func perProviderDelays(providerNames []string) map[string]time.Duration {
	out := make(map[string]time.Duration)
	for _, name := range providerNames {
		key := "RATE_LIMIT_" + strings.ToUpper(name) + "_DELAY"
		if v := os.Getenv(key); v != "" {
			out[name] = cast.ToDuration(v)
		}
	}
	return out
}

func parseBackoffStrategy(s string) retry.BackoffStrategy {
	switch strings.ToLower(s) {
	case "linear":
		return retry.Linear
	case "fixed":
		return retry.Fixed
	default:
		return retry.Exponential
	}
}

func parseSegmentStrategy(s string) segment.Strategy {
	switch strings.ToLower(s) {
	case "start_end", "startend":
		return segment.StartEnd
	case "uniform":
		return segment.Uniform
	case "full":
		return segment.Full
	default:
		return segment.Adaptive
	}
}
