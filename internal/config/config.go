package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by ANXIOUS_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("ANXIOUS_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

func AnthropicBaseURL() string {
	return os.Getenv("ANTHROPIC_BASE_URL")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// ReasonerProvider returns the configured reasoner provider.
// Defaults to "anthropic" if not set.
// Valid values: anthropic, openai, mock
func ReasonerProvider() string {
	p := os.Getenv("REASONER_PROVIDER")
	if p == "" {
		return "anthropic"
	}
	return p
}

// ReasonerAPIKey returns the API key for the configured reasoner provider.
func ReasonerAPIKey() string {
	switch ReasonerProvider() {
	case "openai":
		return OpenAIAPIKey()
	case "mock":
		return ""
	default:
		return AnthropicAPIKey()
	}
}

// ModelFast is the model used for response generation, evidence extraction,
// and connection discovery.
func ModelFast() string {
	m := os.Getenv("MODEL_FAST")
	if m == "" {
		return "claude-3-5-haiku-20241022"
	}
	return m
}

// ModelRevision is the model used for belief reconstruction. Revision is the
// expensive, rare call, so it may target a higher-capability model.
func ModelRevision() string {
	m := os.Getenv("MODEL_REVISION")
	if m == "" {
		return "claude-sonnet-4-20250514"
	}
	return m
}

// ReasonerTimeout bounds every reasoner call. Expiry maps to a failed
// revision rather than an indefinite stall.
func ReasonerTimeout() time.Duration {
	secs, err := strconv.Atoi(os.Getenv("REASONER_TIMEOUT_SECONDS"))
	if err != nil || secs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(secs) * time.Second
}

// EmbeddingProvider returns the configured embedding provider.
// Defaults to "mock" so the core runs without an OpenAI key.
// Valid values: openai, mock
func EmbeddingProvider() string {
	p := os.Getenv("EMBEDDING_PROVIDER")
	if p == "" {
		return "mock"
	}
	return p
}

// EmbeddingModel selects the embedding model for the openai provider.
func EmbeddingModel() string {
	return os.Getenv("EMBEDDING_MODEL")
}

func EmbeddingAPIKey() string {
	switch EmbeddingProvider() {
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// RevisionThreshold is the tension level at which a belief becomes a
// revision candidate.
func RevisionThreshold() float64 {
	v, err := strconv.ParseFloat(os.Getenv("REVISION_THRESHOLD"), 64)
	if err != nil || v <= 0 || v > 1 {
		return 0.7
	}
	return v
}

// ConfidenceIncrement is the fraction of remaining headroom one
// reinforcement closes.
func ConfidenceIncrement() float64 {
	v, err := strconv.ParseFloat(os.Getenv("CONFIDENCE_INCREMENT"), 64)
	if err != nil || v <= 0 || v > 1 {
		return 0.1
	}
	return v
}

// TensionIncrement is the base tension delta for a full-strength
// contradiction.
func TensionIncrement() float64 {
	v, err := strconv.ParseFloat(os.Getenv("TENSION_INCREMENT"), 64)
	if err != nil || v <= 0 || v > 1 {
		return 0.15
	}
	return v
}

// CascadeDepthLimit bounds recursive revision cascades.
func CascadeDepthLimit() int {
	v, err := strconv.Atoi(os.Getenv("CASCADE_DEPTH_LIMIT"))
	if err != nil || v <= 0 {
		return 3
	}
	return v
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
