package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultPort             = "8080"
	defaultOpenAIModel      = "gpt-4o-mini"
	defaultBatchSize        = 10
	defaultWatchlistSpec    = "0 */6 * * *"
	defaultWatchlistRange   = "Past week"
	defaultWatchlistResults = 50
)

// OpenAIConfig selects either the public OpenAI API or an Azure OpenAI deployment.
type OpenAIConfig struct {
	APIKey         string
	Model          string
	Endpoint       string // Azure resource endpoint; empty means api.openai.com
	DeploymentName string
	APIVersion     string
}

// Azure reports whether requests go to an Azure OpenAI deployment.
func (c OpenAIConfig) Azure() bool {
	return c.Endpoint != ""
}

type Config struct {
	Port     string
	LogLevel string

	SerperAPIKey string
	OpenAI       OpenAIConfig

	// Base64-encoded service account JSON, both optional.
	FirebaseCredentials       string
	NaturalLanguageCredential string

	BatchSize          int
	ConfidenceWeight   float64
	EntityWeight       float64
	AbortOnScoreError  bool
	WatchlistSchedule  string
	WatchlistTimeRange string
	WatchlistReturnNum int
	Watchlist          []string
}

// Load reads a .env file when present and builds the configuration from the
// environment. A missing .env is not an error; malformed values are.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("error loading .env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:     withDefault(getenv("PORT"), defaultPort),
		LogLevel: withDefault(getenv("LOG_LEVEL"), "info"),

		SerperAPIKey: withDefault(getenv("SERPER_API_KEY"), getenv("NEWS_SEARCH_KEY")),

		OpenAI: OpenAIConfig{
			APIKey:         withDefault(getenv("OPENAI_API_KEY"), getenv("OPENAI_SUBSCRIPTION_KEY")),
			Model:          withDefault(getenv("OPENAI_MODEL"), defaultOpenAIModel),
			Endpoint:       getenv("OPENAI_ENDPOINT"),
			DeploymentName: getenv("OPENAI_DEPLOYMENT_NAME"),
			APIVersion:     getenv("OPENAI_VERSION"),
		},

		FirebaseCredentials:       getenv("FIREBASE_CREDENTIALS"),
		NaturalLanguageCredential: getenv("NATURAL_LANGUAGE_CREDENTIALS"),

		WatchlistSchedule:  withDefault(getenv("WATCHLIST_SCHEDULE"), defaultWatchlistSpec),
		WatchlistTimeRange: withDefault(getenv("WATCHLIST_TIME_RANGE"), defaultWatchlistRange),
		Watchlist:          splitList(getenv("WATCHLIST")),
	}

	var err error
	if cfg.BatchSize, err = intVar(getenv, "BATCH_SIZE", defaultBatchSize); err != nil {
		return Config{}, err
	}
	if cfg.BatchSize <= 0 {
		return Config{}, fmt.Errorf("BATCH_SIZE must be positive, got %d", cfg.BatchSize)
	}
	if cfg.WatchlistReturnNum, err = intVar(getenv, "WATCHLIST_RETURN_NUM", defaultWatchlistResults); err != nil {
		return Config{}, err
	}
	if cfg.ConfidenceWeight, err = floatVar(getenv, "SCORE_WEIGHT_CONFIDENCE", 0.5); err != nil {
		return Config{}, err
	}
	if cfg.EntityWeight, err = floatVar(getenv, "SCORE_WEIGHT_ENTITY", 0.5); err != nil {
		return Config{}, err
	}
	if v := getenv("ABORT_ON_SCORE_ERROR"); v != "" {
		if cfg.AbortOnScoreError, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("ABORT_ON_SCORE_ERROR: %w", err)
		}
	}

	if cfg.OpenAI.Azure() && cfg.OpenAI.DeploymentName == "" {
		return Config{}, fmt.Errorf("OPENAI_DEPLOYMENT_NAME is required when OPENAI_ENDPOINT is set")
	}
	return cfg, nil
}

func withDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func intVar(getenv func(string) string, name string, def int) (int, error) {
	v := getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func floatVar(getenv func(string) string, name string, def float64) (float64, error) {
	v := getenv(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}
