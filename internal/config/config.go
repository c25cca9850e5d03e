package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	BaseURL            string        `validate:"omitempty,url"`
	DefaultTimeout     time.Duration `validate:"gt=0"`
	ScenarioTimeout    time.Duration `validate:"gtfield=DefaultTimeout"`
	Parallelism        int           `validate:"min=1,max=64"`
	Headless           bool
	BrowserBin         string
	SoftAssertions     bool
	LogLevel           string `validate:"oneof=debug info warn error"`
	LogFormat          string `validate:"oneof=console json"`
	ResultsDatabaseURL string
	FixtureAddr        string        `validate:"required"`
	LiftoffDelay       time.Duration `validate:"gt=0"`
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	defaultTimeout, err := getDuration("DEFAULT_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	scenarioTimeout, err := getDuration("SCENARIO_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	liftoff, err := getDuration("LIFTOFF_DELAY", 10*time.Second)
	if err != nil {
		return nil, err
	}
	parallelism, err := getInt("PARALLELISM", 4)
	if err != nil {
		return nil, err
	}
	headless, err := getBool("HEADLESS", true)
	if err != nil {
		return nil, err
	}
	soft, err := getBool("SOFT_ASSERTIONS", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BaseURL:            getEnv("BASE_URL", ""),
		DefaultTimeout:     defaultTimeout,
		ScenarioTimeout:    scenarioTimeout,
		Parallelism:        parallelism,
		Headless:           headless,
		BrowserBin:         getEnv("BROWSER_BIN", ""),
		SoftAssertions:     soft,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
		ResultsDatabaseURL: getEnv("RESULTS_DATABASE_URL", ""),
		FixtureAddr:        getEnv("FIXTURE_ADDR", ":8090"),
		LiftoffDelay:       liftoff,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints. Callers that build a Config by hand
// (tests, CLI flag overrides) should call it before use.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return b, nil
}
