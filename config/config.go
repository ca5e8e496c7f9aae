// Package config loads pipeline and query-engine settings from a YAML
// file plus the API token from the environment, the way the teacher's
// main.go loads its .env file with godotenv before standing up routes.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConcurrencyConfig holds the per-endpoint-family worker pool sizes
// described in spec §5 ("4-16 workers for sequence and journey calls;
// 1-4 for timetables").
type ConcurrencyConfig struct {
	Sequence  int `yaml:"sequence" validate:"required,min=1,max=64"`
	StopsNear int `yaml:"stops_near" validate:"required,min=1,max=64"`
	Timetable int `yaml:"timetable" validate:"required,min=1,max=16"`
	Journey   int `yaml:"journey" validate:"required,min=1,max=64"`
}

// TimeoutConfig holds the per-endpoint provider deadlines from spec §5.
type TimeoutConfig struct {
	SequenceSeconds  int `yaml:"sequence_seconds" validate:"required,min=1"`
	TimetableSeconds int `yaml:"timetable_seconds" validate:"required,min=1"`
	JourneySeconds   int `yaml:"journey_seconds" validate:"required,min=1"`
}

// RetryConfig configures the exponential-backoff-with-jitter policy
// from spec §4.1.
type RetryConfig struct {
	MaxAttempts   int     `yaml:"max_attempts" validate:"required,min=1,max=20"`
	BaseDelayMS   int     `yaml:"base_delay_ms" validate:"required,min=1"`
	MaxDelayMS    int     `yaml:"max_delay_ms" validate:"required,min=1"`
	JitterFactor  float64 `yaml:"jitter_factor" validate:"min=0,max=1"`
}

// Config is the top-level configuration object, unmarshalled from a
// single YAML file. The API token is deliberately not a field here —
// it is loaded separately from the environment so it never ends up
// checked into a config file.
type Config struct {
	ProviderBaseURL string `yaml:"provider_base_url" validate:"required,url"`

	ProximityRadiusM      float64 `yaml:"proximity_radius_m" validate:"gt=0"`
	ChangePenaltyMinutes  float64 `yaml:"change_penalty_minutes" validate:"gt=0"`
	EllipseExpansion      float64 `yaml:"ellipse_expansion_factor" validate:"gt=1"`
	HullBufferFraction    float64 `yaml:"hull_buffer_fraction" validate:"gt=0"`
	CoverageFraction      float64 `yaml:"coverage_fraction" validate:"gt=0,lte=1"`
	TopKRefined           int     `yaml:"top_k_refined" validate:"required,min=1"`
	AlternativesReturned  int     `yaml:"alternatives_returned" validate:"required,min=0"`
	TimetableSpreadWarnMinutes float64 `yaml:"timetable_spread_warn_minutes" validate:"gt=0"`
	MalformedHaltFraction float64 `yaml:"malformed_halt_fraction" validate:"gt=0,lte=1"`

	Concurrency ConcurrencyConfig `yaml:"concurrency" validate:"required"`
	Timeouts    TimeoutConfig     `yaml:"timeouts" validate:"required"`
	Retry       RetryConfig       `yaml:"retry" validate:"required"`

	CacheDir       string `yaml:"cache_dir" validate:"required"`
	GraphOutputDir string `yaml:"graph_output_dir" validate:"required"`
}

// APITokenEnvVar is the environment variable read for the Provider
// token, per spec §6 Configuration.
const APITokenEnvVar = "HUBLOCATOR_API_TOKEN"

// Default returns the configuration used when no YAML file is present,
// matching the defaults spelled out in spec §6.
func Default() Config {
	return Config{
		ProviderBaseURL:            "https://api.tfl.gov.uk",
		ProximityRadiusM:           250,
		ChangePenaltyMinutes:       5.0,
		EllipseExpansion:           1.2,
		HullBufferFraction:         0.005,
		CoverageFraction:           0.70,
		TopKRefined:                10,
		AlternativesReturned:       5,
		TimetableSpreadWarnMinutes: 2.0,
		MalformedHaltFraction:      0.01,
		Concurrency: ConcurrencyConfig{
			Sequence:  8,
			StopsNear: 8,
			Timetable: 2,
			Journey:   8,
		},
		Timeouts: TimeoutConfig{
			SequenceSeconds:  15,
			TimetableSeconds: 15,
			JourneySeconds:   30,
		},
		Retry: RetryConfig{
			MaxAttempts:  5,
			BaseDelayMS:  200,
			MaxDelayMS:   8000,
			JitterFactor: 0.3,
		},
		CacheDir:       "./cache",
		GraphOutputDir: "./graphs",
	}
}

// Load reads a YAML config file and overlays it onto Default(): fields
// the file does not set keep their default values, and the merged
// result is validated. An empty path returns Default() unchanged,
// without validation.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validatorInstance = validator.New()

func validate(cfg Config) error {
	if err := validatorInstance.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// APIToken loads the Provider token from the environment, first trying
// a .env file in the working directory the way the teacher's main.go
// does with godotenv.Load() before falling back to os.Getenv.
func APIToken() (string, error) {
	_ = godotenv.Load()
	token := os.Getenv(APITokenEnvVar)
	if token == "" {
		return "", fmt.Errorf("%s not set", APITokenEnvVar)
	}
	return token, nil
}
