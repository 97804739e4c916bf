package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed thresholds.yaml
var thresholdsYAML []byte

type Config struct {
	FacePP     FacePPConfig
	Thresholds ThresholdsConfig
	Database   DatabaseConfig
	Web        WebConfig
}

type FacePPConfig struct {
	BaseURL      string // Face++ API base URL (e.g., https://api-us.faceplusplus.com)
	APIKey       string
	APISecret    string
	FaceSetToken string        // face set shared by all enrollments, used for indexed search
	Timeout      time.Duration // per-call timeout for provider requests
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; empty selects the in-memory stores
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type WebConfig struct {
	Host string
	Port int
}

// ThresholdsConfig holds the matching and quality thresholds (0-100 provider scale).
// Defaults come from the embedded thresholds.yaml; each value can be overridden
// with an environment variable.
type ThresholdsConfig struct {
	Match struct {
		Threshold float64 `yaml:"threshold"` // minimum confidence to accept a match
	} `yaml:"match"`
	Quality struct {
		EnrollMin float64 `yaml:"enroll_min"` // minimum face quality at enrollment
		VerifyMin float64 `yaml:"verify_min"` // minimum face quality at verification
		BlurMax   float64 `yaml:"blur_max"`   // maximum blur accepted at enrollment
	} `yaml:"quality"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a non-negative float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return f
	}
	return defaultVal
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func loadThresholds() ThresholdsConfig {
	var t ThresholdsConfig
	if err := yaml.Unmarshal(thresholdsYAML, &t); err != nil {
		// This is an embedded file so this error should never happen in practice.
		panic("failed to unmarshal embedded thresholds.yaml: " + err.Error())
	}

	t.Match.Threshold = envFloat("MATCH_THRESHOLD", t.Match.Threshold)
	t.Quality.EnrollMin = envFloat("QUALITY_ENROLL_MIN", t.Quality.EnrollMin)
	t.Quality.VerifyMin = envFloat("QUALITY_VERIFY_MIN", t.Quality.VerifyMin)
	t.Quality.BlurMax = envFloat("QUALITY_BLUR_MAX", t.Quality.BlurMax)
	return t
}

func Load() *Config {
	return &Config{
		FacePP: FacePPConfig{
			BaseURL:      envString("FACEPP_BASE_URL", "https://api-us.faceplusplus.com"),
			APIKey:       os.Getenv("FACEPP_API_KEY"),
			APISecret:    os.Getenv("FACEPP_API_SECRET"),
			FaceSetToken: envString("FACESET_TOKEN", "employee_faceset"),
			Timeout:      time.Duration(envInt("FACEPP_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Thresholds: loadThresholds(),
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Web: WebConfig{
			Host: envString("WEB_HOST", "0.0.0.0"),
			Port: envInt("WEB_PORT", 8080),
		},
	}
}
