package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	STORAGE_DRIVER=json
//	DATA_FILE=/home/me/.local/share/flippulse/flips.json
//	RECOMMEND_MAX_RESULTS=35
//	SCORER_STRATEGY=2
//	SCORER_WEIGHTS=0.118973,0.197536,0.136292,0.0262364,0.0178793,0.146605,0.138587,0.217891
type Config struct {
	Server    ServerConfig    // HTTP server configuration
	Storage   StorageConfig   // Where the flip log lives
	Postgres  PostgresConfig  // PostgreSQL connection settings
	Recommend RecommendConfig // Recommendation filters
	Scorer    ScorerConfig    // Scoring strategy and weights
	Optimizer OptimizerConfig // Weight search settings
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string // The TCP port the HTTP server will listen on (e.g., "8080")
}

// StorageConfig selects the flip log backend.
type StorageConfig struct {
	Driver        string // "json" or "postgres"
	DataFile      string // JSON document path
	BlacklistFile string // one item name per line
}

// PostgresConfig defines connection details for PostgreSQL.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// DSN builds the database/sql connection string from the individual settings.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

// RecommendConfig holds the defaults applied to recommendation requests.
type RecommendConfig struct {
	MaxResults      int
	RandomCount     int
	ProfitThreshold float64
	RollingWindow   int
	MinFlips        int
	UseBlacklist    bool
}

// ScorerConfig selects the scoring model. Weights may be empty, in which
// case the built-in v2 weights apply.
type ScorerConfig struct {
	Strategy int
	Weights  []float64
}

// OptimizerConfig sizes the weight search and its trading simulation.
type OptimizerConfig struct {
	MinFlips          int
	MinObservations   int
	NoiseRepetitions  int
	Workers           int
	Hours             int
	Slots             int
	TopK              int
	Cooldown          int
	Repetitions       int
	SampleWindow      int
	ExploitAfter      time.Duration
	ExploreJumpChance float64
	ExploitJumpChance float64
	WeightsFile       string
	PlotFile          string
}

// Storage drivers.
const (
	DriverJSON     = "json"
	DriverPostgres = "postgres"
)

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or malformed, validateConfig() will
//     terminate the app with a descriptive log message.
func LoadConfig() {
	dataDir := defaultDataDir()

	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("STORAGE_DRIVER", DriverJSON)
	viper.SetDefault("DATA_FILE", filepath.Join(dataDir, "flips.json"))
	viper.SetDefault("BLACKLIST_FILE", filepath.Join(dataDir, "item_blacklist.txt"))

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "flippulse")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("RECOMMEND_MAX_RESULTS", 35)
	viper.SetDefault("RECOMMEND_RANDOM_COUNT", 5)
	viper.SetDefault("RECOMMEND_PROFIT_THRESHOLD", 0)
	viper.SetDefault("RECOMMEND_ROLLING_WINDOW", 10)
	viper.SetDefault("RECOMMEND_MIN_FLIPS", 10)
	viper.SetDefault("RECOMMEND_USE_BLACKLIST", true)

	viper.SetDefault("SCORER_STRATEGY", 2)
	viper.SetDefault("SCORER_WEIGHTS", "")

	viper.SetDefault("OPTIMIZER_MIN_FLIPS", 200)
	viper.SetDefault("OPTIMIZER_MIN_OBSERVATIONS", 10)
	viper.SetDefault("OPTIMIZER_NOISE_REPETITIONS", 1000)
	viper.SetDefault("OPTIMIZER_WORKERS", 0)
	viper.SetDefault("OPTIMIZER_HOURS", 24)
	viper.SetDefault("OPTIMIZER_SLOTS", 8)
	viper.SetDefault("OPTIMIZER_TOP_K", 50)
	viper.SetDefault("OPTIMIZER_COOLDOWN", 4)
	viper.SetDefault("OPTIMIZER_REPETITIONS", 5)
	viper.SetDefault("OPTIMIZER_SAMPLE_WINDOW", 15)
	viper.SetDefault("OPTIMIZER_EXPLOIT_AFTER", "15m")
	viper.SetDefault("OPTIMIZER_EXPLORE_JUMP", 1.0/3)
	viper.SetDefault("OPTIMIZER_EXPLOIT_JUMP", 1.0/7)
	viper.SetDefault("OPTIMIZER_WEIGHTS_FILE", ".env")
	viper.SetDefault("OPTIMIZER_PLOT_FILE", "")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	weights, weightsErr := ParseWeights(viper.GetString("SCORER_WEIGHTS"))

	AppConfig = Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Storage: StorageConfig{
			Driver:        strings.ToLower(viper.GetString("STORAGE_DRIVER")),
			DataFile:      viper.GetString("DATA_FILE"),
			BlacklistFile: viper.GetString("BLACKLIST_FILE"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Recommend: RecommendConfig{
			MaxResults:      viper.GetInt("RECOMMEND_MAX_RESULTS"),
			RandomCount:     viper.GetInt("RECOMMEND_RANDOM_COUNT"),
			ProfitThreshold: viper.GetFloat64("RECOMMEND_PROFIT_THRESHOLD"),
			RollingWindow:   viper.GetInt("RECOMMEND_ROLLING_WINDOW"),
			MinFlips:        viper.GetInt("RECOMMEND_MIN_FLIPS"),
			UseBlacklist:    viper.GetBool("RECOMMEND_USE_BLACKLIST"),
		},
		Scorer: ScorerConfig{
			Strategy: viper.GetInt("SCORER_STRATEGY"),
			Weights:  weights,
		},
		Optimizer: OptimizerConfig{
			MinFlips:          viper.GetInt("OPTIMIZER_MIN_FLIPS"),
			MinObservations:   viper.GetInt("OPTIMIZER_MIN_OBSERVATIONS"),
			NoiseRepetitions:  viper.GetInt("OPTIMIZER_NOISE_REPETITIONS"),
			Workers:           viper.GetInt("OPTIMIZER_WORKERS"),
			Hours:             viper.GetInt("OPTIMIZER_HOURS"),
			Slots:             viper.GetInt("OPTIMIZER_SLOTS"),
			TopK:              viper.GetInt("OPTIMIZER_TOP_K"),
			Cooldown:          viper.GetInt("OPTIMIZER_COOLDOWN"),
			Repetitions:       viper.GetInt("OPTIMIZER_REPETITIONS"),
			SampleWindow:      viper.GetInt("OPTIMIZER_SAMPLE_WINDOW"),
			ExploitAfter:      viper.GetDuration("OPTIMIZER_EXPLOIT_AFTER"),
			ExploreJumpChance: viper.GetFloat64("OPTIMIZER_EXPLORE_JUMP"),
			ExploitJumpChance: viper.GetFloat64("OPTIMIZER_EXPLOIT_JUMP"),
			WeightsFile:       viper.GetString("OPTIMIZER_WEIGHTS_FILE"),
			PlotFile:          viper.GetString("OPTIMIZER_PLOT_FILE"),
		},
	}

	// POSTGRES_URL wins over the individual settings
	AppConfig.Postgres.URL = viper.GetString("POSTGRES_URL")
	if AppConfig.Postgres.URL == "" {
		AppConfig.Postgres.URL = AppConfig.Postgres.DSN()
	}

	if weightsErr != nil {
		log.Fatalf("invalid SCORER_WEIGHTS: %v\n", weightsErr)
	}

	// Validate critical fields
	validateConfig()
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
//
// Postgres settings are only required when the postgres driver is selected.
func validateConfig() {
	var missing []string

	if AppConfig.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}

	switch AppConfig.Storage.Driver {
	case DriverJSON:
		if AppConfig.Storage.DataFile == "" {
			missing = append(missing, "DATA_FILE")
		}
	case DriverPostgres:
		if AppConfig.Postgres.Host == "" {
			missing = append(missing, "POSTGRES_HOST")
		}
		if AppConfig.Postgres.Port == 0 {
			missing = append(missing, "POSTGRES_PORT")
		}
		if AppConfig.Postgres.User == "" {
			missing = append(missing, "POSTGRES_USER")
		}
		if AppConfig.Postgres.Password == "" {
			missing = append(missing, "POSTGRES_PASSWORD")
		}
		if AppConfig.Postgres.DBName == "" {
			missing = append(missing, "POSTGRES_DB")
		}
	default:
		missing = append(missing, "STORAGE_DRIVER (json|postgres)")
	}

	if AppConfig.Recommend.MaxResults < 1 {
		missing = append(missing, "RECOMMEND_MAX_RESULTS (>= 1)")
	}
	if AppConfig.Scorer.Strategy != 1 && AppConfig.Scorer.Strategy != 2 {
		missing = append(missing, "SCORER_STRATEGY (1|2)")
	}

	if len(missing) > 0 {
		log.Fatalf("❌ Missing or invalid environment variables: %v\n", missing)
	}
}

// ParseWeights parses a comma separated weight list. An empty string
// yields nil; otherwise exactly 8 numbers are required.
func ParseWeights(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 8 {
		return nil, fmt.Errorf("expected 8 comma separated weights, got %d", len(parts))
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// FormatWeights is the inverse of ParseWeights.
func FormatWeights(weights []float64) string {
	parts := make([]string, len(weights))
	for i, w := range weights {
		parts[i] = strconv.FormatFloat(w, 'g', 6, 64)
	}
	return strings.Join(parts, ",")
}

// SaveWeights stores an accepted weight vector as SCORER_WEIGHTS (and
// selects the v2 scorer) in the config file at path, keeping every other
// key already in it. The format follows the file extension; ".env" files
// are written as dotenv.
func SaveWeights(path string, weights []float64) error {
	v := viper.New()
	v.SetConfigFile(path)
	if strings.HasPrefix(filepath.Base(path), ".env") || filepath.Ext(path) == "" {
		v.SetConfigType("env")
	}

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) || !errors.Is(pathErr.Err, fs.ErrNotExist) {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}

	v.Set("SCORER_STRATEGY", 2)
	v.Set("SCORER_WEIGHTS", FormatWeights(weights))

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "data"
	}
	return filepath.Join(home, ".local", "share", "flippulse")
}
