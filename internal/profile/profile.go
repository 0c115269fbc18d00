package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the conflict engine server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory, used for the sqlite travel-time store
	Data string
	// Driver is the optional persistent store driver ("", "sqlite" or "postgres")
	Driver string
	// DSN points to where the travel-time store lives
	DSN string
	// Version is the current version of server
	Version string

	// Travel-time collaborator
	TravelTimeBaseURL string        // SCHEDULETERP_TRAVEL_TIME_URL (default: https://api.scheduleterp.com)
	TravelTimeTimeout time.Duration // SCHEDULETERP_TRAVEL_TIME_TIMEOUT (default: 5s)
	TravelTimeRPS     float64       // SCHEDULETERP_TRAVEL_TIME_RPS (default: 10)

	// Travel-time cache
	TravelCacheTTL      time.Duration // SCHEDULETERP_TRAVEL_CACHE_TTL (default: 24h)
	TravelCacheCapacity int           // SCHEDULETERP_TRAVEL_CACHE_CAPACITY (default: 1000)

	// OracleConcurrency bounds concurrent travel-time lookups per classification.
	OracleConcurrency int // SCHEDULETERP_ORACLE_CONCURRENCY (default: 4)

	// APIRPS is the per-client request budget of the HTTP API.
	APIRPS float64 // SCHEDULETERP_API_RPS (default: 20)
}

const (
	DefaultTravelTimeBaseURL   = "https://api.scheduleterp.com"
	DefaultTravelTimeTimeout   = 5 * time.Second
	DefaultTravelTimeRPS       = 10
	DefaultTravelCacheTTL      = 24 * time.Hour
	DefaultTravelCacheCapacity = 1000
	DefaultOracleConcurrency   = 4
	DefaultAPIRPS              = 20
)

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// HasStore reports whether a persistent travel-time store is configured.
func (p *Profile) HasStore() bool {
	return p.Driver != ""
}

// FromEnv fills unset fields from SCHEDULETERP_* environment variables.
// Values already set (for example by command-line flags) take precedence.
func (p *Profile) FromEnv() {
	getEnv := func(key, defaultValue string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return defaultValue
	}
	getDuration := func(key string, defaultValue time.Duration) time.Duration {
		if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
			return d
		}
		return defaultValue
	}
	getFloat := func(key string, defaultValue float64) float64 {
		if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && f > 0 {
			return f
		}
		return defaultValue
	}
	getInt := func(key string, defaultValue int) int {
		if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
			return n
		}
		return defaultValue
	}

	if p.TravelTimeBaseURL == "" {
		p.TravelTimeBaseURL = getEnv("SCHEDULETERP_TRAVEL_TIME_URL", DefaultTravelTimeBaseURL)
	}
	if p.TravelTimeTimeout <= 0 {
		p.TravelTimeTimeout = getDuration("SCHEDULETERP_TRAVEL_TIME_TIMEOUT", DefaultTravelTimeTimeout)
	}
	if p.TravelTimeRPS <= 0 {
		p.TravelTimeRPS = getFloat("SCHEDULETERP_TRAVEL_TIME_RPS", DefaultTravelTimeRPS)
	}
	if p.TravelCacheTTL <= 0 {
		p.TravelCacheTTL = getDuration("SCHEDULETERP_TRAVEL_CACHE_TTL", DefaultTravelCacheTTL)
	}
	if p.TravelCacheCapacity <= 0 {
		p.TravelCacheCapacity = getInt("SCHEDULETERP_TRAVEL_CACHE_CAPACITY", DefaultTravelCacheCapacity)
	}
	if p.OracleConcurrency <= 0 {
		p.OracleConcurrency = getInt("SCHEDULETERP_ORACLE_CONCURRENCY", DefaultOracleConcurrency)
	}
	if p.APIRPS <= 0 {
		p.APIRPS = getFloat("SCHEDULETERP_API_RPS", DefaultAPIRPS)
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	switch p.Driver {
	case "", "sqlite", "postgres":
	default:
		return errors.Errorf("unknown driver %q: only 'sqlite' and 'postgres' are supported", p.Driver)
	}

	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	if p.Driver == "sqlite" && p.DSN == "" {
		if p.Data == "" {
			p.Data = "."
		}
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
			return err
		}
		p.Data = dataDir
		p.DSN = filepath.Join(dataDir, fmt.Sprintf("scheduleterp_%s.db", p.Mode))
	}

	if p.OracleConcurrency <= 0 {
		p.OracleConcurrency = DefaultOracleConcurrency
	}

	return nil
}
