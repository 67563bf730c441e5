package shared

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Place struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// FileConfig is the optional YAML file (CONFIG_FILE). Environment wins over it.
type FileConfig struct {
	Hostaway struct {
		BaseURL       string  `yaml:"base_url"`
		CategoryScale float64 `yaml:"category_scale"`
		RPS           int     `yaml:"rps"`
	} `yaml:"hostaway"`
	Places struct {
		BaseURL       string  `yaml:"base_url"`
		CategoryScale float64 `yaml:"category_scale"`
		RPS           int     `yaml:"rps"`
		Places        []Place `yaml:"places"`
	} `yaml:"places"`
	Warm struct {
		Listings []string `yaml:"listings"`
	} `yaml:"warm"`
}

type Config struct {
	AppEnv          string
	HTTPAddr        string
	MySQLDSN        string
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	ApprovalBackend string // redis|mysql

	HostawayBase    string
	HostawayAccount string
	HostawayKey     string
	HostawayRPS     int
	HostawayScale   float64

	PlacesBase  string
	PlacesKey   string
	PlacesRPS   int
	PlacesScale float64
	Places      []Place

	SourceTimeout time.Duration
	CacheTTL      time.Duration
	WarmWorkers   int
	WarmListings  []string
}

func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg(".env not loaded")
	}

	var fc FileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		if fc, err = LoadFile(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("config file ignored")
		}
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
				return f
			}
		}
		return def
	}
	c := Config{
		AppEnv:          env("APP_ENV", "prod"),
		HTTPAddr:        env("HTTP_ADDR", ":8080"),
		MySQLDSN:        env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviews?parseTime=true&charset=utf8mb4&loc=UTC"),
		RedisAddr:       env("REDIS_ADDR", "localhost:6379"),
		RedisDB:         atoi("REDIS_DB", 0),
		RedisPass:       env("REDIS_PASSWORD", ""),
		ApprovalBackend: strings.ToLower(env("APPROVAL_BACKEND", "redis")),

		HostawayBase:    env("HOSTAWAY_BASE_URL", or(fc.Hostaway.BaseURL, "https://api.hostaway.com/v1")),
		HostawayAccount: env("HOSTAWAY_ACCOUNT_ID", ""),
		HostawayKey:     env("HOSTAWAY_API_KEY", ""),
		HostawayRPS:     atoi("HOSTAWAY_RPS", orInt(fc.Hostaway.RPS, 5)),
		HostawayScale:   atof("HOSTAWAY_CATEGORY_SCALE", orFloat(fc.Hostaway.CategoryScale, 2)),

		PlacesBase:  env("PLACES_BASE_URL", or(fc.Places.BaseURL, "https://maps.googleapis.com/maps/api/place")),
		PlacesKey:   env("PLACES_API_KEY", ""),
		PlacesRPS:   atoi("PLACES_RPS", orInt(fc.Places.RPS, 5)),
		PlacesScale: atof("PLACES_CATEGORY_SCALE", orFloat(fc.Places.CategoryScale, 1)),
		Places:      fc.Places.Places,

		SourceTimeout: time.Duration(atoi("SOURCE_TIMEOUT_MS", 8000)) * time.Millisecond,
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		WarmWorkers:   atoi("WARM_WORKERS", 4),
		WarmListings:  fc.Warm.Listings,
	}
	if ids := ParsePlaces(os.Getenv("PLACES_IDS")); len(ids) > 0 {
		c.Places = ids
	}
	if v := os.Getenv("WARM_LISTINGS"); v != "" {
		c.WarmListings = splitList(v)
	}
	if c.HostawayAccount == "" || c.HostawayKey == "" {
		log.Warn().Msg("HOSTAWAY_ACCOUNT_ID/HOSTAWAY_API_KEY empty; serving fallback reviews")
	}
	return c
}

// LoadFile reads the YAML config file.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// ParsePlaces reads "placeId[=Display Name],..." entries.
func ParsePlaces(v string) []Place {
	var out []Place
	for _, item := range splitList(v) {
		id, name, _ := strings.Cut(item, "=")
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		out = append(out, Place{ID: id, Name: strings.TrimSpace(name)})
	}
	return out
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func or(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func orFloat(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
