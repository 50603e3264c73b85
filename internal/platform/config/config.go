package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Upstream service names. The env prefix of each is its upper-cased name,
// e.g. PROPERTY_BASE_URL.
const (
	Leasing      = "leasing"
	PropertyBase = "property_base"
	Inspection   = "inspection"
	Economy      = "economy"
	FileStorage  = "file_storage"
	Keys         = "keys"
	WorkOrder    = "work_order"
)

// Services lists every upstream the gateway proxies to.
var Services = []string{Leasing, PropertyBase, Inspection, Economy, FileStorage, Keys, WorkOrder}

var defaultUpstreamURLs = map[string]string{
	Leasing:      "http://localhost:5020",
	PropertyBase: "http://localhost:5050",
	Inspection:   "http://localhost:5090",
	Economy:      "http://localhost:5080",
	FileStorage:  "http://localhost:5095",
	Keys:         "http://localhost:5096",
	WorkOrder:    "http://localhost:5070",
}

const devJWTSecret = "dev-secret-key-change-in-production"

// Upstream describes one downstream microservice.
type Upstream struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"apiKey"`
	Timeout time.Duration `yaml:"timeout"`
}

type upstreamsFile struct {
	Upstreams map[string]Upstream `yaml:"upstreams"`
}

// JWT configures bearer token validation.
type JWT struct {
	Secret   string
	Issuer   string
	Audience string
}

// RedisConfig holds Redis connection settings. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds audit sink settings. No brokers disables Kafka.
type KafkaConfig struct {
	Brokers    string
	AuditTopic string
}

type RateLimit struct {
	RPS   float64
	Burst int
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	JWT            JWT
	Upstreams      map[string]Upstream
	Redis          RedisConfig
	DatabaseURL    string
	Kafka          KafkaConfig
	RateLimit      RateLimit
	CacheTTL       time.Duration
	UploadMaxBytes int64
	SignedURLTTL   time.Duration
	TrustedProxies string
}

// IsProduction reports whether dev fallbacks must be refused.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// Load reads an optional .env file and then builds the config from the
// environment. Variables already set win over .env entries.
func Load() (Server, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var errs []error
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		return fallback
	}
	duration := func(key string, fallback time.Duration) time.Duration {
		raw := os.Getenv(key)
		if raw == "" {
			return fallback
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", key, raw))
			return fallback
		}
		return d
	}
	integer := func(key string, fallback int64) int64 {
		raw := os.Getenv(key)
		if raw == "" {
			return fallback
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("%s: invalid positive integer %q", key, raw))
			return fallback
		}
		return n
	}

	cfg := Server{
		Addr:        get("ONECORE_ADDR", ":5010"),
		Environment: get("ENVIRONMENT", "development"),
		LogLevel:    get("LOG_LEVEL", "info"),
		JWT: JWT{
			Secret:   get("JWT_SECRET", ""),
			Issuer:   get("JWT_ISSUER", ""),
			Audience: get("JWT_AUDIENCE", ""),
		},
		Redis: RedisConfig{
			URL:          get("REDIS_URL", ""),
			PoolSize:     int(integer("REDIS_POOL_SIZE", 10)),
			MinIdleConns: int(integer("REDIS_MIN_IDLE_CONNS", 2)),
			DialTimeout:  duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		DatabaseURL: get("DATABASE_URL", ""),
		Kafka: KafkaConfig{
			Brokers:    get("KAFKA_BROKERS", ""),
			AuditTopic: get("KAFKA_AUDIT_TOPIC", "onecore.audit"),
		},
		RateLimit: RateLimit{
			Burst: int(integer("RATE_LIMIT_BURST", 40)),
		},
		CacheTTL:       duration("CACHE_TTL", 5*time.Minute),
		UploadMaxBytes: integer("UPLOAD_MAX_BYTES", 25<<20),
		SignedURLTTL:   duration("SIGNED_URL_TTL", time.Hour),
		TrustedProxies: get("TRUSTED_PROXIES", ""),
	}

	cfg.RateLimit.RPS = 20
	if raw := os.Getenv("RATE_LIMIT_RPS"); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil || rps < 0 {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS: invalid rate %q", raw))
		} else {
			cfg.RateLimit.RPS = rps
		}
	}

	upstreams, err := loadUpstreams(os.Getenv("UPSTREAMS_FILE"))
	if err != nil {
		errs = append(errs, err)
		upstreams = make(map[string]Upstream, len(Services))
	}
	for _, name := range Services {
		prefix := strings.ToUpper(name)
		u := upstreams[name]
		u.URL = strings.TrimRight(get(prefix+"_URL", orDefault(u.URL, defaultUpstreamURLs[name])), "/")
		u.APIKey = get(prefix+"_API_KEY", u.APIKey)
		u.Timeout = duration(prefix+"_TIMEOUT", orDuration(u.Timeout, 10*time.Second))
		upstreams[name] = u
	}
	cfg.Upstreams = upstreams

	if cfg.JWT.Secret == "" {
		if cfg.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
		cfg.JWT.Secret = devJWTSecret
	}

	if len(errs) > 0 {
		return Server{}, errors.Join(errs...)
	}
	return cfg, nil
}

// loadUpstreams reads the optional YAML upstream map. A blank path yields an
// empty map.
func loadUpstreams(path string) (map[string]Upstream, error) {
	out := make(map[string]Upstream, len(Services))
	if path == "" {
		return out, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstreams config: %w", err)
	}
	var file upstreamsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse upstreams config: %w", err)
	}
	known := make(map[string]bool, len(Services))
	for _, s := range Services {
		known[s] = true
	}
	for name, u := range file.Upstreams {
		if !known[name] {
			return nil, fmt.Errorf("upstreams config: unknown service %q", name)
		}
		out[name] = u
	}
	return out, nil
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func orDuration(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
