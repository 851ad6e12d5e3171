package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string         `json:"env"`
	Http     HttpConfig     `json:"http"`
	Postgres PostgresConfig `json:"postgres"`
	Redis    RedisConfig    `json:"redis"`
	Auth     AuthConfig     `json:"auth"`
	Alert    AlertConfig    `json:"alert"`
	Geocode  GeocodeConfig  `json:"geocode"`
	Push     PushConfig     `json:"push"`
}

type HttpConfig struct {
	Port            string        `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
	SSLMode  string `json:"ssl_mode"`

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db"`
}

type AuthConfig struct {
	JWTSecret          string        `json:"jwt_secret,omitempty"`
	TokenTTL           time.Duration `json:"token_ttl"`
	PoliceSecretCode   string        `json:"police_secret_code,omitempty"`
	HospitalSecretCode string        `json:"hospital_secret_code,omitempty"`
}

type AlertConfig struct {
	// NotifyRadiusKm bounds every proximity fan-out; 5 km matches the
	// deployment's municipal coverage area.
	NotifyRadiusKm   float64       `json:"notify_radius_km"`
	UpsertRetries    int           `json:"upsert_retries"`
	UpsertBackoff    time.Duration `json:"upsert_backoff"`
	FacilityCacheTTL time.Duration `json:"facility_cache_ttl"`
}

type GeocodeConfig struct {
	NominatimURL string        `json:"nominatim_url"`
	OverpassURL  string        `json:"overpass_url"`
	UserAgent    string        `json:"user_agent"`
	Timeout      time.Duration `json:"timeout"`
}

type PushConfig struct {
	GatewayURL string `json:"gateway_url"`
	Disabled   bool   `json:"disabled"`
}

func Load() (*Config, error) {

	stdLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLogger.Warn(".env load warning", slog.Any("error", err))
	}

	cfg := &Config{
		Env: getEnv("ENV", "local"),
		Http: HttpConfig{
			Port:            getEnv("HTTP_PORT", ":8080"),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "pg-local"),
			Port:            getEnvInt("POSTGRES_PORT", 5432),
			Database:        getEnv("POSTGRES_DB", "alertline_db"),
			User:            getEnv("POSTGRES_USER", "postgres"),
			Password:        getEnv("POSTGRES_PASSWORD", "postgres"),
			SSLMode:         getEnv("POSTGRES_SSL_MODE", "disable"),
			MaxConns:        20,
			MinConns:        1,
			MaxConnLifetime: 1 * time.Hour,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "redis-local:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", ""),
			TokenTTL:           getEnvDuration("TOKEN_TTL", 24*time.Hour),
			PoliceSecretCode:   getEnv("POLICE_SECRET_CODE", ""),
			HospitalSecretCode: getEnv("HOSPITAL_SECRET_CODE", ""),
		},
		Alert: AlertConfig{
			NotifyRadiusKm:   getEnvFloat("NOTIFY_RADIUS_KM", 5.0),
			UpsertRetries:    getEnvInt("LOCATION_UPSERT_RETRIES", 3),
			UpsertBackoff:    getEnvDuration("LOCATION_UPSERT_BACKOFF", 200*time.Millisecond),
			FacilityCacheTTL: getEnvDuration("FACILITY_CACHE_TTL", 5*time.Minute),
		},
		Geocode: GeocodeConfig{
			NominatimURL: getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
			OverpassURL:  getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
			UserAgent:    getEnv("GEOCODE_USER_AGENT", "AlertLine/1.0"),
			Timeout:      getEnvDuration("GEOCODE_TIMEOUT", 15*time.Second),
		},
		Push: PushConfig{
			GatewayURL: getEnv("PUSH_GATEWAY_URL", ""),
			Disabled:   getEnvBool("PUSH_DISABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stdLogger.Info("Config loaded successfully",
		slog.String("env", cfg.Env),
		slog.String("http_port", cfg.Http.Port),
		slog.String("postgres_db", cfg.Postgres.Database),
		slog.String("redis_addr", cfg.Redis.Addr),
		slog.Float64("notify_radius_km", cfg.Alert.NotifyRadiusKm))

	return cfg, nil
}

func (c *Config) Validate() error {

	if c.Http.Port == "" || c.Http.Port[0] != ':' {
		return errors.New("HTTP_PORT must start with ':' like ':8080'")
	}

	if c.Postgres.Host == "" {
		return errors.New("POSTGRES_HOST required")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET required")
	}

	if c.Auth.PoliceSecretCode == "" || c.Auth.HospitalSecretCode == "" {
		return errors.New("POLICE_SECRET_CODE and HOSPITAL_SECRET_CODE required")
	}

	if c.Alert.NotifyRadiusKm <= 0 {
		return errors.New("NOTIFY_RADIUS_KM must be positive")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
