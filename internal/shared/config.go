package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	CORSOrigins []string

	StoreDriver string // mongo|mysql|memory
	MongoURI    string
	MongoDB     string
	MySQLDSN    string

	RedisAddr string
	RedisDB   int
	RedisPass string
	DeviceID  string
	CacheTTL  time.Duration

	IdentityBase string
	TokenBase    string
	IdentityKey  string
	IdentityRPS  int

	CatalogURL  string
	SeedWorkers int
}

func Load() Config {
	// .env is optional; real deployments use the environment.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", "127.0.0.1:8080"),
		MetricsAddr:  env("METRICS_ADDR", ""),
		CORSOrigins:  split(env("CORS_ORIGINS", "*")),
		StoreDriver:  strings.ToLower(env("STORE_DRIVER", "mongo")),
		MongoURI:     env("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      env("MONGO_DB", "hotel_booking"),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotel_booking?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		DeviceID:     env("DEVICE_ID", "default"),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		IdentityBase: env("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com/v1"),
		TokenBase:    env("TOKEN_BASE_URL", "https://securetoken.googleapis.com/v1"),
		IdentityKey:  env("IDENTITY_API_KEY", ""),
		IdentityRPS:  atoi("IDENTITY_RPS", 5),
		CatalogURL:   env("CATALOG_URL", ""),
		SeedWorkers:  atoi("SEED_WORKERS", 4),
	}
	if c.IdentityKey == "" {
		log.Warn().Msg("IDENTITY_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func split(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
