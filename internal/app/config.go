package app

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/vladislavdragonenkov/unieats/internal/debounce"
	"github.com/vladislavdragonenkov/unieats/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/unieats/internal/notify"
	"github.com/vladislavdragonenkov/unieats/internal/shop"
)

// StorageDriver: где хранится корзина и сессия.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverSQLite   StorageDriver = "sqlite"
	StorageDriverPostgres StorageDriver = "postgres"
	StorageDriverRedis    StorageDriver = "redis"
)

const envPrefix = "UNIEATS_"

// Config описывает настройки клиента и дашборда.
type Config struct {
	BackendURL  string        `yaml:"backend_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	StorageDriver       StorageDriver `yaml:"storage_driver"`
	Namespace           string        `yaml:"namespace"`
	SQLitePath          string        `yaml:"sqlite_path"`
	PostgresDSN         string        `yaml:"postgres_dsn"`
	PostgresAutoMigrate bool          `yaml:"postgres_auto_migrate"`
	RedisAddr           string        `yaml:"redis_addr"`
	RedisPassword       string        `yaml:"redis_password"`
	RedisDB             int           `yaml:"redis_db"`

	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
	KafkaGroupID string   `yaml:"kafka_group_id"`

	HTTPAddr        string        `yaml:"http_addr"`
	SearchDelay     time.Duration `yaml:"search_delay"`
	NotificationTTL time.Duration `yaml:"notification_ttl"`
	PriceCacheTTL   time.Duration `yaml:"price_cache_ttl"`
	// ShopRefresh: период фонового обновления списка магазинов в дашборде; 0 отключает.
	ShopRefresh time.Duration `yaml:"shop_refresh"`
	LogLevel    string        `yaml:"log_level"`
}

// DefaultConfig возвращает настройки для локального запуска.
func DefaultConfig() Config {
	return Config{
		BackendURL:          "http://localhost:8080",
		HTTPTimeout:         15 * time.Second,
		StorageDriver:       StorageDriverSQLite,
		Namespace:           "default",
		SQLitePath:          defaultSQLitePath(),
		PostgresAutoMigrate: true,
		KafkaTopic:          kafka.DefaultCartEventsTopic,
		KafkaGroupID:        "unieats-cart-watch",
		HTTPAddr:            ":8090",
		SearchDelay:         debounce.DefaultSearchDelay,
		NotificationTTL:     notify.DefaultTTL,
		PriceCacheTTL:       time.Minute,
		ShopRefresh:         shop.DefaultRefreshInterval,
		LogLevel:            "info",
	}
}

func defaultSQLitePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".unieats", "unieats.db")
	}
	return filepath.Join(dir, "unieats", "unieats.db")
}

// LoadConfig собирает конфиг: значения по умолчанию, YAML-файл (если задан),
// .env (если есть), затем переменные окружения UNIEATS_*.
func LoadConfig(path, envFile string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		// godotenv не перезаписывает уже выставленные переменные.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv переопределяет поля из окружения. KAFKA_BROKERS без префикса тоже понимается.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(envPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("BACKEND_URL", &cfg.BackendURL)
	str("NAMESPACE", &cfg.Namespace)
	str("SQLITE_PATH", &cfg.SQLitePath)
	str("POSTGRES_DSN", &cfg.PostgresDSN)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PASSWORD", &cfg.RedisPassword)
	str("KAFKA_TOPIC", &cfg.KafkaTopic)
	str("KAFKA_GROUP_ID", &cfg.KafkaGroupID)
	str("HTTP_ADDR", &cfg.HTTPAddr)
	str("LOG_LEVEL", &cfg.LogLevel)

	if v, ok := lookup(envPrefix + "STORAGE_DRIVER"); ok {
		cfg.StorageDriver = StorageDriver(strings.ToLower(strings.TrimSpace(v)))
	}
	if v, ok := lookup(envPrefix + "POSTGRES_AUTO_MIGRATE"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sPOSTGRES_AUTO_MIGRATE: %w", envPrefix, err)
		}
		cfg.PostgresAutoMigrate = b
	}
	if v, ok := lookup(envPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sREDIS_DB: %w", envPrefix, err)
		}
		cfg.RedisDB = n
	}

	brokers, ok := lookup(envPrefix + "KAFKA_BROKERS")
	if !ok {
		brokers, ok = lookup("KAFKA_BROKERS")
	}
	if ok {
		cfg.KafkaBrokers = splitList(brokers)
	}

	for name, dst := range map[string]*time.Duration{
		"HTTP_TIMEOUT":     &cfg.HTTPTimeout,
		"SEARCH_DELAY":     &cfg.SearchDelay,
		"NOTIFICATION_TTL": &cfg.NotificationTTL,
		"PRICE_CACHE_TTL":  &cfg.PriceCacheTTL,
		"SHOP_REFRESH":     &cfg.ShopRefresh,
	} {
		if err := dur(name, dst); err != nil {
			return err
		}
	}
	return nil
}

// splitList разбирает "a, b,,c" в [a b c].
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend url must be absolute, got %q", c.BackendURL))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("http timeout must be positive"))
	}
	if strings.TrimSpace(c.Namespace) == "" {
		errs = append(errs, errors.New("namespace is required"))
	}

	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite path is required for sqlite storage"))
		}
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("postgres dsn is required for postgres storage"))
		}
	case StorageDriverRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("redis addr is required for redis storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver %q", c.StorageDriver))
	}

	if c.SearchDelay < 0 || c.NotificationTTL < 0 || c.PriceCacheTTL < 0 || c.ShopRefresh < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}

	return errors.Join(errs...)
}
