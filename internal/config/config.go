// Package config предоставляет структуры и функции для парсинга и загрузки конфига.
// Значения читаются из YAML-файла (CONFIG_PATH) и переопределяются переменными окружения.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Драйверы хранилища.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// ErrEmptySecret возвращается, если не задан ключ подписи токенов.
var ErrEmptySecret = errors.New("jwt secret key is not set")

// Config общая структура для хранения настроек
type Config struct {
	Env                     string          `yaml:"env" env:"ENV" env-default:"local"`
	GRPCAuthAddress         string          `yaml:"grpc_auth_address" env:"GRPC_AUTH_ADDRESS"`
	StorageDriver           string          `yaml:"storage_driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	StorageConnectionString string          `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string          `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	HTTPServer              HTTPServer      `yaml:"http_server"`
	GRPCServer              GRPCServer      `yaml:"grpc_server"`
	CORS                    CORS            `yaml:"cors"`
	RedisConnection         RedisConnection `yaml:"redis_connection"`
	RabbitMQ                RabbitMQ        `yaml:"rabbitmq"`
	JWTToken                JWTToken        `yaml:"jwttoken"`
	Password                Password        `yaml:"password"`
	RateLimit               RateLimit       `yaml:"rate_limit"`
	Tracker                 Tracker         `yaml:"tracker"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// GRPCServer структура для настройки gRPC-сервера проверки токенов
type GRPCServer struct {
	Address string `yaml:"address" env:"GRPC_ADDRESS" env-default:":50051"`
}

// CORS список разрешённых источников
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает кэш.
type RedisConnection struct {
	Address     string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	User        string        `yaml:"user"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	Timeout     time.Duration `yaml:"timeout"`
	TTL         time.Duration `yaml:"ttl" env-default:"5m"`
}

// RabbitMQ структура для настройки брокера событий.
// Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange   string        `yaml:"exchange" env-default:"exercises"`
	RoutingKey string        `yaml:"routing_key" env-default:"exercise.recorded"`
	Retries    int           `yaml:"retries" env-default:"5"`
	Delay      time.Duration `yaml:"delay" env-default:"2s"`
}

// JWTToken структура для работы с jwt-токеном.
// LegacySecret читается для совместимости окружений и нигде не используется.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_TOKEN_SECRET"`
	LegacySecret string        `yaml:"legacy_secret" env:"TOKEN_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
}

// Password настройки хэширования паролей
type Password struct {
	Cost int `yaml:"cost" env:"PASSWORD_COST" env-default:"10"`
}

// RateLimit ограничение частоты запросов на /login и /register
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"5"`
	Burst int     `yaml:"burst" env-default:"10"`
}

// Tracker настройки отметки упражнений
type Tracker struct {
	StrictOwnership bool `yaml:"strict_ownership" env:"TRACKER_STRICT_OWNERSHIP"`
}

// Load читает конфиг из файла по пути configPath и проверяет обязательные поля.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
	}
	if cfg.JWTToken.JWTSecretKey == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptySecret)
	}
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.StorageConnectionString == "" {
			return nil, fmt.Errorf("%s: storage_connection_string is required for postgres", op)
		}
	case StorageDriverMemory:
	default:
		return nil, fmt.Errorf("%s: unknown storage driver %q", op, cfg.StorageDriver)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH.
// Завершает процесс, если конфиг не найден, не читается или не задан ключ подписи.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageDriver: %s\n"+
			"HTTPServer: %s (timeout %s, idle %s)\n"+
			"GRPCServer: %s\n"+
			"GRPCAuthAddress: %s\n"+
			"Redis: %s db=%d\n"+
			"RabbitMQ exchange: %s\n"+
			"TokenTTL: %s\n"+
			"StrictOwnership: %t\n",
		c.Env,
		c.StorageDriver,
		c.HTTPServer.Address, c.HTTPServer.Timeout, c.HTTPServer.IdleTimeout,
		c.GRPCServer.Address,
		c.GRPCAuthAddress,
		c.RedisConnection.Address, c.RedisConnection.DB,
		c.RabbitMQ.Exchange,
		c.JWTToken.TokenTTL,
		c.Tracker.StrictOwnership,
	)
}
