package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Режимы хранения игровых сессий
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	GitHub    GitHubConfig
	RateLimit RateLimitConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	// Для 'single', если не пуст, используется первый адрес из списка.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single' (для обратной совместимости).
	// Используется, если Mode="single" и Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	// MaxRetries: Максимальное количество попыток переподключения (-1 - бесконечно). По умолчанию 0 (без ретраев).
	MaxRetries int `mapstructure:"max_retries"`

	// MinRetryBackoff: Минимальный интервал между попытками (в миллисекундах). По умолчанию 8ms.
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`

	// MaxRetryBackoff: Максимальный интервал между попытками (в миллисекундах). По умолчанию 512ms.
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// SessionConfig содержит настройки кеша игровых сессий
type SessionConfig struct {
	// Store: бэкенд кеша ("memory" или "redis"). По умолчанию "memory".
	Store string `mapstructure:"store"`

	// RetentionMinutes: максимальный возраст сессии в минутах. По умолчанию 60.
	RetentionMinutes int `mapstructure:"retention_minutes"`

	// SweepIntervalMinutes: интервал фоновой очистки памяти. По умолчанию 60.
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes"`
}

// Retention возвращает время жизни сессии
func (s *SessionConfig) Retention() time.Duration {
	minutes := s.RetentionMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

// SweepInterval возвращает интервал фоновой очистки
func (s *SessionConfig) SweepInterval() time.Duration {
	minutes := s.SweepIntervalMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

// GitHubConfig содержит настройки хранилища изображений в GitHub-репозитории
type GitHubConfig struct {
	Owner  string `mapstructure:"owner"`
	Repo   string `mapstructure:"repo"`
	Branch string `mapstructure:"branch"`
	Token  string `mapstructure:"token"`
}

// Enabled сообщает, настроено ли хранилище изображений
func (g *GitHubConfig) Enabled() bool {
	return g.Owner != "" && g.Repo != "" && g.Token != ""
}

// RateLimitConfig содержит настройки ограничения частоты запросов
type RateLimitConfig struct {
	// Enabled: включает rate limiting (требует Redis). По умолчанию false.
	Enabled bool `mapstructure:"enabled"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Устанавливаем значения по умолчанию
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("session.store", SessionStoreMemory)
	vip.SetDefault("session.retention_minutes", 60)
	vip.SetDefault("session.sweep_interval_minutes", 60)
	vip.SetDefault("github.branch", "main")

	// 2. Привязываем переменные окружения ЯВНО
	// Привязка для секции Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS") // Для массива строк
	vip.BindEnv("redis.addr", "REDIS_ADDR")   // Для одиночной строки
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Привязка для секции Session
	vip.BindEnv("session.store", "SESSION_STORE")
	vip.BindEnv("session.retention_minutes", "SESSION_RETENTION_MINUTES")
	vip.BindEnv("session.sweep_interval_minutes", "SESSION_SWEEP_INTERVAL_MINUTES")

	// Привязка для секции GitHub (токен всегда из окружения)
	vip.BindEnv("github.owner", "GH_IMAGE_OWNER")
	vip.BindEnv("github.repo", "GH_IMAGE_REPO")
	vip.BindEnv("github.branch", "GH_IMAGE_BRANCH")
	vip.BindEnv("github.token", "GH_IMAGE_TOKEN")

	// Привязка для RateLimit
	vip.BindEnv("ratelimit.enabled", "RATELIMIT_ENABLED")

	// Привязка для Server
	vip.BindEnv("server.port", "SERVER_PORT")

	// 3. Устанавливаем путь к файлу конфигурации
	if configPath != "" {
		vip.SetConfigFile(configPath)
		// 4. Пытаемся прочитать файл конфигурации (не страшно, если его нет, т.к. есть BindEnv)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 5. Анмаршалим конфигурацию (Viper объединит значения из файла и привязанных env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Port: %s", cfg.Database.Port)
		log.Printf("Database User: %s", cfg.Database.User)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("Redis Mode: %s", cfg.Redis.Mode)
		log.Printf("Session Store: %s", cfg.Session.Store)
		log.Printf("Session Retention: %s", cfg.Session.Retention())
		log.Printf("GitHub Image Store Enabled: %t", cfg.GitHub.Enabled())
		log.Printf("Rate Limit Enabled: %t", cfg.RateLimit.Enabled)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	// 7. Проверка обязательных параметров
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	switch cfg.Session.Store {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if len(cfg.Redis.Addrs) == 0 && cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("session.store=redis requires redis configuration (check REDIS_ADDR env var)")
		}
	default:
		return nil, fmt.Errorf("unknown session store %q (expected %q or %q)",
			cfg.Session.Store, SessionStoreMemory, SessionStoreRedis)
	}

	return &cfg, nil
}
