package config

import (
	"errors"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// AppConfig holds environment driven configuration values.
// Secrets have no defaults in code and must come from the config file or the environment.
type AppConfig struct {
	AppPort            string
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Gin framework configuration
	GinMode    string
	GinLogPath string
	// Hosted auth: HS256 secret that signs user access tokens
	JWTSecret string
	// bcrypt hash of the operator key guarding admin routes
	AdminKeyHash string
	// Database: postgres (default), mysql or sqlite
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	// Redis for caching and execution sessions
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Engine
	DefaultTimezone   string
	SessionTTLMinutes int
	CacheTTLSeconds   int
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var (
	cfg    AppConfig
	loaded bool
	mu     sync.Mutex
)

// DefaultPath is where Load looks for the JSON config file.
var DefaultPath = filepath.Join("config", "config.json")

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> SOTERIA_* environment overrides.
func Load() AppConfig {
	return LoadFrom(DefaultPath)
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path string) AppConfig {
	mu.Lock()
	defer mu.Unlock()
	if loaded {
		return cfg
	}

	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			log.Printf("config: ignoring %s: %v", path, err)
		}
	}

	cfg = fromViper(v)
	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	mu.Lock()
	ok := loaded
	mu.Unlock()
	if !ok {
		return Load()
	}
	return cfg
}

// Set replaces the cached configuration. Intended for tests and the CLI.
func Set(c AppConfig) {
	mu.Lock()
	cfg = c
	loaded = true
	mu.Unlock()
}

// Validate reports settings the HTTP server cannot run without.
func (c AppConfig) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("auth.jwt_secret (SOTERIA_AUTH_JWT_SECRET) must be set")
	}
	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return errors.New("database.driver must be postgres, mysql or sqlite")
	}
	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("SOTERIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.port", "8080")
	v.SetDefault("app.rate_limit_per_minute", 120)
	v.SetDefault("app.allowed_origins", []string{"*"})
	v.SetDefault("gin.mode", "release")
	v.SetDefault("gin.log_path", "logs/gin.log")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("engine.default_timezone", "UTC")
	v.SetDefault("engine.session_ttl_minutes", 30)
	v.SetDefault("engine.cache_ttl_seconds", 600)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "logs/app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	return v
}

func fromViper(v *viper.Viper) AppConfig {
	return AppConfig{
		AppPort:            v.GetString("app.port"),
		RateLimitPerMinute: v.GetInt("app.rate_limit_per_minute"),
		AllowedOrigins:     splitList(v.GetStringSlice("app.allowed_origins")),
		GinMode:            v.GetString("gin.mode"),
		GinLogPath:         v.GetString("gin.log_path"),
		JWTSecret:          v.GetString("auth.jwt_secret"),
		AdminKeyHash:       v.GetString("auth.admin_key_hash"),
		DBDriver:           strings.ToLower(v.GetString("database.driver")),
		DatabaseURI:        v.GetString("database.uri"),
		DBHost:             v.GetString("database.host"),
		DBPort:             v.GetString("database.port"),
		DBUser:             v.GetString("database.user"),
		DBPassword:         v.GetString("database.password"),
		DBName:             v.GetString("database.name"),
		DBSSLMode:          v.GetString("database.sslmode"),
		RedisHost:          v.GetString("redis.host"),
		RedisPort:          v.GetInt("redis.port"),
		RedisDB:            v.GetInt("redis.db"),
		RedisPassword:      v.GetString("redis.password"),
		DefaultTimezone:    v.GetString("engine.default_timezone"),
		SessionTTLMinutes:  v.GetInt("engine.session_ttl_minutes"),
		CacheTTLSeconds:    v.GetInt("engine.cache_ttl_seconds"),
		LogLevel:           v.GetString("log.level"),
		LogPath:            v.GetString("log.path"),
		LogMaxSizeMB:       v.GetInt("log.max_size_mb"),
		LogMaxBackups:      v.GetInt("log.max_backups"),
		LogMaxAgeDays:      v.GetInt("log.max_age_days"),
		LogCompress:        v.GetBool("log.compress"),
	}
}

// splitList accepts both JSON arrays and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file") || strings.Contains(err.Error(), "cannot find")
}
