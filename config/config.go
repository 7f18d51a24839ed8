package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"

	// DefaultAdminPassword seeds the admin account in development only.
	DefaultAdminPassword = "admin123"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"APP_ENV"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	DBDriver      string `mapstructure:"DB_DRIVER"`
	MongoURI      string `mapstructure:"MONGODB_URI"`
	MongoDatabase string `mapstructure:"MONGODB_DATABASE"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogEncoding string `mapstructure:"LOG_ENCODING"`

	StrictOrderTransitions bool `mapstructure:"STRICT_ORDER_TRANSITIONS"`

	AdminName     string `mapstructure:"ADMIN_NAME"`
	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
}

var defaults = map[string]any{
	"PORT":                     "5000",
	"APP_ENV":                  "development",
	"REQUEST_TIMEOUT":          10 * time.Second,
	"DB_DRIVER":                DriverMongo,
	"MONGODB_URI":              "mongodb://localhost:27017/?replicaSet=rs0",
	"MONGODB_DATABASE":         "storefront",
	"JWT_SECRET":               "",
	"JWT_TTL":                  72 * time.Hour,
	"REDIS_ADDR":               "",
	"REDIS_PASSWORD":           "",
	"REDIS_DB":                 0,
	"CACHE_TTL":                30 * time.Second,
	"LOG_LEVEL":                "info",
	"LOG_ENCODING":             "json",
	"STRICT_ORDER_TRANSITIONS": false,
	"ADMIN_NAME":               "Admin User",
	"ADMIN_EMAIL":              "admin@example.com",
	"ADMIN_PASSWORD":           DefaultAdminPassword,
}

// LoadEnv loads environment variables from a .env file, or from ENV_FILE
// when set.
func LoadEnv() {
	err := godotenv.Load(GetEnv("ENV_FILE", ".env"))
	if err != nil {
		log.Println("No .env file loaded, using process environment")
	}
}

// GetEnv retrieves environment variables with a fallback
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Load reads .env, then the process environment, into a Config.
func Load() (*Config, error) {
	LoadEnv()
	return FromViper(viper.New())
}

// FromViper binds defaults and the environment on v and decodes the result.
func FromViper(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.DBDriver = strings.ToLower(cfg.DBDriver)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is not defined")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET is required outside development")
		}
		c.JWTSecret = "development-secret"
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if !c.IsDevelopment() && (c.AdminPassword == "" || c.AdminPassword == DefaultAdminPassword) {
		return fmt.Errorf("ADMIN_PASSWORD must be set to a non-default value outside development")
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
