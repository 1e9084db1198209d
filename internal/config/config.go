package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
	// Origin is the single allowed CORS origin for the SPA client.
	Origin string
	// IdleTimeout aborts requests that take longer than this with 408.
	IdleTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	// AccessTokenTTL is configured in seconds (ACCESS_TOKEN_DURATION).
	AccessTokenTTL time.Duration
	// RefreshTokenTTL backs the HttpOnly cookie; 7 days unless overridden.
	RefreshTokenTTL time.Duration
}

type AuthConfig struct {
	// HashCost is the bcrypt cost used when hashing new passwords.
	HashCost int
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("API_PORT", "5000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("SERVER_TIMEOUT", 5000)
	viper.SetDefault("ORIGIN", "http://localhost:3000")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("ACCESS_TOKEN_DURATION", 300)
	viper.SetDefault("REFRESH_TOKEN_DURATION", 604800)
	viper.SetDefault("HASH_SALT", 10)
	viper.SetDefault("RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("API_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("SERVER_ENVIRONMENT"),
			Origin:      viper.GetString("ORIGIN"),
			IdleTimeout: time.Duration(viper.GetInt("SERVER_TIMEOUT")) * time.Millisecond,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGO_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		JWT: JWTConfig{
			AccessSecret:    os.Getenv("ACCESS_TOKEN_SECRET"),
			RefreshSecret:   os.Getenv("REFRESH_TOKEN_SECRET"),
			AccessTokenTTL:  time.Duration(viper.GetInt("ACCESS_TOKEN_DURATION")) * time.Second,
			RefreshTokenTTL: time.Duration(viper.GetInt("REFRESH_TOKEN_DURATION")) * time.Second,
		},
		Auth: AuthConfig{
			HashCost: viper.GetInt("HASH_SALT"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	// Basic validation
	if cfg.JWT.AccessSecret == "" || cfg.JWT.RefreshSecret == "" {
		log.Println("WARNING: ACCESS_TOKEN_SECRET / REFRESH_TOKEN_SECRET not set; set secure values in production")
	}

	return cfg, nil
}
