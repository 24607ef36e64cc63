package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Kafka     KafkaConfig
	Storage   StorageConfig
	Email     EmailConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  int // in minutes
	RefreshExpiry int // in days
}

type CacheConfig struct {
	TTL time.Duration
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type StorageConfig struct {
	Dir         string
	PublicURL   string
	MaxUploadMB int64
}

type EmailConfig struct {
	Endpoint             string
	ServiceID            string
	TemplateOrderCreated string
	TemplateStatusUpdate string
	PublicKey            string
	PrivateKey           string
	AdminAddress         string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return fromViper()
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 15)
	viper.SetDefault("JWT_REFRESH_EXPIRY", 7)
	viper.SetDefault("CACHE_TTL", "5m")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 60)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC_ORDERS", "orders.events")
	viper.SetDefault("STORAGE_DIR", "./uploads")
	viper.SetDefault("STORAGE_PUBLIC_URL", "http://localhost:8080/media")
	viper.SetDefault("STORAGE_MAX_UPLOAD_MB", 50)
	viper.SetDefault("EMAIL_ENDPOINT", "https://api.emailjs.com/api/v1.0/email/send")
	viper.SetDefault("EMAIL_TEMPLATE_ORDER_CREATED", "order_created")
	viper.SetDefault("EMAIL_TEMPLATE_STATUS_UPDATE", "order_status")
}

func fromViper() *Config {
	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  viper.GetInt("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: viper.GetInt("JWT_REFRESH_EXPIRY"),
		},
		Cache: CacheConfig{
			TTL: viper.GetDuration("CACHE_TTL"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(viper.GetString("KAFKA_BROKERS")),
			Topic:   viper.GetString("KAFKA_TOPIC_ORDERS"),
		},
		Storage: StorageConfig{
			Dir:         viper.GetString("STORAGE_DIR"),
			PublicURL:   strings.TrimRight(viper.GetString("STORAGE_PUBLIC_URL"), "/"),
			MaxUploadMB: viper.GetInt64("STORAGE_MAX_UPLOAD_MB"),
		},
		Email: EmailConfig{
			Endpoint:             viper.GetString("EMAIL_ENDPOINT"),
			ServiceID:            viper.GetString("EMAIL_SERVICE_ID"),
			TemplateOrderCreated: viper.GetString("EMAIL_TEMPLATE_ORDER_CREATED"),
			TemplateStatusUpdate: viper.GetString("EMAIL_TEMPLATE_STATUS_UPDATE"),
			PublicKey:            viper.GetString("EMAIL_PUBLIC_KEY"),
			PrivateKey:           viper.GetString("EMAIL_PRIVATE_KEY"),
			AdminAddress:         viper.GetString("EMAIL_ADMIN_ADDRESS"),
		},
	}
}

// DSN returns the Postgres connection URL for the pgx stdlib driver.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Database.User, c.Database.Password),
		Host:   fmt.Sprintf("%s:%s", c.Database.Host, c.Database.Port),
		Path:   "/" + c.Database.Database,
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	if c.Database.Schema != "" {
		q.Set("search_path", c.Database.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
