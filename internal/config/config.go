package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type RateLimit struct {
	Max    int
	Window time.Duration
}

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string
	CORSOrigins []string

	// TrustedProxies lists proxy addresses or CIDRs whose X-Forwarded-For
	// is believed. Empty means the peer address is the client.
	TrustedProxies []string

	DBDriver    string
	DatabaseURL string

	JWTSecret []byte
	JWTTTL    time.Duration

	AdminEmail        string
	AdminPasswordHash string

	SingletonContentTypes []string

	LoginLimit      RateLimit
	AdminLoginLimit RateLimit
	RegisterLimit   RateLimit
	ContactLimit    RateLimit
	UploadLimit     RateLimit

	PostmarkServerToken string
	ContactFromEmail    string
	ContactToEmail      string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	S3Region          string
	S3Endpoint        string
	S3AccessKey       string
	S3SecretKey       string
	S3Bucket          string
	MediaPublicURL    string
	MediaMaxImageSize int64
	MediaMaxVideoSize int64
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "gym-site"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),
		CORSOrigins: CSVDefault(os.Getenv("CORS_ALLOWED_ORIGINS"), []string{"*"}),

		TrustedProxies: CSV(os.Getenv("TRUSTED_PROXIES")),

		DBDriver:    EnvDefault("DB_DRIVER", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		JWTTTL:    EnvDurationDefault("JWT_TTL", 7*24*time.Hour),

		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		SingletonContentTypes: CSVDefault(os.Getenv("CONTENT_SINGLETON_TYPES"), []string{"footer", "hero"}),

		LoginLimit: RateLimit{
			Max:    EnvIntDefault("RATE_LIMIT_LOGIN", 5),
			Window: EnvDurationDefault("RATE_LIMIT_LOGIN_WINDOW", 15*time.Minute),
		},
		AdminLoginLimit: RateLimit{
			Max:    EnvIntDefault("RATE_LIMIT_ADMIN_LOGIN", 5),
			Window: EnvDurationDefault("RATE_LIMIT_ADMIN_LOGIN_WINDOW", 15*time.Minute),
		},
		RegisterLimit: RateLimit{
			Max:    EnvIntDefault("RATE_LIMIT_REGISTER", 5),
			Window: EnvDurationDefault("RATE_LIMIT_REGISTER_WINDOW", time.Hour),
		},
		ContactLimit: RateLimit{
			Max:    EnvIntDefault("RATE_LIMIT_CONTACT", 3),
			Window: EnvDurationDefault("RATE_LIMIT_CONTACT_WINDOW", time.Hour),
		},
		UploadLimit: RateLimit{
			Max:    EnvIntDefault("RATE_LIMIT_UPLOAD", 30),
			Window: EnvDurationDefault("RATE_LIMIT_UPLOAD_WINDOW", time.Hour),
		},

		PostmarkServerToken: os.Getenv("POSTMARK_SERVER_TOKEN"),
		ContactFromEmail:    os.Getenv("CONTACT_FROM_EMAIL"),
		ContactToEmail:      os.Getenv("CONTACT_TO_EMAIL"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "site_content"),

		S3Region:          EnvDefault("S3_REGION", "us-east-1"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3AccessKey:       os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:       os.Getenv("S3_SECRET_KEY"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		MediaPublicURL:    os.Getenv("MEDIA_PUBLIC_BASE_URL"),
		MediaMaxImageSize: int64(EnvIntDefault("MEDIA_MAX_IMAGE_BYTES", 10<<20)),
		MediaMaxVideoSize: int64(EnvIntDefault("MEDIA_MAX_VIDEO_BYTES", 100<<20)),
	}
}

// Validate reports every required setting that is missing.
func (c Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) == 0 {
		errs = append(errs, errors.New("gym-site: JWT_SECRET is required"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("gym-site: DATABASE_URL is required"))
	}
	return errors.Join(errs...)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func CSVDefault(v string, def []string) []string {
	if out := CSV(v); len(out) > 0 {
		return out
	}
	return def
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
