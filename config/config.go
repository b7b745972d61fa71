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

// DefaultEmployees is the roster participants pick from on Meme questions.
var DefaultEmployees = []string{
	"John Doe",
	"Jane Smith",
	"Mike Johnson",
	"Sarah Williams",
	"David Brown",
}

type Config struct {
	AppPort string
	AppMode string

	StoreDriver   string
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	SQLitePath    string
	MongoURI      string
	MongoDatabase string

	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	UploadBackend  string
	UploadEndpoint string
	UploadPreset   string
	UploadMaxBytes int64
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3Endpoint     string
	S3PublicBase   string

	ClientTokenSecret string
	Employees         []string
	RealtimeDebounce  time.Duration
	SubmitRateLimit   int
	SubmitRateWindow  time.Duration
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMongo    = "mongo"

	UploadBackendPreset = "preset"
	UploadBackendS3     = "s3"

	ReleaseMode = "release"

	// DefaultClientTokenSecret is only fit for local development.
	DefaultClientTokenSecret = "change-me"
)

var ErrDefaultClientTokenSecret = errors.New("CLIENT_TOKEN_SECRET must be set in release mode")

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort: getEnv("APP_PORT", "8080"),
		AppMode: getEnv("APP_MODE", "debug"),

		StoreDriver:   getEnv("STORE_DRIVER", StoreDriverPostgres),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "live_poll"),
		DBPort:        getEnv("DB_PORT", "5432"),
		SQLitePath:    getEnv("SQLITE_PATH", "live_poll.db"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "live_poll"),

		RedisEnabled:  getEnvAsBool("REDIS_ENABLED", true),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		UploadBackend:  getEnv("UPLOAD_BACKEND", UploadBackendPreset),
		UploadEndpoint: getEnv("UPLOAD_ENDPOINT", ""),
		UploadPreset:   getEnv("UPLOAD_PRESET", ""),
		UploadMaxBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 20*1024*1024)),
		S3Region:       getEnv("S3_REGION", ""),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3PublicBase:   getEnv("S3_PUBLIC_BASE", ""),

		ClientTokenSecret: getEnv("CLIENT_TOKEN_SECRET", DefaultClientTokenSecret),
		Employees:         getEnvAsList("POLL_EMPLOYEES", DefaultEmployees),
		RealtimeDebounce:  time.Duration(getEnvAsInt("REALTIME_DEBOUNCE_MS", 150)) * time.Millisecond,
		SubmitRateLimit:   getEnvAsInt("SUBMIT_RATE_LIMIT", 10),
		SubmitRateWindow:  time.Duration(getEnvAsInt("SUBMIT_RATE_WINDOW_SEC", 60)) * time.Second,
	}
}

// UsesDefaultClientTokenSecret reports whether client tokens are signed with
// the well-known development secret.
func (c *Config) UsesDefaultClientTokenSecret() bool {
	return c.ClientTokenSecret == "" || c.ClientTokenSecret == DefaultClientTokenSecret
}

// Validate rejects settings that are unsafe to serve with.
func (c *Config) Validate() error {
	if c.AppMode == ReleaseMode && c.UsesDefaultClientTokenSecret() {
		return ErrDefaultClientTokenSecret
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping blank entries.
func getEnvAsList(key string, fallback []string) []string {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
