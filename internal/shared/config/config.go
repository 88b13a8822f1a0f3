package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultMaxUploadBytes = 10 << 20
	defaultMinTextLength  = 20
	defaultModel          = "gemini-2.5-flash"
)

var defaultMediaTypes = []string{
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string

	DocumentStore     string
	DatabaseURL       string
	DBPool            DBPool
	MongoURI          string
	MongoDatabase     string
	MongoCollection   string
	ObjectStoreType   string
	LocalStoreDir     string
	AWSRegion         string
	S3Bucket          string
	S3Prefix          string
	SSEKMSKeyID       string
	MinioEndpoint     string
	MinioAccessKey    string
	MinioSecretKey    string
	MinioBucket       string
	MinioUseSSL       bool
	RedisAddr         string
	RedisPassword     string
	LockTTL           time.Duration
	LLMProvider       string
	LLMModels         []string
	GeminiAPIKey      string
	OpenAIAPIKey      string
	MaxUploadBytes    int64
	AllowedMediaTypes []string
	MinTextLength     int

	GenerateRateLimitRPS   float64
	GenerateRateLimitBurst int
	TracingExporter        string
}

// DBPool overrides the Postgres pool settings. Zero values keep the defaults.
type DBPool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience; real env wins.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	mongoURI := strings.TrimSpace(os.Getenv("MONGODB_URI"))

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "*")),

		DocumentStore:     normalizeDocumentStore(getEnv("DOCUMENT_STORE", ""), dbURL, mongoURI),
		DatabaseURL:       dbURL,
		DBPool: DBPool{
			MaxOpenConns:    int(getInt64("DB_MAX_OPEN_CONNS", 0)),
			MaxIdleConns:    int(getInt64("DB_MAX_IDLE_CONNS", 0)),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 0),
			ConnMaxIdleTime: getDuration("DB_CONN_MAX_IDLE_TIME", 0),
			PingTimeout:     getDuration("DB_PING_TIMEOUT", 0),
		},
		MongoURI:          mongoURI,
		MongoDatabase:     getEnv("MONGODB_DATABASE", "study_agent"),
		MongoCollection:   getEnv("MONGODB_COLLECTION", "documents"),
		ObjectStoreType:   normalizeObjectStore(getEnv("OBJECT_STORE", "none")),
		LocalStoreDir:     getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:         getEnv("AWS_REGION", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Prefix:          getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:       getEnv("SSE_KMS_KEY_ID", ""),
		MinioEndpoint:     getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey:    getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:    getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:       getEnv("MINIO_BUCKET", "study-uploads"),
		MinioUseSSL:       getBool("MINIO_USE_SSL", false),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		LockTTL:           getDuration("LOCK_TTL", 2*time.Minute),
		LLMProvider:       strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
		LLMModels:         splitAndTrim(getEnv("LLM_MODELS", defaultModel)),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		MaxUploadBytes:    getInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		AllowedMediaTypes: splitAndTrim(getEnv("ALLOWED_MEDIA_TYPES", strings.Join(defaultMediaTypes, ","))),
		MinTextLength:     int(getInt64("MIN_TEXT_LENGTH", defaultMinTextLength)),

		GenerateRateLimitRPS:   getFloat("RATE_LIMIT_GENERATE_RPS", 0),
		GenerateRateLimitBurst: int(getInt64("RATE_LIMIT_GENERATE_BURST", 5)),
		TracingExporter:        strings.ToLower(getEnv("TRACING_EXPORTER", "none")),
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getInt64(key string, def int64) int64 {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

// normalizeDocumentStore picks the document backend. An explicit choice wins,
// otherwise whichever connection string is present decides.
func normalizeDocumentStore(raw, dbURL, mongoURI string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "mongo", "mongodb":
		return "mongo"
	case "memory":
		return "memory"
	}
	switch {
	case dbURL != "":
		return "postgres"
	case mongoURI != "":
		return "mongo"
	default:
		return "memory"
	}
}

func normalizeObjectStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	case "local":
		return "local"
	default:
		return "none"
	}
}
