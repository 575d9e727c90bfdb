package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// PlaceholderDIDKey - .env.example에 들어있는 기본값 (설정 안 된 것으로 취급)
const PlaceholderDIDKey = "your_did_api_key_here"

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// D-ID
	DIDAPIKey          string
	DIDAPIURL          string
	DIDPollInterval    time.Duration
	DIDMaxPollAttempts int

	// 스크립트 향상 (Gemini / OpenAI)
	EnhancerProvider string
	GeminiAPIKeys    []string
	GeminiModel      string
	OpenAIAPIKey     string
	OpenAIModel      string
	VertexProject    string
	VertexLocation   string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Supabase
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseStorageBucket string

	// 결과 영상 보관 (supabase | s3 | none)
	StorageBackend string
	S3Bucket       string
	S3Region       string
	S3Prefix       string
	S3PresignTTL   time.Duration

	// Kafka
	KafkaBrokers []string
	KafkaTopic   string

	// 썸네일
	FFmpegEnabled bool

	// 스크립트 필터
	BannedWords []string

	// Server
	Port string

	// Credit
	VideoCreditPrice int
}

var globalConfig *Config

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	cfg := &Config{
		// D-ID
		DIDAPIKey:          getEnv("DID_API_KEY", ""),
		DIDAPIURL:          strings.TrimRight(getEnv("DID_API_URL", "https://api.d-id.com"), "/"),
		DIDPollInterval:    time.Duration(getEnvInt("DID_POLL_INTERVAL_SECONDS", 5)) * time.Second,
		DIDMaxPollAttempts: getEnvInt("DID_MAX_POLL_ATTEMPTS", 60),

		// Enhancer
		EnhancerProvider: strings.ToLower(getEnv("ENHANCER_PROVIDER", "gemini")),
		GeminiAPIKeys:    splitList(getEnv("GEMINI_API_KEY", "")),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		VertexProject:    getEnv("VERTEXAI_PROJECT", ""),
		VertexLocation:   getEnv("VERTEXAI_LOCATION", "us-central1"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   getEnvBool("REDIS_USE_TLS", false),

		// Supabase
		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "talking-videos"),

		// Storage
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", "none")),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Region:       getEnv("S3_REGION", ""),
		S3Prefix:       getEnv("S3_PREFIX", "talking-videos"),
		S3PresignTTL:   time.Duration(getEnvInt("S3_PRESIGN_TTL_HOURS", 24)) * time.Hour,

		// Kafka
		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "talking-video-events"),

		FFmpegEnabled: getEnvBool("FFMPEG_ENABLED", false),
		BannedWords:   splitList(getEnv("BANNED_WORDS", "")),

		Port:             getEnv("PORT", "8080"),
		VideoCreditPrice: getEnvInt("VIDEO_CREDIT_PRICE", 10),
	}

	// 필수 환경변수 검증
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !cfg.HasDIDKey() {
		log.Println("⚠️  DID_API_KEY not set - video generation will be refused")
	}

	globalConfig = cfg

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   D-ID: %s (poll %v x %d)", cfg.DIDAPIURL, cfg.DIDPollInterval, cfg.DIDMaxPollAttempts)
	log.Printf("   Enhancer: %s", cfg.EnhancerProvider)
	if cfg.EnhancerProvider == "vertex" {
		log.Printf("   Vertex AI: project=%s, location=%s", cfg.VertexProject, cfg.VertexLocation)
	}
	log.Printf("   Redis: %s (enabled: %v, TLS: %v)", cfg.GetRedisAddr(), cfg.RedisEnabled(), cfg.RedisUseTLS)
	log.Printf("   Supabase: %s (enabled: %v)", cfg.SupabaseURL, cfg.SupabaseEnabled())
	log.Printf("   Storage: %s", cfg.StorageBackend)
	log.Printf("   Kafka: %v (topic: %s)", cfg.KafkaBrokers, cfg.KafkaTopic)

	return cfg, nil
}

// GetConfig - 로드된 설정 가져오기
func GetConfig() *Config {
	if globalConfig == nil {
		log.Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

// validate - 조합이 맞지 않는 설정 검증
func (c *Config) validate() error {
	if c.DIDMaxPollAttempts <= 0 {
		return fmt.Errorf("DID_MAX_POLL_ATTEMPTS must be positive")
	}
	if c.DIDPollInterval <= 0 {
		return fmt.Errorf("DID_POLL_INTERVAL_SECONDS must be positive")
	}
	switch c.StorageBackend {
	case "none", "":
	case "supabase":
		if !c.SupabaseEnabled() {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for STORAGE_BACKEND=supabase")
		}
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for STORAGE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND: %s", c.StorageBackend)
	}
	switch c.EnhancerProvider {
	case "gemini", "openai":
	case "vertex":
		if c.VertexProject == "" {
			return fmt.Errorf("VERTEXAI_PROJECT is required for ENHANCER_PROVIDER=vertex")
		}
	default:
		return fmt.Errorf("unknown ENHANCER_PROVIDER: %s", c.EnhancerProvider)
	}
	return nil
}

// HasDIDKey - D-ID 키가 실제로 설정됐는지 (placeholder 제외)
func (c *Config) HasDIDKey() bool {
	return c.DIDAPIKey != "" && c.DIDAPIKey != PlaceholderDIDKey
}

// RedisEnabled - Redis 사용 여부
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// SupabaseEnabled - Supabase 사용 여부
func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

// KafkaEnabled - Kafka 이벤트 발행 여부
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("⚠️  Invalid %s=%q, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// splitList - "a, b,c" → [a b c]
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
