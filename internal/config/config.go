package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	CORSOrigins string

	DatabaseDriver string
	DatabaseURL    string
	RedisURL       string
	NATSURL        string
	EventChannel   string

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	MaxAudioMB             int
	MaxVideoMB             int

	AIProvider          string
	OpenAIAPIKey        string
	OpenAIModel         string
	GeminiAPIKey        string
	GeminiModel         string
	AITimeout           time.Duration
	AIRequestsPerSecond float64
	AIBurst             int
	AIMaxRetries        int

	TechnicalQuestions    int
	HRQuestions           int
	EvaluationConcurrency int
	EvaluationWorkers     int
	EvaluationQueueSize   int
	EvaluationTimeout     time.Duration
	SummaryCacheTTL       time.Duration
	ShutdownTimeout       time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("INTERVIEW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Interview Agent API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cors.origins", "*")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("events.channel", "interview")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("bcrypt.cost", 10)
	v.SetDefault("cloudinary.folder", "interviews")
	v.SetDefault("media.max_audio_mb", 10)
	v.SetDefault("media.max_video_mb", 50)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.openai_model", "gpt-4o-mini")
	v.SetDefault("ai.gemini_model", "gemini-1.5-flash")
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.requests_per_second", 2)
	v.SetDefault("ai.burst", 4)
	v.SetDefault("ai.max_retries", 2)
	v.SetDefault("interview.technical_questions", 8)
	v.SetDefault("interview.hr_questions", 5)
	v.SetDefault("evaluation.concurrency", 4)
	v.SetDefault("evaluation.workers", 2)
	v.SetDefault("evaluation.queue_size", 64)
	v.SetDefault("evaluation.timeout", "5m")
	v.SetDefault("evaluation.summary_cache_ttl", "2m")
	v.SetDefault("shutdown.timeout", "30s")

	jwtTTL, err := durationValue(v, "jwt.ttl")
	if err != nil {
		return Config{}, err
	}
	aiTimeout, err := durationValue(v, "ai.timeout")
	if err != nil {
		return Config{}, err
	}
	evaluationTimeout, err := durationValue(v, "evaluation.timeout")
	if err != nil {
		return Config{}, err
	}
	summaryTTL, err := durationValue(v, "evaluation.summary_cache_ttl")
	if err != nil {
		return Config{}, err
	}
	shutdownTimeout, err := durationValue(v, "shutdown.timeout")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		CORSOrigins:            v.GetString("cors.origins"),
		DatabaseDriver:         strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		EventChannel:           v.GetString("events.channel"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTTTL:                 jwtTTL,
		BcryptCost:             v.GetInt("bcrypt.cost"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		MaxAudioMB:             v.GetInt("media.max_audio_mb"),
		MaxVideoMB:             v.GetInt("media.max_video_mb"),
		AIProvider:             strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		OpenAIModel:            v.GetString("ai.openai_model"),
		GeminiAPIKey:           v.GetString("gemini_api_key"),
		GeminiModel:            v.GetString("ai.gemini_model"),
		AITimeout:              aiTimeout,
		AIRequestsPerSecond:    v.GetFloat64("ai.requests_per_second"),
		AIBurst:                v.GetInt("ai.burst"),
		AIMaxRetries:           v.GetInt("ai.max_retries"),
		TechnicalQuestions:     v.GetInt("interview.technical_questions"),
		HRQuestions:            v.GetInt("interview.hr_questions"),
		EvaluationConcurrency:  v.GetInt("evaluation.concurrency"),
		EvaluationWorkers:      v.GetInt("evaluation.workers"),
		EvaluationQueueSize:    v.GetInt("evaluation.queue_size"),
		EvaluationTimeout:      evaluationTimeout,
		SummaryCacheTTL:        summaryTTL,
		ShutdownTimeout:        shutdownTimeout,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	switch cfg.AIProvider {
	case "openai", "gemini":
	default:
		return Config{}, fmt.Errorf("unsupported ai provider %q", cfg.AIProvider)
	}

	if cfg.TechnicalQuestions <= 0 || cfg.HRQuestions <= 0 {
		return Config{}, fmt.Errorf("question counts must be positive")
	}

	if cfg.EvaluationConcurrency <= 0 {
		cfg.EvaluationConcurrency = 4
	}
	if cfg.EvaluationWorkers <= 0 {
		cfg.EvaluationWorkers = 2
	}
	if cfg.EvaluationQueueSize <= 0 {
		cfg.EvaluationQueueSize = 64
	}
	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = 10
	}

	return cfg, nil
}

func durationValue(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, fmt.Errorf("%s must not be empty", key)
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}

	return value, nil
}
