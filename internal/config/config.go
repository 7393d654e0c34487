package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	GeminiAPIKey             string
	GeminiModelID            string
	BedrockModelID           string
	NarrativeTimeout         time.Duration
	NarrativeBreakerFailures int
	NarrativeBreakerCooldown time.Duration

	PolicyFile string
	WindowSize int

	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SMSProvider       string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	IngestQueueURL string
	UseMemoryQueue bool
	WorkerCount    int
	// MaxReceives drops an event after this many failed receives; 0 defers to the queue's redrive policy.
	MaxReceives int

	DatabaseURL string
	FixtureFile string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	AlertCooldown time.Duration

	SweepInterval    time.Duration
	SweepConcurrency int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		GeminiAPIKey:             getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:            getEnv("GEMINI_MODEL_ID", "gemini-flash-lite-latest"),
		BedrockModelID:           getEnv("BEDROCK_MODEL_ID", ""),
		NarrativeTimeout:         getEnvAsDuration("NARRATIVE_TIMEOUT", 15*time.Second),
		NarrativeBreakerFailures: getEnvAsInt("NARRATIVE_BREAKER_FAILURES", 5),
		NarrativeBreakerCooldown: getEnvAsDuration("NARRATIVE_BREAKER_COOLDOWN", time.Minute),

		PolicyFile: getEnv("POLICY_FILE", ""),
		WindowSize: getEnvAsInt("WINDOW_SIZE", 20),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Vitals Monitor"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SMSProvider:       strings.ToLower(strings.TrimSpace(getEnv("SMS_PROVIDER", "stub"))),
		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:  getEnv("TWILIO_FROM_NUMBER", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		IngestQueueURL: getEnv("INGEST_QUEUE_URL", ""),
		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", false),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),
		MaxReceives:    getEnvAsInt("INGEST_MAX_RECEIVES", 0),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		FixtureFile: getEnv("FIXTURE_FILE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		AlertCooldown: getEnvAsDuration("ALERT_COOLDOWN", 0),

		SweepInterval:    getEnvAsDuration("SWEEP_INTERVAL", 0),
		SweepConcurrency: getEnvAsInt("SWEEP_CONCURRENCY", 4),
	}
}

// UsesMemoryQueue is true when no SQS queue is configured or it is forced off.
func (c *Config) UsesMemoryQueue() bool {
	return c.UseMemoryQueue || strings.TrimSpace(c.IngestQueueURL) == ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
