package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// MongoDB (credential store)
	MongoURI     string
	MongoDB      string
	MongoTimeout time.Duration

	// Redis (chat cooldown); empty address disables it
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Postgres audit trail; empty DSN disables it
	AuditDBDSN    string
	MigrationsDir string

	// JWT
	JWTSecret string
	TokenTTL  time.Duration

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Mail transport
	MailProvider    string // smtp, mailgun, sendgrid
	MailFrom        string
	MailSendEnabled bool
	MailWorkers     int

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	MailgunDomain string
	MailgunAPIKey string

	SendGridAPIKey string

	// RabbitMQ; when empty emails are sent by the in-process dispatcher
	RabbitMQURL        string
	RabbitMQEmailQueue string

	// Company info for emails
	CompanyName string

	// Chat
	ChatProvider string // cohere, gemini
	CohereAPIKey string
	CohereModel  string
	GeminiAPIKey string
	GeminiModel  string
	ChatCooldown time.Duration
	ChatTimeout  time.Duration

	// Debug metrics (/api/debug/vars)
	DebugMetricsEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	smtpUser := getenv("SMTP_USER", "")
	return &Config{
		AppName: getenv("APP_NAME", "go-otp-auth"),
		Env:     getenv("NODE_ENV", getenv("APP_ENV", "development")),
		Port:    getenv("PORT", "4000"),
		GinMode: getenv("GIN_MODE", "release"),

		MongoURI:     getenv("MONGO_URI", "mongodb://localhost:27017/"),
		MongoDB:      getenv("MONGO_DB", "auth"),
		MongoTimeout: getdur("MONGO_TIMEOUT", 10*time.Second),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		AuditDBDSN:    getenv("AUDIT_DB_DSN", ""),
		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),

		JWTSecret: getenv("JWT_SECRET", "devsecret"),
		TokenTTL:  getdur("TOKEN_TTL", 7*24*time.Hour),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		MailProvider:    strings.ToLower(getenv("MAIL_PROVIDER", "smtp")),
		MailFrom:        getenv("MAIL_FROM", smtpUser),
		MailSendEnabled: getbool("MAIL_SEND_ENABLED", true),
		MailWorkers:     getint("MAIL_WORKERS", 2),

		SMTPHost: getenv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort: getint("SMTP_PORT", 465),
		SMTPUser: smtpUser,
		SMTPPass: getenv("SMTP_PASS", ""),

		MailgunDomain: getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey: getenv("MAILGUN_API_KEY", ""),

		SendGridAPIKey: getenv("SENDGRID_API_KEY", ""),

		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQEmailQueue: getenv("RABBITMQ_EMAIL_QUEUE", "emails"),

		CompanyName: getenv("COMPANY_NAME", "COMPANYTEAM"),

		ChatProvider: strings.ToLower(getenv("CHAT_PROVIDER", "cohere")),
		CohereAPIKey: getenv("COHERE_API_KEY", ""),
		CohereModel:  getenv("COHERE_MODEL", "command-r-plus"),
		GeminiAPIKey: getenv("GEMINI_API_KEY", ""),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-1.5-flash"),
		ChatCooldown: getdur("CHAT_COOLDOWN", 1500*time.Millisecond),
		ChatTimeout:  getdur("CHAT_TIMEOUT", 30*time.Second),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", false),
	}
}

// IsProduction reports whether cookies must be issued with production flags
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// ChatEnabled reports whether the configured chat provider has credentials
func (c *Config) ChatEnabled() bool {
	switch c.ChatProvider {
	case "gemini":
		return c.GeminiAPIKey != ""
	case "cohere":
		return c.CohereAPIKey != ""
	}
	return false
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
