package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	LogLevel       string
	AllowedOrigins []string
	// SMTP relay
	SMTPHost      string
	SMTPPort      int
	SMTPSecure    bool // Implicit TLS (465); STARTTLS is required otherwise
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string // Verified sender, defaults to the SMTP login
	SMTPTimeout   time.Duration
	// Contact form
	ContactEmailTo  string
	MailDryRun      bool // Log notifications instead of sending them
	SpamMinFillTime time.Duration
	// Content repository (Sanity)
	SanityProjectID  string
	SanityDataset    string
	SanityAPIVersion string
	SanityAPIToken   string
	SanityUseCDN     bool
	ContentTimeout   time.Duration
	// Redis/Upstash content cache
	UpstashRedisURL      string
	UpstashRedisPassword string
	ContentCacheTTL      time.Duration
}

func LoadConfig() (*Config, error) {
	// .env is only present on developer machines
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		// SMTP Configuration
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnvInt("SMTP_PORT", 465),
		SMTPSecure:    getEnvBool("SMTP_SECURE", true),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", ""),
		SMTPTimeout:   time.Duration(getEnvInt("SMTP_TIMEOUT_SECONDS", 10)) * time.Second,
		// Contact form
		ContactEmailTo:  getEnv("CONTACT_EMAIL_TO", ""),
		MailDryRun:      getEnvBool("MAIL_DRY_RUN", false),
		SpamMinFillTime: time.Duration(getEnvInt("SPAM_MIN_FILL_MS", 3000)) * time.Millisecond,
		// Content repository
		SanityProjectID:  getEnv("SANITY_PROJECT_ID", ""),
		SanityDataset:    getEnv("SANITY_DATASET", "production"),
		SanityAPIVersion: getEnv("SANITY_API_VERSION", "2024-01-01"),
		SanityAPIToken:   getEnv("SANITY_API_TOKEN", ""),
		SanityUseCDN:     getEnvBool("SANITY_USE_CDN", true),
		ContentTimeout:   time.Duration(getEnvInt("CONTENT_TIMEOUT_SECONDS", 10)) * time.Second,
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		ContentCacheTTL:      time.Duration(getEnvInt("CONTENT_CACHE_TTL_SECONDS", 300)) * time.Second,
	}

	// Missing mail settings are not fatal: the contact form answers with a
	// "service unavailable" message until they are provided.
	if missing := cfg.MissingMailSettings(); len(missing) > 0 {
		log.Printf("WARNING: contact form disabled, missing %s", strings.Join(missing, ", "))
	}
	if cfg.SanityProjectID == "" {
		log.Println("WARNING: SANITY_PROJECT_ID not configured. Content endpoints will serve fallbacks.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Content cache disabled.")
	}

	return cfg, nil
}

// MissingMailSettings lists the environment variables the contact form still needs.
// Credentials are not required in dry-run mode.
func (c *Config) MissingMailSettings() []string {
	var missing []string
	if !c.MailDryRun {
		if c.SMTPHost == "" {
			missing = append(missing, "SMTP_HOST")
		}
		if c.SMTPUsername == "" {
			missing = append(missing, "SMTP_USERNAME")
		}
		if c.SMTPPassword == "" {
			missing = append(missing, "SMTP_PASSWORD")
		}
	}
	if c.ContactEmailTo == "" {
		missing = append(missing, "CONTACT_EMAIL_TO")
	}
	return missing
}

// MailConfigured reports whether the contact form can deliver notifications
func (c *Config) MailConfigured() bool {
	return len(c.MissingMailSettings()) == 0
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvList returns a comma-separated environment variable as a trimmed list
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimRight(strings.TrimSpace(item), "/"); item != "" {
			out = append(out, item)
		}
	}
	return out
}
