package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds every tunable the service reads from the environment.
// main() loads .env first (godotenv), so local dev only needs that file.
type Config struct {
	Port        string
	DatabaseDSN string
	BaseURL     string
	SecretKey   string
	Timezone    *time.Location

	SeedOnStartup bool

	// Timing knobs for the background scheduler.
	TickInterval         time.Duration
	ReminderLead         time.Duration
	FeedbackRequestDelay time.Duration
	FeedbackWindow       time.Duration

	// Collaborators.
	GeminiAPIKey    string
	SlackWebhookURL string
	GmailEnabled    bool
}

func Load() *Config {
	tzName := getEnv("TIMEZONE", "Europe/Moscow")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		log.Printf("⚠️ Unknown TIMEZONE %q, falling back to UTC", tzName)
		tz = time.UTC
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=postgres password=password dbname=autopilot port=5432 sslmode=disable"),
		BaseURL:     getEnv("BASE_URL", "http://127.0.0.1:8080"),
		SecretKey:   getEnv("SECRET_KEY", "dev-secret-change-me"),
		Timezone:    tz,

		SeedOnStartup: getEnvBool("SEED_ON_STARTUP", true),

		TickInterval:         getEnvSeconds("TICK_INTERVAL_SECONDS", 30),
		ReminderLead:         getEnvMinutes("REMINDER_LEAD_MINUTES", 60),
		FeedbackRequestDelay: getEnvMinutes("FEEDBACK_REQUEST_DELAY_MINUTES", 0),
		FeedbackWindow:       getEnvMinutes("FEEDBACK_WINDOW_MINUTES", 24*60),

		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		SlackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
		GmailEnabled:    getEnvBool("GMAIL_ENABLED", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvSeconds(key string, fallback int) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallback) * time.Second
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return time.Duration(fallback) * time.Second
	}
	return time.Duration(n) * time.Second
}

func getEnvMinutes(key string, fallback int) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallback) * time.Minute
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return time.Duration(fallback) * time.Minute
	}
	return time.Duration(n) * time.Minute
}
