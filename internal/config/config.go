package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// MongoDB Configuration
	MongoURI      string
	MongoDatabase string
	MongoTimeout  time.Duration

	// HTTP Server Configuration
	HTTPPort         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration

	// Remote booking system
	LibCalBaseURL           string
	LibCalLocationID        int
	LibCalGroupID           int
	LibCalAttestationField  string
	LibCalAttestationAnswer string
	BookingTimeout          time.Duration

	// Authentication Configuration
	AuthAllowedEmailDomains []string
	AuthSessionTTL          time.Duration

	// Worker Pool Configuration
	WorkerPoolSize    int
	MaxConcurrentJobs int

	// Logging Configuration
	LogLevel  string
	LogFormat string

	// Webhook notification Configuration
	NotifyTimeout        time.Duration
	NotifyMaxAttempts    int
	NotifyInitialDelayMs int
	NotifyMaxDelayMs     int

	// CORS Configuration
	CORSAllowedOrigins   string
	CORSAllowedMethods   string
	CORSAllowedHeaders   string
	CORSAllowCredentials bool
	CORSMaxAge           int

	// Scheduler Configuration
	SchedulerEnabled  bool
	SchedulerSchedule string
	SchedulerLockTTL  time.Duration
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		// MongoDB
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017/roomwatch?authSource=admin"),
		MongoDatabase: getEnv("MONGO_DATABASE", "roomwatch"),
		MongoTimeout:  getDurationEnv("MONGO_TIMEOUT_SEC", 10) * time.Second,

		// HTTP Server
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		HTTPReadTimeout:  getDurationEnv("HTTP_READ_TIMEOUT_SEC", 30) * time.Second,
		HTTPWriteTimeout: getDurationEnv("HTTP_WRITE_TIMEOUT_SEC", 30) * time.Second,

		// Remote booking system
		LibCalBaseURL:           getEnv("LIBCAL_BASE_URL", "https://libraryrooms.baruch.cuny.edu"),
		LibCalLocationID:        getIntEnv("LIBCAL_LOCATION_ID", 16857),
		LibCalGroupID:           getIntEnv("LIBCAL_GROUP_ID", 35704),
		LibCalAttestationField:  getEnv("LIBCAL_ATTESTATION_FIELD", "q25689"),
		LibCalAttestationAnswer: getEnv("LIBCAL_ATTESTATION_ANSWER", "Current student at Baruch or CUNY SPS"),
		BookingTimeout:          getDurationEnv("BOOKING_TIMEOUT_SEC", 30) * time.Second,

		// Authentication
		AuthAllowedEmailDomains: getListEnv("AUTH_ALLOWED_EMAIL_DOMAINS", "baruchmail.cuny.edu,spsmail.cuny.edu"),
		AuthSessionTTL:          getDurationEnv("AUTH_SESSION_TTL_HOURS", 168) * time.Hour,

		// Worker Pool
		WorkerPoolSize:    getIntEnv("WORKER_POOL_SIZE", 10),
		MaxConcurrentJobs: getIntEnv("MAX_CONCURRENT_JOBS", 1000),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Webhook notifications
		NotifyTimeout:        getDurationEnv("NOTIFY_TIMEOUT_SEC", 10) * time.Second,
		NotifyMaxAttempts:    getIntEnv("NOTIFY_MAX_ATTEMPTS", 3),
		NotifyInitialDelayMs: getIntEnv("NOTIFY_INITIAL_DELAY_MS", 1000),
		NotifyMaxDelayMs:     getIntEnv("NOTIFY_MAX_DELAY_MS", 30000),

		// CORS
		CORSAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
		CORSAllowedMethods:   getEnv("CORS_ALLOWED_METHODS", "GET, POST, PUT, DELETE, OPTIONS, PATCH"),
		CORSAllowedHeaders:   getEnv("CORS_ALLOWED_HEADERS", "*"),
		CORSAllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAge:           getIntEnv("CORS_MAX_AGE", 3600),

		// Scheduler (off by default; an external cron hitting the
		// check-all endpoint is the usual driver)
		SchedulerEnabled:  getBoolEnv("SCHEDULER_ENABLED", false),
		SchedulerSchedule: getEnv("SCHEDULER_SCHEDULE", "*/5 * * * *"),
		SchedulerLockTTL:  getDurationEnv("SCHEDULER_LOCK_TTL_SEC", 300) * time.Second,
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(intVal)
		}
		log.Printf("Warning: Invalid duration value for %s, using default %d", key, defaultValue)
	}
	return time.Duration(defaultValue)
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
	}
	return defaultValue
}

func getListEnv(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}
