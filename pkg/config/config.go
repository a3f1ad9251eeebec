package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the server settings. Values come from an optional YAML file
// named by CONFIG_FILE, overridden by environment variables.
type Config struct {
	Port          string `yaml:"port"`
	Env           string `yaml:"env"`
	PostgresURL   string `yaml:"postgres_url"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`

	// StoreMode is "postgres" or "memory".
	StoreMode string `yaml:"store_mode"`

	// AuthMode is "jwt" or "firebase".
	AuthMode                string `yaml:"auth_mode"`
	JWTSecret               string `yaml:"jwt_secret"`
	FirebaseCredentialsPath string `yaml:"firebase_credentials_path"`

	// PushMode is "log" or "fcm"; QueueMode is "memory" or "pubsub".
	PushMode           string `yaml:"push_mode"`
	QueueMode          string `yaml:"queue_mode"`
	PushWorkers        int    `yaml:"push_workers"`
	PushQueueSize      int    `yaml:"push_queue_size"`
	GCPProjectID       string `yaml:"gcp_project_id"`
	PubSubTopic        string `yaml:"pubsub_topic"`
	PubSubSubscription string `yaml:"pubsub_subscription"`
}

func defaults() Config {
	return Config{
		Port:               "8080",
		Env:                "development",
		MongoDatabase:      "cinetrack",
		StoreMode:          "postgres",
		AuthMode:           "jwt",
		PushMode:           "log",
		QueueMode:          "memory",
		PushWorkers:        4,
		PushQueueSize:      256,
		PubSubTopic:        "push-jobs",
		PubSubSubscription: "push-jobs-worker",
	}
}

// Load builds the configuration from .env, CONFIG_FILE and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.PostgresURL = getEnv("POSTGRES_URL", cfg.PostgresURL)
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDatabase = getEnv("MONGO_DATABASE", cfg.MongoDatabase)
	cfg.StoreMode = getEnv("STORE_MODE", cfg.StoreMode)
	cfg.AuthMode = getEnv("AUTH_MODE", cfg.AuthMode)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.FirebaseCredentialsPath = getEnv("FIREBASE_CREDENTIALS_PATH", cfg.FirebaseCredentialsPath)
	cfg.PushMode = getEnv("PUSH_MODE", cfg.PushMode)
	cfg.QueueMode = getEnv("QUEUE_MODE", cfg.QueueMode)
	cfg.PushWorkers = getEnvInt("PUSH_WORKERS", cfg.PushWorkers)
	cfg.PushQueueSize = getEnvInt("PUSH_QUEUE_SIZE", cfg.PushQueueSize)
	cfg.GCPProjectID = getEnv("GCP_PROJECT_ID", cfg.GCPProjectID)
	cfg.PubSubTopic = getEnv("PUBSUB_TOPIC", cfg.PubSubTopic)
	cfg.PubSubSubscription = getEnv("PUBSUB_SUBSCRIPTION", cfg.PubSubSubscription)
}

func (c *Config) validate() error {
	switch c.StoreMode {
	case "memory":
	case "postgres":
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL must be set when STORE_MODE is postgres")
		}
	default:
		return fmt.Errorf("unknown store mode %q", c.StoreMode)
	}

	switch c.AuthMode {
	case "jwt":
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET must be set when AUTH_MODE is jwt")
		}
	case "firebase":
		if c.FirebaseCredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH must be set when AUTH_MODE is firebase")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", c.AuthMode)
	}

	switch c.PushMode {
	case "log":
	case "fcm":
		if c.FirebaseCredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH must be set when PUSH_MODE is fcm")
		}
	default:
		return fmt.Errorf("unknown push mode %q", c.PushMode)
	}

	switch c.QueueMode {
	case "memory":
		if c.PushWorkers < 1 || c.PushQueueSize < 1 {
			return fmt.Errorf("push workers and queue size must be positive")
		}
	case "pubsub":
		if c.GCPProjectID == "" {
			return fmt.Errorf("GCP_PROJECT_ID must be set when QUEUE_MODE is pubsub")
		}
	default:
		return fmt.Errorf("unknown queue mode %q", c.QueueMode)
	}
	return nil
}

// UsesFirebase reports whether any component needs the Firebase app.
func (c *Config) UsesFirebase() bool {
	return c.AuthMode == "firebase" || c.PushMode == "fcm"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Ignoring %s=%q: not an integer", key, value)
		return defaultValue
	}
	return n
}
