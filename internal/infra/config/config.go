package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
	StoreMemory    = "memory"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	Environment string `validate:"required"`
	LogLevel    string `validate:"required"`
	HTTPAddr    string `validate:"required"`

	// JobSecret is the shared bearer secret for the HTTP trigger. Empty disables the check.
	JobSecret   string
	CronSpec    string        `validate:"required"`
	JobTimeout  time.Duration `validate:"gt=0"`
	StoreDriver string        `validate:"oneof=firestore postgres memory"`

	FirebaseProjectID string
	// FirebaseCredentialsFile and FirebaseCredentialsJSON are optional; with neither set
	// the client falls back to application default credentials.
	FirebaseCredentialsFile string
	FirebaseCredentialsJSON string
	DatabaseURL             string `validate:"required_if=StoreDriver postgres"`

	SMS SMSConfig

	TelegramToken   string
	AdminTelegramID int64 `validate:"required_with=TelegramToken"`
}

// SMSConfig holds the SMS gateway settings. Missing credentials are a startup error.
type SMSConfig struct {
	GatewayURL     string   `validate:"required,url"`
	TextGatewayURL string   `validate:"required,url"`
	APIKey         string   `validate:"required"`
	Template       string   `validate:"required"`
	TemplateID     string   `validate:"required"`
	OperatorPhones []string `validate:"dive,required"`
}

var validate = validator.New()

// Load reads configuration from environment variables and .env file (if present),
// then validates it once.
func Load() (*AppConfig, error) {
	// Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.JobSecret = os.Getenv("JOB_SECRET")
	cfg.CronSpec = getEnv("JOB_CRON_SPEC", "30 18 * * *") // Default: 18:30 daily, after the last session

	cfg.JobTimeout, err = time.ParseDuration(getEnv("JOB_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_TIMEOUT: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", StoreFirestore))
	cfg.FirebaseProjectID = os.Getenv("FIREBASE_PROJECT_ID")
	cfg.FirebaseCredentialsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	cfg.FirebaseCredentialsJSON = os.Getenv("FIREBASE_CONFIG")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.SMS.GatewayURL = os.Getenv("SMS_GATEWAY_URL")
	cfg.SMS.TextGatewayURL = getEnv("SMS_GATEWAY_TEXT_URL", cfg.SMS.GatewayURL)
	cfg.SMS.APIKey = os.Getenv("SMS_API_KEY")
	cfg.SMS.Template = os.Getenv("SMS_TEMPLATE")
	cfg.SMS.TemplateID = os.Getenv("SMS_TEMPLATE_ID")
	cfg.SMS.OperatorPhones = splitList(os.Getenv("OPERATOR_PHONES"))

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags and reports every failing field at once.
func (c *AppConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// TelegramEnabled reports whether the operator bot should be started.
func (c *AppConfig) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.AdminTelegramID != 0
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
