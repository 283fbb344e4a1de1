package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Storage  StorageConfig
	Email    EmailConfig
	Gateway  GatewayConfig
	Refund   RefundConfig
	Document DocumentConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Debug          bool
	LogPath        string
	SessionHours   int
	RateLimit      int
	IdempotencyTTL time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	SSLMode     string
	MaxConns    int32
	AutoMigrate bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

type GatewayConfig struct {
	Timeout        time.Duration
	StripeKey      string
	StripeURL      string
	PayPalClientID string
	PayPalSecret   string
	PayPalLive     bool
}

// PolicyRule grants Percent of the paid amount when at least MinDays remain
// before check-in.
type PolicyRule struct {
	MinDays int
	Percent int
}

type RefundConfig struct {
	Policies map[string][]PolicyRule
}

type DocumentConfig struct {
	MaxBytes     int64
	AllowedTypes []string
	URLTTL       time.Duration
}

const (
	defaultFlexiblePolicy = "1:100"
	defaultModeratePolicy = "5:100,1:50"
	defaultStrictPolicy   = "14:100,7:50"
)

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "rental-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24)
	viper.SetDefault("RATE_LIMIT_PER_SECOND", 20)
	viper.SetDefault("IDEMPOTENCY_TTL", "24h")
	viper.SetDefault("HTTP_READ_TIMEOUT", "15s")
	viper.SetDefault("HTTP_WRITE_TIMEOUT", "60s")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("RABBITMQ_EXCHANGE", "refund.events")
	viper.SetDefault("MINIO_BUCKET", "refund-documents")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_TIMEOUT", "10s")
	viper.SetDefault("GATEWAY_TIMEOUT", "20s")
	viper.SetDefault("REFUND_POLICY_FLEXIBLE", defaultFlexiblePolicy)
	viper.SetDefault("REFUND_POLICY_MODERATE", defaultModeratePolicy)
	viper.SetDefault("REFUND_POLICY_STRICT", defaultStrictPolicy)
	viper.SetDefault("DOCUMENT_MAX_BYTES", 10<<20)
	viper.SetDefault("DOCUMENT_ALLOWED_TYPES", "application/pdf,image/jpeg,image/png")
	viper.SetDefault("DOCUMENT_URL_TTL", "15m")

	// .env is optional in containers; plain environment still applies
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	policies := make(map[string][]PolicyRule, 3)
	for name, key := range map[string]string{
		"flexible": "REFUND_POLICY_FLEXIBLE",
		"moderate": "REFUND_POLICY_MODERATE",
		"strict":   "REFUND_POLICY_STRICT",
	} {
		rules, err := ParsePolicyRules(viper.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		policies[name] = rules
	}

	config := &Config{
		App: AppConfig{
			Name:           viper.GetString("APP_NAME"),
			Port:           viper.GetString("PORT"),
			Debug:          viper.GetBool("DEBUG"),
			LogPath:        viper.GetString("LOG_PATH"),
			SessionHours:   viper.GetInt("SESSION_EXPIRY_HOURS"),
			RateLimit:      viper.GetInt("RATE_LIMIT_PER_SECOND"),
			IdempotencyTTL: viper.GetDuration("IDEMPOTENCY_TTL"),
			ReadTimeout:    viper.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout:   viper.GetDuration("HTTP_WRITE_TIMEOUT"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetString("DB_PORT"),
			Name:        viper.GetString("DB_NAME"),
			User:        viper.GetString("DB_USER"),
			Password:    viper.GetString("DB_PASS"),
			SSLMode:     viper.GetString("DB_SSLMODE"),
			MaxConns:    viper.GetInt32("DB_MAX_CONNS"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      viper.GetString("RABBITMQ_URL"),
			Exchange: viper.GetString("RABBITMQ_EXCHANGE"),
		},
		Storage: StorageConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASS"),
			From:     viper.GetString("EMAIL_FROM"),
			Timeout:  viper.GetDuration("SMTP_TIMEOUT"),
		},
		Gateway: GatewayConfig{
			Timeout:        viper.GetDuration("GATEWAY_TIMEOUT"),
			StripeKey:      viper.GetString("STRIPE_SECRET_KEY"),
			StripeURL:      viper.GetString("STRIPE_API_URL"),
			PayPalClientID: viper.GetString("PAYPAL_CLIENT_ID"),
			PayPalSecret:   viper.GetString("PAYPAL_SECRET"),
			PayPalLive:     viper.GetBool("PAYPAL_LIVE"),
		},
		Refund: RefundConfig{
			Policies: policies,
		},
		Document: DocumentConfig{
			MaxBytes:     viper.GetInt64("DOCUMENT_MAX_BYTES"),
			AllowedTypes: splitList(viper.GetString("DOCUMENT_ALLOWED_TYPES")),
			URLTTL:       viper.GetDuration("DOCUMENT_URL_TTL"),
		},
	}

	return config, nil
}

// ParsePolicyRules reads "min_days:percent" pairs separated by commas.
// Rules come back ordered by MinDays descending.
func ParsePolicyRules(raw string) ([]PolicyRule, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty refund policy")
	}

	var rules []PolicyRule
	seen := make(map[int]bool)
	for _, part := range strings.Split(raw, ",") {
		days, percent, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("invalid policy rule %q", part)
		}

		minDays, err := strconv.Atoi(strings.TrimSpace(days))
		if err != nil || minDays < 0 {
			return nil, fmt.Errorf("invalid min days in rule %q", part)
		}
		pct, err := strconv.Atoi(strings.TrimSpace(percent))
		if err != nil || pct < 0 || pct > 100 {
			return nil, fmt.Errorf("invalid percent in rule %q", part)
		}
		if seen[minDays] {
			return nil, fmt.Errorf("duplicate min days %d", minDays)
		}
		seen[minDays] = true

		rules = append(rules, PolicyRule{MinDays: minDays, Percent: pct})
	}

	sort.Slice(rules, func(i, j int) bool {
		return rules[i].MinDays > rules[j].MinDays
	})

	return rules, nil
}

// DefaultRefundPolicies mirrors the built-in policy defaults.
func DefaultRefundPolicies() map[string][]PolicyRule {
	policies := make(map[string][]PolicyRule, 3)
	for name, raw := range map[string]string{
		"flexible": defaultFlexiblePolicy,
		"moderate": defaultModeratePolicy,
		"strict":   defaultStrictPolicy,
	} {
		rules, _ := ParsePolicyRules(raw)
		policies[name] = rules
	}
	return policies
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
