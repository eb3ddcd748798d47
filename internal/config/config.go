// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types and validates that required
// values are present so they can be reused across the application runtime.
//
// Env vars use the QUIZ_ prefix. Nested keys are separated by a double
// underscore, so QUIZ_DATABASE__HOST maps to Config.Database.Host and
// QUIZ_AUTH__ACCESS_TOKEN_TTL maps to Config.Auth.AccessTokenTTL.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	// Loads `.env` into the process environment before anything reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix   = "QUIZ_"
	serviceName = "quiz-api"
)

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Email         EmailConfig          `koanf:"email" validate:"required"`
	OAuth         OAuthConfig          `koanf:"oauth"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Import        ImportConfig         `koanf:"import"`
	Seed          SeedConfig           `koanf:"seed"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env  string `koanf:"env" validate:"required"`
	Name string `koanf:"name" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
	// AuthRateLimit is the sustained number of requests per second a single
	// client IP may send to the public auth endpoints.
	AuthRateLimit float64 `koanf:"auth_rate_limit" validate:"gte=0"`
	AuthRateBurst int     `koanf:"auth_rate_burst" validate:"gte=0"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details shared by the task queue
// and the OAuth state store.
type RedisConfig struct {
	Address    string `koanf:"address" validate:"required"`
	Password   string `koanf:"password"`
	DB         int    `koanf:"db" validate:"gte=0"`
	EmailQueue string `koanf:"email_queue" validate:"required"`
}

// AuthConfig stores JWT signing settings and the lifetimes of the
// different credentials the API hands out.
type AuthConfig struct {
	SecretKey        string        `koanf:"secret_key" validate:"required,min=16"`
	JWTAlgorithm     string        `koanf:"jwt_algorithm" validate:"required,oneof=HS256 HS384 HS512"`
	AccessTokenTTL   time.Duration `koanf:"access_token_ttl" validate:"required"`
	RefreshTokenTTL  time.Duration `koanf:"refresh_token_ttl" validate:"required"`
	VerificationTTL  time.Duration `koanf:"verification_ttl" validate:"required"`
	PasswordResetTTL time.Duration `koanf:"password_reset_ttl" validate:"required"`
	BcryptCost       int           `koanf:"bcrypt_cost" validate:"min=4,max=31"`
}

// EmailConfig selects the outbound mail provider and sender identity.
type EmailConfig struct {
	Provider    string     `koanf:"provider" validate:"required,oneof=smtp resend"`
	FromAddress string     `koanf:"from_address" validate:"required,email"`
	FromName    string     `koanf:"from_name" validate:"required"`
	SMTP        SMTPConfig `koanf:"smtp"`
}

// SMTPConfig is used when Email.Provider is "smtp".
// Empty Username disables SMTP AUTH.
type SMTPConfig struct {
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"`
	Username   string `koanf:"username"`
	Password   string `koanf:"password"`
	Encryption string `koanf:"encryption" validate:"omitempty,oneof=none starttls ssl"`
}

// OAuthConfig holds client credentials per identity provider.
// A provider with an empty ClientID is treated as disabled.
type OAuthConfig struct {
	Google   OAuthProviderConfig `koanf:"google"`
	GitHub   OAuthProviderConfig `koanf:"github"`
	StateTTL time.Duration       `koanf:"state_ttl"`
}

type OAuthProviderConfig struct {
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret"`
	RedirectURL  string   `koanf:"redirect_url"`
	Scopes       []string `koanf:"scopes"`
}

// Enabled reports whether enough credentials were provided to run the flow.
func (p OAuthProviderConfig) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != "" && p.RedirectURL != ""
}

// IntegrationConfig holds credentials for third-party APIs.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
}

// ImportConfig controls the periodic question import from Open Trivia DB.
type ImportConfig struct {
	Enabled       bool   `koanf:"enabled"`
	Cron          string `koanf:"cron"`
	APIURL        string `koanf:"api_url" validate:"omitempty,url"`
	Amount        int    `koanf:"amount" validate:"min=1,max=50"`
	ImporterEmail string `koanf:"importer_email" validate:"omitempty,email"`
}

// SeedConfig holds the credentials given to seeded accounts.
type SeedConfig struct {
	AdminEmail    string `koanf:"admin_email" validate:"omitempty,email"`
	AdminPassword string `koanf:"admin_password"`
}

// IsProduction reports whether the app runs with primary.env=production.
func (c *Config) IsProduction() bool {
	return c.Primary.Env == "production"
}

func defaultConfig() *Config {
	return &Config{
		Primary: Primary{Name: "Quiz API"},
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
			AuthRateLimit:      5,
			AuthRateBurst:      10,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			ConnMaxIdleTime: 60,
		},
		Redis: RedisConfig{
			EmailQueue: "email",
		},
		Auth: AuthConfig{
			JWTAlgorithm:     "HS256",
			AccessTokenTTL:   7 * 24 * time.Hour,
			RefreshTokenTTL:  30 * 24 * time.Hour,
			VerificationTTL:  24 * time.Hour,
			PasswordResetTTL: time.Hour,
			BcryptCost:       10,
		},
		Email: EmailConfig{
			Provider:    "smtp",
			FromAddress: "no-reply@example.com",
			FromName:    "Quiz API",
			SMTP: SMTPConfig{
				Host:       "mailpit",
				Port:       1025,
				Encryption: "none",
			},
		},
		OAuth: OAuthConfig{
			StateTTL: 10 * time.Minute,
		},
		Import: ImportConfig{
			Cron:          "0 * * * *",
			APIURL:        "https://opentdb.com/api.php",
			Amount:        50,
			ImporterEmail: "admin@example.com",
		},
		Seed: SeedConfig{
			AdminEmail:    "admin@example.com",
			AdminPassword: "Password123!",
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// envKey turns QUIZ_DATABASE__HOST into database.host.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
}

// LoadConfig loads configuration from QUIZ_* environment variables on top of
// the built-in defaults, validates it and fills in the observability block.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := defaultConfig()

	err := k.UnmarshalWithConf("", mainConfig, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			WeaklyTypedInput: true,
			Result:           mainConfig,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	mainConfig.Observability.ServiceName = serviceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Email.Provider == "resend" && mainConfig.Integration.ResendAPIKey == "" {
		return nil, fmt.Errorf("integration.resend_api_key is required when email.provider is resend")
	}
	if mainConfig.Email.Provider == "smtp" && mainConfig.Email.SMTP.Host == "" {
		return nil, fmt.Errorf("email.smtp.host is required when email.provider is smtp")
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
