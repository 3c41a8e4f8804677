package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

type OTPConfig struct {
	Secret      string `yaml:"secret"`
	TTLMinutes  int    `yaml:"ttl_minutes"`
	MaxAttempts int    `yaml:"max_attempts"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type ResendConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
}

type RateLimitConfig struct {
	CreateLimit      int `yaml:"create_limit"`
	CreateWindowMin  int `yaml:"create_window_minutes"`
	VerifyLimit      int `yaml:"verify_limit"`
	VerifyWindowMin  int `yaml:"verify_window_minutes"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type ConfigFile struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	OTP       OTPConfig       `yaml:"otp"`
	Twilio    TwilioConfig    `yaml:"twilio"`
	Resend    ResendConfig    `yaml:"resend"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Casbin    CasbinConfig    `yaml:"casbin"`
}

// Config is the resolved runtime configuration. File values come from
// config/config.yml; environment variables win over file values.
type Config struct {
	Port    string
	GinMode string

	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	JWTIssuer  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	OTPSecret      []byte
	OTPTTL         time.Duration
	OTPMaxAttempts int
	NotifyTimeout  time.Duration
	DefaultRegion  string

	TwilioSID   string
	TwilioToken string
	TwilioFrom  string

	ResendAPIKey string
	ResendFrom   string

	CreateLimit  int
	CreateWindow time.Duration
	VerifyLimit  int
	VerifyWindow time.Duration

	CasbinModelPath string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Load resolves configuration from config/config.yml (optional) and the
// environment. OTP_SECRET and JWT_SECRET are required.
func Load() (*Config, error) {
	return LoadFrom("config/config.yml")
}

// LoadFrom loads configuration with an explicit config file path. A missing
// file is not an error; environment variables alone can configure the service.
func LoadFrom(path string) (*Config, error) {
	var file ConfigFile
	if bytes, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(bytes, &file); err != nil {
			return nil, fmt.Errorf("could not parse config yaml: %w", err)
		}
	}

	cfg := &Config{
		Port:    env("PORT", orInt(file.App.Port, 8080)),
		GinMode: env("GIN_MODE", or(file.App.GinMode, "release")),

		DSN:           env("DATABASE_DSN", file.Database.DSN),
		RedisAddr:     env("REDIS_ADDR", or(file.Redis.Addr, "localhost:6379")),
		RedisPassword: env("REDIS_PASSWORD", file.Redis.Password),
		RedisDB:       envInt("REDIS_DB", file.Redis.DB),

		JWTSecret: env("JWT_SECRET", file.JWT.Secret),
		JWTIssuer: env("JWT_ISSUER", or(file.JWT.Issuer, "classauth")),

		OTPMaxAttempts: envInt("OTP_MAX_ATTEMPTS", orIntN(file.OTP.MaxAttempts, 5)),
		NotifyTimeout:  10 * time.Second,
		DefaultRegion:  env("IDENTITY_DEFAULT_REGION", "US"),

		TwilioSID:   env("TWILIO_ACCOUNT_SID", file.Twilio.AccountSID),
		TwilioToken: env("TWILIO_AUTH_TOKEN", file.Twilio.AuthToken),
		TwilioFrom:  env("TWILIO_FROM_NUMBER", file.Twilio.FromNumber),

		ResendAPIKey: env("RESEND_API_KEY", file.Resend.APIKey),
		ResendFrom:   env("RESEND_FROM_EMAIL", file.Resend.FromEmail),

		CreateLimit:  envInt("OTP_CREATE_LIMIT", orIntN(file.RateLimit.CreateLimit, 3)),
		CreateWindow: time.Duration(envInt("OTP_CREATE_WINDOW_MINUTES", orIntN(file.RateLimit.CreateWindowMin, 5))) * time.Minute,
		VerifyLimit:  envInt("OTP_VERIFY_LIMIT", orIntN(file.RateLimit.VerifyLimit, 60)),
		VerifyWindow: time.Duration(envInt("OTP_VERIFY_WINDOW_MINUTES", orIntN(file.RateLimit.VerifyWindowMin, 10))) * time.Minute,

		CasbinModelPath: env("CASBIN_MODEL_PATH", or(file.Casbin.ModelPath, "config/rbac_model.conf")),
	}

	cfg.OTPTTL = time.Duration(envInt("OTP_TTL_MINUTES", orIntN(file.OTP.TTLMinutes, 5))) * time.Minute
	cfg.AccessTTL = time.Duration(envInt("ACCESS_TOKEN_TTL_SEC", 900)) * time.Second
	cfg.RefreshTTL = time.Duration(envInt("REFRESH_TOKEN_TTL_SEC", 2592000)) * time.Second

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	otpSecretHex := env("OTP_SECRET", file.OTP.Secret)
	if otpSecretHex == "" {
		return nil, fmt.Errorf("OTP_SECRET is required")
	}
	secret, err := hex.DecodeString(otpSecretHex)
	if err != nil {
		return nil, fmt.Errorf("OTP_SECRET must be hex-encoded: %w", err)
	}
	if len(secret) < 16 {
		return nil, fmt.Errorf("OTP_SECRET must decode to at least 16 bytes")
	}
	cfg.OTPSecret = secret

	if cfg.OTPMaxAttempts <= 0 {
		return nil, fmt.Errorf("OTP_MAX_ATTEMPTS must be positive")
	}

	return cfg, nil
}

func or(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orInt(v, def int) string {
	if v != 0 {
		return strconv.Itoa(v)
	}
	return strconv.Itoa(def)
}

func orIntN(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}
