package config

import (
	"testing"
	"time"
)

const testOTPSecret = "404142434445464748494a4b4c4d4e4f"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-jwt-secret")
	t.Setenv("OTP_SECRET", testOTPSecret)
}

func TestLoadFrom_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadFrom("does-not-exist.yml")
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.OTPTTL != 5*time.Minute {
		t.Errorf("expected default OTP TTL 5m, got %v", cfg.OTPTTL)
	}
	if cfg.OTPMaxAttempts != 5 {
		t.Errorf("expected default max attempts 5, got %d", cfg.OTPMaxAttempts)
	}
	if cfg.AccessTTL != 900*time.Second {
		t.Errorf("expected default access TTL 900s, got %v", cfg.AccessTTL)
	}
	if cfg.RefreshTTL != 2592000*time.Second {
		t.Errorf("expected default refresh TTL 30d, got %v", cfg.RefreshTTL)
	}
	if cfg.NotifyTimeout != 10*time.Second {
		t.Errorf("expected notify timeout 10s, got %v", cfg.NotifyTimeout)
	}
	if cfg.CreateLimit != 3 || cfg.CreateWindow != 5*time.Minute {
		t.Errorf("expected create limit 3/5m, got %d/%v", cfg.CreateLimit, cfg.CreateWindow)
	}
	if cfg.VerifyLimit != 60 || cfg.VerifyWindow != 10*time.Minute {
		t.Errorf("expected verify limit 60/10m, got %d/%v", cfg.VerifyLimit, cfg.VerifyWindow)
	}
	if len(cfg.OTPSecret) != 16 {
		t.Errorf("expected decoded 16-byte OTP secret, got %d bytes", len(cfg.OTPSecret))
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OTP_TTL_MINUTES", "10")
	t.Setenv("OTP_MAX_ATTEMPTS", "3")
	t.Setenv("ACCESS_TOKEN_TTL_SEC", "600")
	t.Setenv("REFRESH_TOKEN_TTL_SEC", "86400")
	t.Setenv("PORT", "9090")

	cfg, err := LoadFrom("does-not-exist.yml")
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.OTPTTL != 10*time.Minute {
		t.Errorf("expected OTP TTL 10m, got %v", cfg.OTPTTL)
	}
	if cfg.OTPMaxAttempts != 3 {
		t.Errorf("expected max attempts 3, got %d", cfg.OTPMaxAttempts)
	}
	if cfg.AccessTTL != 600*time.Second {
		t.Errorf("expected access TTL 600s, got %v", cfg.AccessTTL)
	}
	if cfg.RefreshTTL != 86400*time.Second {
		t.Errorf("expected refresh TTL 1d, got %v", cfg.RefreshTTL)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
}

func TestLoadFrom_MissingSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("OTP_SECRET", testOTPSecret)
	if _, err := LoadFrom("does-not-exist.yml"); err == nil {
		t.Error("expected error when JWT_SECRET is missing")
	}

	t.Setenv("JWT_SECRET", "test-jwt-secret")
	t.Setenv("OTP_SECRET", "")
	if _, err := LoadFrom("does-not-exist.yml"); err == nil {
		t.Error("expected error when OTP_SECRET is missing")
	}
}

func TestLoadFrom_BadOTPSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-jwt-secret")

	t.Setenv("OTP_SECRET", "not-hex!")
	if _, err := LoadFrom("does-not-exist.yml"); err == nil {
		t.Error("expected error for non-hex OTP_SECRET")
	}

	t.Setenv("OTP_SECRET", "abcd")
	if _, err := LoadFrom("does-not-exist.yml"); err == nil {
		t.Error("expected error for too-short OTP_SECRET")
	}
}
