package config

import (
	"strings"
	"testing"
	"time"

	"coaching-platform/internal/session"
)

func validLocalConfig() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "coaching"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_LocalDefaults(t *testing.T) {
	c := validLocalConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Vapi.BaseURL != "https://api.vapi.ai" {
		t.Fatalf("expected provider base URL default, got %q", c.Vapi.BaseURL)
	}
	if c.Scheduler.Interval != time.Hour || c.Scheduler.Tolerance != time.Hour || c.Scheduler.Lookahead != time.Hour {
		t.Fatalf("expected hourly scheduler defaults, got %+v", c.Scheduler)
	}
	if c.Auth.AccessTokenTTL != 15*time.Minute || c.Auth.RefreshTokenTTL != 30*24*time.Hour {
		t.Fatalf("expected token TTL defaults, got %+v", c.Auth)
	}
}

func TestValidate_ProductionRequiresProviderCredentials(t *testing.T) {
	c := validLocalConfig()
	c.App.Env = "production"
	c.DB.SSLMode = "require"
	c.Auth.JWTIssuer = "coaching-platform"
	c.Auth.JWTAudience = "coaching-clients"

	err := c.Validate()
	if err == nil {
		t.Fatalf("expected error for production without provider credentials")
	}
	if !strings.Contains(err.Error(), "VAPI_API_KEY") || !strings.Contains(err.Error(), "VAPI_PHONE_NUMBER_ID") {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Vapi.APIKey = "key"
	c.Vapi.PhoneNumberID = "pn-1"
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_RejectsUnknownEnv(t *testing.T) {
	c := validLocalConfig()
	c.App.Env = "qa"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for unknown env")
	}
}

func TestValidate_RefreshTTLMustExceedAccessTTL(t *testing.T) {
	c := validLocalConfig()
	c.Auth.AccessTokenTTL = time.Hour
	c.Auth.RefreshTokenTTL = 30 * time.Minute
	if err := c.Validate(); err == nil {
		t.Fatalf("expected TTL ordering error")
	}
}

func TestVapiAssistantID(t *testing.T) {
	v := VapiConfig{
		AssistantIDOnboarding: "a-onboarding",
		AssistantIDWeekly:     "a-weekly",
		AssistantIDDaily:      "a-daily",
	}
	if got := v.AssistantID(session.CallTypeOnboarding); got != "a-onboarding" {
		t.Fatalf("got %q", got)
	}
	if got := v.AssistantID(session.CallTypeWeekly); got != "a-weekly" {
		t.Fatalf("got %q", got)
	}
	if got := v.AssistantID(session.CallTypeDaily); got != "a-daily" {
		t.Fatalf("got %q", got)
	}
	if got := v.AssistantID(session.CallType("nightly")); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestHelpers(t *testing.T) {
	c := validLocalConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.HTTPAddr() != ":8080" {
		t.Fatalf("addr = %q", c.HTTPAddr())
	}
	if c.RedisAddr() != "localhost:6379" {
		t.Fatalf("redis addr = %q", c.RedisAddr())
	}
	if !strings.Contains(c.PostgresDSN(), "dbname=coaching") || !strings.Contains(c.PostgresDSN(), "sslmode=disable") {
		t.Fatalf("dsn = %q", c.PostgresDSN())
	}
	if c.IsProduction() {
		t.Fatalf("local flagged as production")
	}
}
