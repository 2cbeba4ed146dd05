package config

import (
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	RedisAddr     string
	JWTSigningKey string
	SMTPAddr      string
	SMTPFrom      string
}

// OTPTTL bounds how long a password-reset code stays valid.
var OTPTTL = 10 * time.Minute

// AccessTokenTTL bounds how long an issued login token stays valid.
var AccessTokenTTL = 24 * time.Hour

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("COMPLYD_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		JWTSigningKey: jwtSigningKey,
		SMTPAddr:      os.Getenv("SMTP_ADDR"),
		SMTPFrom:      os.Getenv("SMTP_FROM"),
	}
}
