package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	MongoDBURI          string `envconfig:"MONGODB_URI" required:"true"`
	MongoDBPassword     string `envconfig:"MONGODB_PASSWORD"`
	MongoDBDatabase     string `envconfig:"MONGODB_DATABASE" default:"rentinout"`
	MongoDBTransactions bool   `envconfig:"MONGODB_TRANSACTIONS" default:"true"`

	TokenSecret string        `envconfig:"TOKEN_SECRET" required:"true"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"15h"`
	SuperID     string        `envconfig:"ADMIN_ID"`

	Domain    string        `envconfig:"DOMAIN" default:"http://localhost:8080"`
	VerifyTTL time.Duration `envconfig:"VERIFY_TTL" default:"6h"`
	ResetTTL  time.Duration `envconfig:"RESET_TTL" default:"1h"`

	MailUser string `envconfig:"AUTH_EMAIL"`
	MailPass string `envconfig:"AUTH_PASS"`
	MailHost string `envconfig:"MAIL_HOST" default:"smtp.gmail.com"`
	MailPort int    `envconfig:"MAIL_PORT" default:"465"`

	GoogleUserInfoURL  string `envconfig:"GOOGLE_API" default:"https://www.googleapis.com/oauth2/v3/userinfo"`
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleJWKSURL      string `envconfig:"GOOGLE_JWKS_URL" default:"https://www.googleapis.com/oauth2/v3/certs"`

	CloudinaryName   string `envconfig:"CLOUDINARY_NAME"`
	CloudinaryKey    string `envconfig:"CLOUDINARY_KEY"`
	CloudinarySecret string `envconfig:"CLOUDINARY_SECRET"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`

	RedisURL     string `envconfig:"REDIS_URL"`
	RabbitURL    string `envconfig:"RABBIT_URL"`
	MailExchange string `envconfig:"MAIL_EXCHANGE" default:"rentinout.mail"`
	MailQueue    string `envconfig:"MAIL_QUEUE" default:"rentinout.mail.outbound"`
}

// DefaultOrigins are the front-ends allowed when ALLOWED_ORIGINS is empty.
var DefaultOrigins = []string{
	"http://rentinout.onrender.com",
	"https://rentinout.onrender.com",
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:3001",
	"http://rentinout.netlify.app",
	"https://rentinout.netlify.app",
	"https://rent-in-out.netlify.app",
	"https://rent-in-out-front.vercel.app",
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg.Domain = strings.TrimRight(cfg.Domain, "/")
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = DefaultOrigins
	}
	if len(cfg.TokenSecret) < 16 {
		return nil, fmt.Errorf("TOKEN_SECRET must be at least 16 characters")
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) MailConfigured() bool {
	return c.MailUser != "" && c.MailPass != ""
}
