package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration, loaded from config.yaml with
// environment variable overrides (DISCOUNT_ prefix).
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	WhatsApp WhatsAppConfig `mapstructure:"whatsapp"`
	Push     PushConfig     `mapstructure:"push"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

type AppConfig struct {
	Name          string `mapstructure:"name"`
	BaseURL       string `mapstructure:"base_url"`
	SessionSecret string `mapstructure:"session_secret"`
	SessionCookie string `mapstructure:"session_cookie"`
	Env           string `mapstructure:"env"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int    `mapstructure:"max_conns"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type WhatsAppConfig struct {
	Token         string `mapstructure:"token"`
	PhoneNumberID string `mapstructure:"phone_number_id"`
}

type PushConfig struct {
	VAPIDPublicKey  string `mapstructure:"vapid_public_key"`
	VAPIDPrivateKey string `mapstructure:"vapid_private_key"`
	VAPIDSubject    string `mapstructure:"vapid_subject"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DSN builds the PostgreSQL connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// Load reads configuration from .env, config.yaml and the environment.
// Missing config file is not fatal; defaults plus env vars are enough to run.
func Load() *Config {
	// .env is optional, used in development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("app.name", "ALIF Discount")
	v.SetDefault("app.base_url", "http://localhost:8080")
	v.SetDefault("app.session_secret", "change-this-secret")
	v.SetDefault("app.session_cookie", "alif_session")
	v.SetDefault("app.env", "development")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "discount")
	v.SetDefault("database.password", "discount")
	v.SetDefault("database.name", "discount")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("smtp.host", "smtp.office365.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from", "noreply@example.com")
	v.SetDefault("push.vapid_subject", "mailto:admin@example.com")
	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetEnvPrefix("DISCOUNT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Failed to read config file: %v", err)
		}
		log.Println("No config file found, using defaults and environment")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("Failed to parse configuration: %v", err)
	}

	if cfg.App.Env == "production" && cfg.App.SessionSecret == "change-this-secret" {
		log.Println("WARNING: running in production with the default session secret")
	}

	return &cfg
}
