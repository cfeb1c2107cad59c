package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBType      string
	MongoURL    string
	MongoDB     string
	PostgresURL string
	CORSOrigin  string

	// Seed for field-level encryption of PII and tokens.
	EncryptionSecretKey string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	PDFSavePath string

	// Object storage for exported reports. All optional; exports stay on
	// local disk when unset.
	R2Bucket          string
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2PublicURL       string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:                os.Getenv("PORT"),
		DBType:              os.Getenv("DB_TYPE"),
		MongoURL:            os.Getenv("MONGO_URL"),
		MongoDB:             os.Getenv("MONGO_DB"),
		PostgresURL:         os.Getenv("POSTGRES_URL"),
		CORSOrigin:          os.Getenv("CORS_ORIGIN"),
		EncryptionSecretKey: os.Getenv("ENCRYPTION_SECRET_KEY"),
		AccessTokenSecret:   os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret:  os.Getenv("REFRESH_TOKEN_SECRET"),
		AccessTokenTTL:      durationEnv("ACCESS_TOKEN_TTL", 15*time.Second),
		RefreshTokenTTL:     durationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		PDFSavePath:         os.Getenv("PDF_SAVE_PATH"),
		R2Bucket:            os.Getenv("R2_BUCKET"),
		R2AccountID:         os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:       os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:   os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2PublicURL:         os.Getenv("R2_PUBLIC_URL"),
	}
	if cfg.Port == "" {
		cfg.Port = "8083"
	}
	if cfg.DBType == "" {
		cfg.DBType = "mongo"
	}
	if cfg.MongoURL == "" {
		cfg.MongoURL = "mongodb://localhost:27017"
	}
	if cfg.MongoDB == "" {
		cfg.MongoDB = "e-libro"
	}
	if cfg.PDFSavePath == "" {
		cfg.PDFSavePath = "./pdfs"
	}
	return cfg
}

// Validate checks the secrets the server cannot run without. Stored PII and
// issued tokens become unreadable if these change between restarts.
func (c *Config) Validate() error {
	if c.EncryptionSecretKey == "" {
		return errors.New("ENCRYPTION_SECRET_KEY is required")
	}
	if c.AccessTokenSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET is required")
	}
	if c.RefreshTokenSecret == "" {
		return errors.New("REFRESH_TOKEN_SECRET is required")
	}
	return nil
}

func durationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %s", key, v, def)
		return def
	}
	return d
}
