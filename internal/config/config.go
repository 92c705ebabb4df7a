// Package config собирает конфигурацию сервера:
// дефолты, затем переменные окружения, затем флаги командной строки.
package config

import "time"

// Config holds runtime settings for the ViewTube server.
//
// Fields:
//   - ListenAddr: bind address for the HTTP API.
//   - DatabasePath: path to the SQLite database file.
//   - AccessSecret / RefreshSecret: HMAC secrets for signing JWTs (HS256).
//     Access and refresh tokens must never share a secret.
//   - AccessTokenTTL / RefreshTokenTTL: token lifetimes.
//   - S3Region / S3Bucket / S3Endpoint / S3AccessKey / S3SecretKey: object
//     storage settings for avatar and cover uploads. Empty S3Endpoint means
//     real AWS; set it for MinIO.
//   - AuthRateLimit / AuthRateWindow: per-IP request budget on credential
//     endpoints.
type Config struct {
	ListenAddr      string
	DatabasePath    string
	AccessSecret    string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	S3Region        string
	S3Bucket        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	AuthRateLimit   int
	AuthRateWindow  time.Duration
	LogLevel        string
}

// LoadDefaults заполняет Config дефолтами для разработки.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.DatabasePath = "viewtube.db"
	c.AccessSecret = "dev-access-secret"
	c.RefreshSecret = "dev-refresh-secret"
	c.AccessTokenTTL = 15 * time.Minute
	c.RefreshTokenTTL = 10 * 24 * time.Hour
	c.S3Region = "us-east-1"
	c.S3Bucket = "viewtube"
	c.S3Endpoint = "http://127.0.0.1:9000"
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.AuthRateLimit = 10
	c.AuthRateWindow = time.Minute
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from environment variables and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
