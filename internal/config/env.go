package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv накладывает значения из переменных окружения поверх дефолтов.
// Длительности задаются в формате time.ParseDuration ("15m", "240h").
func parseEnv(cfg *Config) {
	setString(&cfg.ListenAddr, "VIEWTUBE_LISTEN_ADDR")
	setString(&cfg.DatabasePath, "VIEWTUBE_DB_PATH")
	setString(&cfg.AccessSecret, "VIEWTUBE_ACCESS_SECRET")
	setString(&cfg.RefreshSecret, "VIEWTUBE_REFRESH_SECRET")
	setDuration(&cfg.AccessTokenTTL, "VIEWTUBE_ACCESS_TTL")
	setDuration(&cfg.RefreshTokenTTL, "VIEWTUBE_REFRESH_TTL")
	setString(&cfg.S3Region, "VIEWTUBE_S3_REGION")
	setString(&cfg.S3Bucket, "VIEWTUBE_S3_BUCKET")
	setString(&cfg.S3Endpoint, "VIEWTUBE_S3_ENDPOINT")
	setString(&cfg.S3AccessKey, "VIEWTUBE_S3_ACCESS_KEY")
	setString(&cfg.S3SecretKey, "VIEWTUBE_S3_SECRET_KEY")
	setInt(&cfg.AuthRateLimit, "VIEWTUBE_AUTH_RATE_LIMIT")
	setDuration(&cfg.AuthRateWindow, "VIEWTUBE_AUTH_RATE_WINDOW")
	setString(&cfg.LogLevel, "VIEWTUBE_LOG_LEVEL")
}

func setString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setInt(dst *int, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
