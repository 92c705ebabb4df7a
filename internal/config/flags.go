package config

import (
	"flag"
	"os"
	"time"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   SQLite database path
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-b string   S3 bucket name
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000")
//
// Секреты флагами не принимаются: только окружение, чтобы они не
// светились в ps и истории shell.
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("viewtube-server", flag.ExitOnError)

	fs.StringVar(&cfg.ListenAddr, "a", cfg.ListenAddr, "address and port to run server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "SQLite database path")

	accessMinutes := fs.Int("t", int(cfg.AccessTokenTTL.Minutes()), "access token validity (in minutes)")
	refreshMinutes := fs.Int("r", int(cfg.RefreshTokenTTL.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Endpoint, "e", cfg.S3Endpoint, "S3 base endpoint")

	_ = fs.Parse(os.Args[1:])

	cfg.AccessTokenTTL = time.Duration(*accessMinutes) * time.Minute
	cfg.RefreshTokenTTL = time.Duration(*refreshMinutes) * time.Minute
}
