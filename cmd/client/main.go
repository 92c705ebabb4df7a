package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/iudanet/viewtube/internal/client/api"
	"github.com/iudanet/viewtube/internal/client/auth"
	"github.com/iudanet/viewtube/internal/client/cli"
	"github.com/iudanet/viewtube/internal/client/iocli"
	"github.com/iudanet/viewtube/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", defaultDBPath(), "Path to local session database")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	stdio := iocli.NewStdio()
	apiClient := api.NewClient(*serverURL)

	args := flag.Args()
	if len(args) == 0 {
		cli.New(stdio, apiClient, nil).PrintUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	// Открываем локальное хранилище сессии
	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	sessions := auth.NewService(apiClient, boltStorage)
	app := cli.New(stdio, apiClient, sessions)

	if err := app.Run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// defaultDBPath кладет базу сессии в домашний каталог пользователя
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "viewtube-client.db"
	}
	return filepath.Join(home, ".viewtube.db")
}

func printVersion() {
	fmt.Printf("ViewTube Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
