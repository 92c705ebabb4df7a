// Package cli реализует команды консольного клиента ViewTube.
package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/viewtube/internal/client/api"
	"github.com/iudanet/viewtube/internal/client/auth"
	"github.com/iudanet/viewtube/internal/client/iocli"
)

// Cli держит зависимости команд
type Cli struct {
	io        iocli.IO
	apiClient *api.Client
	sessions  *auth.Service
}

// New создает CLI с переданными зависимостями
func New(io iocli.IO, apiClient *api.Client, sessions *auth.Service) *Cli {
	return &Cli{
		io:        io,
		apiClient: apiClient,
		sessions:  sessions,
	}
}

// Run выполняет команду и возвращает ошибку для exit code
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx, args)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "refresh":
		return c.runRefresh(ctx)
	case "change-password":
		return c.runChangePassword(ctx)
	case "history":
		return c.runHistory(ctx)
	case "channel":
		return c.runChannel(ctx, args)
	case "subscribe":
		return c.runSubscribe(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// PrintUsage печатает справку по командам
func (c *Cli) PrintUsage() {
	c.io.Println("ViewTube Client")
	c.io.Println("")
	c.io.Println("Usage:")
	c.io.Println("  viewtube [OPTIONS] COMMAND [ARGS]")
	c.io.Println("")
	c.io.Println("Options:")
	c.io.Println("  --version            Show version information")
	c.io.Println("  --server URL         Server URL (default: http://localhost:8080)")
	c.io.Println("  --db PATH            Path to local session database (default: ~/.viewtube.db)")
	c.io.Println("")
	c.io.Println("Commands:")
	c.io.Println("  register                   Register new account (interactive)")
	c.io.Println("  login                      Login to server")
	c.io.Println("  logout                     Logout and clear stored session")
	c.io.Println("  status                     Show authentication status")
	c.io.Println("  refresh                    Force token refresh")
	c.io.Println("  change-password            Change account password")
	c.io.Println("  history                    Show watch history")
	c.io.Println("  channel <username>         Show channel profile")
	c.io.Println("  subscribe <channel-id>     Toggle subscription to a channel")
	c.io.Println("")
	c.io.Println("Examples:")
	c.io.Println("  viewtube register")
	c.io.Println("  viewtube login")
	c.io.Println("  viewtube channel alice")
	c.io.Println("  viewtube --server https://viewtube.example.com login")
}
