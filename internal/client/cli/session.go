package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/iudanet/viewtube/internal/client/api"
)

// runRegister регистрирует нового пользователя.
// Пути к изображениям принимаются флагами, остальное запрашивается интерактивно.
func (c *Cli) runRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	avatarPath := fs.String("avatar", "", "path to avatar image (required)")
	coverPath := fs.String("cover", "", "path to cover image (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *avatarPath == "" {
		return fmt.Errorf("--avatar is required")
	}

	fullName, err := c.io.ReadInput("Full name: ")
	if err != nil {
		return err
	}
	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return err
	}
	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return err
	}
	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	user, err := c.sessions.Register(ctx, api.RegisterInput{
		FullName:       fullName,
		Email:          email,
		Username:       username,
		Password:       password,
		AvatarPath:     *avatarPath,
		CoverImagePath: *coverPath,
	})
	if err != nil {
		return err
	}

	c.io.Printf("Registered %s (%s). Now run 'viewtube login'.\n", user.Username, user.Email)
	return nil
}

// runLogin аутентифицируется и сохраняет сессию
func (c *Cli) runLogin(ctx context.Context) error {
	login, err := c.io.ReadInput("Username or email: ")
	if err != nil {
		return err
	}
	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return err
	}

	session, err := c.sessions.Login(ctx, login, password)
	if err != nil {
		return err
	}

	c.io.Printf("Logged in as %s\n", session.Username)
	return nil
}

// runLogout чистит сессию локально и на сервере
func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.sessions.Logout(ctx); err != nil {
		return err
	}

	c.io.Println("Logged out")
	return nil
}

// runStatus показывает текущую сессию
func (c *Cli) runStatus(ctx context.Context) error {
	session, err := c.sessions.CurrentSession(ctx)
	if err != nil {
		return err
	}

	c.io.Printf("Logged in as:  %s (%s)\n", session.Username, session.Email)
	c.io.Printf("User ID:       %s\n", session.UserID)
	if time.Now().Before(session.ExpiresAt) {
		c.io.Printf("Access token:  valid until %s\n", session.ExpiresAt.Format(time.RFC3339))
	} else {
		c.io.Println("Access token:  expired (will refresh on next request)")
	}
	return nil
}

// runRefresh принудительно ротирует пару токенов
func (c *Cli) runRefresh(ctx context.Context) error {
	session, err := c.sessions.Refresh(ctx)
	if err != nil {
		return err
	}

	c.io.Printf("Tokens refreshed, access token valid until %s\n", session.ExpiresAt.Format(time.RFC3339))
	return nil
}

// runChangePassword меняет пароль аккаунта
func (c *Cli) runChangePassword(ctx context.Context) error {
	token, err := c.sessions.AccessToken(ctx)
	if err != nil {
		return err
	}

	oldPassword, err := c.io.ReadPassword("Current password: ")
	if err != nil {
		return err
	}
	newPassword, err := c.io.ReadPassword("New password: ")
	if err != nil {
		return err
	}
	confirm, err := c.io.ReadPassword("Confirm new password: ")
	if err != nil {
		return err
	}
	if newPassword != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if err := c.apiClient.ChangePassword(ctx, token, oldPassword, newPassword); err != nil {
		return err
	}

	c.io.Println("Password changed")
	return nil
}
