// cmd/migrate applies SwissPipe's schema migrations, adapted from the
// teacher's cmd/migrate/main.go flag/command shape.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/openobserve/swisspipe/internal/storage"
	"github.com/openobserve/swisspipe/migrations"
)

var (
	command          string
	databaseURL      string
	promptDBPassword bool
)

func init() {
	flag.StringVar(&command, "command", "up", "Migration command: init, up, down, status, reset")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL database URL (overrides SP_DATABASE_URL env var)")
	flag.BoolVar(&promptDBPassword, "prompt-db-password", false, "Prompt for the database password instead of embedding it in -database-url/SP_DATABASE_URL")
}

func main() {
	flag.Parse()
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	dbURL := databaseURL
	if dbURL == "" {
		dbURL = os.Getenv("SP_DATABASE_URL")
	}
	if dbURL == "" {
		slog.Error("SP_DATABASE_URL is required")
		os.Exit(1)
	}
	if promptDBPassword {
		promptedURL, err := withPromptedPassword(dbURL)
		if err != nil {
			slog.Error("failed to read database password", slog.String("error", err.Error()))
			os.Exit(1)
		}
		dbURL = promptedURL
	}

	db, err := storage.NewDB(&storage.Config{
		DSN:             dbURL,
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,
		Debug:           os.Getenv("SP_DEBUG") == "true",
	})
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer storage.Close(db)

	migrator, err := storage.NewMigrator(db, migrations.FS)
	if err != nil {
		slog.Error("failed to create migrator", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := executeCommand(ctx, migrator, command); err != nil {
		slog.Error("migration command failed", slog.String("command", command), slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("migration command completed", slog.String("command", command))
}

// withPromptedPassword reads a password from the terminal without echo and
// splices it into rawURL's userinfo, grounded on cmd/cli/main.go's
// promptPassword (term.IsTerminal/term.ReadPassword with a bufio fallback
// for non-terminal stdin, e.g. when piped in a script).
func withPromptedPassword(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}

	fmt.Fprint(os.Stderr, "Database password: ")
	password, err := readPassword()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprintln(os.Stderr)

	username := ""
	if u.User != nil {
		username = u.User.Username()
	}
	u.User = url.UserPassword(username, password)
	return u.String(), nil
}

func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		b, err := term.ReadPassword(int(syscall.Stdin))
		if err == nil {
			return string(b), nil
		}
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func executeCommand(ctx context.Context, migrator *storage.Migrator, cmd string) error {
	switch cmd {
	case "init":
		return migrator.Init(ctx)
	case "up":
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("init failed: %w", err)
		}
		return migrator.Up(ctx)
	case "down":
		return migrator.Down(ctx)
	case "status":
		return migrator.Status(ctx)
	case "reset":
		return migrator.Reset(ctx)
	default:
		return fmt.Errorf("unknown command: %s (available: init, up, down, status, reset)", cmd)
	}
}
