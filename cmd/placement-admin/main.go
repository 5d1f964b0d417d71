package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/placementhub/placement-engine/config"
	redisadapter "github.com/placementhub/placement-engine/internal/adapters/redis"
	"github.com/placementhub/placement-engine/internal/bootstrap"
	"github.com/placementhub/placement-engine/internal/data"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = 30 * time.Second
)

func main() {
	// Logs go to stderr so command output such as issued tokens stays pipeable.
	logger := bootstrap.ConfigureLogger(os.Stderr, config.LogConfig{Level: "info", Format: config.LogFormatText})

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	cfg.Log.Format = config.LogFormatText
	logger = bootstrap.ConfigureLogger(os.Stderr, cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"create-admin": {
			name:        "create-admin",
			description: "Create an active admin account",
			run:         runCreateAdmin,
		},
		"issue-token": {
			name:        "issue-token",
			description: "Sign an access token for an existing account (AUTH_MODE=jwt)",
			run:         runIssueToken,
		},
		"revoke-token": {
			name:        "revoke-token",
			description: "Revoke an access token until it expires",
			run:         runRevokeToken,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: placement-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-16s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

type migrateOptions struct {
	Timeout time.Duration
}

type createAdminOptions struct {
	Email   string
	Name    string
	Timeout time.Duration
}

type issueTokenOptions struct {
	ActorID string
	TTL     time.Duration
	Timeout time.Duration
}

type revokeTokenOptions struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	Timeout   time.Duration
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, _, err := connectInfraWithOptions(&connectInfraOptions{
		Logger: cmdCtx.Logger,
		Config: &cmdCtx.Config,
		WantDB: true,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	cmdCtx.Logger.Info("running database migrations")

	if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
		return fmt.Errorf("run migrations: %w", migrateErr)
	}

	cmdCtx.Logger.Info("migrations completed successfully")
	return nil
}

func runCreateAdmin(cmdCtx *commandContext, args []string) error {
	opts, err := parseCreateAdminFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, _, err := connectInfraWithOptions(&connectInfraOptions{
		Logger: cmdCtx.Logger,
		Config: &cmdCtx.Config,
		WantDB: true,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	actor, err := data.NewActorRepo(db).CreateAdmin(ctx, opts.Email, opts.Name)
	if err != nil {
		if apperrors.IsConflict(err) {
			return fmt.Errorf("an account with email %q already exists", opts.Email)
		}
		return fmt.Errorf("create admin: %w", err)
	}

	cmdCtx.Logger.Info("admin account created", "actor_id", actor.ID, "email", actor.Email)
	return writef(cmdCtx.Out, "%s\n", actor.ID)
}

func runIssueToken(cmdCtx *commandContext, args []string) error {
	opts, err := parseIssueTokenFlags(args)
	if err != nil {
		return err
	}
	if mode := cmdCtx.Config.Auth.Mode; mode != config.AuthModeJWT && mode != "" {
		return fmt.Errorf("issue-token requires AUTH_MODE=jwt (current: %s)", mode)
	}
	issuer, err := bootstrap.BuildTokenIssuer(cmdCtx.Config.Auth)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, _, err := connectInfraWithOptions(&connectInfraOptions{
		Logger: cmdCtx.Logger,
		Config: &cmdCtx.Config,
		WantDB: true,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	actor, err := data.NewActorRepo(db).GetByID(ctx, opts.ActorID)
	if err != nil {
		return fmt.Errorf("load account %s: %w", opts.ActorID, err)
	}
	if !actor.Active {
		return fmt.Errorf("account %s is deactivated", actor.ID)
	}

	issued, err := issuer.Issue(actor.ID, actor.Role, opts.TTL)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	cmdCtx.Logger.Info("token issued",
		"actor_id", actor.ID,
		"role", actor.Role,
		"token_id", issued.TokenID,
		"expires_at", issued.ExpiresAt)
	return writef(cmdCtx.Out, "%s\n", issued.Token)
}

func runRevokeToken(cmdCtx *commandContext, args []string) error {
	opts, err := parseRevokeTokenFlags(args)
	if err != nil {
		return err
	}

	if opts.Token != "" {
		if opts, err = resolveTokenClaims(cmdCtx.Config.Auth, opts); err != nil {
			return err
		}
	}
	if !opts.ExpiresAt.IsZero() && !opts.ExpiresAt.After(time.Now()) {
		cmdCtx.Logger.Info("token already expired; nothing to revoke", "token_id", opts.TokenID)
		return nil
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	_, redisClient, err := connectInfraWithOptions(&connectInfraOptions{
		Logger:    cmdCtx.Logger,
		Config:    &cmdCtx.Config,
		WantRedis: true,
	})
	if err != nil {
		return err
	}
	if redisClient == nil {
		return errors.New("revoke-token requires redis")
	}
	defer func() {
		if closeErr := redisClient.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", closeErr)
		}
	}()

	revocations := redisadapter.NewTokenRevocations(data.NewRedisCacheRepo(redisClient))
	if err := revocations.Revoke(ctx, opts.TokenID, opts.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	cmdCtx.Logger.Info("token revoked", "token_id", opts.TokenID, "expires_at", opts.ExpiresAt)
	return nil
}

// resolveTokenClaims fills the token id and expiry from a signed token.
func resolveTokenClaims(auth config.AuthConfig, opts revokeTokenOptions) (revokeTokenOptions, error) {
	if auth.Mode != config.AuthModeJWT && auth.Mode != "" {
		return opts, fmt.Errorf("--token requires AUTH_MODE=jwt (current: %s); use --jti instead", auth.Mode)
	}
	issuer, err := bootstrap.BuildTokenIssuer(auth)
	if err != nil {
		return opts, err
	}
	cred, err := issuer.Verify(context.Background(), opts.Token)
	if err != nil {
		return opts, fmt.Errorf("parse token: %w", err)
	}
	if cred.TokenID == "" {
		return opts, errors.New("token carries no jti and cannot be revoked")
	}
	opts.TokenID = cred.TokenID
	opts.ExpiresAt = cred.ExpiresAt
	return opts, nil
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{}
	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete",
	)

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}

	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseCreateAdminFlags(args []string) (createAdminOptions, error) {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := createAdminOptions{}
	fs.StringVar(&opts.Email, "email", "", "Admin email address (required)")
	fs.StringVar(&opts.Name, "name", "", "Display name (required)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the command")

	if err := fs.Parse(args); err != nil {
		return createAdminOptions{}, err
	}

	opts.Email = strings.TrimSpace(opts.Email)
	opts.Name = strings.TrimSpace(opts.Name)
	if opts.Email == "" || opts.Name == "" {
		return createAdminOptions{}, errors.New("--email and --name are required")
	}
	if _, err := mail.ParseAddress(opts.Email); err != nil {
		return createAdminOptions{}, fmt.Errorf("--email: %w", err)
	}
	if opts.Timeout <= 0 {
		return createAdminOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseIssueTokenFlags(args []string) (issueTokenOptions, error) {
	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := issueTokenOptions{}
	fs.StringVar(&opts.ActorID, "actor", "", "Account id to issue the token for (required)")
	fs.DurationVar(&opts.TTL, "ttl", 0, "Token lifetime; defaults to AUTH_JWT_TTL")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the command")

	if err := fs.Parse(args); err != nil {
		return issueTokenOptions{}, err
	}

	opts.ActorID = strings.TrimSpace(opts.ActorID)
	if opts.ActorID == "" {
		return issueTokenOptions{}, errors.New("--actor is required")
	}
	if opts.TTL < 0 {
		return issueTokenOptions{}, errors.New("--ttl cannot be negative")
	}
	if opts.Timeout <= 0 {
		return issueTokenOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseRevokeTokenFlags(args []string) (revokeTokenOptions, error) {
	fs := flag.NewFlagSet("revoke-token", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := revokeTokenOptions{}
	var expiresAt string
	fs.StringVar(&opts.Token, "token", "", "Signed token to revoke")
	fs.StringVar(&opts.TokenID, "jti", "", "Token id to revoke when the token itself is unavailable")
	fs.StringVar(&expiresAt, "expires-at", "", "RFC3339 expiry for --jti; defaults to the revocation fallback window")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the command")

	if err := fs.Parse(args); err != nil {
		return revokeTokenOptions{}, err
	}

	opts.Token = strings.TrimSpace(opts.Token)
	opts.TokenID = strings.TrimSpace(opts.TokenID)
	switch {
	case opts.Token == "" && opts.TokenID == "":
		return revokeTokenOptions{}, errors.New("one of --token or --jti is required")
	case opts.Token != "" && opts.TokenID != "":
		return revokeTokenOptions{}, errors.New("--token and --jti are mutually exclusive")
	case opts.Token != "" && expiresAt != "":
		return revokeTokenOptions{}, errors.New("--expires-at only applies to --jti")
	}
	if expiresAt != "" {
		ts, err := time.Parse(time.RFC3339, expiresAt)
		if err != nil {
			return revokeTokenOptions{}, fmt.Errorf("--expires-at: %w", err)
		}
		opts.ExpiresAt = ts
	}
	if opts.Timeout <= 0 {
		return revokeTokenOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
