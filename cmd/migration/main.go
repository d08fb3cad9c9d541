package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/riskibarqy/fantasy-settlement/internal/app"
	"github.com/riskibarqy/fantasy-settlement/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
)

const seedTimeout = time.Minute

var migrationDirs = []string{"./db/migrations", "/app/db/migrations"}

// schemaCommand runs against an open migrator.
type schemaCommand struct {
	usage string
	run   func(m *migrate.Migrate, args []string, logger *logging.Logger, out io.Writer) error
}

var schemaCommands = map[string]schemaCommand{
	"up": {usage: "up", run: func(m *migrate.Migrate, _ []string, logger *logging.Logger, _ io.Writer) error {
		return applied(logger, m.Up(), "migrations applied")
	}},
	"down": {usage: "down [steps]", run: func(m *migrate.Migrate, args []string, logger *logging.Logger, _ io.Writer) error {
		steps, err := stepsArg(args)
		if err != nil {
			return err
		}
		return applied(logger, m.Steps(-steps), "migrations rolled back", "steps", steps)
	}},
	"goto": {usage: "goto <version>", run: func(m *migrate.Migrate, args []string, logger *logging.Logger, _ io.Writer) error {
		target, err := versionArg(args, "goto")
		if err != nil {
			return err
		}
		return applied(logger, m.Migrate(uint(target)), "migrated", "version", target)
	}},
	"force": {usage: "force <version>", run: func(m *migrate.Migrate, args []string, logger *logging.Logger, _ io.Writer) error {
		version, err := versionArg(args, "force")
		if err != nil {
			return err
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
		logger.Info("forced migration version", "version", version)
		return nil
	}},
	"version": {usage: "version", run: func(m *migrate.Migrate, _ []string, _ *logging.Logger, out io.Writer) error {
		version, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			_, err = fmt.Fprintln(out, "version: none\ndirty: false")
			return err
		case err != nil:
			return fmt.Errorf("read version: %w", err)
		}
		_, err = fmt.Fprintf(out, "version: %d\ndirty: %t\n", version, dirty)
		return err
	}},
}

func main() {
	logger := logging.New(logging.Options{Level: logging.LevelInfo, ServiceName: "fantasy-settlement-migration"})

	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}
	name := strings.ToLower(strings.TrimSpace(os.Args[1]))
	code := 0
	if err := run(logger, name, os.Args[2:]); err != nil {
		logger.Error("migration failed", "command", name, "error", err)
		code = 1
	}
	_ = logger.Sync()
	os.Exit(code)
}

func run(logger *logging.Logger, name string, args []string) error {
	dbURL, err := databaseURL()
	if err != nil {
		return err
	}
	if name == "seed" {
		return seed(logger, dbURL)
	}

	cmd, ok := schemaCommands[name]
	if !ok {
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command %q", name)
	}

	dir, err := findMigrationsDir(os.Getenv("MIGRATIONS_DIR"))
	if err != nil {
		return err
	}
	m, err := migrate.New("file://"+filepath.ToSlash(dir), dbURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	m.Log = migrateLogger{logger: logger.With("source", dir)}
	defer func() {
		srcErr, dbErr := m.Close()
		if err := errors.Join(srcErr, dbErr); err != nil {
			logger.Warn("close migrator", "error", err)
		}
	}()

	return cmd.run(m, args, logger, os.Stdout)
}

func databaseURL() (string, error) {
	raw := strings.TrimSpace(os.Getenv("DB_URL"))
	if raw == "" {
		return "", errors.New("DB_URL is required")
	}
	disableBinary, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("DB_DISABLE_PREPARED_BINARY_RESULT")))
	return app.NormalizeDBURL(raw, disableBinary), nil
}

// seed loads the demo season into an empty, migrated database.
func seed(logger *logging.Logger, dbURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", dbURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := postgres.BootstrapSeed(ctx, db, time.Now().UTC()); err != nil {
		return err
	}
	logger.Info("demo data seeded")
	return nil
}

// applied logs msg on success and treats ErrNoChange as success.
func applied(logger *logging.Logger, err error, msg string, args ...any) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema already up to date")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info(msg, args...)
	return nil
}

func stepsArg(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || steps <= 0 {
		return 0, fmt.Errorf("down steps must be a positive integer, got %q", args[0])
	}
	return steps, nil
}

func versionArg(args []string, cmd string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s requires a version argument", cmd)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, strconv.IntSize-1)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid version %q: %w", cmd, args[0], err)
	}
	return int(v), nil
}

// findMigrationsDir returns the first existing directory, preferring override.
func findMigrationsDir(override string) (string, error) {
	candidates := migrationDirs
	if override = strings.TrimSpace(override); override != "" {
		candidates = append([]string{override}, migrationDirs...)
	}
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", fmt.Errorf("no migrations directory among %s", strings.Join(candidates, ", "))
}

// migrateLogger routes migrate's progress lines through the service logger.
type migrateLogger struct {
	logger *logging.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool { return false }

func printUsage(w io.Writer) {
	names := make([]string, 0, len(schemaCommands))
	for name := range schemaCommands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: migration <command> [args]")
	for _, name := range names {
		fmt.Fprintln(w, "  "+schemaCommands[name].usage)
	}
	fmt.Fprintln(w, "  seed")
}
