// Command migrate creates the Spanner instance and database when missing and applies the
// DDL files in the migrations directory. It is meant for the emulator and CI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instance "cloud.google.com/go/spanner/admin/instance/apiv1"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/roomrate-service/internal/pkg/logging"
)

var (
	projectID  = flag.String("project", getEnvOrDefault("SPANNER_PROJECT_ID", "test-project"), "GCP project ID")
	instanceID = flag.String("instance", getEnvOrDefault("SPANNER_INSTANCE_ID", "dev-instance"), "Spanner instance ID")
	databaseID = flag.String("database", getEnvOrDefault("SPANNER_DATABASE_ID", "roomrate-db"), "Spanner database ID")
	migrateDir = flag.String("migrations", "migrations", "Directory containing migration SQL files")
	dryRun     = flag.Bool("dry-run", false, "Print the statements without applying them")
)

func main() {
	flag.Parse()

	logger := logging.Setup(os.Getenv("APP_ENV"), logging.LevelFromEnv())
	ctx := context.Background()

	if host := os.Getenv("SPANNER_EMULATOR_HOST"); host != "" {
		logger.Info("using Spanner emulator", "host", host)
	}

	if err := run(ctx, logger); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("migrations completed")
}

func run(ctx context.Context, logger *slog.Logger) error {
	migrations, err := loadMigrations(*migrateDir)
	if err != nil {
		return err
	}

	if *dryRun {
		for _, m := range migrations {
			fmt.Printf("-- %s\n", m.name)
			for _, stmt := range m.statements {
				fmt.Printf("%s;\n\n", stmt)
			}
		}
		return nil
	}

	if err := ensureInstance(ctx, logger); err != nil {
		return fmt.Errorf("failed to ensure instance: %w", err)
	}
	if err := ensureDatabase(ctx, logger); err != nil {
		return fmt.Errorf("failed to ensure database: %w", err)
	}
	if err := applyMigrations(ctx, logger, migrations); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func instanceName() string {
	return fmt.Sprintf("projects/%s/instances/%s", *projectID, *instanceID)
}

func databaseName() string {
	return fmt.Sprintf("%s/databases/%s", instanceName(), *databaseID)
}

func ensureInstance(ctx context.Context, logger *slog.Logger) error {
	instanceAdmin, err := instance.NewInstanceAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create instance admin client: %w", err)
	}
	defer instanceAdmin.Close()

	_, err = instanceAdmin.GetInstance(ctx, &instancepb.GetInstanceRequest{Name: instanceName()})
	if err == nil {
		logger.Debug("instance exists", "instance", *instanceID)
		return nil
	}
	if status.Code(err) != codes.NotFound {
		logger.Warn("unexpected error checking instance", "error", err)
		return nil
	}

	logger.Info("creating instance", "instance", *instanceID)
	op, err := instanceAdmin.CreateInstance(ctx, &instancepb.CreateInstanceRequest{
		Parent:     fmt.Sprintf("projects/%s", *projectID),
		InstanceId: *instanceID,
		Instance: &instancepb.Instance{
			Config:      fmt.Sprintf("projects/%s/instanceConfigs/emulator-config", *projectID),
			DisplayName: "Room rate development",
			NodeCount:   1,
		},
	})
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create instance: %w", err)
	}

	// The emulator may finish the operation before Wait is called.
	if _, err := op.Wait(ctx); err != nil && status.Code(err) != codes.AlreadyExists {
		logger.Warn("instance creation did not complete cleanly", "error", err)
	}
	return nil
}

func ensureDatabase(ctx context.Context, logger *slog.Logger) error {
	adminClient, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	_, err = adminClient.GetDatabase(ctx, &databasepb.GetDatabaseRequest{Name: databaseName()})
	if err == nil {
		logger.Debug("database exists", "database", *databaseID)
		return nil
	}
	if status.Code(err) != codes.NotFound {
		if os.Getenv("SPANNER_EMULATOR_HOST") != "" {
			logger.Warn("proceeding without database check", "error", err)
			return nil
		}
		return fmt.Errorf("failed to check database: %w", err)
	}

	logger.Info("creating database", "database", *databaseID)
	op, err := adminClient.CreateDatabase(ctx, &databasepb.CreateDatabaseRequest{
		Parent:          instanceName(),
		CreateStatement: fmt.Sprintf("CREATE DATABASE `%s`", *databaseID),
	})
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for database creation: %w", err)
	}
	return nil
}

type migration struct {
	name       string
	statements []string
}

// loadMigrations reads every .sql file in dir in name order.
func loadMigrations(dir string) ([]migration, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to list migration files: %w", err)
	}
	sort.Strings(files)

	migrations := make([]migration, 0, len(files))
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file, err)
		}
		migrations = append(migrations, migration{
			name:       filepath.Base(file),
			statements: splitDDLStatements(string(content)),
		})
	}
	return migrations, nil
}

func applyMigrations(ctx context.Context, logger *slog.Logger, migrations []migration) error {
	if len(migrations) == 0 {
		logger.Warn("no migration files found", "dir", *migrateDir)
		return nil
	}

	adminClient, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	for _, m := range migrations {
		if len(m.statements) == 0 {
			continue
		}
		op, err := adminClient.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
			Database:   databaseName(),
			Statements: m.statements,
		})
		if err != nil {
			return fmt.Errorf("failed to start DDL update for %s: %w", m.name, err)
		}
		if err := op.Wait(ctx); err != nil {
			return fmt.Errorf("failed to apply DDL for %s: %w", m.name, err)
		}
		logger.Info("applied migration", "file", m.name, "statements", len(m.statements))
	}
	return nil
}

// splitDDLStatements drops comment lines and splits on semicolons.
func splitDDLStatements(content string) []string {
	var cleaned []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		cleaned = append(cleaned, line)
	}

	var result []string
	for _, stmt := range strings.Split(strings.Join(cleaned, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
