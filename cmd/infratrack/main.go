package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/avelardo/infratrack/internal/audit"
	"github.com/avelardo/infratrack/internal/config"
	"github.com/avelardo/infratrack/internal/db"
	"github.com/avelardo/infratrack/internal/httpapi"
	"github.com/avelardo/infratrack/internal/repository"
	"github.com/avelardo/infratrack/internal/service"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "infratrack",
		Short:         "Municipal infrastructure project workflow service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			database, err := db.OpenDB(env.DBPath)
			if err != nil {
				return err
			}
			defer database.Close()
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func runServe(ctx context.Context) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}

	logger := newLogger(env)
	slog.SetDefault(logger)

	database, err := db.OpenDB(env.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	caps, err := db.ResolveCapabilities(ctx, database)
	if err != nil {
		return fmt.Errorf("resolving schema capabilities: %w", err)
	}
	logger.Info("schema capabilities resolved",
		"progress_updates", caps.HasProgressUpdates,
		"assignments", caps.HasAssignments,
	)

	// Wire repositories
	projectRepo := repository.NewSQLiteProjectRepo(database)
	logRepo := repository.NewSQLiteDecisionLogRepo(database)
	progressRepo := repository.NewSQLiteProgressRepo(database)
	employeeRepo := repository.NewSQLiteEmployeeRepo(database)
	sessionRepo := repository.NewSQLiteSessionRepo(database)
	monitoringRepo := repository.NewSQLiteMonitoringRepo(database, caps)

	uow := db.NewSQLiteUnitOfWork(database)
	recorder := audit.NewSlogRecorder(logger.With("subsystem", "audit"))
	observer := service.NewSlogUseCaseObserver(logger)

	// Wire services
	authSvc := service.NewAuthService(employeeRepo, sessionRepo, env.SessionTTL)
	workflowSvc := service.NewWorkflowService(projectRepo, logRepo, progressRepo, uow, caps, recorder, observer)
	monitoringSvc := service.NewMonitoringService(monitoringRepo, projectRepo)
	reportSvc := service.NewReportService(monitoringRepo)

	if err := authSvc.EnsureBootstrapAdmin(ctx, env.AdminUsername, env.AdminPassword); err != nil {
		return fmt.Errorf("bootstrapping admin account: %w", err)
	}

	server := httpapi.NewServer(authSvc, workflowSvc, monitoringSvc, reportSvc, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx, env.HTTPHost, env.HTTPPort)
}

func newLogger(env *config.Env) *slog.Logger {
	opts := &slog.HandlerOptions{Level: env.SlogLevel()}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
