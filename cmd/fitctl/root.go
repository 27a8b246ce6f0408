package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/2beens/fitlog/internal/bodymetrics"
	"github.com/2beens/fitlog/internal/calendar"
	"github.com/2beens/fitlog/internal/config"
	"github.com/2beens/fitlog/internal/db"
	"github.com/2beens/fitlog/internal/exercises"
	"github.com/2beens/fitlog/internal/goals"
	"github.com/2beens/fitlog/internal/logging"
	"github.com/2beens/fitlog/internal/nutrition"
	"github.com/2beens/fitlog/internal/records"
	"github.com/2beens/fitlog/internal/repository"
	"github.com/2beens/fitlog/internal/routines"
	"github.com/2beens/fitlog/internal/stats"
	"github.com/2beens/fitlog/internal/storage"
	"github.com/2beens/fitlog/internal/telemetry/metrics"
	"github.com/2beens/fitlog/internal/workouts"
)

type rootOptions struct {
	configPath string
	env        string
	output     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "fitctl",
		Short:         "Query workout statistics, personal records and goals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case outputJSON, outputYAML:
				return nil
			}
			return fmt.Errorf("unsupported output format: %s", opts.output)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "./config.toml", "path for the TOML config file")
	rootCmd.PersistentFlags().StringVar(&opts.env, "env", "development", "environment [prod | production | dev | development]")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputJSON, "output format [json | yaml]")

	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newRecordsCmd(opts))
	rootCmd.AddCommand(newGoalsCmd(opts))
	rootCmd.AddCommand(newRoutinesCmd(opts))
	rootCmd.AddCommand(newSecretCmd(opts))

	return rootCmd
}

// app holds the services the commands work with, built over the store the
// config points to.
type app struct {
	stats    *stats.Service
	records  *records.Service
	goals    *goals.Service
	routines *routines.Service

	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func openApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.env, opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log.SetLevel(logging.GetLevel(cfg.LogLevel))

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	weekStart, err := cfg.FirstWeekday()
	if err != nil {
		return nil, err
	}
	cal := calendar.New(loc, weekStart)

	a := &app{}
	storeOpts := storage.Options{
		Backend:        cfg.StorageBackend,
		Namespace:      cfg.StorageNamespace,
		MemoryCapacity: cfg.MemoryCapacity,
		SQLitePath:     cfg.SQLitePath,
	}

	switch cfg.StorageBackend {
	case storage.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: os.Getenv("FITLOG_REDIS_PASS"),
		})
		a.closers = append(a.closers, func() {
			if err := rdb.Close(); err != nil {
				log.Errorf("close redis client: %s", err)
			}
		})
		storeOpts.RedisClient = rdb
	case storage.BackendPostgres:
		pool, err := openPostgres(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		storeOpts.PostgresPool = pool
	}

	store, storeClose, err := storage.Open(ctx, storeOpts)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := storeClose(); err != nil {
			log.Errorf("close store: %s", err)
		}
	})

	metricsManager := metrics.NewManager("fitlog", "cli", prometheus.NewRegistry())
	store = storage.NewInstrumentedStore(store, metricsManager)

	exerciseCatalog := exercises.NewCatalog(repository.NewExerciseRepo(store))
	workoutRepo := repository.NewWorkoutRepo(store)
	nutritionService := nutrition.NewService(
		repository.NewMealRepo(store),
		repository.NewNutritionTargetRepo(store),
		cal,
		time.Now,
	)
	bodyMetricsService := bodymetrics.NewService(repository.NewBodyMetricRepo(store), time.Now)

	a.stats = stats.NewService(workoutRepo, exerciseCatalog, stats.NewEngine(cal, time.Now))
	a.records = records.NewService(repository.NewRecordLedgerRepo(store), metricsManager)
	a.goals = goals.NewService(
		repository.NewGoalRepo(store),
		workoutRepo,
		nutritionService,
		bodyMetricsService,
		goals.NewEngine(cal, time.Now),
		metricsManager,
	)
	workoutsService := workouts.NewService(
		workoutRepo,
		repository.NewActiveSessionRepo(store),
		a.records,
		exerciseCatalog,
		cal,
		time.Now,
		metricsManager,
	)
	a.routines = routines.NewService(repository.NewRoutineRepo(store), exerciseCatalog, workoutsService, time.Now)

	return a, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	params := db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("FITLOG_POSTGRES_PASS"),
	}
	if err := db.Migrate(params); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	pool, err := db.NewDBPool(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}
	return pool, nil
}
