package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/fitlog/internal/bodymetrics"
	"github.com/2beens/fitlog/internal/calendar"
	"github.com/2beens/fitlog/internal/config"
	"github.com/2beens/fitlog/internal/db"
	"github.com/2beens/fitlog/internal/exercises"
	"github.com/2beens/fitlog/internal/goals"
	"github.com/2beens/fitlog/internal/middleware"
	"github.com/2beens/fitlog/internal/nutrition"
	"github.com/2beens/fitlog/internal/records"
	"github.com/2beens/fitlog/internal/repository"
	"github.com/2beens/fitlog/internal/routines"
	"github.com/2beens/fitlog/internal/stats"
	"github.com/2beens/fitlog/internal/storage"
	"github.com/2beens/fitlog/internal/telemetry/metrics"
	"github.com/2beens/fitlog/internal/telemetry/tracing"
	"github.com/2beens/fitlog/internal/workouts"
	"github.com/2beens/fitlog/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	apiSecretHash     string
	versionInfo       string

	config     *config.Config
	calendar   calendar.Calendar
	dbPool     *pgxpool.Pool
	store      storage.Store
	storeClose func() error

	// nil when redis is not configured, rate limiting is off then
	redisClient *redis.Client

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	APISecretHash           string
	VersionInfo             string
	RedisPassword           string
	PostgresPassword        string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	weekStart, err := cfg.FirstWeekday()
	if err != nil {
		return nil, err
	}

	var collectors []prometheus.Collector
	var dbPool *pgxpool.Pool
	if cfg.StorageBackend == storage.BackendPostgres {
		dbParams := db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         cfg.PostgresUser,
			DBPassword:     params.PostgresPassword,
			TracingEnabled: params.HoneycombTracingEnabled,
		}
		if err := db.Migrate(dbParams); err != nil {
			return nil, fmt.Errorf("migrate db: %w", err)
		}

		dbPool, err = db.NewDBPool(ctx, dbParams)
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}

		collectors = append(collectors, pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
	}

	promRegistry := metrics.SetupPrometheus(collectors...)
	metricsManager := metrics.NewManager("fitlog", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	var rdb *redis.Client
	if cfg.RedisHost != "" && cfg.RedisPort != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0,
		})

		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
	}

	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fitlog-backend", rdb)
	if err != nil {
		return nil, err
	}

	store, storeClose, err := storage.Open(ctx, storage.Options{
		Backend:            cfg.StorageBackend,
		Namespace:          cfg.StorageNamespace,
		MemoryCapacity:     cfg.MemoryCapacity,
		SQLitePath:         cfg.SQLitePath,
		RedisClient:        rdb,
		PostgresPool:       dbPool,
		CacheSize:          cfg.CacheSize,
		CacheExpireSeconds: cfg.CacheExpireSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Infof("using %s storage backend", cfg.StorageBackend)

	return &Server{
		config:        cfg,
		calendar:      calendar.New(loc, weekStart),
		dbPool:        dbPool,
		store:         storage.NewInstrumentedStore(store, metricsManager),
		storeClose:    storeClose,
		redisClient:   rdb,
		apiSecretHash: params.APISecretHash,
		versionInfo:   params.VersionInfo,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("fitlog-router"))

	exerciseCatalog := exercises.NewCatalog(repository.NewExerciseRepo(s.store))
	workoutRepo := repository.NewWorkoutRepo(s.store)

	recordsService := records.NewService(repository.NewRecordLedgerRepo(s.store), s.metricsManager)
	nutritionService := nutrition.NewService(
		repository.NewMealRepo(s.store),
		repository.NewNutritionTargetRepo(s.store),
		s.calendar,
		time.Now,
	)
	bodyMetricsService := bodymetrics.NewService(repository.NewBodyMetricRepo(s.store), time.Now)
	workoutsService := workouts.NewService(
		workoutRepo,
		repository.NewActiveSessionRepo(s.store),
		recordsService,
		exerciseCatalog,
		s.calendar,
		time.Now,
		s.metricsManager,
	)
	goalsService := goals.NewService(
		repository.NewGoalRepo(s.store),
		workoutRepo,
		nutritionService,
		bodyMetricsService,
		goals.NewEngine(s.calendar, time.Now),
		s.metricsManager,
	)
	statsService := stats.NewService(
		workoutRepo,
		exerciseCatalog,
		stats.NewEngine(s.calendar, time.Now),
	)
	routinesService := routines.NewService(
		repository.NewRoutineRepo(s.store),
		exerciseCatalog,
		workoutsService,
		time.Now,
	)

	exercises.NewHandler(exerciseCatalog).SetupRoutes(r.PathPrefix("/exercises").Subrouter())
	stats.NewHandler(statsService).SetupRoutes(r.PathPrefix("/stats").Subrouter())
	records.NewHandler(recordsService).SetupRoutes(r.PathPrefix("/records").Subrouter())
	goals.NewHandler(goalsService).SetupRoutes(r.PathPrefix("/goals").Subrouter())
	workoutsHandler := workouts.NewHandler(workoutsService)
	workoutsHandler.SetupRoutes(r.PathPrefix("/workouts").Subrouter())
	workoutsHandler.SetupSessionRoutes(r.PathPrefix("/session").Subrouter())
	routines.NewHandler(routinesService).SetupRoutes(r.PathPrefix("/routines").Subrouter())
	nutrition.NewHandler(nutritionService).SetupRoutes(r.PathPrefix("/nutrition").Subrouter())
	bodymetrics.NewHandler(bodyMetricsService).SetupRoutes(r.PathPrefix("/body-metrics").Subrouter())

	r.HandleFunc("/", s.handleRoot).Methods("GET", "OPTIONS").Name("root")
	r.HandleFunc("/health", s.handleHealth).Methods("GET", "OPTIONS").Name("health")
	r.HandleFunc("/version", s.handleVersion).Methods("GET", "OPTIONS").Name("version")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.apiSecretHash)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.CorsAllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	if s.redisClient != nil {
		r.Use(middleware.RateLimit(
			redis_rate.NewLimiter(s.redisClient),
			"main-router",
			s.config.RateLimitAllowedPerMin,
			s.metricsManager,
		))
	} else {
		log.Warnln("redis not configured, request rate limiting disabled")
	}
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "fitlog")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "storage": s.config.StorageBackend}
	if s.dbPool != nil {
		if err := s.dbPool.Ping(r.Context()); err != nil {
			log.Errorf("health: ping db: %s", err)
			pkg.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db unavailable"})
			return
		}
	}
	pkg.WriteJSON(w, http.StatusOK, status)
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSON(w, http.StatusOK, map[string]string{"version": s.versionInfo})
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", otelhttp.NewHandler(
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
		"metrics",
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if err := s.storeClose(); err != nil {
		log.Errorf("failed to close store: %s", err)
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}
