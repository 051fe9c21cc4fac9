package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/liftdiary/internal/auth"
	"github.com/2beens/liftdiary/internal/cache"
	"github.com/2beens/liftdiary/internal/config"
	"github.com/2beens/liftdiary/internal/dashboard"
	"github.com/2beens/liftdiary/internal/db"
	liftdiarymcp "github.com/2beens/liftdiary/internal/mcp"
	"github.com/2beens/liftdiary/internal/middleware"
	"github.com/2beens/liftdiary/internal/misc"
	"github.com/2beens/liftdiary/internal/telemetry/metrics"
	"github.com/2beens/liftdiary/internal/telemetry/tracing"
	"github.com/2beens/liftdiary/internal/workouts"

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
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string
	mcpSecretHash     string

	config          *config.Config
	dbPool          *pgxpool.Pool
	workoutsService *workouts.Service

	redisClient     *redis.Client
	identityChecker *auth.IdentityChecker
	revoker         *auth.Revoker

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	PostgresPassword        string
	RedisPassword           string
	IdentitySecret          string
	MCPSecretHash           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	if params.IdentitySecret == "" {
		return nil, errors.New("identity secret not set")
	}

	loc, err := params.Config.Location()
	if err != nil {
		return nil, err
	}
	boundary, err := workouts.ParseBoundary(params.Config.DayBoundary)
	if err != nil {
		return nil, err
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBUser:         params.Config.PostgresUser,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("liftdiary", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "liftdiary-backend", rdb)
	if err != nil {
		return nil, err
	}

	revoker := auth.NewRevoker(rdb)
	identityChecker := auth.NewIdentityChecker(
		auth.NewVerifier(params.IdentitySecret, params.Config.IdentityIssuer),
		revoker,
	)

	workoutsService := workouts.NewService(
		workouts.NewRepo(dbPool),
		cache.NewFreeCache(params.Config.CatalogCacheMB),
		metricsManager,
		loc,
		boundary,
	)

	return &Server{
		config:          params.Config,
		dbPool:          dbPool,
		workoutsService: workoutsService,
		versionInfo:     params.VersionInfo,
		mcpSecretHash:   params.MCPSecretHash,

		redisClient:     rdb,
		identityChecker: identityChecker,
		revoker:         revoker,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)

	miscHandler := misc.NewHandler(s.versionInfo, s.dbPool, s.revoker, s.config.SignInURL)
	miscHandler.SetupRoutes(r, reqRateLimiter, s.metricsManager)

	dashboardHandler := dashboard.NewHandler(s.workoutsService)
	r.Handle(
		"/dashboard",
		middleware.RequireIdentity(s.config.SignInURL)(http.HandlerFunc(dashboardHandler.HandleDashboard)),
	).Methods("GET").Name("dashboard")

	workoutsHandler := workouts.NewHandler(s.workoutsService)
	var listWorkouts http.Handler = http.HandlerFunc(workoutsHandler.HandleList)
	if s.config.RequireAPIIdentity {
		listWorkouts = middleware.RequireAPIIdentity()(listWorkouts)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/workouts", listWorkouts).Methods("GET", "OPTIONS").Name("list-workouts")
	api.HandleFunc("/workouts", workoutsHandler.HandleStart).Methods("POST", "OPTIONS").Name("start-workout")
	api.HandleFunc("/workouts/{id:[0-9]+}", workoutsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-workout")
	api.HandleFunc("/workouts/{id:[0-9]+}", workoutsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")
	api.HandleFunc("/workouts/{id:[0-9]+}/finish", workoutsHandler.HandleFinish).Methods("POST", "OPTIONS").Name("finish-workout")
	api.HandleFunc("/workouts/{id:[0-9]+}/exercises", workoutsHandler.HandleAddExercise).Methods("POST", "OPTIONS").Name("add-workout-exercise")
	api.HandleFunc("/workouts/{id:[0-9]+}/exercises/{weId:[0-9]+}/sets", workoutsHandler.HandleAddSet).Methods("POST", "OPTIONS").Name("add-set")
	api.HandleFunc("/stats/today", workoutsHandler.HandleTodayStats).Methods("GET", "OPTIONS").Name("today-stats")
	api.HandleFunc("/exercises", workoutsHandler.HandleListExercises).Methods("GET", "OPTIONS").Name("list-exercises")
	api.HandleFunc("/exercises", workoutsHandler.HandleCreateExercise).Methods("POST", "OPTIONS").Name("create-exercise")
	api.Use(middleware.RateLimit(reqRateLimiter, "api", s.config.APIRateLimitPerMin, s.metricsManager))

	if s.config.MCPEnabled {
		mcpServer := liftdiarymcp.NewServer(liftdiarymcp.NewPoolSchemaRepo(s.dbPool), s.workoutsService)
		r.PathPrefix("/mcp").Handler(
			middleware.MCPSecret(s.mcpSecretHash)(liftdiarymcp.NewHTTPHandler(mcpServer)),
		).Name("mcp")
	}

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.Identity(s.identityChecker))
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(_ context.Context, host string, port int) {
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
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", otelhttp.NewHandler(
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
		"metrics",
	))
	metricsAddr := net.JoinHostPort(s.config.MetricsHost, s.config.MetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
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

	maxWaitDuration := time.Duration(s.config.ShutdownTimeoutInSec) * time.Second
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	// stop taking requests before the pool and redis go away
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

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeOpenConnections.Inc()
	case http.StateClosed:
		s.metricsManager.GaugeOpenConnections.Dec()
	default:
		// do nothing
	}
}
