package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"hrportal/internal/domain/audit"
	"hrportal/internal/domain/calendar"
	"hrportal/internal/domain/leave"
	"hrportal/internal/domain/notifications"
	"hrportal/internal/domain/policy"
	"hrportal/internal/domain/reports"
	"hrportal/internal/platform/cache"
	"hrportal/internal/platform/config"
	"hrportal/internal/platform/db"
	"hrportal/internal/platform/email"
	"hrportal/internal/platform/i18n"
	"hrportal/internal/platform/jobs"
	"hrportal/internal/platform/metrics"
	"hrportal/internal/platform/sqlite"
	"hrportal/internal/transport/http/api"
	audithandler "hrportal/internal/transport/http/handlers/audit"
	leavehandler "hrportal/internal/transport/http/handlers/leave"
	notificationshandler "hrportal/internal/transport/http/handlers/notifications"
	policyhandler "hrportal/internal/transport/http/handlers/policy"
	reportshandler "hrportal/internal/transport/http/handlers/reports"
	worktimehandler "hrportal/internal/transport/http/handlers/worktime"
	"hrportal/internal/transport/http/middleware"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Config   config.Config
	Router   http.Handler
	Leave    *leave.Manager
	Policies *policy.Provider
	Metrics  *metrics.Collector

	store   pinger
	jobs    *jobs.Service
	cancel  context.CancelFunc
	closers []func()
}

// backend holds the stores for one STORE_DRIVER.
type backend struct {
	store         pinger
	capability    leave.Capability
	transactional leave.TransactionalStore
	loader        policy.Loader
	audit         audit.StoreAPI
	notifications notifications.StoreAPI
	calendar      calendar.StoreAPI
	runs          jobs.RunRecorder
	reports       reports.StoreAPI
	idempotency   *middleware.IdempotencyStore
	close         func()
}

// PolicyDefaults builds the snapshot served before the policy store has been
// read from the DEFAULT_* settings.
func PolicyDefaults(cfg config.Config) (policy.Set, error) {
	set := policy.Defaults()
	nightStart, err := config.ClockMinute(cfg.DefaultNightStart)
	if err != nil {
		return policy.Set{}, fmt.Errorf("DEFAULT_NIGHT_START: %w", err)
	}
	nightEnd, err := config.ClockMinute(cfg.DefaultNightEnd)
	if err != nil {
		return policy.Set{}, fmt.Errorf("DEFAULT_NIGHT_END: %w", err)
	}

	on := &set.OvertimeNight
	on.NightStartMinute = nightStart
	on.NightEndMinute = nightEnd
	if cfg.DefaultOvertimeThresholdHours > 0 {
		on.OvertimeThresholdHours = cfg.DefaultOvertimeThresholdHours
	}
	if cfg.DefaultLunchMinutes > 0 {
		on.LunchMinutes = cfg.DefaultLunchMinutes
		on.BreakTiers = []policy.BreakTier{{MinHours: 5, Minutes: cfg.DefaultLunchMinutes}}
	}
	if cfg.DefaultDinnerThresholdHours > 0 {
		on.DinnerThresholdHours = cfg.DefaultDinnerThresholdHours
	}
	set.Accrual.MaxBalanceHours = cfg.LeaveMaxBalanceHours
	return set, nil
}

// New connects the configured backend, loads policy and builds the router.
// Background jobs start immediately and stop on Close.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := i18n.Init(cfg.DefaultLocale); err != nil {
		return nil, fmt.Errorf("i18n init: %w", err)
	}
	defaults, err := PolicyDefaults(cfg)
	if err != nil {
		return nil, err
	}

	var b backend
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		b, err = openSQLite(cfg)
	default:
		b, err = openPostgres(ctx, cfg, defaults)
	}
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Metrics: metrics.New(), store: b.store}
	app.closers = append(app.closers, b.close)

	var policyCache policy.Cache
	if cfg.RedisEnabled() {
		redisCache, err := cache.Connect(ctx, cache.Options{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			slog.Warn("redis unavailable; policy snapshots will not be shared", "err", err)
		} else {
			policyCache = redisCache
			app.closers = append(app.closers, func() {
				if err := redisCache.Close(); err != nil {
					slog.Warn("redis close failed", "err", err)
				}
			})
		}
	}

	app.Policies = policy.NewProviderWithDefaults(b.loader, policyCache, cfg.PolicyCacheTTL, defaults)
	_, reloadErr := app.Policies.Reload(ctx)
	app.Metrics.RecordPolicyReload(reloadErr)
	if reloadErr != nil {
		slog.Warn("initial policy load failed; serving defaults", "err", reloadErr)
	}

	app.jobs = jobs.New(b.runs, cfg.JobsQueueSize, cfg.JobsWorkers)
	app.jobs.Every(jobs.JobPolicyReload, cfg.PolicyReloadInterval, func(ctx context.Context) (any, error) {
		set, err := app.Policies.Reload(ctx)
		app.Metrics.RecordPolicyReload(err)
		if err != nil {
			return nil, err
		}
		return map[string]any{"source": set.Source, "loadedAt": set.LoadedAt}, nil
	})

	auditSvc := audit.New(b.audit)
	notifSvc := notifications.New(b.notifications, email.New(cfg), cfg.EmailFrom)
	calendarSvc := calendar.New(b.calendar)

	app.Leave = leave.NewManager(b.transactional, &leave.Effects{
		Jobs:     app.jobs,
		Calendar: calendarSvc,
		Notifier: notifSvc,
	}, app.Metrics)
	app.Metrics.SetLeaveMode(app.Leave.Mode())
	slog.Info("leave balance mutations configured", "mode", app.Leave.Mode(), "reason", b.capability.Reason)

	app.Router = app.routes(auditSvc, notifSvc, reports.NewService(b.reports), b.idempotency)

	jobsCtx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	app.jobs.Start(jobsCtx)
	return app, nil
}

func openPostgres(ctx context.Context, cfg config.Config, defaults policy.Set) (backend, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return backend{}, fmt.Errorf("db connect: %w", err)
	}
	fail := func(step string, err error) (backend, error) {
		pool.Close()
		return backend{}, fmt.Errorf("%s: %w", step, err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			return fail("migrations", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, defaults); err != nil {
			return fail("seed", err)
		}
	}

	capability := leave.FallbackCapability("disabled by LEAVE_ATOMIC_MUTATIONS")
	if cfg.LeaveAtomicMutations != config.LeaveAtomicOff {
		capability, err = leave.ProbeCapability(ctx, pool)
		if err != nil {
			return fail("leave capability probe", err)
		}
	}

	return backend{
		store:         pool,
		capability:    capability,
		transactional: leave.NewTransactionalStore(capability, pool, leave.NewStore(pool)),
		loader:        policy.NewStore(pool),
		audit:         audit.NewStore(pool),
		notifications: notifications.NewStore(pool),
		calendar:      calendar.NewStore(pool),
		runs:          jobs.NewStore(pool),
		reports:       reports.NewStore(pool),
		idempotency:   middleware.NewIdempotencyStore(pool),
		close:         pool.Close,
	}, nil
}

func openSQLite(cfg config.Config) (backend, error) {
	store, err := sqlite.New(cfg.SQLitePath)
	if err != nil {
		return backend{}, fmt.Errorf("sqlite open: %w", err)
	}
	capability := leave.FallbackCapability("sqlite backend has no row locking")
	return backend{
		store:         store,
		capability:    capability,
		transactional: leave.NewTransactionalStore(capability, nil, store),
		loader:        store,
		audit:         store.Audit(),
		notifications: store,
		calendar:      store.Calendar(),
		runs:          store,
		reports:       store,
		close: func() {
			if err := store.Close(); err != nil {
				slog.Warn("sqlite close failed", "err", err)
			}
		},
	}, nil
}

func (a *App) routes(auditSvc *audit.Service, notifSvc *notifications.Service, reportsSvc *reports.Service, idempotency *middleware.IdempotencyStore) http.Handler {
	cfg := a.Config
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.Logger(a.Metrics))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept-Language", middleware.IdempotencyHeader},
			ExposedHeaders:   []string{"X-Request-ID", "X-Total-Count", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Locale)
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetRequestID(r.Context())
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.store.Ping(ctx); err != nil {
			api.Fail(w, http.StatusServiceUnavailable, "backend_unavailable", "store not ready", requestID)
			return
		}
		api.Success(w, map[string]any{
			"leaveMode":    a.Leave.Mode(),
			"policySource": a.Policies.Current().Source,
		}, requestID)
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		worktimehandler.NewHandler(a.Policies, a.Leave, auditSvc).RegisterRoutes(r)
		policyhandler.NewHandler(a.Policies, a.Metrics).RegisterRoutes(r)
		leavehandler.NewHandler(a.Leave, auditSvc, idempotency).RegisterRoutes(r)
		notificationshandler.NewHandler(notifSvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
		reportshandler.NewHandler(reportsSvc, a.Leave).RegisterRoutes(r)
	})

	return router
}

// Close stops the job workers and releases the backend.
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
		a.jobs.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if a.closers[i] != nil {
			a.closers[i]()
		}
	}
}

func Run() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("hrportal listening", "addr", cfg.Addr(), "driver", cfg.StoreDriver, "leaveMode", app.Leave.Mode())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("server shutdown failed", "err", err)
		}
	}
}
