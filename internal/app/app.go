package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unilearn_backend/internal/config"
	"unilearn_backend/internal/controller"
	"unilearn_backend/internal/repository"
	"unilearn_backend/internal/service"
	"unilearn_backend/internal/util"
	"unilearn_backend/pkg/configwatcher"
	"unilearn_backend/pkg/database"
	"unilearn_backend/pkg/logger"
	"unilearn_backend/pkg/mail"
	"unilearn_backend/pkg/monitoring"
	"unilearn_backend/pkg/scheduler"
	"unilearn_backend/pkg/security"
	"unilearn_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const completionSweepTimeout = 10 * time.Minute

type App struct {
	Config          *config.Config
	ConfigDir       string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	scheduler       *scheduler.Scheduler
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
	// lifetime of goroutines owned by middleware, cancelled by Close
	background     context.Context
	stopBackground context.CancelFunc
}

type services struct {
	auth         *service.AuthService
	storage      service.ObjectStore
	notification *service.NotificationService
	progress     *service.ProgressService
	course       *service.CourseService
	content      *service.CourseContentService
}

type controllers struct {
	auth   *controller.AuthController
	course *controller.CourseController
	health *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initServices(store *repository.Store, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	var cache repository.CourseListCache = repository.NoopCourseListCache{}
	if rdb != nil {
		cache = repository.NewRedisCourseListCache(rdb, cfg.Cache.CourseListTTL)
	}

	s.storage = service.NewObjectStore(context.Background(), &cfg.Storage)
	s.notification = service.NewNotificationService(mail.New(cfg.Mail))
	s.auth = service.NewAuthService(store, cfg.JWT)
	s.progress = service.NewProgressService(store, s.notification)
	s.course = service.NewCourseService(store, cache, s.notification)
	s.content = service.NewCourseContentService(store, s.storage, cache, s.notification)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:   controller.NewAuthController(s.auth),
		course: controller.NewCourseController(s.course, s.content),
		health: controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	a.background, a.stopBackground = context.WithCancel(context.Background())

	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.background, cfg.RateLimit, "/api/health", "/metrics"))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) error {
	a.scheduler = scheduler.New()
	err := a.scheduler.Add(a.Config.Scheduler.CompletionSweep, "completion-sweep", completionSweepTimeout, func(ctx context.Context) error {
		_, err := s.progress.SweepCompletions(ctx)
		return err
	})
	if err != nil {
		return err
	}
	a.scheduler.Start()
	return nil
}

// NewApp connects the database and redis, runs migrations when asked to and
// wires every service behind the router. With MigrateOnly it returns right
// after migrating.
func NewApp(cfg *config.Config, configDir string) (*App, error) {
	logger.InitLogger(cfg.Server.Mode)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		return nil, err
	}

	if cfg.ForceMigrate || cfg.Server.Mode != "release" {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
	}
	if cfg.MigrateOnly {
		return app, nil
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(context.Background(), &cfg.Redis)
		if err != nil {
			return nil, err
		}
		app.Redis = rdb
	}

	if err := util.RegisterValidators(); err != nil {
		return nil, err
	}

	store := repository.NewStore(db)
	services := app.initServices(store, cfg, app.Redis)
	app.services = services
	controllers := app.initControllers(services)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, err
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
	})

	if err := app.startBackgroundTasks(services); err != nil {
		return nil, err
	}

	return app, nil
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatching := context.WithCancel(context.Background())
	defer stopWatching()
	go func() {
		err := configwatcher.WatchConfig(watchCtx, a.ConfigDir, func(cfg *config.Config) {
			for _, callback := range a.configCallbacks {
				callback(cfg)
			}
		})
		if err != nil {
			logger.Log.Warn("config watcher stopped", zap.Error(err))
		}
	}()

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close()
	logger.Log.Info("Server exiting")
}

// Close stops background jobs and releases connections.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.stopBackground != nil {
		a.stopBackground()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = logger.Log.Sync()
}
