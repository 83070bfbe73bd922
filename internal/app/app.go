package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"

	"pet-diary/internal/config"
	"pet-diary/internal/db"
	alertsdomain "pet-diary/internal/domain/alerts"
	animalsdomain "pet-diary/internal/domain/animals"
	ownersdomain "pet-diary/internal/domain/owners"
	recordsdomain "pet-diary/internal/domain/records"
	remindersdomain "pet-diary/internal/domain/reminders"
	"pet-diary/internal/housekeeping"
	"pet-diary/internal/metrics"
	"pet-diary/internal/repository/inmemory"
	animalspg "pet-diary/internal/repository/postgres/animals"
	ownerspg "pet-diary/internal/repository/postgres/owners"
	recordspg "pet-diary/internal/repository/postgres/records"
	reminderspg "pet-diary/internal/repository/postgres/reminders"
	"pet-diary/internal/transport/httpserver"
	"pet-diary/internal/transport/httpserver/handler"
	animalshandler "pet-diary/internal/transport/httpserver/handler/animals"
	commonhandler "pet-diary/internal/transport/httpserver/handler/common"
	recordshandler "pet-diary/internal/transport/httpserver/handler/records"
	remindershandler "pet-diary/internal/transport/httpserver/handler/reminders"
	todayhandler "pet-diary/internal/transport/httpserver/handler/today"
	authmw "pet-diary/internal/transport/httpserver/middleware"
	"pet-diary/migrations"
	"pet-diary/pkg/clock"
	"pet-diary/pkg/logger"
)

type App struct {
	cfg          config.Config
	log          logger.Logger
	httpServer   *http.Server
	db           *gorm.DB
	housekeeping *housekeeping.Job
	scheduler    gocron.Scheduler
}

type repositories struct {
	animals   animalsdomain.Repository
	records   recordsdomain.Repository
	reminders remindersdomain.Repository
	owners    ownersdomain.Repository
}

type Option func(*options)

type options struct {
	clock clockwork.Clock
}

// WithClock replaces the wall clock; tests use it to pin "today".
func WithClock(c clockwork.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

func New(log logger.Logger, opts ...Option) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, log, opts...)
}

func NewWithConfig(cfg config.Config, log logger.Logger, opts ...Option) (*App, error) {
	o := options{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}

	clk, err := clock.NewInZone(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	clk = clock.New(o.clock, clk.Location())
	log.Info("app: calendar timezone", "timezone", clk.Location().String())

	a := &App{cfg: cfg, log: log}

	var repos repositories
	switch cfg.Storage {
	case config.StorageMemory:
		log.Info("app: using in-memory storage")
		records := inmemory.NewRecordsRepository()
		repos = repositories{
			animals:   inmemory.NewAnimalsRepository(records.DropAnimal),
			records:   records,
			reminders: inmemory.NewRemindersRepository(),
			owners:    inmemory.NewOwnersRepository(),
		}
	case config.StoragePostgres:
		log.Info("app: initializing database")
		dbConn, err := db.NewPostgres(cfg.DB, log)
		if err != nil {
			return nil, err
		}
		a.db = dbConn
		if cfg.DB.AutoMigrate {
			log.Info("app: applying migrations")
			if err := db.Migrate(dbConn, migrations.FS); err != nil {
				_ = a.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		repos = repositories{
			animals:   animalspg.NewPostgres(dbConn),
			records:   recordspg.NewPostgres(dbConn),
			reminders: reminderspg.NewPostgres(dbConn),
			owners:    ownerspg.NewPostgres(dbConn),
		}
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}

	recorder := metrics.New()

	animalsService := animalsdomain.NewService(repos.animals, clk)
	alertsService := alertsdomain.NewService(
		repos.records,
		animalsService,
		clk,
		inmemory.NewAlertsCache(o.clock),
		recorder,
		alertsdomain.Config{CacheTTL: cfg.Alerts.CacheTTL},
	)
	recordsService := recordsdomain.NewService(
		repos.records,
		animalsService,
		clk,
		recordsdomain.WithInvalidator(alertsService),
		recordsdomain.WithMetrics(recorder),
	)
	remindersService := remindersdomain.NewService(repos.reminders, clk, recorder)
	ownersService := ownersdomain.NewService(repos.owners)

	a.housekeeping = housekeeping.NewJob(recordsService, o.clock, log, recorder, housekeeping.Config{
		Interval:  cfg.Housekeeping.Interval,
		Retention: cfg.Housekeeping.IdempotencyRetention,
	})

	log.Info("app: initializing router")
	handlers := &handler.Handlers{
		Common:    commonhandler.New(ownersService, log),
		Animals:   animalshandler.New(animalsService, alertsService, log),
		Records:   recordshandler.New(recordsService, log),
		Reminders: remindershandler.New(remindersService, log),
		Today:     todayhandler.New(remindersService, alertsService, log),
	}
	auth := authmw.NewAuth(cfg.Auth, ownersService, log)
	router := httpserver.NewRouter(cfg, handlers, auth, recorder, log)

	log.Info("app: initializing http server")
	a.httpServer = httpserver.New(cfg, router)

	return a, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

// ShutdownTimeout bounds graceful HTTP shutdown.
func (a *App) ShutdownTimeout() time.Duration {
	if a.cfg.Server.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return a.cfg.Server.ShutdownTimeout
}

func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// StartBackground starts the housekeeping scheduler when enabled.
func (a *App) StartBackground(ctx context.Context) error {
	if !a.cfg.Housekeeping.Enabled {
		a.log.Info("housekeeping: disabled")
		return nil
	}
	scheduler, err := a.housekeeping.Start(ctx)
	if err != nil {
		return err
	}
	a.scheduler = scheduler
	return nil
}

func (a *App) Close() error {
	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(); err != nil {
			a.log.Error("housekeeping: shutdown failed", "err", err)
		}
		a.scheduler = nil
	}
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
