package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/cache"
	"github.com/kulfiwala/backend/internal/config"
	"github.com/kulfiwala/backend/internal/repository/docstore"
	"github.com/kulfiwala/backend/internal/scheduler"
	"github.com/kulfiwala/backend/internal/server/handlers"
	"github.com/kulfiwala/backend/internal/server/router"
	cartsvc "github.com/kulfiwala/backend/internal/service/carts"
	dayoutsvc "github.com/kulfiwala/backend/internal/service/dayout"
	inventorysvc "github.com/kulfiwala/backend/internal/service/inventory"
	lifecyclesvc "github.com/kulfiwala/backend/internal/service/lifecycle"
	remindersvc "github.com/kulfiwala/backend/internal/service/reminders"
	reportingsvc "github.com/kulfiwala/backend/internal/service/reporting"
	summarysvc "github.com/kulfiwala/backend/internal/service/summary"
	"github.com/kulfiwala/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Scheduler.Timezone), zap.Error(err))
	}

	store, closeStore, err := newStore(cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init document store", zap.Error(err))
	}
	defer closeStore()

	docstore.ReportPending(context.Background(), store, baseLogger.Named("intents"))

	reportCache := newReportCache(cfg, baseLogger)

	summaryStore := summarysvc.NewStore(store, baseLogger.Named("svc"))
	inventoryLedger := inventorysvc.NewLedger(store, summaryStore, baseLogger.Named("svc"))
	cartLedger := cartsvc.NewLedger(store, baseLogger.Named("svc"))
	lifecycleCtl := lifecyclesvc.NewController(store, summaryStore, cartLedger, inventoryLedger, loc, baseLogger.Named("svc"))
	dayoutEngine := dayoutsvc.NewEngine(store, dayoutsvc.NewSessionManager(), inventoryLedger, cartLedger, summaryStore, baseLogger.Named("svc"))
	reportingSvc := reportingsvc.NewService(summaryStore, reportCache, loc, baseLogger.Named("svc"))
	reminderSvc := remindersvc.NewService(store, loc, baseLogger.Named("svc"))

	engine := router.New(router.Handlers{
		Carts:      handlers.NewCartsHandler(cartLedger, baseLogger.Named("handlers.carts")),
		Inventory:  handlers.NewInventoryHandler(inventoryLedger, lifecycleCtl, baseLogger.Named("handlers.inventory")),
		Operations: handlers.NewOperationsHandler(lifecycleCtl, baseLogger.Named("handlers.operations")),
		DayOut:     handlers.NewDayOutHandler(dayoutEngine, baseLogger.Named("handlers.dayout")),
		Reports:    handlers.NewReportsHandler(reportingSvc, baseLogger.Named("handlers.reports")),
		Reminders:  handlers.NewRemindersHandler(reminderSvc, baseLogger.Named("handlers.reminders")),
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, loc, reminderSvc, reportingSvc, baseLogger)
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newStore(cfg *config.Config, log *zap.Logger) (docstore.Store, func(), error) {
	switch cfg.Docstore.Driver {
	case config.DriverMongo:
		mongoStore, err := docstore.NewMongoStore(context.Background(), cfg.Docstore.Mongo.URI, cfg.Docstore.Mongo.DBName)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using mongodb document store", zap.String("db", cfg.Docstore.Mongo.DBName))
		closeFn := func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				log.Error("failed to close mongodb connection", zap.Error(err))
			}
		}
		return mongoStore, closeFn, nil

	case config.DriverFirestore:
		log.Info("using firestore document store", zap.String("project", cfg.Docstore.Firestore.ProjectID))
		return docstore.NewFirestoreStore(cfg.Docstore.Firestore.ProjectID, cfg.Docstore.Firestore.APIKey), func() {}, nil

	case config.DriverMemory:
		log.Warn("using in-memory document store, data will not survive restarts")
		return docstore.NewMemoryStore(), func() {}, nil
	}
	return nil, nil, errors.New("unknown docstore driver " + cfg.Docstore.Driver)
}

func newReportCache(cfg *config.Config, log *zap.Logger) cache.ReportCache {
	if cfg.Cache.Addr == "" {
		log.Info("redis not configured, report caching disabled")
		return cache.NewNoopCache()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisCache, err := cache.NewRedisCache(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB,
		time.Duration(cfg.Cache.TTLSeconds)*time.Second, log)
	if err != nil {
		log.Warn("redis unreachable, report caching disabled", zap.Error(err))
		return cache.NewNoopCache()
	}

	log.Info("redis report cache enabled", zap.String("addr", cfg.Cache.Addr))
	return redisCache
}
