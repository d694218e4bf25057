package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finoffice/backend/internal/application/reconciliation"
	reportapp "github.com/finoffice/backend/internal/application/report"
	"github.com/finoffice/backend/internal/domain/billing"
	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/domain/treasury"
	"github.com/finoffice/backend/internal/infrastructure/cache"
	"github.com/finoffice/backend/internal/infrastructure/config"
	"github.com/finoffice/backend/internal/infrastructure/event"
	"github.com/finoffice/backend/internal/infrastructure/logger"
	"github.com/finoffice/backend/internal/infrastructure/notification"
	"github.com/finoffice/backend/internal/infrastructure/persistence"
	"github.com/finoffice/backend/internal/infrastructure/scheduler"
	"github.com/finoffice/backend/internal/infrastructure/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting FinOffice engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	// Database connection with zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connected and migrated")

	// Notification dedup store: Redis when enabled, in-memory otherwise
	var dedupStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		dedupStore = redisStore
		log.Info("Redis dedup store connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		dedupStore = cache.NewInMemoryIdempotencyStore()
		log.Info("Using in-memory dedup store")
	}
	defer func() {
		if err := dedupStore.Close(); err != nil {
			log.Error("Error closing dedup store", zap.Error(err))
		}
	}()

	// Telemetry
	ctx := context.Background()
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()
	metrics, err := telemetry.NewEngineMetrics(meterProvider, log)
	if err != nil {
		log.Fatal("Failed to create engine metrics", zap.Error(err))
	}

	// Event bus with audit trail and metrics subscribers
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	eventBus.Subscribe(event.NewMetricsHandler(metrics))

	// Notifier delivering to the log sink with dedup on classification keys
	notifier := reconciliation.NewNotifier(
		notification.NewLoggingSink(log),
		dedupStore,
		shared.IdempotencyConfig{
			TTL:     cfg.Notification.DedupTTL,
			Enabled: cfg.Notification.Enabled,
		},
		log,
	)

	// Application services
	scope := persistence.NewGormTransactionScope(db.DB)
	clock := shared.SystemClock{}

	invoiceService := reconciliation.NewInvoiceStatusService(scope, eventBus, notifier, clock, log)
	invoiceService.SetReminderHorizon(cfg.Reconciliation.ReminderHorizonDays)
	quoteService := reconciliation.NewQuoteExpiryService(scope, eventBus, notifier, clock, log)
	workOrderService := reconciliation.NewWorkOrderService(scope, notifier, clock, log)
	creditService := reconciliation.NewCreditService(scope, billing.NewDueDateClassifier(), eventBus, notifier, clock, log)
	balanceService := reconciliation.NewBalanceService(scope, treasury.NewBalanceRecalculator(), eventBus, notifier, clock, log)
	lowBalanceService := reconciliation.NewLowBalanceService(scope, eventBus, notifier, clock, log)
	aggregationService := reportapp.NewAggregationService(persistence.NewGormTreasuryReportRepository(db.DB), clock, log)

	// Scheduled procedures
	if cfg.Scheduler.Enabled {
		sched := scheduler.NewProcedureScheduler(scheduler.Config{
			Enabled:       cfg.Scheduler.Enabled,
			TickInterval:  cfg.Scheduler.TickInterval,
			TaskTimeout:   cfg.Scheduler.TaskTimeout,
			RetryAttempts: cfg.Scheduler.RetryAttempts,
			RetryDelay:    cfg.Scheduler.RetryDelay,
		}, log)

		recordRun := func(taskCtx context.Context, task string, summary *reconciliation.RunSummary, err error) error {
			if err != nil {
				metrics.RecordRunFailure(taskCtx, task)
				return err
			}
			log.Info("run complete", summary.Fields()...)
			metrics.RecordRun(taskCtx, summary.Task,
				summary.Processed, summary.Transitions, summary.Notifications, summary.Skipped,
				summary.FinishedAt.Sub(summary.StartedAt))
			return nil
		}

		sched.Register(scheduler.Task{
			Name: "reconcile-invoice-status", Hour: 2, Minute: 0,
			Run: func(taskCtx context.Context) error {
				summary, err := invoiceService.Reconcile(taskCtx)
				return recordRun(taskCtx, "reconcile-invoice-status", summary, err)
			},
		})
		sched.Register(scheduler.Task{
			Name: "reconcile-work-orders", Hour: 2, Minute: 10,
			Run: func(taskCtx context.Context) error {
				summary, err := workOrderService.Reconcile(taskCtx)
				return recordRun(taskCtx, "reconcile-work-orders", summary, err)
			},
		})
		sched.Register(scheduler.Task{
			Name: "reconcile-quote-expiry", Hour: 2, Minute: 20,
			Run: func(taskCtx context.Context) error {
				summary, err := quoteService.Sweep(taskCtx, cfg.Reconciliation.QuoteExpiryNotify)
				return recordRun(taskCtx, "reconcile-quote-expiry", summary, err)
			},
		})
		sched.Register(scheduler.Task{
			Name: "reconcile-credit-sweep", Hour: 2, Minute: 30,
			Run: func(taskCtx context.Context) error {
				summary, err := creditService.Sweep(taskCtx, cfg.Reconciliation.InstallmentDaysBefore, cfg.Reconciliation.CreditUpdateStatus)
				return recordRun(taskCtx, "reconcile-credit-sweep", summary, err)
			},
		})
		sched.Register(scheduler.Task{
			Name: "recompute-balances", Hour: 3, Minute: 0,
			Run: func(taskCtx context.Context) error {
				summary, err := balanceService.RecomputeAll(taskCtx)
				return recordRun(taskCtx, "recompute-balances", summary, err)
			},
		})
		if cfg.Reconciliation.LowBalanceCheckEnabled {
			sched.Register(scheduler.Task{
				Name: "classify-low-balances", Hour: 3, Minute: 10,
				Run: func(taskCtx context.Context) error {
					summary, err := lowBalanceService.Classify(taskCtx,
						decimal.NewFromFloat(cfg.Reconciliation.LowBalanceBankFloor),
						decimal.NewFromFloat(cfg.Reconciliation.LowBalanceCashFloor),
					)
					return recordRun(taskCtx, "classify-low-balances", summary, err)
				},
			})
		}
		sched.Register(scheduler.Task{
			Name: "daily-treasury-report", Hour: 4, Minute: 0,
			Run: func(taskCtx context.Context) error {
				yesterday := clock.Now().AddDate(0, 0, -1)
				rep, err := aggregationService.DailyReport(taskCtx, yesterday)
				if err != nil {
					return err
				}
				log.Info("daily treasury report",
					zap.Time("period_start", rep.PeriodStart),
					zap.Time("period_end", rep.PeriodEnd),
					zap.Int("invoices_issued", rep.InvoicesIssuedCount),
					zap.Int("invoices_paid", rep.InvoicesPaidCount),
					zap.String("outstanding_receivables", rep.OutstandingReceivables.String()),
				)
				return nil
			},
		})
		sched.Register(scheduler.Task{
			Name: "aggregate-monthly-report", Day: 1, Hour: 4, Minute: 30,
			Run: func(taskCtx context.Context) error {
				// first-of-month run rolls up the month that just ended
				lastMonth := clock.Now().AddDate(0, 0, -1)
				rep, err := aggregationService.MonthlyReport(taskCtx, lastMonth.Month(), lastMonth.Year())
				if err != nil {
					return err
				}
				log.Info("monthly treasury report",
					zap.Time("period_start", rep.PeriodStart),
					zap.Time("period_end", rep.PeriodEnd),
					zap.Int("invoices_issued", rep.InvoicesIssuedCount),
					zap.Int("invoices_paid", rep.InvoicesPaidCount),
					zap.String("outstanding_receivables", rep.OutstandingReceivables.String()),
				)
				return nil
			},
		})

		if err := sched.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := sched.Stop(stopCtx); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
		log.Info("Scheduler started",
			zap.Duration("task_timeout", cfg.Scheduler.TaskTimeout),
			zap.Int("retry_attempts", cfg.Scheduler.RetryAttempts),
		)
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")
}
