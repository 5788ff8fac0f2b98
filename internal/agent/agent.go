package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"sync"
	"syscall"
	"time"

	"github.com/mwantia/fabric/pkg/container"
	config "github.com/mwantia/nfosync/internal/config/server"
	"github.com/mwantia/nfosync/internal/engine"
	"github.com/mwantia/nfosync/pkg/db/store"
	"github.com/mwantia/nfosync/pkg/library"
	"github.com/mwantia/nfosync/pkg/log"
	"github.com/mwantia/nfosync/pkg/metrics"
	"github.com/mwantia/nfosync/pkg/scanner"
	"github.com/robfig/cron/v3"
)

type NfoSyncAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg    *config.BaseServerConfig
	sc     *container.ServiceContainer
	log    log.LoggerService
	engine *engine.Engine
	cron   *cron.Cron
	server *http.Server

	loggers agentLoggers
	scanner *scanner.Scanner

	lastReport *scanner.Report
	lastError  error
}

// agentLoggers is filled from the container by the logger tag processor.
type agentLoggers struct {
	Scanner  log.LoggerService `fabric:"logger:scanner"`
	Schedule log.LoggerService `fabric:"logger:schedule"`
	HTTP     log.LoggerService `fabric:"logger:http"`
}

func NewAgent(cfg *config.BaseServerConfig) *NfoSyncAgent {
	return &NfoSyncAgent{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService("nfosync", cfg.Log),
	}
}

func (a *NfoSyncAgent) setupServices(ctx context.Context) error {
	eng, err := engine.Open(ctx, a.cfg, a.log)
	if err != nil {
		return err
	}
	if err := eng.Migrate(ctx); err != nil {
		eng.Close()
		return err
	}
	a.engine = eng

	return a.registerServices(ctx, eng)
}

// registerServices publishes the engine services in the container and builds
// the agent scanner from what the container resolves.
func (a *NfoSyncAgent) registerServices(ctx context.Context, eng *engine.Engine) error {
	errs := container.Errors{}

	a.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](a.sc,
		container.With[log.LoggerService](),
		container.WithInstance(a.log)))

	a.log.Debug("Registering 'CatalogStore'...")
	errs.Add(container.Register[store.SQLiteStore](a.sc,
		container.With[store.CatalogStore](),
		container.WithInstance(eng.Catalog)))

	a.log.Debug("Registering 'LibraryService'...")
	errs.Add(container.Register[library.Service](a.sc,
		container.With[scanner.Syncer](),
		container.WithInstance(eng.Library)))

	if err := errs.Errors(); err != nil {
		return err
	}

	if err := log.InjectLoggers(ctx, a.sc, &a.loggers); err != nil {
		return fmt.Errorf("failed to inject agent loggers: %w", err)
	}

	syncer, err := resolve[scanner.Syncer](ctx, a.sc)
	if err != nil {
		return err
	}
	a.scanner = scanner.New(syncer, a.loggers.Scanner, engine.ScannerConfig(a.cfg))

	return nil
}

// resolve looks up the service registered for the interface type T.
func resolve[T any](ctx context.Context, sc *container.ServiceContainer) (T, error) {
	var zero T

	typ := reflect.TypeOf((*T)(nil)).Elem()
	ok, resolved := sc.ResolveByType(ctx, typ)
	if !ok {
		return zero, fmt.Errorf("failed to resolve '%s': no service registered", typ)
	}

	svc, ok := resolved.(T)
	if !ok {
		return zero, fmt.Errorf("resolved service is not a '%s'", typ)
	}
	return svc, nil
}

func (a *NfoSyncAgent) setupSchedule(ctx context.Context) error {
	a.cron = cron.New()

	if a.cfg.Agent.Schedule != "" {
		if _, err := a.cron.AddFunc(a.cfg.Agent.Schedule, func() {
			a.runScan(ctx, "schedule")
		}); err != nil {
			return fmt.Errorf("invalid agent schedule '%s': %w", a.cfg.Agent.Schedule, err)
		}
		a.loggers.Schedule.Info("Scheduled library scans '%s'", a.cfg.Agent.Schedule)
	}

	a.cron.Start()
	return nil
}

func (a *NfoSyncAgent) setupServer() {
	if a.cfg.Agent.Listen == "" {
		return
	}

	a.server = &http.Server{
		Addr:              a.cfg.Agent.Listen,
		Handler:           a.newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.wait.Add(1)
	go func() {
		defer a.wait.Done()

		a.loggers.HTTP.Info("Serving metrics and health on '%s'", a.cfg.Agent.Listen)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.loggers.HTTP.Error("HTTP server failed: %v", err)
		}
	}()
}

func (a *NfoSyncAgent) runScan(ctx context.Context, trigger string) {
	a.log.Info("Starting library scan (trigger: %s)", trigger)

	report, err := a.scanner.Scan(ctx, a.cfg.Library.Roots)
	if errors.Is(err, scanner.ErrScanInProgress) {
		a.log.Warn("Skipping %s scan, previous scan still running", trigger)
		return
	}
	if err != nil {
		a.log.Error("Library scan failed: %v", err)
	} else {
		a.updateCatalogGauge(context.WithoutCancel(ctx))
	}

	a.mutex.Lock()
	if report != nil {
		a.lastReport = report
	}
	a.lastError = err
	a.mutex.Unlock()
}

func (a *NfoSyncAgent) updateCatalogGauge(ctx context.Context) {
	catalog, err := resolve[store.CatalogStore](ctx, a.sc)
	if err != nil {
		a.log.Warn("Unable to count catalog items: %v", err)
		return
	}

	total, err := catalog.CountItems(ctx)
	if err != nil {
		a.log.Warn("Unable to count catalog items: %v", err)
		return
	}
	metrics.CatalogItems.Set(float64(total))
}

func (a *NfoSyncAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a.mutex.Lock()

	if err := a.setupServices(ctx); err != nil {
		a.mutex.Unlock()
		if a.engine != nil {
			a.engine.Close()
		}
		return err
	}
	if err := a.setupSchedule(ctx); err != nil {
		a.mutex.Unlock()
		a.engine.Close()
		return err
	}
	a.setupServer()

	a.mutex.Unlock()

	if a.cfg.Agent.ScanOnStartup {
		a.wait.Add(1)
		go func() {
			defer a.wait.Done()
			a.runScan(ctx, "startup")
		}()
	}

	<-ctx.Done()
	a.log.Info("Shutting down agent...")

	timeout, err := time.ParseDuration(a.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 60 seconds if error
		timeout = 60 * time.Second
	}

	shutdown, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Running cron jobs finish their in-flight items before Stop resolves
	select {
	case <-a.cron.Stop().Done():
	case <-shutdown.Done():
		a.log.Warn("Timed out waiting for scheduled scan to finish")
	}

	if a.server != nil {
		if err := a.server.Shutdown(shutdown); err != nil {
			a.log.Warn("Failed to shut down HTTP server: %v", err)
		}
	}

	if err := a.sc.Cleanup(shutdown); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}

	a.wait.Wait()
	return a.engine.Close()
}
