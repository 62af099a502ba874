// Command cmdmond runs the C/M subsystem as a standalone daemon: it loads
// configuration, wires every collaborator, opens the transport endpoints,
// and serves a debug HTTP surface alongside them until a termination
// signal arrives.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ntpcore/cmdmon/internal/access"
	"github.com/ntpcore/cmdmon/internal/collab"
	"github.com/ntpcore/cmdmon/internal/config"
	"github.com/ntpcore/cmdmon/internal/dispatch"
	_ "github.com/ntpcore/cmdmon/internal/handlers"
	"github.com/ntpcore/cmdmon/internal/logging"
	"github.com/ntpcore/cmdmon/internal/observability"
	"github.com/ntpcore/cmdmon/internal/plugins"
	"github.com/ntpcore/cmdmon/internal/tools"
	"github.com/ntpcore/cmdmon/internal/transport"
)

var startedAt = time.Now()

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cmdmond: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logging.ConfigureRuntime()
	logger := logging.Logger()

	cfgPath := os.Getenv("CMDMON_CONFIG")
	if cfgPath == "" {
		cfgPath = "/etc/cmdmon/cmdmon.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	storePath := os.Getenv("CMDMON_ACCESS_STORE")
	if storePath == "" {
		storePath = "/var/lib/cmdmon/access.db"
	}
	store, err := access.OpenStore(storePath)
	if err != nil {
		return fmt.Errorf("access store: %w", err)
	}
	defer store.Close()

	policy := access.NewPolicy()
	if err := store.LoadInto(policy.NTPTable, policy.CmdTable); err != nil {
		return fmt.Errorf("access store: replay: %w", err)
	}

	deps := &dispatch.Deps{
		Sources:      collab.NewMemorySources(64),
		RefClocks:    collab.MemoryRefClocks{},
		Clock:        &collab.MemoryLocalClock{},
		Reference:    &collab.MemoryReference{},
		Manual:       &collab.MemoryManual{},
		Smooth:       collab.NewMemorySmooth(false),
		Rtc:          tools.NewHwclockRtc(tools.ExecRunner{}),
		Access:       collab.AccessAdapter{Policy: policy, Store: store},
		ClientLog:    collab.NewMemoryClientLog(),
		Keys:         collab.MemoryKeys{},
		Housekeeping: &collab.MemoryHousekeeping{},
		Policy:       policy,
		Logger:       logger,
	}

	dispatcher := dispatch.New(deps, plugins.BuildTable())
	scheduler := collab.NewMemoryScheduler()
	mgr := transport.New(dispatcher, scheduler, logger)

	if err := mgr.Start(cfg); err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	if err := mgr.OpenLocalSocket(cfg.BindCmdPath()); err != nil {
		logger.Warn().Err(err).Msg("failed to open local transport socket")
	}
	defer mgr.Close()

	observability.RegisterMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpErr := make(chan error, 1)
	srv := newDebugServer(cfg.DebugHTTPAddr, logger)
	go func() {
		httpErr <- srv.ListenAndServe()
	}()

	logger.Info().Str("debug_http_addr", cfg.DebugHTTPAddr).Msg("cmdmond started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-httpErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("debug http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newDebugServer(addr string, logger zerolog.Logger) *http.Server {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(startedAt).String(),
			"service": "cmdmond",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return &http.Server{Addr: addr, Handler: r}
}
