// Command bakeryd is the Bakery daemon: it loads configuration, opens the
// embedded store, binds the Router Proxy, then the Control API, and serves
// until signaled to shut down — the startup/shutdown order spec §2 and §4.4
// require, wired the way iam-service/cmd/api/main.go wires its own
// Echo + gRPC servers.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/arc-self/bakery/internal/api"
	"github.com/arc-self/bakery/internal/config"
	"github.com/arc-self/bakery/internal/orchestrator"
	"github.com/arc-self/bakery/internal/portalloc"
	"github.com/arc-self/bakery/internal/proxy"
	"github.com/arc-self/bakery/internal/store"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	st, err := store.Open(cfg.DBPath(), logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	logger.Info("store opened", zap.String("path", cfg.DBPath()))

	routerPort := orchestrator.NewRouterPort()

	// --- Router Proxy (bind first) ---
	routerListener, err := proxy.BindFirstFree(cfg.Host, cfg.RouterPorts)
	if err != nil {
		logger.Fatal("failed to bind router proxy", zap.Error(err))
	}
	routerPort.Set(proxy.ListenerPort(routerListener))
	logger.Info("router proxy bound", zap.Int("port", routerPort.Get()))

	routerHandler := proxy.New(st, logger)
	routerServer := &http.Server{Handler: routerHandler}
	go func() {
		if err := routerServer.Serve(routerListener); err != nil && err != http.ErrServerClosed {
			logger.Error("router proxy server failure", zap.Error(err))
		}
	}()

	// --- Slice Orchestrator ---
	allocator := portalloc.New(cfg.PortRangeStart, cfg.PortRangeEnd)
	orch := orchestrator.New(st, allocator, cfg.HostSuffix, routerPort).WithLogger(logger)

	// --- Control API (bind second) ---
	apiServer := api.New(st, orch, routerPort, cfg.Host, cfg.Port, logger)
	go func() {
		if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("control api server failure", zap.Error(err))
		}
	}()

	logger.Info("bakery daemon started",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.Int("routerPort", routerPort.Get()),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), proxy.ShutdownTimeout)
	defer cancel()

	if err := apiServer.Echo.Shutdown(shutdownCtx); err != nil {
		logger.Error("control api shutdown error", zap.Error(err))
	}
	if err := routerServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("router proxy shutdown error", zap.Error(err))
	}
	if err := st.Close(); err != nil {
		logger.Error("store close error", zap.Error(err))
	}

	logger.Info("bakery daemon shut down cleanly")
}
