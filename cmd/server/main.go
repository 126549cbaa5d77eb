package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FOURIER-Inc/mocopi-parser/internal/config"
	"github.com/FOURIER-Inc/mocopi-parser/internal/metrics"
	"github.com/FOURIER-Inc/mocopi-parser/internal/mocap"
	"github.com/FOURIER-Inc/mocopi-parser/internal/server"
	"github.com/FOURIER-Inc/mocopi-parser/internal/session"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "mocopi-parser"
	serviceVersion    = "1.0.0"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	// Log service startup
	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	// Log configuration summary
	logger.Info("Configuration loaded",
		slog.Int("udp_port", cfg.Server.UDPPort),
		slog.String("bind_address", cfg.Server.BindAddress),
		slog.Int("workers", cfg.Server.Workers),
		slog.String("skeleton_address", cfg.Decoder.SkeletonAddress),
		slog.String("frame_address", cfg.Decoder.FrameAddress),
		slog.Int("max_bundle_depth", cfg.Decoder.MaxBundleDepth),
		slog.Int("frame_history", cfg.Session.FrameHistory),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Prometheus metrics
	appMetrics := metrics.NewMetrics()
	logger.Info("Prometheus metrics initialized")

	// Build the decoder from the configured address vocabulary
	decoder := &mocap.Decoder{
		Addresses: mocap.AddressTable{
			cfg.Decoder.SkeletonAddress: mocap.KindSkeleton,
			cfg.Decoder.FrameAddress:    mocap.KindFrame,
		},
		MaxBundleDepth: cfg.Decoder.MaxBundleDepth,
	}

	// Initialize session manager
	sessionMgr := session.NewManager(logger, cfg.Session.GetTimeoutDuration(), cfg.Session.FrameHistory, appMetrics)
	logger.Info("Session manager initialized",
		slog.Duration("session_timeout", cfg.Session.GetTimeoutDuration()),
		slog.Int("frame_history", cfg.Session.FrameHistory),
	)

	// Initialize UDP server
	udpServer := server.NewUDPServer(&cfg.Server, decoder, logger, sessionMgr, appMetrics)
	logger.Info("UDP server initialized")

	// Initialize HTTP API server (if enabled)
	var httpServer *server.HTTPServer
	if cfg.HTTP.Enabled {
		httpServer = server.NewHTTPServer(cfg.HTTP, logger, cfg, sessionMgr, udpServer, appMetrics)
		logger.Info("HTTP API server initialized",
			slog.String("address", fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)),
		)
	}

	// Start UDP server
	if err := udpServer.Start(); err != nil {
		logger.Error("Failed to start UDP server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start HTTP server (if enabled)
	if httpServer != nil {
		if err := httpServer.Start(); err != nil {
			logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...",
		slog.String("udp_address", fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.UDPPort)),
	)

	// Wait for shutdown signal
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down")
	}

	logger.Info("Starting graceful shutdown...")

	// Stop HTTP server first (stop accepting new requests)
	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
		}
	}

	// Stop UDP server (stop accepting new datagrams)
	if err := udpServer.Stop(); err != nil {
		logger.Error("Error stopping UDP server", slog.String("error", err.Error()))
	}

	// Stop session manager (cleanup sessions and stop background routines)
	sessionMgr.Stop()

	// Get final statistics
	stats := udpServer.GetStatistics()
	logger.Info("Final server statistics",
		slog.Uint64("packets_received", stats.PacketsReceived),
		slog.Uint64("packets_decoded", stats.PacketsDecoded),
		slog.Uint64("decode_errors", stats.DecodeErrors),
		slog.Uint64("active_sessions", stats.ActiveSessions),
	)

	logger.Info("Service stopped")
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Determine output destination
	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	// Create handler based on format
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
