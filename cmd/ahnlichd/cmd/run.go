package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahnlich/ahnlich-go/internal/catalog"
	"github.com/ahnlich/ahnlich-go/internal/config"
	"github.com/ahnlich/ahnlich-go/internal/daemon"
	"github.com/ahnlich/ahnlich-go/internal/executor"
	"github.com/ahnlich/ahnlich-go/internal/persistence"
	"github.com/ahnlich/ahnlich-go/internal/session"
)

func newRunCmd() *cobra.Command {
	var (
		host                string
		port                int
		enablePersistence   bool
		persistLocation     string
		persistenceInterval int
		enableTracing       bool
		otelEndpoint        string
		enableAuth          bool
		authConfig          string
		tlsCert             string
		tlsKey              string
		maximumClients      int
		allocatorSize       int
		configPath          string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the ahnlichd server in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanup := setupLogging()
			defer cleanup()

			cfg, err := config.Load(configPath)
			if err != nil {
				return newExitError(exitConfigError, err)
			}

			applyFlagOverrides(cfg, cmd, host, port, enablePersistence, persistLocation,
				persistenceInterval, enableTracing, otelEndpoint, enableAuth, authConfig,
				tlsCert, tlsKey, maximumClients, allocatorSize)

			if err := cfg.Validate(); err != nil {
				return newExitError(exitConfigError, err)
			}

			return runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host to bind (default 127.0.0.1)")
	cmd.Flags().IntVar(&port, "port", 0, "Port to bind (default 1369)")
	cmd.Flags().BoolVar(&enablePersistence, "enable-persistence", false, "Enable periodic snapshotting")
	cmd.Flags().StringVar(&persistLocation, "persist-location", "", "Snapshot file location")
	cmd.Flags().IntVar(&persistenceInterval, "persistence-interval", 0, "Snapshot interval in seconds (default 300)")
	cmd.Flags().BoolVar(&enableTracing, "enable-tracing", false, "Enable OpenTelemetry export")
	cmd.Flags().StringVar(&otelEndpoint, "otel-endpoint", "", "OTEL collector endpoint")
	cmd.Flags().BoolVar(&enableAuth, "enable-auth", false, "Enable client authentication")
	cmd.Flags().StringVar(&authConfig, "auth-config", "", "Path to auth configuration")
	cmd.Flags().StringVar(&tlsCert, "tls-cert", "", "TLS certificate path")
	cmd.Flags().StringVar(&tlsKey, "tls-key", "", "TLS key path")
	cmd.Flags().IntVar(&maximumClients, "maximum-clients", 0, "Maximum concurrent clients (default 100)")
	cmd.Flags().IntVar(&allocatorSize, "allocator-size", 0, "Informational allocator size hint in bytes")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")

	return cmd
}

// applyFlagOverrides overlays explicitly-set CLI flags onto cfg, the
// highest-precedence layer above defaults, YAML, and environment.
func applyFlagOverrides(cfg *config.Config, cmd *cobra.Command, host string, port int,
	enablePersistence bool, persistLocation string, persistenceInterval int,
	enableTracing bool, otelEndpoint string, enableAuth bool, authConfig string,
	tlsCert, tlsKey string, maximumClients, allocatorSize int) {

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Network.Host = host
	}
	if flags.Changed("port") {
		cfg.Network.Port = port
	}
	if flags.Changed("maximum-clients") {
		cfg.Network.MaximumClients = maximumClients
	}
	if flags.Changed("allocator-size") {
		cfg.Network.AllocatorSize = allocatorSize
	}
	if flags.Changed("enable-persistence") {
		cfg.Persistence.Enabled = enablePersistence
	}
	if flags.Changed("persist-location") {
		cfg.Persistence.Location = persistLocation
	}
	if flags.Changed("persistence-interval") {
		cfg.Persistence.IntervalSeconds = persistenceInterval
	}
	if flags.Changed("enable-tracing") {
		cfg.Tracing.Enabled = enableTracing
	}
	if flags.Changed("otel-endpoint") {
		cfg.Tracing.OTELEndpoint = otelEndpoint
	}
	if flags.Changed("enable-auth") {
		cfg.Auth.Enabled = enableAuth
	}
	if flags.Changed("auth-config") {
		cfg.Auth.Config = authConfig
	}
	if flags.Changed("tls-cert") {
		cfg.TLS.CertPath = tlsCert
	}
	if flags.Changed("tls-key") {
		cfg.TLS.KeyPath = tlsKey
	}
}

func runServer(parent context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cat := catalog.New()

	var persistMgr *persistence.Manager
	if cfg.Persistence.Enabled {
		persistMgr = persistence.NewManager(cat, persistence.Config{
			Path:     cfg.Persistence.Location,
			Interval: time.Duration(cfg.Persistence.IntervalSeconds) * time.Second,
		})
		if err := persistMgr.Load(); err != nil {
			return newExitError(exitSnapshotError, err)
		}
		persistMgr.Start(ctx)
	}

	sessions := session.NewManager()
	address := fmt.Sprintf("%s:%d", cfg.Network.Host, cfg.Network.Port)
	exec := executor.New(cat, sessions, address, cfg.Network.MaximumClients)

	dcfg := daemon.DefaultConfig()
	dcfg.TCPAddress = address
	dcfg.MaximumClients = cfg.Network.MaximumClients

	srv := &daemon.Server{
		TCPAddress:     dcfg.TCPAddress,
		MaximumClients: dcfg.MaximumClients,
		RequestTimeout: dcfg.RequestTimeout,
		Executor:       exec,
		Sessions:       sessions,
	}

	pidFile := daemon.NewPIDFile(dcfg.PIDPath)
	if err := dcfg.EnsureDir(); err == nil {
		if err := pidFile.Acquire(); err != nil {
			return newExitError(exitAlreadyRunning, err)
		}
	}
	defer pidFile.Remove()

	slog.Info("ahnlichd starting", "address", address,
		"persistence_enabled", cfg.Persistence.Enabled,
		"tracing_enabled", cfg.Tracing.Enabled,
		"auth_enabled", cfg.Auth.Enabled)

	err := srv.ListenAndServe(ctx)

	if persistMgr != nil {
		persistMgr.Stop()
	}

	if err != nil && err != context.Canceled {
		return newExitError(exitConfigError, err)
	}
	slog.Info("ahnlichd stopped")
	return nil
}
