package commands

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/qenex-ai/epp-registry-platform/internal/logger"
	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/transfer"
	"github.com/qenex-ai/epp-registry-platform/internal/rdap"
	"github.com/qenex-ai/epp-registry-platform/internal/whois"
	"github.com/qenex-ai/epp-registry-platform/pkg/config"
	"github.com/qenex-ai/epp-registry-platform/pkg/metrics"
	"github.com/qenex-ai/epp-registry-platform/pkg/server"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
	"github.com/qenex-ai/epp-registry-platform/pkg/store/memory"
	"github.com/qenex-ai/epp-registry-platform/pkg/store/postgres"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the EPP, RDAP and WHOIS listeners",
	Long: `Start the registry back office: the TLS EPP listener required by the
protocol, plus the RDAP and WHOIS read-only front ends and the pending
transfer auto-approval sweeper, all sharing one store.

Use --config to point at a configuration file, or it will use the default
location at $XDG_CONFIG_HOME/eppd/config.yaml.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("eppd starting", "version", Version, "server_id", cfg.ServerID)

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var eppMetrics metrics.EPPMetrics
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		eppMetrics = metrics.NewEPPMetrics()
		logger.Info("metrics enabled", "addr", cfg.Metrics.Addr)
	}

	adapter := server.NewEPPAdapter(server.EPPConfig{
		Port:             cfg.EPP.Port,
		TLSCertFile:      cfg.EPP.TLSCertFile,
		TLSKeyFile:       cfg.EPP.TLSKeyFile,
		TLSClientCAFile:  cfg.EPP.TLSClientCAFile,
		MaxConnections:   cfg.EPP.MaxConnections,
		IdleTimeout:      cfg.EPP.IdleTimeout,
		HandshakeTimeout: cfg.EPP.HandshakeTimeout,
		ShutdownTimeout:  cfg.ShutdownTimeout,
		ServerID:         cfg.ServerID,
	}, st)
	adapter.SetMetrics(eppMetrics)

	sweeper := transfer.New(st, cfg.Transfer.SweepInterval, eppMetrics)

	errs := make(chan error, 5)

	go func() {
		errs <- adapter.Serve(ctx)
	}()
	go func() {
		sweeper.Run(ctx)
		errs <- nil
	}()

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			logger.Info("metrics listening", "addr", cfg.Metrics.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errs <- fmt.Errorf("metrics: %w", err)
				return
			}
			errs <- nil
		}()
	} else {
		errs <- nil
	}

	var rdapSrv *http.Server
	if cfg.RDAP.Enabled {
		rdapSrv = &http.Server{Addr: cfg.RDAP.Addr, Handler: rdap.NewServer(st).Handler()}
		go func() {
			logger.Info("rdap listening", "addr", cfg.RDAP.Addr)
			if err := rdapSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errs <- fmt.Errorf("rdap: %w", err)
				return
			}
			errs <- nil
		}()
	} else {
		errs <- nil
	}

	if cfg.WHOIS.Enabled {
		whoisSrv := whois.NewServer(st, cfg.WHOIS.Port)
		go func() {
			logger.Info("whois listening", "port", cfg.WHOIS.Port)
			errs <- whoisSrv.Serve(ctx)
		}()
	} else {
		errs <- nil
	}

	logger.Info("eppd is running, press Ctrl+C to stop")

	<-ctx.Done()
	logger.Info("shutdown signal received, draining listeners", "timeout", cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	if rdapSrv != nil {
		_ = rdapSrv.Shutdown(shutdownCtx)
	}

	for i := 0; i < 5; i++ {
		select {
		case err := <-errs:
			if err != nil {
				logger.Error("listener stopped with error", "error", err)
			}
		case <-time.After(cfg.ShutdownTimeout + 5*time.Second):
			logger.Warn("shutdown wait exceeded timeout, exiting anyway")
			return nil
		}
	}

	logger.Info("eppd stopped")
	return nil
}

// openStore constructs the configured store backend and returns a close
// function; for the memory driver this also provisions the configured seed
// registrars, since there is no other administration path to create them.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store.Driver {
	case "postgres":
		if cfg.Store.Postgres.AutoMigrate {
			if err := postgres.RunMigrations(ctx, &cfg.Store.Postgres, logger.With("component", "migrate")); err != nil {
				return nil, nil, fmt.Errorf("auto-migrate: %w", err)
			}
		}
		st, err := postgres.New(ctx, &cfg.Store.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres store: %w", err)
		}
		return st, func() { _ = st.Close() }, nil
	default:
		registrars := make(map[string]*store.Registrar, len(cfg.Store.SeedRegistrars))
		for _, r := range cfg.Store.SeedRegistrars {
			registrars[r.ClID] = &store.Registrar{ClID: r.ClID, PW: r.PW, Name: r.Name, Email: r.Email}
		}
		st := memory.New(registrars)
		return st, func() { _ = st.Close() }, nil
	}
}
