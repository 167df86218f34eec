package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/backchain/backchain/internal/logging"
	"github.com/backchain/backchain/internal/metrics"
	"github.com/backchain/backchain/internal/util"
)

// NewServeMetricsCmd creates the serve-metrics command
func NewServeMetricsCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "Serve Prometheus metrics over HTTP",
		Long: `Expose the client's Prometheus metrics at /metrics until interrupted.
The listen address comes from metrics.listen_addr in the config unless
overridden with --listen.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyLogConfig(cfg)

			addr := cfg.Metrics.ListenAddr
			if listen != "" {
				addr = listen
			}

			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Default().Handler())
			srv := &http.Server{Addr: addr, Handler: mux}

			stop := make(chan struct{})
			util.SafeGoWithName("uptime-ticker", func() {
				ticker := time.NewTicker(15 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-stop:
						return
					case <-ticker.C:
						metrics.Default().UpdateUptime()
					}
				}
			})

			errCh := make(chan error, 1)
			util.SafeGoWithName("metrics-server", func() {
				errCh <- srv.ListenAndServe()
			})

			Info("Serving metrics on http://" + addr + "/metrics")

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				close(stop)
				return err
			case <-sig:
			}

			close(stop)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logging.Warn("metrics server shutdown", logging.Err(err))
			}
			Success("Metrics server stopped.")
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (host:port)")

	return cmd
}
