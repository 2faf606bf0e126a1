package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking-cli/web"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local parking dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.Server.Addr
			}

			sess, err := openSession(context.Background())
			if err != nil {
				return err
			}
			defer sess.Close()

			dashboard, err := web.NewServer(sess.state, sess.workflow, client, web.Facility{
				Name:        cfg.Facility.Name,
				Description: cfg.Facility.Description,
				Address:     cfg.Facility.Address,
				Phone:       cfg.Facility.Phone,
				MapURL:      cfg.Facility.MapURL,
			}, appLog, collector)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           dashboard.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				appLog.Info("Starting dashboard on %s", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()
			fmt.Printf("Dashboard listening on http://%s\n", addr)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errCh:
				return err
			case <-quit:
			}

			appLog.Info("Shutting down dashboard...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				appLog.Error("Dashboard forced to shutdown: %v", err)
				return err
			}
			appLog.Info("Dashboard stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr)")
	return cmd
}
