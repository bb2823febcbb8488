package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tasklist/internal/handlers"
	"tasklist/internal/store"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the task API and web page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("driver", "", "store driver: memory, sqlite or mongo")
	cmd.Flags().String("db", "", "SQLite database path")
	_ = a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = a.v.BindPFlag("store.driver", cmd.Flags().Lookup("driver"))
	_ = a.v.BindPFlag("store.sqlite_path", cmd.Flags().Lookup("db"))

	return cmd
}

// serve runs the HTTP server until ctx is cancelled.
func (a *app) serve(ctx context.Context) error {
	s, err := store.Open(ctx, a.cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()
	log.Printf("Using %s store", a.cfg.Store.Driver)

	h := handlers.New(s)
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           handlers.NewRouter(h, a.cfg.Server, a.static),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s (task routes: %v)", srv.Addr, a.cfg.Server.Prefixes)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
