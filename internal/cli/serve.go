package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/todolists/internal/config"
	"github.com/roach88/todolists/internal/session"
	"github.com/roach88/todolists/internal/store"
	"github.com/roach88/todolists/internal/web"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr    string // listen address, overrides config
	Storage string // storage engine, overrides config
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the todo lists web interface",
		Long: `Serve the todo lists over HTTP until interrupted.

With --storage database (the default) every browser sees the lists in the
SQLite database. With --storage session each browser keeps its own lists,
which are lost when the server stops.

Examples:
  todolists serve
  todolists serve --addr :8080
  todolists serve --storage session`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.Storage, "storage", "", "storage engine: database or session (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.Addr = opts.Addr
	}
	if opts.Storage != "" {
		cfg.Storage = opts.Storage
	}
	if err := config.Validate(*cfg); err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	logger := opts.newLogger(cmd.ErrOrStderr())

	handler, closeStore, err := buildHandler(cfg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start", err)
	}
	defer closeStore()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("server starting", "addr", ln.Addr().String(), "storage", cfg.Storage, "env", cfg.Env)
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", ln.Addr())

	if err := serve(ctx, ln, handler); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

// buildHandler wires the session manager and storage engine selected by cfg
// into a web handler. The returned func releases the storage engine.
func buildHandler(cfg *config.Config, logger *slog.Logger) (http.Handler, func() error, error) {
	sessions, err := session.NewManager(session.Options{
		SecretKey:  []byte(cfg.Session.SecretKey),
		CookieName: cfg.Session.CookieName,
	})
	if err != nil {
		return nil, nil, err
	}

	closeStore := func() error { return nil }
	var storeFunc web.StoreFunc
	switch cfg.Storage {
	case config.StorageSession:
		storeFunc = web.SessionStore()
	default:
		st, err := store.Open(cfg.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		closeStore = st.Close
		storeFunc = web.DatabaseStore(st)
	}

	h, err := web.NewHandler(web.Options{
		Sessions: sessions,
		Store:    storeFunc,
		Logger:   logger,
	})
	if err != nil {
		_ = closeStore()
		return nil, nil, err
	}
	return h, closeStore, nil
}

// serve runs an HTTP server on ln until ctx is done, then shuts it down.
func serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	server := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	listenErrs := make(chan error, 1)
	go func() {
		listenErrs <- server.Serve(ln)
	}()

	select {
	case err := <-listenErrs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr := server.Shutdown(shutdownCtx)
		listenErr := <-listenErrs
		if errors.Is(listenErr, http.ErrServerClosed) {
			listenErr = nil
		}
		return errors.Join(shutdownErr, listenErr)
	}
}
