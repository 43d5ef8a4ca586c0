package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/austiecodes/vera/internal/app"
	"github.com/austiecodes/vera/internal/engine"
	"github.com/austiecodes/vera/internal/memory/memtypes"
	"github.com/austiecodes/vera/internal/server"
	"github.com/austiecodes/vera/internal/session"
	"github.com/austiecodes/vera/internal/utils"
)

const shutdownTimeout = 10 * time.Second

var addr string

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat API over HTTP",
	Long: `Serve the chat API over HTTP. Every session_id is its own conversation;
requests must carry "Authorization: Bearer <server.api_key>".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := utils.LoadRuntimeConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		utils.SetupLogger(config.Debug)
		if addr != "" {
			config.Server.Addr = addr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, config)
	},
}

func init() {
	ServeCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
}

func run(ctx context.Context, config *utils.Config) error {
	if config.Server.APIKey == "" {
		slog.Warn("server.api_key is not set; every chat request will be refused")
	}
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	rt, err := app.Open(ctx, config)
	if err != nil {
		return err
	}
	defer rt.Close()

	metrics := server.NewMetrics()
	factory := func(ctx context.Context) (*engine.Engine, memtypes.RebuildResult) {
		return rt.NewEngine(ctx, engine.WithRecallObserver(metrics.ObserveRecall))
	}
	sessions, err := session.NewManager(factory, session.Config{
		TTL:         config.Server.SessionTTL(),
		MaxSessions: config.Server.MaxSessions,
		OnCreate:    func(*session.Session) { metrics.SessionCreated() },
		OnEvict:     func(*session.Session) { metrics.SessionEvicted() },
	})
	if err != nil {
		return err
	}
	defer sessions.Close()

	srv := &http.Server{
		Addr:              config.Server.Addr,
		Handler:           server.New(sessions, config.Server.APIKey, metrics).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("vera server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down vera server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
