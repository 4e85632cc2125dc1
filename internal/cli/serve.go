package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ashwinyue/shop-assistant/internal/handler"
	"github.com/ashwinyue/shop-assistant/internal/router"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	cmd.Flags().Bool("seed", false, "Seed the catalog and knowledge base before serving")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if seed, _ := cmd.Flags().GetBool("seed"); seed {
		stats, err := a.svc.Seeder.Run(ctx)
		if err != nil {
			a.log.Error("seed failed", zap.Error(err))
		} else {
			a.log.Info("seed completed", zap.Any("stats", stats))
		}
	}

	gin.SetMode(a.cfg.Server.Mode)
	r := router.SetupRouter(handler.NewHandlers(a.svc), a.svc.Auth, a.log.Named("http"))

	srv := &http.Server{
		Addr:         a.cfg.Server.GetAddr(),
		Handler:      r,
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.log.Info("server exited")
	return nil
}
