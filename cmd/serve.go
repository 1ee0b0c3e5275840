package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"cafestaff/database"
	"cafestaff/route"
	"cafestaff/service"
)

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			if migrate {
				if err := database.Migrate(rt.db); err != nil {
					return err
				}
				rt.log.Info("Database migrated")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			assets, err := openAssets(ctx, rt.cfg.Assets, rt.log)
			if err != nil {
				return err
			}
			if c, ok := assets.(closer); ok {
				defer c.Close()
			}

			if rt.cfg.GinMode == gin.ReleaseMode {
				gin.SetMode(gin.ReleaseMode)
			} else {
				rt.log.Info("Running in debug mode")
			}

			svcs := service.New(rt.db, assets, rt.log, service.Options{MaxLogoBytes: rt.cfg.Assets.MaxLogoBytes})
			srv := &http.Server{
				Addr:              rt.cfg.Addr(),
				Handler:           route.NewRouter(rt.cfg, rt.log, rt.db, svcs),
				ReadHeaderTimeout: rt.cfg.ReadHeaderTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				rt.log.Info("Starting server", "addr", srv.Addr, "api_prefix", rt.cfg.APIPrefix)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			rt.log.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "run schema migration before serving")
	return cmd
}
