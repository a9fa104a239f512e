package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/talkincode/slopeselector/internal/api"
	"github.com/talkincode/slopeselector/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := loadApp()
	if err != nil {
		return err
	}
	defer application.Release()

	webserver.Init(application)
	api.Init()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return webserver.Listen()
	})
	g.Go(func() error {
		<-ctx.Done()
		if cause := context.Cause(ctx); cause != nil {
			zap.S().Infof("Shutting down web server: %v", cause)
		}
		return webserver.Shutdown(application.Config().ShutdownTimeout())
	})
	return g.Wait()
}
