package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/talkincode/slopeselector/config"
	"github.com/talkincode/slopeselector/internal/app"
)

// Version is set at build time with -ldflags
var Version = "dev"

var (
	// Global flags
	configFile string
)

// rootCmd runs the API server when no sub-command is given
var rootCmd = &cobra.Command{
	Use:   "slopeselector",
	Short: "SlopeSelector AI - ski and snowboard gear recommendation API",
	Long: `SlopeSelector asks a generative model for ski and snowboard gear suited to a
rider's description, stores every answer and serves it back by user or by id.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")
}

// loadApp reads the configuration and initializes the application
func loadApp() (*app.Application, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		return nil, err
	}
	return application, nil
}
