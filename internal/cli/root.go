// Package cli implements the marker-migrate command-line interface. All
// actual computation lives in the engine packages; this layer parses flags,
// moves files, and renders results.
package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"marker-migrate/internal/config"
	"marker-migrate/internal/logging"
)

var (
	cfgPath string
	cfg     config.Config

	logCleanup = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "marker-migrate",
	Short: "Migrate point annotations between related images",
	Long: `marker-migrate fits a 2D affine transform from user-picked point
correspondences between two related images, scores the fit, transforms
marker annotations, and merges them into an existing annotation set
without creating duplicates.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		_, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		logCleanup = cleanup
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default ~/.marker-migrate/config.toml)")
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	defer logCleanup()

	if err := rootCmd.Execute(); err != nil {
		log.SetFlags(0)
		log.Printf("error: %v", err)
		return 1
	}
	return 0
}
