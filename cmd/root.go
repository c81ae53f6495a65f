package cmd

import (
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/spf13/cobra"
	"github.com/mapgen-tools/osmcache/internal/config"
	"github.com/mapgen-tools/osmcache/internal/logger"
)

var (
	cfg             = config.DefaultConfig()
	verbose         bool
	logFile         string
	metricsInterval time.Duration
	configFile      string
)

var rootCmd = &cobra.Command{
	Use:   "osmcache",
	Short: "Intermediate cache for OSM element data",
	Long: `osmcache builds and queries the on-disk intermediate cache used while
converting OSM data: a node coordinate lookup plus an encoded way/relation
element store.

Features:
  - Three interchangeable point-storage strategies (raw, mem, map)
  - Length-prefixed element cache for way and relation payloads
  - A sorted key/value index file for auxiliary lookups`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg.Verbose = verbose
		if logFile != "" {
			cfg.LogFile = logFile
		}
		if metricsInterval != 0 {
			cfg.MetricsInterval = metricsInterval
		}

		if configFile != "" {
			if err := config.LoadFile(configFile, cfg); err != nil {
				exitWithError("failed to load config file", err)
			}
		}

		if cfg.LogFile != "" {
			logger.InitWithFile(cfg.Verbose, cfg.LogFile)
		} else {
			logger.Init(cfg.Verbose)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVarP(&cfg.OutputDir, "output-dir", "o", cfg.OutputDir, "Directory for cache files")
	rootCmd.PersistentFlags().IntVarP(&cfg.Workers, "workers", "j", cfg.Workers, "Number of parallel workers")
	rootCmd.PersistentFlags().StringVar(&cfg.PointStorage, "point-storage", cfg.PointStorage, "Point storage strategy: raw, mem, or map")
	rootCmd.PersistentFlags().BoolVar(&cfg.Preload, "preload", cfg.Preload, "Preload element cache payload data fully into memory on open (point storages ignore it)")

	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file for persistent logging (JSON format)")
	rootCmd.PersistentFlags().DurationVar(&metricsInterval, "metrics-interval", 0, "Interval for system metrics logging (e.g., 10s, 1m); 0 uses the config default")
}

func exitWithError(msg string, err error) {
	log := logger.Get()
	if err != nil {
		log.Error(msg, zap.Error(err))
	} else {
		log.Error(msg)
	}
	os.Exit(1)
}
