package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	appConfig  Config
	logger     *zap.Logger
	configPath string
	verbose    bool
)

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "inspect",
		Short: "Run and inspect model evaluations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			appConfig = cfg

			if verbose {
				logger, _ = zap.NewDevelopment()
			} else {
				logger, _ = zap.NewProduction()
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")

	root.AddCommand(newEvalSetCommand())
	root.AddCommand(newLogsCommand())
	root.AddCommand(newListCommand())

	return root
}

func resolveString(flag, config string) string {
	if flag != "" {
		return flag
	}
	return config
}

func resolveFloat(flag, config float64) float64 {
	if flag > 0 {
		return flag
	}
	return config
}

func resolveInt(flag, config, fallback int) int {
	if flag > 0 {
		return flag
	}
	if config > 0 {
		return config
	}
	return fallback
}
