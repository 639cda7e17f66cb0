package commands

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	LogDir        string   `mapstructure:"log_dir"`
	Models        []string `mapstructure:"models"`
	Scorer        string   `mapstructure:"scorer"`
	Solver        string   `mapstructure:"solver"`
	Workers       int      `mapstructure:"workers"`
	MaxTasks      int      `mapstructure:"max_tasks"`
	RetryAttempts int      `mapstructure:"retry_attempts"`
	RetryWaitSecs int      `mapstructure:"retry_wait_seconds"`
	CacheDir      string   `mapstructure:"cache_dir"`
	RateLimitRPS  float64  `mapstructure:"rate_limit_rps"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{}
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".inspect")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
