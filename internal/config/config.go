package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gari-network/staking-indexer/internal/postgres"
	"github.com/gari-network/staking-indexer/pkg/logger"
	"github.com/gari-network/staking-indexer/pkg/logger/slogx"
	"github.com/gari-network/staking-indexer/pkg/middleware/requestcontext"
	"github.com/gari-network/staking-indexer/pkg/middleware/requestlogger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configOnce sync.Once
	config     = &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		HTTPServer: HTTPServer{
			Port: 8080,
		},
		Polling: Polling{
			PageSize:          1000,
			LedgerCallSleepMs: 100,
			IntervalSec:       10,
			DailyAt:           "04:00:00",
			StuckCutoffDays:   2,
		},
	}
)

type Config struct {
	Logger       logger.Config   `mapstructure:"logger"`
	APIOnly      bool            `mapstructure:"api_only"`
	HTTPServer   HTTPServer      `mapstructure:"http_server"`
	Postgres     postgres.Config `mapstructure:"postgres"`
	Ledger       Ledger          `mapstructure:"ledger"`
	Settlement   Settlement      `mapstructure:"settlement"`
	Notification Notification    `mapstructure:"notification"`
	Polling      Polling         `mapstructure:"polling"`
}

type HTTPServer struct {
	Port      int                               `mapstructure:"port"`
	Logger    requestlogger.Config              `mapstructure:"logger"`
	RequestIP requestcontext.WithClientIPConfig `mapstructure:"request_ip"`
}

// Ledger is the on-chain staking web API the poller mirrors from.
type Ledger struct {
	BaseURL     string `mapstructure:"base_url"`
	PoolAddress string `mapstructure:"pool_address"`
	Debug       bool   `mapstructure:"debug"`
}

// Settlement is the off-chain wallet service that owns in-process transactions.
type Settlement struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	UserAgent string `mapstructure:"user_agent"`
}

type Notification struct {
	URL      string `mapstructure:"url"`
	Disabled bool   `mapstructure:"disabled"`
}

type Polling struct {
	PageSize          int    `mapstructure:"page_size"`
	LedgerCallSleepMs int    `mapstructure:"ledger_call_sleep_ms"`
	IntervalSec       int    `mapstructure:"interval_sec"`
	DailyAt           string `mapstructure:"daily_at"`
	StuckCutoffDays   int    `mapstructure:"stuck_cutoff_days"`
}

// BindPFlag binds a cobra/pflag flag to a configuration key.
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("failed to bind flag to config", slogx.String("key", key), slogx.Error(err))
	}
}

// Parse loads the configuration from the given file (or ./config.yaml by
// default) and environment variables. Safe to call multiple times.
func Parse(configFile string) Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))
	configOnce.Do(func() {
		if configFile != "" {
			viper.SetConfigFile(configFile)
		} else {
			viper.AddConfigPath("./")
			viper.SetConfigName("config")
		}

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viper.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.WarnContext(ctx, "config file not found, use default value", slogx.Error(err))
			} else {
				logger.PanicContext(ctx, "invalid config file", slogx.Error(err))
			}
		}

		if err := viper.Unmarshal(&config); err != nil {
			logger.PanicContext(ctx, "failed to unmarshal config", slogx.Error(err))
		}
	})

	return *config
}

// Load returns the parsed configuration.
func Load() Config {
	return Parse("")
}
