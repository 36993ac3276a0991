// internal/config/config.go
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	RPCList              []string `mapstructure:"rpc_list"`
	PostgresURL          string   `mapstructure:"postgres_url"`
	AggregatorURL        string   `mapstructure:"aggregator_url"`
	OracleURLs           []string `mapstructure:"oracle_urls"`
	HookProgram          string   `mapstructure:"hook_program"`
	EscrowProgram        string   `mapstructure:"escrow_program"`
	BurnTokenID          string   `mapstructure:"burn_token_id"`
	MaxSlippageBps       int      `mapstructure:"max_slippage_bps"`
	ConfirmTimeoutSec    int      `mapstructure:"confirm_timeout_sec"`
	ObserveIntervalSec   int      `mapstructure:"observe_interval_sec"`
	BurnSweepIntervalSec int      `mapstructure:"burn_sweep_interval_sec"`
	BurnSweepThreshold   float64  `mapstructure:"burn_sweep_threshold"`
	Retries              int      `mapstructure:"retries"`
	DebugLogging         bool     `mapstructure:"debug_logging"`
	LogFile              string   `mapstructure:"log_file"`
}

const (
	DefaultMaxSlippageBps     = 50
	DefaultConfirmTimeout     = 30
	DefaultObserveInterval    = 15
	DefaultBurnSweepInterval  = 60
	DefaultBurnSweepThreshold = 100.0
	DefaultRetries            = 3
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"max_slippage_bps":        DefaultMaxSlippageBps,
		"confirm_timeout_sec":     DefaultConfirmTimeout,
		"observe_interval_sec":    DefaultObserveInterval,
		"burn_sweep_interval_sec": DefaultBurnSweepInterval,
		"burn_sweep_threshold":    DefaultBurnSweepThreshold,
		"retries":                 DefaultRetries,
		"log_file":                "launch-engine.log",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	if cfg.AggregatorURL != "" {
		if err := validateURLWithCache(cfg.AggregatorURL, "http"); err != nil {
			return errors.New("invalid aggregator URL protocol")
		}
	}
	for _, oracleURL := range cfg.OracleURLs {
		if err := validateURLWithCache(oracleURL, "http"); err != nil {
			return errors.New("invalid oracle URL protocol")
		}
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.MaxSlippageBps <= 0 || cfg.MaxSlippageBps > 10000 {
		return errors.New("invalid max_slippage_bps")
	}
	if cfg.ConfirmTimeoutSec <= 0 {
		return errors.New("invalid confirm_timeout_sec")
	}
	if cfg.ObserveIntervalSec <= 0 {
		return errors.New("invalid observe_interval_sec")
	}
	if cfg.BurnSweepIntervalSec <= 0 {
		return errors.New("invalid burn_sweep_interval_sec")
	}
	if cfg.BurnSweepThreshold < 0 {
		return errors.New("invalid burn_sweep_threshold")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("LAUNCH_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envPostgres := v.GetString("POSTGRES_URL")
	if envPostgres != "" {
		cfg.PostgresURL = envPostgres
	}

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		rpcs := strings.Split(envRPCList, ",")
		var cleanRPCs []string
		for _, rpc := range rpcs {
			clean := strings.TrimSpace(rpc)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}
	return nil
}
