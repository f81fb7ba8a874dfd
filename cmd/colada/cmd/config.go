package cmd

import (
	"fmt"
	"io"
	"strings"

	"cosmossdk.io/log"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/colada-chain/colada/api"
)

const (
	envPrefix = "COLADA"

	flagConfig   = "config"
	flagScenario = "scenario"
	flagLogLevel = "log-level"
	flagLogJSON  = "log-json"

	keyScenario          = "scenario"
	keyLogLevel          = "log.level"
	keyLogJSON           = "log.json"
	keyAPIHost           = "api.host"
	keyAPIPort           = "api.port"
	keyAPICORSOrigins    = "api.cors_origins"
	keyAPIRateLimit      = "api.rate_limit"
	keyAPIBurst          = "api.burst"
	keyAPIRequestTimeout = "api.request_timeout"
	keyMetricsEnabled    = "metrics.enabled"
)

// flagKeys maps persistent flags onto config keys
var flagKeys = map[string]string{
	flagScenario: keyScenario,
	flagLogLevel: keyLogLevel,
	flagLogJSON:  keyLogJSON,
}

// Config is the resolved configuration of one invocation. Flags win over
// COLADA_* environment variables, which win over the config file.
type Config struct {
	Scenario string
	LogLevel string
	LogJSON  bool
	API      *api.Config
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	defaults := api.DefaultConfig()
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogJSON, false)
	v.SetDefault(keyAPIHost, defaults.Host)
	v.SetDefault(keyAPIPort, defaults.Port)
	v.SetDefault(keyAPICORSOrigins, defaults.CORSOrigins)
	v.SetDefault(keyAPIRateLimit, defaults.RateLimitRPS)
	v.SetDefault(keyAPIBurst, defaults.RateLimitBurst)
	v.SetDefault(keyAPIRequestTimeout, defaults.RequestTimeout)
	v.SetDefault(keyMetricsEnabled, defaults.MetricsEnabled)
	return v
}

// bindFlags binds every changed persistent flag to its config key
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

// readConfigFile merges the optional config file. The format follows the
// extension, toml, yaml or json.
func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// loadConfig resolves the configuration out of v
func loadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		Scenario: strings.TrimSpace(v.GetString(keyScenario)),
		API:      api.DefaultConfig(),
	}

	var err error
	if cfg.LogLevel, err = cast.ToStringE(v.Get(keyLogLevel)); err != nil {
		return Config{}, fmt.Errorf("%s: %w", keyLogLevel, err)
	}
	if cfg.LogJSON, err = cast.ToBoolE(v.Get(keyLogJSON)); err != nil {
		return Config{}, fmt.Errorf("%s: %w", keyLogJSON, err)
	}

	cfg.API.Host = v.GetString(keyAPIHost)
	port, err := cast.ToIntE(v.Get(keyAPIPort))
	if err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("%s: invalid port %v", keyAPIPort, v.Get(keyAPIPort))
	}
	cfg.API.Port = cast.ToString(port)

	if cfg.API.CORSOrigins, err = corsOrigins(v.Get(keyAPICORSOrigins)); err != nil {
		return Config{}, fmt.Errorf("%s: %w", keyAPICORSOrigins, err)
	}
	if cfg.API.RateLimitRPS, err = cast.ToIntE(v.Get(keyAPIRateLimit)); err != nil {
		return Config{}, fmt.Errorf("%s: %w", keyAPIRateLimit, err)
	}
	if cfg.API.RateLimitBurst, err = cast.ToIntE(v.Get(keyAPIBurst)); err != nil {
		return Config{}, fmt.Errorf("%s: %w", keyAPIBurst, err)
	}
	if cfg.API.RequestTimeout, err = cast.ToDurationE(v.Get(keyAPIRequestTimeout)); err != nil {
		return Config{}, fmt.Errorf("%s: %w", keyAPIRequestTimeout, err)
	}
	if cfg.API.MetricsEnabled, err = cast.ToBoolE(v.Get(keyMetricsEnabled)); err != nil {
		return Config{}, fmt.Errorf("%s: %w", keyMetricsEnabled, err)
	}
	return cfg, nil
}

// corsOrigins accepts a list or a comma separated string, the form
// environment variables arrive in.
func corsOrigins(raw interface{}) ([]string, error) {
	if s, ok := raw.(string); ok {
		raw = strings.Split(s, ",")
	}
	origins, err := cast.ToStringSliceE(raw)
	if err != nil {
		return nil, err
	}
	out := origins[:0]
	for _, origin := range origins {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out, nil
}

// newLogger builds the process logger
func newLogger(out io.Writer, cfg Config) (log.Logger, error) {
	filter, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", keyLogLevel, err)
	}
	opts := []log.Option{log.FilterOption(filter), log.ColorOption(false)}
	if cfg.LogJSON {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(out, opts...), nil
}
