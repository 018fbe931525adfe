package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configKey     = "config"
	cyclesKey     = "cycles"
	clockKey      = "clock"
	maxSettleKey  = "max-settle"
	memDirKey     = "mem-dir"
	watchKey      = "watch"
	setKey        = "set"
	specializeKey = "specialize"
	logLevelKey   = "log-level"
	metricsKey    = "metrics"

	envPrefix = "RTLSIM"
)

type config struct {
	Design     string
	Cycles     int
	Clock      string
	MaxSettle  int
	MemDir     string
	Watch      []string
	Set        map[string]int64
	Specialize map[string]int64
	LogLevel   string
	Metrics    bool
}

func buildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("rtlsim", pflag.ContinueOnError)

	fs.String(configKey, "", "Configuration file")
	fs.Int(cyclesKey, 16, "Number of clock cycles to run")
	fs.String(clockKey, "clk", "Name of the clock signal")
	fs.Int(maxSettleKey, 100, "Maximum number of settle rounds")
	fs.String(memDirKey, ".", "Directory of $readmem data files")
	fs.StringSlice(watchKey, nil, "Signals to print after the run")
	fs.StringSlice(setKey, nil, "Initial input values, as name=value")
	fs.StringSlice(specializeKey, nil, "Constant inputs to specialize the design for, as name=value")
	fs.String(logLevelKey, "info", "Log level (crit, error, warn, info, debug)")
	fs.Bool(metricsKey, false, "Print metrics after the run")

	return fs
}

// getViper returns the viper environment for the command line args. The
// configuration file is read from fs.
func getViper(fs afero.Fs, args []string) (*viper.Viper, []string, error) {
	v := viper.New()
	v.SetFs(fs)

	flags := buildFlagSet()
	if err := flags.Parse(args); err != nil {
		return nil, nil, err
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, nil, err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if f := v.GetString(configKey); f != "" {
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, errors.Wrap(err, "read config")
		}
	}
	return v, flags.Args(), nil
}

func parseAssignments(ss []string) (map[string]int64, error) {
	m := make(map[string]int64, len(ss))
	for _, s := range ss {
		i := strings.IndexByte(s, '=')
		if i <= 0 {
			return nil, errors.Errorf("malformed assignment %q", s)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(s[i+1:]), 0, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "assignment %q", s)
		}
		m[strings.TrimSpace(s[:i])] = v
	}
	return m, nil
}

func parseConfig(fs afero.Fs, args []string) (*config, error) {
	v, rest, err := getViper(fs, args)
	if err != nil {
		return nil, err
	}
	if len(rest) != 1 {
		return nil, errors.New("usage: rtlsim [flags] design.xml")
	}
	cfg := &config{
		Design:    rest[0],
		Cycles:    v.GetInt(cyclesKey),
		Clock:     v.GetString(clockKey),
		MaxSettle: v.GetInt(maxSettleKey),
		MemDir:    v.GetString(memDirKey),
		Watch:     v.GetStringSlice(watchKey),
		LogLevel:  v.GetString(logLevelKey),
		Metrics:   v.GetBool(metricsKey),
	}
	if cfg.Set, err = parseAssignments(v.GetStringSlice(setKey)); err != nil {
		return nil, err
	}
	if cfg.Specialize, err = parseAssignments(v.GetStringSlice(specializeKey)); err != nil {
		return nil, err
	}
	return cfg, nil
}
