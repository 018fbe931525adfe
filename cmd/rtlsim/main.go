// Command rtlsim runs a design from its XML dump.
//
// Usage:
//
//	rtlsim [flags] design.xml
//
// Flags can also be set through a configuration file (--config) or RTLSIM_
// prefixed environment variables.
//
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/db47h/rtlsim"
	"github.com/db47h/rtlsim/vxml"
	log "github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/afero"
)

func main() {
	if err := run(afero.NewOsFs(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "rtlsim: %v\n", err)
		os.Exit(1)
	}
}

func run(fs afero.Fs, args []string, out io.Writer) error {
	cfg, err := parseConfig(fs, args)
	if err != nil {
		return err
	}
	lvl, err := log.LvlFromString(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.TerminalFormat())))
	logger := log.New("cmd", "rtlsim")

	doc, err := afero.ReadFile(fs, cfg.Design)
	if err != nil {
		return errors.Wrap(err, "read design")
	}
	mod, err := vxml.Parse(string(doc))
	if err != nil {
		return errors.Wrapf(err, "parse %s", cfg.Design)
	}

	reg := prometheus.NewRegistry()
	metrics, err := rtlsim.NewMetrics("rtlsim", reg)
	if err != nil {
		return errors.Wrap(err, "metrics")
	}

	m, err := rtlsim.NewModule(mod,
		rtlsim.WithLogger(logger.New("module", mod.Name)),
		rtlsim.WithFiles(rtlsim.NewFSProvider(afero.NewBasePathFs(fs, cfg.MemDir))),
		rtlsim.WithClockSignal(cfg.Clock),
		rtlsim.WithMaxSettleRounds(cfg.MaxSettle),
		rtlsim.WithMetrics(metrics),
		rtlsim.WithDisplay(func(s string) { fmt.Fprint(out, s) }),
	)
	if err != nil {
		return err
	}
	defer m.Dispose()

	if err = m.PowerCycle(); err != nil {
		return err
	}
	for k, v := range cfg.Set {
		if !m.Has(k) {
			logger.Warn("unknown signal", "name", k)
		}
		if err = m.SetInt(k, v); err != nil {
			return err
		}
	}
	for k, v := range cfg.Specialize {
		if err = m.SetInt(k, v); err != nil {
			return err
		}
	}
	if err = m.Specialize(cfg.Specialize); err != nil {
		return err
	}
	if err = m.Eval(); err != nil {
		return err
	}

	n := 0
	if m.Has(cfg.Clock) {
		if n, err = m.Run(cfg.Cycles); err != nil {
			return err
		}
	}
	logger.Info("done", "cycles", n, "finished", m.IsFinished(), "elapsed", m.Elapsed())

	for _, w := range cfg.Watch {
		if !m.Has(w) {
			return errors.Errorf("unknown signal %s", w)
		}
		fmt.Fprintf(out, "%s = %v\n", w, m.Get(w))
	}

	if cfg.Metrics {
		mfs, err := reg.Gather()
		if err != nil {
			return errors.Wrap(err, "gather metrics")
		}
		for _, mf := range mfs {
			if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
				return err
			}
		}
	}
	return nil
}
