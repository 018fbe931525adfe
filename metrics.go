// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtlsim

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects simulation statistics. A nil *Metrics is valid and
// collects nothing. A Metrics value may be shared by several modules.
//
type Metrics struct {
	settleRounds   prometheus.Histogram
	evals          prometheus.Counter
	nonConvergence prometheus.Counter
	specHits       prometheus.Counter
	specMisses     prometheus.Counter
}

// NewMetrics creates simulation metrics and registers them with reg.
//
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		settleRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settle_rounds",
			Help:      "Number of rounds needed by settle loops",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		evals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evals",
			Help:      "Number of eval calls",
		}),
		nonConvergence: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nonconvergence",
			Help:      "Number of settle loops that did not converge",
		}),
		specHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spec_cache_hits",
			Help:      "Number of specialized evaluator cache hits",
		}),
		specMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spec_cache_misses",
			Help:      "Number of specialized evaluator cache misses",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		reg.Register(m.settleRounds),
		reg.Register(m.evals),
		reg.Register(m.nonConvergence),
		reg.Register(m.specHits),
		reg.Register(m.specMisses),
	)
	return m, errs.Err
}

func (m *Metrics) observeSettle(rounds int) {
	if m != nil {
		m.settleRounds.Observe(float64(rounds))
	}
}

func (m *Metrics) eval() {
	if m != nil {
		m.evals.Inc()
	}
}

func (m *Metrics) nonConverged() {
	if m != nil {
		m.nonConvergence.Inc()
	}
}

func (m *Metrics) specHit() {
	if m != nil {
		m.specHits.Inc()
	}
}

func (m *Metrics) specMiss() {
	if m != nil {
		m.specMisses.Inc()
	}
}
