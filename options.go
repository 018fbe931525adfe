// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtlsim

import (
	"math/rand"

	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/db47h/rtlsim/ast"
	log "github.com/inconshreveable/log15"
)

// An Option configures a Module.
//
type Option func(m *Module)

// WithClockSignal sets the name of the clock variable driven by Tick, Tock
// and Toggle.
//
func WithClockSignal(name string) Option {
	return func(m *Module) { m.clk = name }
}

// WithMaxSettleRounds sets the round bound of settle loops.
//
func WithMaxSettleRounds(n int) Option {
	return func(m *Module) {
		if n > 0 {
			m.maxRounds = n
		}
	}
}

// WithLogger sets the module logger.
//
func WithLogger(l log.Logger) Option {
	return func(m *Module) { m.log = l }
}

// WithFiles sets the provider used by $readmem.
//
func WithFiles(p FileProvider) Option {
	return func(m *Module) { m.files = p }
}

// WithClock sets the clock read by $time.
//
func WithClock(c *mockable.Clock) Option {
	return func(m *Module) { m.clock = c }
}

// WithRand sets the random source of $rand and $random.
//
func WithRand(r *rand.Rand) Option {
	return func(m *Module) { m.rand = r }
}

// WithMetrics enables metrics collection.
//
func WithMetrics(mt *Metrics) Option {
	return func(m *Module) { m.metrics = mt }
}

// WithConstPool adds global constant tables, declared before the module
// variables.
//
func WithConstPool(decls ...*ast.VarDecl) Option {
	return func(m *Module) { m.pool = append(m.pool, decls...) }
}

// WithDisplay sets the output hook of $display and $write.
//
func WithDisplay(fn func(string)) Option {
	return func(m *Module) { m.display = fn }
}

// WithBuiltin adds or overrides a builtin function.
//
func WithBuiltin(name string, fn Builtin) Option {
	return func(m *Module) { m.builtins[name] = fn }
}

// WithCacheSize sets the number of specialized evaluator sets kept in cache.
//
func WithCacheSize(n int) Option {
	return func(m *Module) {
		if n > 0 {
			m.cacheSize = n
		}
	}
}
