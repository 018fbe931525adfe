// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtlsim

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/db47h/rtlsim/ast"
	log "github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

// Defaults.
//
const (
	DefaultMaxSettleRounds = 100
	DefaultClockSignal     = "clk"
	DefaultCacheSize       = 16
)

type phase uint8

const (
	phaseUninitialized phase = iota
	phaseStable
	phaseFailed
	phaseDisposed
)

var phaseNames = [...]string{"uninitialized", "stable", "failed", "disposed"}

func (p phase) String() string { return phaseNames[p] }

// Module is a simulation instance of a design.
//
// A Module is not safe for concurrent use. Independent modules built from
// the same *ast.Module share nothing but the AST.
//
type Module struct {
	name string
	ast  *ast.Module
	st   *state

	base        *evaluators
	cur         *evaluators
	specialized cache.Cacher

	builtins map[string]Builtin
	pool     []*ast.VarDecl
	log      log.Logger
	metrics  *Metrics
	clock    *mockable.Clock
	rand     *rand.Rand
	files    FileProvider
	display  func(string)

	clk       string
	maxRounds int
	cacheSize int
	rounds    int
	resetAt   time.Time

	finished, stopped     bool
	finishedAt, stoppedAt ast.Loc

	phase phase
	err   error

	watch map[string]*edge
}

// NewModule builds a simulation instance of mod.
//
// Globals are created with their default values: constant pool entries
// first, then the module variables. Every block is then compiled into the
// generic evaluator set. Any error aborts the construction.
//
// The returned module is uninitialized; call PowerCycle to bring it to a
// stable state.
//
func NewModule(mod *ast.Module, opts ...Option) (*Module, error) {
	if mod == nil {
		return nil, errors.New("nil module")
	}
	m := &Module{
		name:      mod.Name,
		ast:       mod,
		st:        newState(),
		builtins:  make(map[string]Builtin, len(builtins)),
		clk:       DefaultClockSignal,
		maxRounds: DefaultMaxSettleRounds,
		cacheSize: DefaultCacheSize,
	}
	for k, fn := range builtins {
		m.builtins[k] = fn
	}
	for _, o := range opts {
		o(m)
	}
	if m.log == nil {
		m.log = log.New("module", m.name)
		m.log.SetHandler(log.DiscardHandler())
	}
	if m.clock == nil {
		m.clock = &mockable.Clock{}
	}
	if m.rand == nil {
		m.rand = rand.New(rand.NewSource(1))
	}
	if m.files == nil {
		m.files = noFiles{}
	}
	if m.display == nil {
		m.display = func(s string) { m.log.Info(strings.TrimRight(s, "\n")) }
	}
	m.specialized = &cache.LRU{Size: m.cacheSize}

	for _, d := range m.pool {
		if err := m.st.declare(d); err != nil {
			return nil, errors.Wrap(err, "constant pool")
		}
	}
	for _, d := range mod.Vars {
		if err := m.st.declare(d); err != nil {
			return nil, errors.Wrapf(err, "module %s", m.name)
		}
	}
	set, err := compile(mod, m.st, m.builtins, nil, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "module %s", m.name)
	}
	m.base, m.cur = set, set
	return m, nil
}

// Name returns the module name.
//
func (m *Module) Name() string { return m.name }

// AST returns the module's design.
//
func (m *Module) AST() *ast.Module { return m.ast }

// Err returns the runtime error that put the module in a failed state, if
// any.
//
func (m *Module) Err() error { return m.err }

func (m *Module) check() error {
	switch m.phase {
	case phaseFailed:
		return errors.Wrap(m.err, "module failed")
	case phaseDisposed:
		return errors.New("module disposed")
	}
	return nil
}

// run calls fn and turns runtime error panics into returned errors. A
// runtime error puts the module in a failed state.
//
func (m *Module) run(fn func() error) (err error) {
	if err = m.check(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			rt, ok := r.(rtError)
			if !ok {
				panic(r)
			}
			err = errors.WithStack(rt.err)
		}
		if err != nil {
			m.phase = phaseFailed
			m.err = err
		}
	}()
	return fn()
}

// callBlock runs the named block with the current evaluator set. Missing
// blocks are skipped and report no change.
//
func (m *Module) callBlock(name string) bool {
	fn := m.cur.lookup(name)
	if fn == nil {
		return false
	}
	return fn.invoke(m, m.cur).Bool()
}

// settle runs rounds of the given blocks until the last one reports no
// change.
//
func (m *Module) settle(op string, blocks ...string) error {
	for i := 1; i <= m.maxRounds; i++ {
		changed := false
		for _, b := range blocks {
			changed = m.callBlock(b)
		}
		if !changed {
			m.rounds = i
			m.metrics.observeSettle(i)
			m.sample()
			return nil
		}
	}
	m.rounds = m.maxRounds
	m.metrics.nonConverged()
	m.log.Error("model did not converge", "op", op, "rounds", m.maxRounds)
	return errors.WithStack(&NonConvergenceError{Phase: op, Rounds: m.maxRounds})
}

// PowerCycle runs the power-on reset sequence: variable reset, initial
// blocks, then settle rounds of eval_settle, eval and change_request.
//
// Halt flags are cleared and the $time origin is reset.
//
func (m *Module) PowerCycle() error {
	return m.run(func() error {
		m.resetAt = m.clock.Time()
		m.finished, m.stopped = false, false
		m.finishedAt, m.stoppedAt = ast.Loc{}, ast.Loc{}
		m.resetEdges()
		m.callBlock(ast.CtorVarReset)
		m.callBlock(ast.EvalInitial)
		if err := m.settle("reset", ast.EvalSettle, ast.Eval, ast.ChangeRequest); err != nil {
			return err
		}
		m.phase = phaseStable
		m.log.Debug("reset", "rounds", m.rounds)
		return nil
	})
}

// Eval settles the module after an input change.
//
func (m *Module) Eval() error {
	return m.run(func() error {
		m.metrics.eval()
		return m.settle(ast.Eval, ast.Eval, ast.ChangeRequest)
	})
}

func (m *Module) setClock(fn func(Value) Value) error {
	i, ok := m.st.lookup(m.clk)
	if !ok {
		return errors.WithStack(&UnresolvedSymbolError{Name: m.clk})
	}
	if m.st.kinds[i] == KindArray {
		return errors.WithStack(&UnsupportedTypeError{Type: m.st.vars[i].Type, Context: "clock signal", Loc: m.st.vars[i].Loc})
	}
	if err := m.check(); err != nil {
		return err
	}
	m.st.store(i, fn(m.st.vals[i]))
	return m.Eval()
}

// Tick drives the clock low and settles.
//
func (m *Module) Tick() error {
	return m.setClock(func(Value) Value { return Word(0) })
}

// Tock drives the clock high and settles. Rising edge triggered logic
// updates here.
//
func (m *Module) Tock() error {
	return m.setClock(func(Value) Value { return Word(1) })
}

// Toggle inverts the clock and settles.
//
func (m *Module) Toggle() error {
	return m.setClock(func(v Value) Value { return Bool(v.IsZero()) })
}

// TickTock runs a full clock cycle.
//
func (m *Module) TickTock() error {
	if err := m.Tick(); err != nil {
		return err
	}
	return m.Tock()
}

// Run runs n clock cycles. It stops early once the design has called
// $finish and returns the number of cycles run.
//
func (m *Module) Run(n int) (int, error) {
	for i := 0; i < n; i++ {
		if m.finished {
			return i, nil
		}
		if err := m.TickTock(); err != nil {
			return i, err
		}
	}
	return n, nil
}

// Has returns true if name is a global variable.
//
func (m *Module) Has(name string) bool {
	_, ok := m.st.lookup(name)
	return ok
}

// Get returns the value of a global variable. Arrays are returned by
// reference. Unknown names return Word(0).
//
func (m *Module) Get(name string) Value {
	i, ok := m.st.lookup(name)
	if !ok {
		return Value{}
	}
	return m.st.vals[i]
}

// Set sets the value of a global variable, converted to the variable's
// storage. Unknown names are ignored. The module is not re-evaluated.
//
// Storing an array into a scalar or a scalar into an array is rejected and
// leaves the module usable.
//
func (m *Module) Set(name string, v Value) error {
	i, ok := m.st.lookup(name)
	if !ok {
		return nil
	}
	if err := m.check(); err != nil {
		return err
	}
	if (m.st.kinds[i] == KindArray) != (v.kind == KindArray) {
		return errors.WithStack(&UnsupportedTypeError{
			Type:    m.st.vars[i].Type,
			Context: "store of " + v.kind.String(),
			Loc:     m.st.vars[i].Loc,
		})
	}
	m.st.store(i, v)
	return nil
}

// SetInt is a shorthand for Set(name, Word(v)).
//
func (m *Module) SetInt(name string, v int64) error {
	return m.Set(name, Word(v))
}

// Snapshot returns a deep copy of the module state.
//
func (m *Module) Snapshot() Snapshot { return m.st.snapshot() }

// Restore overwrites the module state from s. Names that are not global
// variables are ignored.
//
func (m *Module) Restore(s Snapshot) { m.st.restore(s) }

// Specialize switches Eval to an evaluator set where reads of the given
// variables are replaced by constants. Specialized sets are cached by their
// constant values. Only scalar variables can be specialized.
//
func (m *Module) Specialize(consts map[string]int64) error {
	if err := m.check(); err != nil {
		return err
	}
	if len(consts) == 0 {
		m.cur = m.base
		return nil
	}
	key := specKey(consts)
	if set, ok := m.specialized.Get(key); ok {
		m.metrics.specHit()
		m.cur = set.(*evaluators)
		return nil
	}
	m.metrics.specMiss()
	for name := range consts {
		i, ok := m.st.lookup(name)
		if !ok {
			return errors.WithStack(&UnresolvedSymbolError{Name: name})
		}
		if m.st.kinds[i] == KindArray {
			return errors.WithStack(&UnsupportedTypeError{Type: m.st.vars[i].Type, Context: "specialization", Loc: m.st.vars[i].Loc})
		}
	}
	cs := make(map[string]int64, len(consts))
	for k, v := range consts {
		cs[k] = v
	}
	set, err := compile(m.ast, m.st, m.builtins, cs, m.base)
	if err != nil {
		return errors.Wrap(err, "specialize")
	}
	m.log.Debug("specialized evaluators", "key", key)
	m.specialized.Put(key, set)
	m.cur = set
	return nil
}

// Generalize switches Eval back to the generic evaluator set.
//
func (m *Module) Generalize() { m.cur = m.base }

func specKey(consts map[string]int64) string {
	names := make([]string, 0, len(consts))
	for k := range consts {
		names = append(names, k)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('=')
		b.WriteString(strconv.FormatInt(consts[n], 10))
		b.WriteByte(';')
	}
	return b.String()
}

// SettleRounds returns the number of rounds used by the last settle loop.
//
func (m *Module) SettleRounds() int { return m.rounds }

// IsFinished returns true once the design has called $finish.
//
func (m *Module) IsFinished() bool { return m.finished }

// IsStopped returns true once the design has called $stop.
//
func (m *Module) IsStopped() bool { return m.stopped }

// FinishedAt returns the location of the first $finish call.
//
func (m *Module) FinishedAt() ast.Loc { return m.finishedAt }

// StoppedAt returns the location of the first $stop call.
//
func (m *Module) StoppedAt() ast.Loc { return m.stoppedAt }

// Elapsed returns the time elapsed since the last power cycle.
//
func (m *Module) Elapsed() time.Duration {
	return m.clock.Time().Sub(m.resetAt)
}

// Dispose releases the evaluator caches. Any further simulation operation
// fails.
//
func (m *Module) Dispose() {
	m.specialized.Flush()
	m.base, m.cur = nil, nil
	m.watch = nil
	m.phase = phaseDisposed
}
