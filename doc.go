/*
Package rtlsim provides a register-transfer level simulation kernel.

A design, already elaborated into an abstract syntax tree (see package ast),
is compiled into a set of evaluators, one per top level block, operating on a
state store that holds one value per signal. The kernel then drives the state
through power-on reset and clocked evaluation, repeating evaluation rounds
until the design reports that no tracked signal changed.

Designs follow Verilator's block conventions: a ctor_var_reset block resets
variables, eval_initial runs initial blocks, eval_settle and eval update the
state, and change_request returns whether another round is needed.

	m, err := rtlsim.NewModule(design)
	if err != nil {
		// handle error
	}
	defer m.Dispose()
	if err = m.PowerCycle(); err != nil {
		// handle error
	}
	m.SetInt("a", 1)
	if err = m.Eval(); err != nil {
		// handle error
	}
	fmt.Println(m.Get("out"))

Signals up to MaxWordWidth bits wide are stored as machine words, wider ones
as arbitrary precision integers. Arrays of up to two dimensions are
supported.

Designs can also be loaded from their XML dump with package vxml.
*/
package rtlsim
