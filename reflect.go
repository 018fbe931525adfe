// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtlsim

import (
	"math/big"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

var bigIntType = reflect.TypeOf((*big.Int)(nil))

type field struct {
	index int
	slot  int
}

// A Binding maps the fields of a struct to module signals.
//
type Binding struct {
	m      *Module
	v      reflect.Value
	fields []field
}

// Bind binds the fields of the struct pointed to by ptr to module signals.
// Signals are identified by field tags.
//
// The field tag must be `rtl:""` or `rtl:"name"`. By default, the signal name
// is the field name in lowercase. Untagged fields are ignored.
//
// Supported field types are signed and unsigned integers, bool and
// *big.Int.
//
func (m *Module) Bind(ptr interface{}) (*Binding, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, errors.Errorf("unsupported type %q: need a pointer to a struct", v.Type())
	}
	v = v.Elem()
	typ := v.Type()
	b := &Binding{m: m, v: v}
	n := typ.NumField()
	for i := 0; i < n; i++ {
		f := typ.Field(i)
		name, ok := f.Tag.Lookup("rtl")
		if !ok {
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		switch k := f.Type.Kind(); k {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Bool:
		default:
			if f.Type != bigIntType {
				return nil, errors.Errorf("unsupported type %q for field %q in %q", k, f.Name, typ.Name())
			}
		}
		slot, ok := m.st.lookup(name)
		if !ok {
			return nil, errors.Wrapf(&UnresolvedSymbolError{Name: name}, "field %q in %q", f.Name, typ.Name())
		}
		if m.st.kinds[slot] == KindArray {
			return nil, errors.Errorf("field %q in %q: signal %s is an array", f.Name, typ.Name(), name)
		}
		b.fields = append(b.fields, field{index: i, slot: slot})
	}
	return b, nil
}

// Load copies the bound signal values into the struct fields.
//
func (b *Binding) Load() {
	for _, f := range b.fields {
		fv := b.v.Field(f.index)
		val := b.m.st.vals[f.slot]
		switch fv.Kind() {
		case reflect.Bool:
			fv.SetBool(val.Bool())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			fv.SetInt(val.Int64())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			fv.SetUint(uint64(val.Int64()))
		default:
			fv.Set(reflect.ValueOf(val.BigInt()))
		}
	}
}

// Store copies the struct fields into the bound signals. The module is not
// re-evaluated.
//
func (b *Binding) Store() error {
	for _, f := range b.fields {
		fv := b.v.Field(f.index)
		var val Value
		switch fv.Kind() {
		case reflect.Bool:
			val = Bool(fv.Bool())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			val = Word(fv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			val = Big(new(big.Int).SetUint64(fv.Uint()))
		default:
			x, _ := fv.Interface().(*big.Int)
			if x != nil {
				x = new(big.Int).Set(x)
			}
			val = Big(x)
		}
		if err := b.m.run(func() error {
			b.m.st.store(f.slot, val)
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// Load binds ptr and loads the signal values into it.
//
func (m *Module) Load(ptr interface{}) error {
	b, err := m.Bind(ptr)
	if err != nil {
		return err
	}
	b.Load()
	return nil
}

// Store binds ptr and stores its fields into the module signals.
//
func (m *Module) Store(ptr interface{}) error {
	b, err := m.Bind(ptr)
	if err != nil {
		return err
	}
	return b.Store()
}
