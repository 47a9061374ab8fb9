package ffi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/eon/lang/machine"
)

func TestTableDispatchesRegisteredFunction(t *testing.T) {
	tbl := NewTable()
	tbl.Register("math", "double", func(args []machine.Value) (machine.Value, error) {
		return args[0].(machine.Int) * 2, nil
	})

	got, err := tbl.CallExtern("math", "double", []machine.Value{machine.Int(21)})
	require.NoError(t, err)
	require.Equal(t, machine.Int(42), got)
}

func TestTableReportsNotEnabledForUnregisteredSymbol(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.CallExtern("math", "double", nil)
	require.IsType(t, &NotEnabledError{}, err)
}
