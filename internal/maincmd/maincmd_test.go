package maincmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/eon/lang/machine"
)

// runFixture threads a fixture through the full analyzer -> compiler -> VM
// pipeline and returns its result, the same path compileFixture + Run take.
func runFixture(t *testing.T, name string) machine.Value {
	t.Helper()
	prog, f, err := compileFixture(name)
	require.NoError(t, err)

	vm := machine.NewVM(prog)
	require.NoError(t, vm.Call(f.entry, f.args))
	require.Equal(t, machine.Done, vm.Run())
	return vm.Result()
}

func TestSumFixture(t *testing.T) {
	require.Equal(t, machine.Int(15), runFixture(t, "sum"))
}

func TestFibFixture(t *testing.T) {
	require.Equal(t, machine.Int(55), runFixture(t, "fib"))
}

// TestClosureFixture exercises MAKECLOSURE/CALLFUNCOBJ/FREE/SETFREE through
// the real analyzer and translator: addx closes over x, and the reassignment
// of x after addx is created must not leak into the already-created
// closure's own captured cell.
func TestClosureFixture(t *testing.T) {
	require.Equal(t, machine.Int(15), runFixture(t, "closure"))
}

// TestInterfaceFixture exercises two-stage member-call resolution: sq.area()
// and rc.area() share a method name but must dispatch to the area()
// implemented for their own receiver type.
func TestInterfaceFixture(t *testing.T) {
	require.Equal(t, machine.Int(19), runFixture(t, "interface"))
}
