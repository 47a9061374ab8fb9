package maincmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mna/mainer"

	"github.com/mna/eon/internal/hostfuncs"
	"github.com/mna/eon/internal/modulefile"
	"github.com/mna/eon/lang/analyzer"
	"github.com/mna/eon/lang/ast"
	"github.com/mna/eon/lang/compiler"
	"github.com/mna/eon/lang/machine"
	"github.com/mna/eon/lang/source"
)

// resolveManifest looks for a .eon-module.yaml manifest under
// <c.Modules>/<program>: a fixture name doubling as a module name. Fixtures
// have no such directory on disk, so a missing directory is silently
// ignored and the fixture's own hard-coded entry/args are used instead;
// this only does real work once a caller points --modules at an actual
// module tree.
func (c *Cmd) resolveManifest(stdio mainer.Stdio, program string) {
	if c.Modules == "" {
		return
	}
	dir := filepath.Join(c.Modules, program)
	if _, err := os.Stat(dir); err != nil {
		return
	}
	m, err := modulefile.Load(dir)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "warning: %s\n", err)
		return
	}
	fmt.Fprintf(stdio.Stderr, "module %s: entry=%s shared_objects=%v\n", program, m.Entry, m.SharedObjects)
}

func compileFixture(name string) (*compiler.Program, fixture, error) {
	f, err := lookupFixture(name)
	if err != nil {
		return nil, fixture{}, err
	}

	gen := &ast.IdGen{}
	db := source.NewFileDatabase()
	fid := db.AddFile(name+".en", "")
	file := ast.NewFile(gen, name+".en", fid, source.Range{}, f.build(gen))

	ctx, errs := analyzer.Analyze([]*ast.File{file}, db)
	if errs != nil {
		return nil, fixture{}, fmt.Errorf("analysis failed: %w", errs)
	}
	prog, err := compiler.Translate(ctx, file)
	if err != nil {
		return nil, fixture{}, fmt.Errorf("translation failed: %w", err)
	}
	return prog, f, nil
}

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(stdio.Stderr, "run: missing <program>, available: %s\n", fixtureNames())
		return fmt.Errorf("run: missing <program>")
	}
	c.resolveManifest(stdio, args[0])
	prog, f, err := compileFixture(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	vm := machine.NewVM(prog)
	if err := vm.Call(f.entry, f.args); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	host := hostfuncs.New(stdio)
	for {
		switch vm.Run() {
		case machine.Done:
			fmt.Fprintln(stdio.Stdout, vm.Result())
			return nil
		case machine.Errored:
			err := vm.Error()
			fmt.Fprintln(stdio.Stderr, err)
			return err
		case machine.Suspended:
			call, ok := vm.PendingHostCall()
			if !ok {
				// STOP rather than a host call: nothing left to service.
				return nil
			}
			result, err := host.Dispatch(stdio, call)
			if err != nil {
				fmt.Fprintln(stdio.Stderr, err)
				return err
			}
			vm.ResumeHostCall(result)
		}
	}
}

func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(stdio.Stderr, "disasm: missing <program>, available: %s\n", fixtureNames())
		return fmt.Errorf("disasm: missing <program>")
	}
	prog, _, err := compileFixture(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	fmt.Fprint(stdio.Stdout, compiler.Dasm(prog))
	return nil
}
