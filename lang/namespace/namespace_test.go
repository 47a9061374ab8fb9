package namespace

import (
	"testing"

	"github.com/mna/eon/lang/ast"
	"github.com/mna/eon/lang/types"
)

func TestDeclareAndGet(t *testing.T) {
	root := New("root")
	fd := &ast.StructDef{Name: "Point"}
	if !root.Declare("Point", Declaration{Kind: DeclStruct, Struct: fd}) {
		t.Fatal("expected first declare to succeed")
	}
	if root.Declare("Point", Declaration{Kind: DeclStruct, Struct: fd}) {
		t.Fatal("expected second declare of the same name to fail")
	}
	d, ok := root.GetDeclaration("Point")
	if !ok || d.Kind != DeclStruct {
		t.Fatalf("expected to resolve Point as a struct, got %+v ok=%v", d, ok)
	}
	key, ok := d.IntoTypeKey()
	if !ok || key != types.NominalKeyOf(types.NominalStruct, "Point") {
		t.Fatalf("unexpected type key %v ok=%v", key, ok)
	}
}

func TestGetDeclarationWalksChildNamespaces(t *testing.T) {
	root := New("root")
	mod := root.Child("std")
	mod.Declare("read_env", Declaration{Kind: DeclHostFunction})

	d, ok := root.GetDeclaration("std.read_env")
	if !ok || d.Kind != DeclHostFunction {
		t.Fatalf("expected to resolve std.read_env, got %+v ok=%v", d, ok)
	}
	if _, ok := root.GetDeclaration("std.missing"); ok {
		t.Fatal("expected missing name to fail to resolve")
	}
}

func TestMemberTable(t *testing.T) {
	mt := NewMemberTable()
	key := MemberKey{Type: types.NominalKeyOf(types.NominalStruct, "Point"), Name: "length"}
	mt.Put(key, Declaration{Kind: DeclMemberFunction})
	d, ok := mt.Get(key)
	if !ok || d.Kind != DeclMemberFunction {
		t.Fatalf("expected member function, got %+v ok=%v", d, ok)
	}
}
