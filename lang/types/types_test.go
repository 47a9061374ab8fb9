package types

import "testing"

func TestUnionFindMergesCandidates(t *testing.T) {
	a := NewTypeVar(SynthProv("a"))
	b := NewTypeVar(SynthProv("b"))
	a.AddCandidate(PotentialType{Kind: KindPrim, Prim: Int})
	b.AddCandidate(PotentialType{Kind: KindPrim, Prim: Int})

	Union(a, b)
	if got := len(a.Candidates()); got != 2 {
		t.Fatalf("expected 2 candidates after union, got %d", got)
	}
	if a.Conflicts() {
		t.Fatalf("identical primitive candidates should not conflict")
	}

	sol, ok := a.Solution()
	if !ok {
		t.Fatal("expected a solution")
	}
	if sol.Prim != Int {
		t.Fatalf("expected int, got %v", sol)
	}
}

func TestConflictsOnMismatchedShape(t *testing.T) {
	a := NewTypeVar(SynthProv("a"))
	a.AddCandidate(PotentialType{Kind: KindPrim, Prim: Int})
	a.AddCandidate(PotentialType{Kind: KindPrim, Prim: Str})
	if !a.Conflicts() {
		t.Fatal("expected a conflict between int and string candidates")
	}
}

func TestPolyCandidateNeverConflicts(t *testing.T) {
	a := NewTypeVar(SynthProv("a"))
	a.AddCandidate(PotentialType{Kind: KindPoly, Name: "T"})
	a.AddCandidate(PotentialType{Kind: KindPrim, Prim: Bool})
	if a.Conflicts() {
		t.Fatal("a polytype candidate should never conflict")
	}
	sol, ok := a.Solution()
	if !ok || sol.Prim != Bool {
		t.Fatalf("expected the concrete candidate to win, got %+v ok=%v", sol, ok)
	}
}

func TestSolutionIsIdempotent(t *testing.T) {
	a := NewTypeVar(SynthProv("a"))
	a.AddCandidate(PotentialType{Kind: KindPrim, Prim: Float})
	s1, _ := a.Solution()
	s2, _ := a.Solution()
	if s1.String() != s2.String() {
		t.Fatalf("solving twice gave different results: %v vs %v", s1, s2)
	}
}
