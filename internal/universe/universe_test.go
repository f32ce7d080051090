package universe

import "testing"

func atoms(u *Universe, names ...string) []int {
	var idx []int
	for _, n := range names {
		a, ok := u.Lookup(n)
		if !ok {
			panic("unknown atom " + n)
		}
		idx = append(idx, a.Index)
	}
	return idx
}

func tuple(idx ...int) Tuple { return Tuple(idx) }

func TestUnionIntersectDiff(t *testing.T) {
	u := New([]string{"A0", "A1", "A2"})
	a := NewTupleSet(1, []Tuple{tuple(atoms(u, "A0")[0]), tuple(atoms(u, "A1")[0])})
	b := NewTupleSet(1, []Tuple{tuple(atoms(u, "A1")[0]), tuple(atoms(u, "A2")[0])})

	if Union(a, b).Len() != 3 {
		t.Fatalf("expected union size 3, got %d", Union(a, b).Len())
	}
	if Intersect(a, b).Len() != 1 {
		t.Fatalf("expected intersect size 1, got %d", Intersect(a, b).Len())
	}
	if Diff(a, b).Len() != 1 {
		t.Fatalf("expected diff size 1, got %d", Diff(a, b).Len())
	}
}

func TestJoin(t *testing.T) {
	u := New([]string{"A0", "A1", "A2"})
	a0, a1, a2 := atoms(u, "A0")[0], atoms(u, "A1")[0], atoms(u, "A2")[0]
	r := NewTupleSet(2, []Tuple{tuple(a0, a1)})
	s := NewTupleSet(2, []Tuple{tuple(a1, a2)})
	joined := Join(r, s)
	if joined.Len() != 1 || !joined.Contains(tuple(a0, a2)) {
		t.Fatalf("expected {(A0,A2)}, got %v", joined.Tuples())
	}
}

func TestTranspose(t *testing.T) {
	u := New([]string{"A0", "A1"})
	a0, a1 := atoms(u, "A0")[0], atoms(u, "A1")[0]
	r := NewTupleSet(2, []Tuple{tuple(a0, a1)})
	tr := Transpose(r)
	if !tr.Contains(tuple(a1, a0)) {
		t.Fatalf("expected transposed tuple, got %v", tr.Tuples())
	}
}

func TestTransitiveClosure(t *testing.T) {
	u := New([]string{"A0", "A1", "A2", "A3"})
	a0, a1, a2, a3 := atoms(u, "A0")[0], atoms(u, "A1")[0], atoms(u, "A2")[0], atoms(u, "A3")[0]
	r := NewTupleSet(2, []Tuple{tuple(a0, a1), tuple(a1, a2), tuple(a2, a3)})
	tc := TransitiveClosure(r, u.Len())
	for _, want := range []Tuple{tuple(a0, a1), tuple(a0, a2), tuple(a0, a3), tuple(a1, a3)} {
		if !tc.Contains(want) {
			t.Fatalf("expected %v in transitive closure, got %v", want, tc.Tuples())
		}
	}
	if tc.Contains(tuple(a3, a0)) {
		t.Fatalf("unexpected tuple (A3,A0) in transitive closure")
	}
}

func TestIdentityAndReflexiveClosure(t *testing.T) {
	u := New([]string{"A0", "A1"})
	id := Identity(u.Atoms())
	if id.Len() != 2 {
		t.Fatalf("expected identity size 2, got %d", id.Len())
	}
	r := Empty(2)
	rtc := ReflexiveTransitiveClosure(r, u.Atoms())
	if rtc.Len() != 2 {
		t.Fatalf("expected reflexive closure of empty relation to be identity, got %v", rtc.Tuples())
	}
}

func TestProduct(t *testing.T) {
	u := New([]string{"A0", "A1"})
	a0, a1 := atoms(u, "A0")[0], atoms(u, "A1")[0]
	a := NewTupleSet(1, []Tuple{tuple(a0)})
	b := NewTupleSet(1, []Tuple{tuple(a1)})
	p := Product(a, b)
	if p.Len() != 1 || !p.Contains(tuple(a0, a1)) {
		t.Fatalf("expected product {(A0,A1)}, got %v", p.Tuples())
	}
}
