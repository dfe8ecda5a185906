package colorvec

import "testing"

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if got := a.Add(b); got != (Vec3{5, 7, 9}) {
		t.Errorf("Add = %v, want {5 7 9}", got)
	}
	if got := a.Hadamard(b); got != (Vec3{4, 10, 18}) {
		t.Errorf("Hadamard = %v, want {4 10 18}", got)
	}
	if got := a.Scale(2); got != (Vec3{2, 4, 6}) {
		t.Errorf("Scale = %v, want {2 4 6}", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot = %v, want 32", got)
	}
}

func TestVec3Clamp01(t *testing.T) {
	v := Vec3{-0.5, 0.5, 1.5}
	got := v.Clamp01()
	want := Vec3{0, 0.5, 1}
	if got != want {
		t.Errorf("Clamp01 = %v, want %v", got, want)
	}
}
