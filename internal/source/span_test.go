package source

import "testing"

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got != (Span{File: 1, Start: 2, End: 8}) {
		t.Fatalf("unexpected cover %v", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Fatalf("cover across files must keep receiver, got %v", got)
	}
}

func TestSpanContains(t *testing.T) {
	s := Span{Start: 3, End: 6}
	for off, want := range map[uint32]bool{2: false, 3: true, 5: true, 6: false} {
		if s.Contains(off) != want {
			t.Errorf("Contains(%d) = %v", off, !want)
		}
	}
	empty := Span{Start: 7, End: 7}
	if !empty.Contains(7) || empty.Contains(8) {
		t.Errorf("empty span must contain only its start")
	}
	if !s.Encloses(Span{Start: 4, End: 6}) || s.Encloses(Span{Start: 4, End: 7}) {
		t.Errorf("Encloses is wrong")
	}
}

func TestZeroide(t *testing.T) {
	s := Span{File: 3, Start: 10, End: 20}
	if z := s.ZeroideToStart(); z.Start != 10 || z.End != 10 {
		t.Errorf("ZeroideToStart: %v", z)
	}
	if z := s.ZeroideToEnd(); z.Start != 20 || z.End != 20 {
		t.Errorf("ZeroideToEnd: %v", z)
	}
}
