package chain

import (
	"errors"
	"math"
	"testing"
)

// synthetic builds n iterations whose first burn steps carry an
// exponentially decaying transient on top of a constant level.
func synthetic(t *testing.T, n, walkers, burn int) *Chain {
	t.Helper()

	c, err := New(walkers, 2)
	if err != nil {
		t.Fatal(err)
	}
	for it := range n {
		s := Step{Iteration: it}
		for w := range walkers {
			v := 1.0
			if it < burn {
				v += 100 * math.Exp(-float64(it)/float64(burn))
			}
			s.Positions = append(s.Positions, []float64{v, float64(w)})
			s.LogProb = append(s.LogProb, -v)
			s.Accepted = append(s.Accepted, (it+w)%2 == 0)
		}
		if err := c.Append(s); err != nil {
			t.Fatal(err)
		}
	}
	return c
}

func TestDiscardThinSize(t *testing.T) {
	tests := []struct {
		n, walkers, burn, thin int
	}{
		{100, 4, 30, 2},
		{101, 4, 30, 2},
		{100, 3, 0, 1},
		{100, 5, 10, 7},
		{10, 2, 10, 3},
		{10, 2, 20, 3},
		{50, 8, 5, 45},
		{50, 8, 5, 46},
	}

	for _, tc := range tests {
		c := synthetic(t, tc.n, tc.walkers, tc.burn)
		flat := c.Discard(tc.burn).Thin(tc.thin).Flatten()

		kept := max(tc.n-tc.burn, 0)
		want := kept / tc.thin * tc.walkers
		if len(flat) != want {
			t.Fatalf("n=%d B=%d k=%d W=%d: size=%d, want %d", tc.n, tc.burn, tc.thin, tc.walkers, len(flat), want)
		}
		for _, s := range flat {
			if s.Draw < tc.burn {
				t.Fatalf("draw %d survived burn-in %d", s.Draw, tc.burn)
			}
			if s.Params[0] != 1 {
				t.Fatalf("transient sample %v survived", s.Params)
			}
		}
	}
}

func TestThinKeepsEveryKthDraw(t *testing.T) {
	c := synthetic(t, 20, 2, 4)
	thinned := c.Discard(4).Thin(3)

	var draws []int
	for _, s := range thinned.Steps() {
		draws = append(draws, s.Iteration)
	}
	want := []int{6, 9, 12, 15, 18}
	if len(draws) != len(want) {
		t.Fatalf("draws=%v, want %v", draws, want)
	}
	for i := range want {
		if draws[i] != want[i] {
			t.Fatalf("draws=%v, want %v", draws, want)
		}
	}

	if c.Len() != 20 {
		t.Fatal("derived chains must not modify the source")
	}
}

func TestFlattenLabels(t *testing.T) {
	c := synthetic(t, 3, 2, 0)
	flat := c.Flatten()
	if len(flat) != 6 {
		t.Fatalf("len=%d", len(flat))
	}
	for i, s := range flat {
		if s.Draw != i/2 || s.Chain != i%2 || s.Params[1] != float64(s.Chain) || s.LogPost != -1 {
			t.Fatalf("sample %d = %+v", i, s)
		}
	}

	flat[0].Params[0] = 42
	if c.Steps()[0].Positions[0][0] == 42 {
		t.Fatal("Flatten must copy parameters")
	}
}

func TestTraceAndAcceptance(t *testing.T) {
	c := synthetic(t, 10, 3, 0)

	tr, err := c.Trace(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(tr) != 3 || len(tr[2]) != 10 || tr[2][7] != 2 {
		t.Fatalf("trace=%v", tr)
	}
	if _, err := c.Trace(2); !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}

	acc := c.AcceptanceFraction()
	for w, a := range acc {
		if a != 0.5 {
			t.Fatalf("walker %d acceptance=%v", w, a)
		}
	}
}

func TestAppendRejectsBadSteps(t *testing.T) {
	c, err := New(2, 1)
	if err != nil {
		t.Fatal(err)
	}

	bad := []Step{
		{Iteration: 0, Positions: [][]float64{{1}}, LogProb: []float64{0}, Accepted: []bool{true}},
		{Iteration: 0, Positions: [][]float64{{1}, {1, 2}}, LogProb: []float64{0, 0}, Accepted: []bool{true, true}},
		{Iteration: 0, Positions: [][]float64{{1}, {2}}, LogProb: []float64{0}, Accepted: []bool{true, true}},
	}
	for i, s := range bad {
		if err := c.Append(s); !errors.Is(err, ErrShape) {
			t.Fatalf("case %d: expected ErrShape, got %v", i, err)
		}
	}

	ok := Step{Iteration: 3, Positions: [][]float64{{1}, {2}}, LogProb: []float64{0, 0}, Accepted: []bool{true, false}}
	if err := c.Append(ok); err != nil {
		t.Fatal(err)
	}
	ok.Iteration = 3
	if err := c.Append(ok); !errors.Is(err, ErrShape) {
		t.Fatalf("repeated iteration: %v", err)
	}

	if _, err := New(0, 3); !errors.Is(err, ErrShape) {
		t.Fatalf("New(0,3): %v", err)
	}
}
