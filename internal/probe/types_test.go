package probe

import (
	"math"
	"testing"
)

func TestReduce(t *testing.T) {
	stats, ok := Reduce([]float64{10.4, 9.8, 11.0}, 4)
	if !ok {
		t.Fatal("expected a reduction")
	}
	if stats.MinRTT != 9.8 || stats.MaxRTT != 11.0 {
		t.Errorf("min/max: got %v/%v", stats.MinRTT, stats.MaxRTT)
	}
	if math.Abs(stats.AvgRTT-10.4) > 1e-9 {
		t.Errorf("avg: got %v, want 10.4", stats.AvgRTT)
	}
	if math.Abs(stats.PacketLoss-0.25) > 1e-9 {
		t.Errorf("loss: got %v, want 0.25", stats.PacketLoss)
	}
}

func TestReduceNoSamples(t *testing.T) {
	if _, ok := Reduce(nil, 4); ok {
		t.Error("empty sample set must not reduce")
	}
}

func TestFinalHop(t *testing.T) {
	// Inserted out of order; the trailing placeholder must be skipped.
	r := TraceResult{
		Destination: "x",
		Hops: []Hop{
			NewPlaceholderHop("x", 3),
			NewResponsiveHop("x", 2, "10.0.0.2", []float64{5}),
			NewResponsiveHop("x", 1, "10.0.0.1", []float64{1}),
		},
	}

	idx := r.FinalHop()
	if idx < 0 {
		t.Fatal("expected a final hop")
	}
	if got := r.Hops[idx]; got.HopNumber != 2 || got.HopAddress != "10.0.0.2" {
		t.Errorf("final hop: %+v", got)
	}
	// FinalHop sorts; verify order stuck.
	for i := 1; i < len(r.Hops); i++ {
		if r.Hops[i-1].HopNumber > r.Hops[i].HopNumber {
			t.Fatalf("hops not sorted: %+v", r.Hops)
		}
	}
}

func TestFinalHopNoneResponsive(t *testing.T) {
	r := TraceResult{Hops: []Hop{NewPlaceholderHop("x", 1), NewPlaceholderHop("x", 2)}}
	if idx := r.FinalHop(); idx != -1 {
		t.Errorf("expected -1, got %d", idx)
	}
}
