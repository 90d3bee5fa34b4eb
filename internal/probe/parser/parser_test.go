package parser

import (
	"math"
	"testing"
)

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseUnixScenario(t *testing.T) {
	raw := "1  10.0.0.1 (10.0.0.1)  1.1 ms  1.3 ms  1.2 ms\n" +
		"2  * * *\n" +
		"3  93.184.216.34 (93.184.216.34)  20.0 ms  20.4 ms  20.2 ms"

	result := Parse(raw, "93.184.216.34", DialectUnix)

	if len(result.Hops) != 3 {
		t.Fatalf("expected 3 hops, got %d", len(result.Hops))
	}

	h1 := result.Hops[0]
	if !h1.Responsive || h1.HopNumber != 1 || h1.HopAddress != "10.0.0.1" {
		t.Errorf("hop 1 mismatch: %+v", h1)
	}
	if !floatEq(h1.AvgRTT, 1.2) {
		t.Errorf("hop 1 avg: got %v, want 1.2", h1.AvgRTT)
	}

	h2 := result.Hops[1]
	if h2.Responsive || h2.HopAddress != "" || h2.MinRTT != 0 || h2.MaxRTT != 0 || h2.AvgRTT != 0 {
		t.Errorf("hop 2 should be an all-zero placeholder: %+v", h2)
	}

	h3 := result.Hops[2]
	if !h3.Responsive || h3.HopAddress != "93.184.216.34" {
		t.Errorf("hop 3 mismatch: %+v", h3)
	}
	if !floatEq(h3.MinRTT, 20.0) || !floatEq(h3.MaxRTT, 20.4) || !floatEq(h3.AvgRTT, 20.2) {
		t.Errorf("hop 3 RTTs: got %v/%v/%v", h3.MinRTT, h3.MaxRTT, h3.AvgRTT)
	}
}

func TestParseUnixSkipsHeaderAndMalformed(t *testing.T) {
	raw := "traceroute to 93.184.216.34 (93.184.216.34), 30 hops max, 60 byte packets\n" +
		" 1  gateway (192.168.1.1)  0.412 ms  0.388 ms  0.355 ms\n" +
		" 5  host.example.net (1.2.3.4)\n" + // address but no timing
		"not a hop line\n"

	result := Parse(raw, "93.184.216.34", DialectUnix)
	if len(result.Hops) != 1 {
		t.Fatalf("expected 1 hop, got %d", len(result.Hops))
	}
	if result.Hops[0].HopAddress != "192.168.1.1" {
		t.Errorf("wrong address: %s", result.Hops[0].HopAddress)
	}
}

func TestParseUnixPartialResponse(t *testing.T) {
	// One probe lost mid-line; the two surviving samples still count.
	raw := " 3  isp-core.example.net (10.10.0.1)  8.1 ms * 9.3 ms"

	result := Parse(raw, "x", DialectUnix)
	if len(result.Hops) != 1 {
		t.Fatalf("expected 1 hop, got %d", len(result.Hops))
	}
	h := result.Hops[0]
	if !floatEq(h.MinRTT, 8.1) || !floatEq(h.MaxRTT, 9.3) || !floatEq(h.AvgRTT, 8.7) {
		t.Errorf("RTTs: got %v/%v/%v", h.MinRTT, h.MaxRTT, h.AvgRTT)
	}
}

func TestParseWindowsScenario(t *testing.T) {
	raw := "Tracing route to example.com [93.184.216.34]\n" +
		"over a maximum of 30 hops:\n" +
		"\n" +
		"  1    <1 ms    <1 ms    <1 ms  192.168.1.1\n" +
		"  2     *        *        *     Request timed out.\n" +
		"  3    10 ms    11 ms    12 ms  edge.example.net [10.0.0.1]\n" +
		"  4    20 ms     *       22 ms  93.184.216.34\n" +
		"\n" +
		"Trace complete.\n"

	result := Parse(raw, "93.184.216.34", DialectWindows)
	if len(result.Hops) != 4 {
		t.Fatalf("expected 4 hops, got %d", len(result.Hops))
	}

	h1 := result.Hops[0]
	if !floatEq(h1.MinRTT, 0.5) || !floatEq(h1.MaxRTT, 0.5) || !floatEq(h1.AvgRTT, 0.5) {
		t.Errorf("sub-millisecond fields must parse to 0.5: %+v", h1)
	}

	if result.Hops[1].Responsive {
		t.Errorf("hop 2 should be a placeholder: %+v", result.Hops[1])
	}

	h3 := result.Hops[2]
	if h3.HopAddress != "10.0.0.1" {
		t.Errorf("bracketed address must win over the hostname: got %s", h3.HopAddress)
	}
	if !(h3.MinRTT <= h3.AvgRTT && h3.AvgRTT <= h3.MaxRTT) {
		t.Errorf("min <= avg <= max violated: %+v", h3)
	}

	h4 := result.Hops[3]
	if !h4.Responsive {
		t.Fatalf("a stray * next to valid timings must not poison the line: %+v", h4)
	}
	if !floatEq(h4.MinRTT, 20) || !floatEq(h4.MaxRTT, 22) || !floatEq(h4.AvgRTT, 21) {
		t.Errorf("hop 4 RTTs: got %v/%v/%v", h4.MinRTT, h4.MaxRTT, h4.AvgRTT)
	}
}

func TestParseWindowsUnresolvableAddress(t *testing.T) {
	// Valid timings but no bracketed address and no dotted-quad token.
	raw := "  6    10 ms   11 ms   12 ms   some host name"

	result := Parse(raw, "x", DialectWindows)
	if len(result.Hops) != 0 {
		t.Fatalf("expected no hops, got %+v", result.Hops)
	}
}

func TestParseWindowsRightmostDottedQuad(t *testing.T) {
	raw := "  7    5 ms   6 ms   7 ms   10.0.0.1 198.51.100.9"

	result := Parse(raw, "x", DialectWindows)
	if len(result.Hops) != 1 {
		t.Fatalf("expected 1 hop, got %d", len(result.Hops))
	}
	if got := result.Hops[0].HopAddress; got != "198.51.100.9" {
		t.Errorf("expected rightmost dotted quad, got %s", got)
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, d := range []Dialect{DialectWindows, DialectUnix} {
		result := Parse("", "x", d)
		if len(result.Hops) != 0 {
			t.Errorf("%s: expected no hops for empty input", d)
		}
	}
}

func TestDialectForOS(t *testing.T) {
	if DialectForOS("windows") != DialectWindows {
		t.Error("windows should map to the tracert dialect")
	}
	for _, goos := range []string{"linux", "darwin", "freebsd"} {
		if DialectForOS(goos) != DialectUnix {
			t.Errorf("%s should map to the traceroute dialect", goos)
		}
	}
}
