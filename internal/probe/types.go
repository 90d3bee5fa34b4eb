// Package probe defines the structured results produced by the measurement
// pipeline: per-hop traceroute records and reduced ping statistics.
package probe

import "sort"

// Hop is one measured hop on the path to Destination.
//
// A responsive hop carries a resolved address and at least one round-trip
// sample reduced to min/avg/max. A non-responsive hop is a placeholder that
// keeps the hop position for counting: no address, all RTTs zero.
type Hop struct {
	Destination string  `json:"destination"`
	HopNumber   int     `json:"hop_number"`
	HopAddress  string  `json:"hop_address,omitempty"` // empty when the hop timed out
	MinRTT      float64 `json:"min_rtt"`               // milliseconds
	MaxRTT      float64 `json:"max_rtt"`
	AvgRTT      float64 `json:"avg_rtt"`
	Responsive  bool    `json:"responsive"`
}

// NewResponsiveHop builds a hop record from the raw samples of one line.
// samples must be non-empty.
func NewResponsiveHop(destination string, number int, address string, samples []float64) Hop {
	min, max, sum := samples[0], samples[0], 0.0
	for _, s := range samples {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
		sum += s
	}
	return Hop{
		Destination: destination,
		HopNumber:   number,
		HopAddress:  address,
		MinRTT:      min,
		MaxRTT:      max,
		AvgRTT:      sum / float64(len(samples)),
		Responsive:  true,
	}
}

// NewPlaceholderHop builds a non-responsive placeholder for a hop that
// produced no usable reply.
func NewPlaceholderHop(destination string, number int) Hop {
	return Hop{
		Destination: destination,
		HopNumber:   number,
		Responsive:  false,
	}
}

// PingStats is the reduction of repeated echo probes to one destination.
type PingStats struct {
	MinRTT     float64 `json:"min_rtt"` // milliseconds
	MaxRTT     float64 `json:"max_rtt"`
	AvgRTT     float64 `json:"avg_rtt"`
	PacketLoss float64 `json:"packet_loss"` // fraction 0..1
}

// Reduce computes PingStats over raw round-trip samples. sent is the number
// of probes transmitted; it bounds the loss computation. Returns false when
// no samples were collected.
func Reduce(samples []float64, sent int) (PingStats, bool) {
	if len(samples) == 0 {
		return PingStats{}, false
	}
	min, max, sum := samples[0], samples[0], 0.0
	for _, s := range samples {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
		sum += s
	}
	stats := PingStats{
		MinRTT: min,
		MaxRTT: max,
		AvgRTT: sum / float64(len(samples)),
	}
	if sent > len(samples) {
		stats.PacketLoss = float64(sent-len(samples)) / float64(sent)
	}
	return stats, true
}

// TraceResult is the ordered hop sequence for one destination. Hops are
// ascending by HopNumber but not guaranteed gap-free.
type TraceResult struct {
	Destination string `json:"destination"`
	Hops        []Hop  `json:"hops"`
}

// SortHops orders the hops ascending by hop number. Parsers emit hops in
// line order, which is already ascending; downstream consumers that must not
// rely on insertion order call this first.
func (r *TraceResult) SortHops() {
	sort.SliceStable(r.Hops, func(i, j int) bool {
		return r.Hops[i].HopNumber < r.Hops[j].HopNumber
	})
}

// ResponsiveHops returns the responsive subset in hop order.
func (r *TraceResult) ResponsiveHops() []Hop {
	var out []Hop
	for _, h := range r.Hops {
		if h.Responsive {
			out = append(out, h)
		}
	}
	return out
}

// FinalHop returns the index of the last hop (highest hop number) that is
// responsive and has a resolved address, or -1 if none exists.
func (r *TraceResult) FinalHop() int {
	r.SortHops()
	for i := len(r.Hops) - 1; i >= 0; i-- {
		if r.Hops[i].Responsive && r.Hops[i].HopAddress != "" {
			return i
		}
	}
	return -1
}

// Outcome is the terminal state of tracing one destination.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNoOutput
	OutcomeNoHops
	OutcomeNoResponsiveHops
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoOutput:
		return "no output"
	case OutcomeNoHops:
		return "no hops"
	case OutcomeNoResponsiveHops:
		return "no responsive hops"
	default:
		return "unknown"
	}
}
