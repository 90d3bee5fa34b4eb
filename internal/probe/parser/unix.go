package parser

import (
	"strings"

	"pathprobe/internal/probe"
)

// parseUnixLine parses one traceroute report line.
//
//	 1  gateway (192.168.1.1)  0.5 ms  0.3 ms  0.2 ms
//	 2  * * *
//	 3  10.0.0.1 (10.0.0.1)  10.1 ms  10.2 ms  10.3 ms
//
// The timing token count is not fixed: per-probe responders can drop or add
// samples ("1.1 ms * 2.0 ms" contributes two). A line of only non-response
// markers yields a placeholder. The header line ("traceroute to ...") does
// not start with a hop index and falls through.
func parseUnixLine(line, destination string) (probe.Hop, bool) {
	m := reUnixLine.FindStringSubmatch(line)
	if m == nil {
		return probe.Hop{}, false
	}
	number := atoi(m[1])
	rest := m[2]

	var addr string
	if pm := reParenAddr.FindStringSubmatch(rest); pm != nil {
		addr = pm[1]
	}

	var samples []float64
	for _, tm := range reTimingToken.FindAllStringSubmatch(rest, -1) {
		if v, ok := parseTiming(tm[1]); ok {
			samples = append(samples, v)
		}
	}

	if addr != "" && len(samples) > 0 {
		return probe.NewResponsiveHop(destination, number, addr, samples), true
	}
	if allNonResponse(rest) {
		return probe.NewPlaceholderHop(destination, number), true
	}
	return probe.Hop{}, false
}

// allNonResponse reports whether every token after the hop index is a
// non-response marker.
func allNonResponse(rest string) bool {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !reNonResponse.MatchString(f) {
			return false
		}
	}
	return true
}
