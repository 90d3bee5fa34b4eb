package parser

import (
	"strings"

	"pathprobe/internal/probe"
)

// parseWindowsLine parses one tracert report line.
//
//	 1    <1 ms    <1 ms    <1 ms  192.168.1.1
//	 2     *        *        *     Request timed out.
//	 3    10 ms    11 ms    12 ms  edge.example.net [10.0.0.1]
//
// A line with all three probe fields unresponsive yields a placeholder so
// hop counting stays consistent downstream. A responsive record needs at
// least one parsed timing and a resolved address; responsiveness is decided
// per token, so a stray "*" next to valid timings does not poison the line.
func parseWindowsLine(line, destination string) (probe.Hop, bool) {
	m := reWindowsLine.FindStringSubmatch(line)
	if m == nil {
		return probe.Hop{}, false
	}
	number := atoi(m[1])

	var samples []float64
	for _, field := range m[2:5] {
		if v, ok := parseTiming(field); ok {
			samples = append(samples, v)
		}
	}
	if len(samples) == 0 {
		return probe.NewPlaceholderHop(destination, number), true
	}

	addr := resolveWindowsAddress(strings.TrimSpace(m[5]))
	if addr == "" {
		return probe.Hop{}, false
	}
	return probe.NewResponsiveHop(destination, number, addr, samples), true
}

// resolveWindowsAddress extracts the responder address from the line tail.
// The bracketed form is the resolved numeric address and wins over the
// hostname in front of it. Without brackets, the rightmost dotted-quad token
// is taken; a single bare token is accepted as-is.
func resolveWindowsAddress(tail string) string {
	if tail == "" {
		return ""
	}
	if m := reBracketed.FindStringSubmatch(tail); m != nil {
		return m[1]
	}
	fields := strings.Fields(tail)
	if len(fields) == 1 {
		return fields[0]
	}
	for i := len(fields) - 1; i >= 0; i-- {
		if isDottedQuad(fields[i]) {
			return fields[i]
		}
	}
	return ""
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
