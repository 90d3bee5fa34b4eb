// Package parser converts raw traceroute/tracert output into hop records.
//
// Two line grammars exist in the wild: the fixed three-probe report printed
// by Windows tracert and the hostname(address) style printed by Unix
// traceroute. The caller selects the dialect explicitly; nothing in here
// inspects the runtime environment, so both grammars stay unit-testable on
// any platform.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"pathprobe/internal/probe"
)

// Dialect selects which line grammar to apply.
type Dialect int

const (
	// DialectWindows parses tracert output: hop index, exactly three timing
	// fields, then an optional "hostname [address]" tail.
	DialectWindows Dialect = iota
	// DialectUnix parses traceroute output: hop index, optional hostname,
	// optional "(address)", then one or more "N ms" timing tokens.
	DialectUnix
)

func (d Dialect) String() string {
	if d == DialectWindows {
		return "windows"
	}
	return "unix"
}

// DialectForOS maps a GOOS value to the dialect its traceroute tool speaks.
// Callers inject the result; Parse itself never detects the platform.
func DialectForOS(goos string) Dialect {
	if goos == "windows" {
		return DialectWindows
	}
	return DialectUnix
}

// Single source of truth for the token patterns shared by both grammars.
var (
	// timing field of the Windows report: "10 ms" or the sub-millisecond
	// marker "<1 ms". The "<" prefix is captured so parseTiming can apply
	// the half-millisecond convention.
	reWindowsLine = regexp.MustCompile(
		`^\s*(\d+)\s+` + // hop index
			`(?:(<?\d+(?:\.\d+)?)\s*ms|[*?])\s+` + // first probe
			`(?:(<?\d+(?:\.\d+)?)\s*ms|[*?])\s+` + // second probe
			`(?:(<?\d+(?:\.\d+)?)\s*ms|[*?])\s*` + // third probe
			`(.*)$`) // responder tail

	reUnixLine = regexp.MustCompile(`^\s*(\d+)\s+(.*)$`)

	reTimingToken = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*ms`)
	reBracketed   = regexp.MustCompile(`\[([^\]]+)\]`)
	reParenAddr   = regexp.MustCompile(`\(([^)]+)\)`)
	reDottedQuad  = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)
	reNonResponse = regexp.MustCompile(`^[*?]$`)
)

// subMillisecondRTT stands in for any "<N ms" field. Sub-millisecond latency
// is recorded as a representative half millisecond rather than zero, so it
// never collides with the all-zero non-responsive placeholder.
const subMillisecondRTT = 0.5

// Parse converts raw diagnostic text into the ordered hop sequence for
// destination. Unparseable lines are skipped; Parse never fails.
func Parse(raw, destination string, dialect Dialect) probe.TraceResult {
	result := probe.TraceResult{Destination: destination}
	if raw == "" {
		return result
	}
	for _, line := range strings.Split(raw, "\n") {
		var hop probe.Hop
		var ok bool
		switch dialect {
		case DialectWindows:
			hop, ok = parseWindowsLine(line, destination)
		default:
			hop, ok = parseUnixLine(line, destination)
		}
		if ok {
			result.Hops = append(result.Hops, hop)
		}
	}
	return result
}

// parseTiming converts one captured timing field to milliseconds. A field of
// the "<N" form always yields the half-millisecond convention value.
func parseTiming(field string) (float64, bool) {
	if field == "" {
		return 0, false
	}
	if strings.HasPrefix(field, "<") {
		return subMillisecondRTT, true
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// isDottedQuad reports whether s is a strict numeric IPv4 literal.
func isDottedQuad(s string) bool {
	return reDottedQuad.MatchString(s)
}
