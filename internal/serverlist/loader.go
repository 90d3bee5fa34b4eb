package serverlist

import (
	"bytes"
	"encoding/csv"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	pkgerrors "pathprobe/pkg/errors"
)

// addressColumns are tried in order when locating the address column of a
// CSV export. The public list uses "IP/HOST".
var addressColumns = []string{"IP/HOST", "ip", "host"}

var reIPLiteral = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

func bytesReader(b []byte) io.Reader { return bytes.NewReader(b) }

// ParseCSV extracts the address column from a server-list CSV. Falls back to
// the first column when no known header is present. Rows that are empty
// after trimming are dropped; duplicates are kept.
func ParseCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // the export carries ragged rows

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, pkgerrors.ErrNoAddresses
	}

	col := 0
	header := records[0]
	found := false
	for _, want := range addressColumns {
		for i, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), want) {
				col = i
				found = true
				break
			}
		}
		if found {
			break
		}
	}

	var addrs []string
	for _, row := range records[1:] {
		if col >= len(row) {
			continue
		}
		addr := strings.TrimSpace(row[col])
		if addr != "" {
			addrs = append(addrs, addr)
		}
	}
	if len(addrs) == 0 {
		return nil, pkgerrors.ErrNoAddresses
	}
	return addrs, nil
}

// LoadFile reads addresses from a local file: CSV by extension, otherwise
// plain text with one address per line and '#' comments.
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ParseCSV(bytes.NewReader(data))
	}

	var addrs []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addrs = append(addrs, line)
	}
	if len(addrs) == 0 {
		return nil, pkgerrors.ErrNoAddresses
	}
	return addrs, nil
}

// IsIPLiteral reports whether addr is a strict dotted-quad IPv4 literal.
func IsIPLiteral(addr string) bool {
	return reIPLiteral.MatchString(addr)
}

// FilterIPLiterals keeps only dotted-quad addresses. When none qualify the
// full input is returned, so hostname-only lists still trace something.
func FilterIPLiterals(addrs []string) []string {
	var out []string
	for _, a := range addrs {
		if IsIPLiteral(a) {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return addrs
	}
	return out
}

// Sample picks n addresses at random without replacement. Fewer than n
// inputs are returned whole, in shuffled order.
func Sample(addrs []string, n int) []string {
	shuffled := make([]string, len(addrs))
	copy(shuffled, addrs)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
