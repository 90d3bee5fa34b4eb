package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"pathprobe/internal/probe"
)

// ReadPingCSV loads a ping_results.csv written by WritePingCSV, so charts
// can be re-rendered without re-measuring.
func ReadPingCSV(path string) ([]PingRow, error) {
	records, err := readRecords(path, 7)
	if err != nil {
		return nil, err
	}

	var rows []PingRow
	for _, rec := range records {
		row := PingRow{Address: rec[0], Err: rec[6]}
		if rec[1] != "" {
			stats := probe.PingStats{}
			stats.MinRTT, _ = strconv.ParseFloat(rec[1], 64)
			stats.MaxRTT, _ = strconv.ParseFloat(rec[2], 64)
			stats.AvgRTT, _ = strconv.ParseFloat(rec[3], 64)
			stats.PacketLoss, _ = strconv.ParseFloat(rec[4], 64)
			row.Stats = &stats
		}
		if rec[5] != "" {
			d, err := strconv.ParseFloat(rec[5], 64)
			if err == nil {
				row.DistanceKM = &d
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadTraceCSV loads a traceroute_results.csv written by WriteTraceCSV.
// The persisted form holds responsive hops only, which is all the charts
// need; rows are grouped back into one TraceResult per destination.
func ReadTraceCSV(path string) ([]probe.TraceResult, error) {
	records, err := readRecords(path, 6)
	if err != nil {
		return nil, err
	}

	index := map[string]int{}
	var results []probe.TraceResult
	for _, rec := range records {
		dest := rec[0]
		i, ok := index[dest]
		if !ok {
			i = len(results)
			index[dest] = i
			results = append(results, probe.TraceResult{Destination: dest})
		}

		number, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("%s: bad hop number %q", path, rec[1])
		}
		hop := probe.Hop{
			Destination: dest,
			HopNumber:   number,
			HopAddress:  rec[2],
			Responsive:  true,
		}
		hop.MinRTT, _ = strconv.ParseFloat(rec[3], 64)
		hop.MaxRTT, _ = strconv.ParseFloat(rec[4], 64)
		hop.AvgRTT, _ = strconv.ParseFloat(rec[5], 64)
		results[i].Hops = append(results[i].Hops, hop)
	}
	return results, nil
}

// readRecords reads a CSV file, validates the column count and strips the
// header row.
func readRecords(path string, columns int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if len(records[0]) != columns {
		return nil, fmt.Errorf("%s: expected %d columns, got %d", path, columns, len(records[0]))
	}
	return records[1:], nil
}
