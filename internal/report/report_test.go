package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pathprobe/internal/probe"
)

func TestWriteTraceCSV(t *testing.T) {
	result := probe.TraceResult{
		Destination: "93.184.216.34",
		Hops: []probe.Hop{
			probe.NewResponsiveHop("93.184.216.34", 3, "93.184.216.34", []float64{20.0, 20.4, 20.2}),
			probe.NewPlaceholderHop("93.184.216.34", 2),
			probe.NewResponsiveHop("93.184.216.34", 1, "10.0.0.1", []float64{1.2}),
		},
	}

	path := filepath.Join(t.TempDir(), "traceroute_results.csv")
	if err := WriteTraceCSV(path, []probe.TraceResult{result}); err != nil {
		t.Fatalf("WriteTraceCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	wantHeader := "destination,hop_number,hop_address,min_rtt,max_rtt,avg_rtt"
	if got := strings.Join(records[0], ","); got != wantHeader {
		t.Errorf("header: got %s, want %s", got, wantHeader)
	}

	// The placeholder hop must be excluded and the rows sorted by hop number.
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if records[1][1] != "1" || records[2][1] != "3" {
		t.Errorf("rows out of order: %v", records[1:])
	}
	if records[1][2] != "10.0.0.1" {
		t.Errorf("hop address: %v", records[1])
	}
	if records[2][5] != "20.200" {
		t.Errorf("avg_rtt formatting: got %s", records[2][5])
	}
}

func TestWritePingCSV(t *testing.T) {
	dist := 512.3
	rows := []PingRow{
		{
			Address:    "1.1.1.1",
			Stats:      &probe.PingStats{MinRTT: 9.8, MaxRTT: 11.0, AvgRTT: 10.4, PacketLoss: 0.25},
			DistanceKM: &dist,
			Location:   "Sydney, Australia",
		},
		{Address: "10.255.255.1", Err: "no samples collected"},
	}

	path := filepath.Join(t.TempDir(), "ping_results.csv")
	if err := WritePingCSV(path, rows); err != nil {
		t.Fatalf("WritePingCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "addr,min_rtt,max_rtt,avg_rtt,packet_loss,geo_distance_km,error") {
		t.Error("missing header")
	}
	if !strings.Contains(content, "1.1.1.1,9.800,11.000,10.400,0.250,512.3,") {
		t.Errorf("missing success row in:\n%s", content)
	}
	if !strings.Contains(content, "10.255.255.1,,,,,,no samples collected") {
		t.Errorf("missing failure row in:\n%s", content)
	}
}

func TestReadTraceCSVGroupsByDestination(t *testing.T) {
	results := []probe.TraceResult{
		{
			Destination: "a",
			Hops: []probe.Hop{
				probe.NewResponsiveHop("a", 1, "10.0.0.1", []float64{1.0}),
				probe.NewResponsiveHop("a", 2, "10.0.0.2", []float64{5.0}),
			},
		},
		{
			Destination: "b",
			Hops:        []probe.Hop{probe.NewResponsiveHop("b", 1, "10.1.0.1", []float64{2.0})},
		},
	}

	path := filepath.Join(t.TempDir(), "traceroute_results.csv")
	if err := WriteTraceCSV(path, results); err != nil {
		t.Fatalf("WriteTraceCSV: %v", err)
	}

	got, err := ReadTraceCSV(path)
	if err != nil {
		t.Fatalf("ReadTraceCSV: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 destinations, got %d", len(got))
	}
	if got[0].Destination != "a" || len(got[0].Hops) != 2 {
		t.Errorf("destination a: %+v", got[0])
	}
	if got[0].Hops[1].AvgRTT != 5.0 || !got[0].Hops[1].Responsive {
		t.Errorf("hop values lost in round trip: %+v", got[0].Hops[1])
	}
	if got[1].Destination != "b" || len(got[1].Hops) != 1 {
		t.Errorf("destination b: %+v", got[1])
	}
}

func TestPrintTraceTable(t *testing.T) {
	result := probe.TraceResult{
		Destination: "x",
		Hops: []probe.Hop{
			probe.NewResponsiveHop("x", 1, "10.0.0.1", []float64{1.2}),
			probe.NewPlaceholderHop("x", 2),
		},
	}

	var sb strings.Builder
	PrintTraceTable(&sb, result)
	out := sb.String()

	if !strings.Contains(out, "10.0.0.1") {
		t.Errorf("missing responsive hop:\n%s", out)
	}
	if !strings.Contains(out, "*") {
		t.Errorf("placeholder hop should render as stars:\n%s", out)
	}
}
