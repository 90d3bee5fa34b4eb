package pinger

import (
	"context"
	"math/rand"
	"net"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"

	"pathprobe/internal/probe"
	pkgerrors "pathprobe/pkg/errors"
)

const protocolICMP = 1

// ICMPStrategy sends native ICMP echo requests over an unprivileged datagram
// socket instead of shelling out. Requires the kernel to allow ICMP datagram
// sockets (net.ipv4.ping_group_range on Linux).
type ICMPStrategy struct{}

func (s *ICMPStrategy) Name() string { return "icmp" }

func (s *ICMPStrategy) Ping(ctx context.Context, destination string, cfg Config) (probe.PingStats, error) {
	deadline := time.Now().Add(cfg.Timeout)

	dst, err := net.ResolveIPAddr("ip4", destination)
	if err != nil {
		return probe.PingStats{}, &pkgerrors.ProbeError{Destination: destination, Op: "ping", Err: err}
	}

	conn, err := icmp.ListenPacket("udp4", "0.0.0.0")
	if err != nil {
		return probe.PingStats{}, &pkgerrors.ProbeError{Destination: destination, Op: "ping", Err: err}
	}
	defer conn.Close()

	id := rand.Int() & 0xffff
	var samples []float64

	for seq := 1; seq <= cfg.Count; seq++ {
		if ctx.Err() != nil || !time.Now().Before(deadline) {
			break
		}
		if rtt, ok := s.echo(conn, dst, id, seq, deadline); ok {
			samples = append(samples, rtt)
		}
		if seq < cfg.Count {
			select {
			case <-ctx.Done():
			case <-time.After(cfg.Interval):
			}
		}
	}

	stats, ok := probe.Reduce(samples, cfg.Count)
	if !ok {
		return probe.PingStats{}, &pkgerrors.ProbeError{
			Destination: destination, Op: "ping", Err: pkgerrors.ErrNoSamples,
		}
	}
	return stats, nil
}

// echo sends one request and waits for the matching reply. Returns the
// round-trip time in milliseconds.
func (s *ICMPStrategy) echo(conn *icmp.PacketConn, dst *net.IPAddr, id, seq int, deadline time.Time) (float64, bool) {
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho, Code: 0,
		Body: &icmp.Echo{ID: id, Seq: seq, Data: []byte("pathprobe")},
	}
	wb, err := msg.Marshal(nil)
	if err != nil {
		return 0, false
	}

	start := time.Now()
	if _, err := conn.WriteTo(wb, &net.UDPAddr{IP: dst.IP}); err != nil {
		return 0, false
	}

	// Per-reply wait is capped at two seconds so one silent hop cannot eat
	// the whole budget.
	replyBy := start.Add(2 * time.Second)
	if replyBy.After(deadline) {
		replyBy = deadline
	}

	rb := make([]byte, 1500)
	for {
		if err := conn.SetReadDeadline(replyBy); err != nil {
			return 0, false
		}
		n, peer, err := conn.ReadFrom(rb)
		if err != nil {
			return 0, false
		}
		rm, err := icmp.ParseMessage(protocolICMP, rb[:n])
		if err != nil {
			continue
		}
		body, isReply := rm.Body.(*icmp.Echo)
		if rm.Type != ipv4.ICMPTypeEchoReply || !isReply || body.Seq != seq {
			continue // stale or foreign reply
		}
		if ua, ok := peer.(*net.UDPAddr); ok && !ua.IP.Equal(dst.IP) {
			continue
		}
		return float64(time.Since(start)) / float64(time.Millisecond), true
	}
}
