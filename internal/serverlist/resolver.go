package serverlist

import (
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// Resolver turns hostnames from the server list into IPv4 literals by
// querying the system's configured nameserver directly.
type Resolver struct {
	client *dns.Client
	server string
}

// NewResolver creates a Resolver using /etc/resolv.conf, falling back to a
// public resolver when it cannot be read.
func NewResolver() *Resolver {
	server := "8.8.8.8:53"
	if conf, err := dns.ClientConfigFromFile("/etc/resolv.conf"); err == nil && len(conf.Servers) > 0 {
		server = net.JoinHostPort(conf.Servers[0], conf.Port)
	}
	return &Resolver{
		client: &dns.Client{Timeout: 5 * time.Second},
		server: server,
	}
}

// LookupIPv4 resolves host to its first A record. IP literals pass through.
func (r *Resolver) LookupIPv4(host string) (string, error) {
	if IsIPLiteral(host) {
		return host, nil
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), dns.TypeA)
	m.RecursionDesired = true

	in, _, err := r.client.Exchange(m, r.server)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", host, err)
	}
	for _, rr := range in.Answer {
		if a, ok := rr.(*dns.A); ok {
			return a.A.String(), nil
		}
	}
	return "", fmt.Errorf("resolve %s: no A records", host)
}

// ResolveAll maps every address to an IPv4 literal, dropping hostnames that
// fail to resolve. Order is preserved.
func (r *Resolver) ResolveAll(addrs []string) []string {
	var out []string
	for _, a := range addrs {
		ip, err := r.LookupIPv4(a)
		if err != nil {
			continue
		}
		out = append(out, ip)
	}
	return out
}
