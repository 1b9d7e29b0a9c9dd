package resolver

import (
	"context"
	"github.com/miekg/dns"
	"github.com/patrickmn/go-cache"
	"github.com/zhouchenh/rdapct/internal/common"
	"golang.org/x/sync/singleflight"
	"net"
	"strconv"
	"sync"
	"time"
)

const (
	DefaultTTL     = 5 * time.Minute
	DefaultTimeout = 5 * time.Second
)

// Family selects IPv4 or IPv6 records.
type Family int

const (
	IPv4 Family = 4
	IPv6 Family = 6
)

func (f Family) String() string {
	if f == IPv6 {
		return "IPv6"
	}
	return "IPv4"
}

// AddressSet is the resolution of one host. Either family may be empty.
type AddressSet struct {
	V4         []net.IP
	V6         []net.IP
	ResolvedAt time.Time
}

func (s AddressSet) Empty() bool {
	return len(s.V4) == 0 && len(s.V6) == 0
}

// Options configures a Resolver. An empty CustomServer uses the system
// resolver.
type Options struct {
	CustomServer string
	Timeout      time.Duration
	TTL          time.Duration
}

// Resolver answers which addresses a host has. Lookup failures yield empty
// results; only successful, non-empty answers are cached.
type Resolver struct {
	server  string
	timeout time.Duration
	ttl     time.Duration
	system  *net.Resolver

	cache    *cache.Cache
	requests singleflight.Group

	mutex  sync.RWMutex
	pinned map[string]AddressSet
}

// New validates opts and builds a Resolver. A custom server that is not a
// literal address fails with InvalidCustomResolverError before any I/O.
func New(opts Options) (*Resolver, error) {
	r := &Resolver{
		timeout: opts.Timeout,
		ttl:     opts.TTL,
		system:  net.DefaultResolver,
		pinned:  make(map[string]AddressSet),
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.ttl <= 0 {
		r.ttl = DefaultTTL
	}
	if opts.CustomServer != "" {
		ip, port, ok := common.ParseLiteralAddress(opts.CustomServer, 53)
		if !ok {
			return nil, InvalidCustomResolverError(opts.CustomServer)
		}
		r.server = net.JoinHostPort(ip.String(), strconv.Itoa(int(port)))
	}
	r.cache = cache.New(r.ttl, 2*r.ttl)
	return r, nil
}

// WithCustomResolver returns a new Resolver using server for every lookup.
// Pinned hosts are carried over; the cache is not.
func (r *Resolver) WithCustomResolver(server string) (*Resolver, error) {
	next, err := New(Options{CustomServer: server, Timeout: r.timeout, TTL: r.ttl})
	if err != nil {
		return nil, err
	}
	r.mutex.RLock()
	for host, set := range r.pinned {
		next.pinned[host] = set
	}
	r.mutex.RUnlock()
	return next, nil
}

// Server returns the custom resolver address, or an empty string when the
// system resolver is used.
func (r *Resolver) Server() string {
	return r.server
}

// Pin makes host resolve to ips without any DNS traffic.
func (r *Resolver) Pin(host string, ips ...net.IP) {
	set := AddressSet{ResolvedAt: time.Now()}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			set.V4 = append(set.V4, v4)
		} else if ip != nil {
			set.V6 = append(set.V6, ip)
		}
	}
	r.mutex.Lock()
	r.pinned[common.CanonicalHost(host)] = set
	r.mutex.Unlock()
}

// CheckServer sends a query for the root to server and succeeds on any
// reply, whatever its rcode. Answered checks are remembered for the TTL.
func (r *Resolver) CheckServer(ctx context.Context, server string) error {
	ip, port, ok := common.ParseLiteralAddress(server, 53)
	if !ok {
		return InvalidCustomResolverError(server)
	}
	address := net.JoinHostPort(ip.String(), strconv.Itoa(int(port)))
	key := "server|" + address
	if _, ok := r.cache.Get(key); ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	query := new(dns.Msg)
	query.SetQuestion(".", dns.TypeNS)
	query.RecursionDesired = true
	client := &dns.Client{Net: "udp", Timeout: r.timeout}
	if _, _, err := client.ExchangeContext(ctx, query, address); err != nil {
		return &UnreachableServerError{Server: address, Err: err}
	}
	r.cache.Set(key, true, r.ttl)
	return nil
}

func (r *Resolver) Clear() {
	r.cache.Flush()
}

func (r *Resolver) LookupV4(ctx context.Context, host string) []net.IP {
	return r.lookup(ctx, host, IPv4)
}

func (r *Resolver) LookupV6(ctx context.Context, host string) []net.IP {
	return r.lookup(ctx, host, IPv6)
}

func (r *Resolver) FirstV4(ctx context.Context, host string) (net.IP, bool) {
	return first(r.LookupV4(ctx, host))
}

func (r *Resolver) FirstV6(ctx context.Context, host string) (net.IP, bool) {
	return first(r.LookupV6(ctx, host))
}

func (r *Resolver) Lookup(ctx context.Context, host string) AddressSet {
	return AddressSet{
		V4:         r.LookupV4(ctx, host),
		V6:         r.LookupV6(ctx, host),
		ResolvedAt: time.Now(),
	}
}

// LookupFamily is LookupV4 or LookupV6 chosen by f.
func (r *Resolver) LookupFamily(ctx context.Context, host string, f Family) []net.IP {
	return r.lookup(ctx, host, f)
}

func first(ips []net.IP) (net.IP, bool) {
	if len(ips) == 0 {
		return nil, false
	}
	return ips[0], true
}

func (r *Resolver) lookup(ctx context.Context, host string, f Family) []net.IP {
	host = common.CanonicalHost(host)
	if host == "" {
		return nil
	}
	if ip := common.ParseIPv4v6(host); ip != nil {
		if common.IsIPv4(ip) == (f == IPv4) {
			return []net.IP{ip}
		}
		return nil
	}
	r.mutex.RLock()
	set, pinned := r.pinned[host]
	r.mutex.RUnlock()
	if pinned {
		if f == IPv4 {
			return set.V4
		}
		return set.V6
	}
	key := strconv.Itoa(int(f)) + "|" + host
	if cached, ok := r.cache.Get(key); ok {
		return cached.([]net.IP)
	}
	// The shared lookup outlives any one caller; callers stop waiting on
	// their own context.
	shared := context.WithoutCancel(ctx)
	results := r.requests.DoChan(key, func() (interface{}, error) {
		ips := r.query(shared, host, f)
		if len(ips) > 0 {
			r.cache.Set(key, ips, r.ttl)
		}
		return ips, nil
	})
	select {
	case result := <-results:
		ips, _ := result.Val.([]net.IP)
		return ips
	case <-ctx.Done():
		return nil
	}
}

func (r *Resolver) query(ctx context.Context, host string, f Family) []net.IP {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if r.server != "" {
		return r.exchange(ctx, host, f)
	}
	network := "ip4"
	if f == IPv6 {
		network = "ip6"
	}
	ips, err := r.system.LookupIP(ctx, network, host)
	if err != nil {
		return nil
	}
	var out []net.IP
	for _, ip := range ips {
		if common.IsIPv4(ip) == (f == IPv4) {
			out = append(out, normalizeIP(ip))
		}
	}
	return out
}

func (r *Resolver) exchange(ctx context.Context, host string, f Family) []net.IP {
	qtype := dns.TypeA
	if f == IPv6 {
		qtype = dns.TypeAAAA
	}
	query := new(dns.Msg)
	query.SetQuestion(dns.Fqdn(host), qtype)
	query.RecursionDesired = true
	query.SetEdns0(4096, false)

	client := &dns.Client{Net: "udp", UDPSize: 4096, Timeout: r.timeout}
	msg, _, err := client.ExchangeContext(ctx, query, r.server)
	if err == nil && msg.Truncated {
		// retry over TCP, keeping the truncated answer if that fails
		tcp := &dns.Client{Net: "tcp", Timeout: r.timeout}
		if tcpMsg, _, tcpErr := tcp.ExchangeContext(ctx, query, r.server); tcpErr == nil {
			msg = tcpMsg
		}
	}
	if err != nil || msg == nil || msg.Rcode != dns.RcodeSuccess {
		return nil
	}
	var out []net.IP
	for _, rr := range msg.Answer {
		switch record := rr.(type) {
		case *dns.A:
			if f == IPv4 {
				out = append(out, record.A.To4())
			}
		case *dns.AAAA:
			if f == IPv6 {
				out = append(out, record.AAAA)
			}
		}
	}
	return out
}

func normalizeIP(ip net.IP) net.IP {
	if v4 := ip.To4(); v4 != nil {
		return v4
	}
	return ip
}
