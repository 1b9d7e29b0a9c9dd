package query

import (
	"context"
	"crypto/tls"
	"github.com/zhouchenh/rdapct/internal/common"
	"github.com/zhouchenh/rdapct/internal/network/resolver"
	"github.com/zhouchenh/rdapct/internal/network/status"
	"golang.org/x/time/rate"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"sync/atomic"
	"time"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxBodySize = 8 << 20
)

// AddressLookup is the part of the address resolver a query needs.
type AddressLookup interface {
	LookupFamily(ctx context.Context, host string, f resolver.Family) []net.IP
}

// Parser turns a response body into a JSON object or array.
type Parser interface {
	Parse(content []byte) (interface{}, error)
}

// Executor performs queries. Its fields are read-only once the first query
// started; one Executor may serve concurrent queries.
type Executor struct {
	Resolver     AddressLookup
	Parser       Parser
	Timeout      time.Duration
	MaxRedirects int
	IPv4         bool
	IPv6         bool
	UserAgent    string
	Socks5       *Socks5Proxy
	Limiter      *rate.Limiter
	TLSConfig    *tls.Config
	MaxBodySize  int64
}

func (e *Executor) timeout() time.Duration {
	if e.Timeout <= 0 {
		return DefaultTimeout
	}
	return e.Timeout
}

func (e *Executor) maxRedirects() int {
	if e.MaxRedirects < 0 {
		return 0
	}
	return e.MaxRedirects
}

// Execute runs req until a terminal hop, a classified failure or the end of
// the redirect budget. Each hop gets the configured timeout, and the whole
// chain gets that timeout once per allowed hop.
func (e *Executor) Execute(ctx context.Context, req Request) *Result {
	started := time.Now()
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	result := &Result{Request: req}
	defer func() {
		result.Elapsed = time.Since(started)
	}()
	if e.Resolver == nil {
		result.Status, result.Err = status.UnknownHost, ErrNilResolver
		return result
	}
	current, err := parseQueryURI(req.URI)
	if err != nil {
		result.Status, result.Err = status.HTTPError, err
		return result
	}
	budget := e.timeout() * time.Duration(e.maxRedirects()+1)
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	visited := map[string]bool{current.String(): true}
	for {
		hop, err := e.hop(ctx, current, req.Method, result)
		if hop != nil {
			result.Hops = append(result.Hops, *hop)
		}
		if err != nil {
			return result
		}
		if !isRedirect(hop.StatusCode) {
			e.inspect(result, hop)
			return result
		}
		location := hop.Header.Get("Location")
		if location == "" {
			result.Status, result.Err = status.HTTPError, ErrMissingLocation
			return result
		}
		next, err := nextURI(current, location)
		if err != nil {
			result.Status, result.Err = status.HTTPError, err
			return result
		}
		if req.Policy == NoFollow || (req.Policy == SameOrigin && common.Origin(next) != common.Origin(current)) {
			result.Blocked = next.String()
			return result
		}
		if visited[next.String()] {
			result.Loop = true
		}
		if result.Redirects() >= e.maxRedirects() {
			result.Status, result.Err = status.TooManyRedirects, ErrTooManyRedirects
			return result
		}
		visited[next.String()] = true
		current = next
	}
}

// hop performs one HTTP exchange. A non-nil error means result already
// carries the terminal classification.
func (e *Executor) hop(ctx context.Context, u *url.URL, method string, result *Result) (*Hop, error) {
	host := u.Hostname()
	addresses := e.addresses(ctx, u, result)
	if len(addresses) == 0 {
		result.Status, result.Err = status.UnknownHost, ErrNoAddress
		if ctx.Err() != nil {
			result.Status, result.Fault, result.Err = status.ConnectionFailed, status.Timeout, ctx.Err()
		}
		return nil, result.Err
	}
	if e.Limiter != nil {
		if err := e.Limiter.Wait(ctx); err != nil {
			result.Status, result.Fault, result.Err = status.ConnectionFailed, status.Timeout, err
			return nil, err
		}
	}

	hopCtx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()
	var phase int32
	var remote string
	https := u.Scheme == "https"
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			remote = info.Conn.RemoteAddr().String()
			atomic.StoreInt32(&phase, int32(status.PhaseSend))
		},
		ConnectDone: func(_, _ string, err error) {
			if err == nil && !https {
				atomic.StoreInt32(&phase, int32(status.PhaseSend))
			}
		},
		TLSHandshakeStart: func() {
			atomic.StoreInt32(&phase, int32(status.PhaseHandshake))
		},
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			if info.Err == nil {
				atomic.StoreInt32(&phase, int32(status.PhaseReceive))
			}
		},
	}
	request, err := http.NewRequestWithContext(httptrace.WithClientTrace(hopCtx, trace), method, u.String(), nil)
	if err != nil {
		result.Status, result.Err = status.HTTPError, err
		return nil, err
	}
	request.Header.Set("Accept", RDAPMediaType+", application/json")
	if e.UserAgent != "" {
		request.Header.Set("User-Agent", e.UserAgent)
	}

	transport := e.transport(host, addresses)
	defer transport.CloseIdleConnections()
	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	hopStarted := time.Now()
	response, err := client.Do(request)
	if err != nil {
		result.Status, result.Fault = status.Classify(err, status.Phase(atomic.LoadInt32(&phase)))
		result.Err = err
		return nil, err
	}
	defer response.Body.Close()
	hop := &Hop{
		URI:        u.String(),
		Method:     method,
		StatusCode: response.StatusCode,
		Header:     response.Header,
		RemoteAddr: remote,
		TLS:        response.TLS,
	}
	limit := e.MaxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	hop.Body, err = io.ReadAll(io.LimitReader(response.Body, limit))
	hop.Elapsed = time.Since(hopStarted)
	if err != nil {
		result.Status, result.Fault = status.Classify(err, status.PhaseBody)
		result.Err = err
		return hop, err
	}
	return hop, nil
}

// addresses resolves the hop host for every enabled family and records the
// families without addresses.
func (e *Executor) addresses(ctx context.Context, u *url.URL, result *Result) []net.IP {
	host := u.Hostname()
	literal := common.ParseIPv4v6(host)
	var out []net.IP
	for _, family := range e.families() {
		var ips []net.IP
		if literal == nil {
			ips = e.Resolver.LookupFamily(ctx, host, family)
		} else if common.IsIPv4(literal) == (family == resolver.IPv4) {
			ips = []net.IP{literal}
		}
		if len(ips) == 0 {
			result.noteMissing(MissingFamily{Family: family, Host: common.CanonicalHost(host), URI: u.String()})
			continue
		}
		out = append(out, ips...)
	}
	return out
}

func (e *Executor) families() []resolver.Family {
	var families []resolver.Family
	if e.IPv6 {
		families = append(families, resolver.IPv6)
	}
	if e.IPv4 {
		families = append(families, resolver.IPv4)
	}
	return families
}

func (r *Result) noteMissing(m MissingFamily) {
	for _, known := range r.MissingFamilies {
		if known.Family == m.Family && known.Host == m.Host {
			return
		}
	}
	r.MissingFamilies = append(r.MissingFamilies, m)
}

func (e *Executor) transport(host string, addresses []net.IP) *http.Transport {
	var tlsConfig *tls.Config
	if e.TLSConfig != nil {
		tlsConfig = e.TLSConfig.Clone()
	} else {
		tlsConfig = &tls.Config{}
	}
	if common.ParseIPv4v6(host) == nil {
		tlsConfig.ServerName = host
	}
	if tlsConfig.MinVersion == 0 {
		// accept TLS 1.0 and 1.1 so that their use can be observed
		tlsConfig.MinVersion = tls.VersionTLS10
	}
	return &http.Transport{
		DialContext:           pinnedDial(e.dialer(), addresses),
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   e.timeout(),
		ResponseHeaderTimeout: e.timeout(),
		DisableKeepAlives:     true,
		ForceAttemptHTTP2:     true,
	}
}

// inspect checks the media type and parses the body of a terminal 2xx GET.
// The media type is checked first since it explains a body that is not
// JSON.
func (e *Executor) inspect(result *Result, hop *Hop) {
	if hop.Method == http.MethodHead || hop.StatusCode < 200 || hop.StatusCode > 299 {
		return
	}
	var data interface{}
	var err error
	if e.Parser != nil {
		data, err = e.Parser.Parse(hop.Body)
	}
	if !IsRDAPContentType(hop.Header.Get("Content-Type")) {
		result.Status = status.WrongContentType
		result.Data = data
		result.Err = err
		return
	}
	if err != nil {
		result.Status, result.Err = status.ResponseInvalid, err
		return
	}
	result.Data = data
}
