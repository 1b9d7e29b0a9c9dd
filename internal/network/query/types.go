package query

import (
	"crypto/tls"
	"github.com/zhouchenh/rdapct/internal/network/resolver"
	"github.com/zhouchenh/rdapct/internal/network/status"
	"mime"
	"net/http"
	"time"
)

const RDAPMediaType = "application/rdap+json"

// RedirectPolicy decides which Location targets are followed.
type RedirectPolicy int

const (
	FollowAll RedirectPolicy = iota
	// SameOrigin follows a redirect only when scheme, host and port are
	// unchanged. A different path on the same origin is followed.
	SameOrigin
	NoFollow
)

type Request struct {
	URI    string
	Method string
	Policy RedirectPolicy
}

// Hop is one physical HTTP exchange of a query.
type Hop struct {
	URI        string
	Method     string
	StatusCode int
	Header     http.Header
	Body       []byte
	RemoteAddr string
	TLS        *tls.ConnectionState
	Elapsed    time.Duration
}

// MissingFamily notes that a host had no address of an enabled family.
type MissingFamily struct {
	Family resolver.Family
	Host   string
	URI    string
}

// Result is the outcome of one logical query. It is not modified after
// Execute returns.
type Result struct {
	Request Request
	Hops    []Hop
	Status  status.Status
	Fault   status.Fault
	Err     error

	// Data is the parsed body of the terminal hop, when it could be parsed.
	Data interface{}

	MissingFamilies []MissingFamily

	// Loop is set when a redirect pointed back at a URI already visited.
	Loop bool
	// Blocked holds a redirect target the policy refused to follow.
	Blocked string

	Elapsed time.Duration
}

func (r *Result) Terminal() *Hop {
	if r == nil || len(r.Hops) == 0 {
		return nil
	}
	return &r.Hops[len(r.Hops)-1]
}

// Redirects returns how many redirects were followed.
func (r *Result) Redirects() int {
	if r == nil || len(r.Hops) == 0 {
		return 0
	}
	return len(r.Hops) - 1
}

func (r *Result) StatusCode() int {
	if hop := r.Terminal(); hop != nil {
		return hop.StatusCode
	}
	return 0
}

func (r *Result) Body() []byte {
	if hop := r.Terminal(); hop != nil {
		return hop.Body
	}
	return nil
}

func (r *Result) URI() string {
	if hop := r.Terminal(); hop != nil {
		return hop.URI
	}
	if r == nil {
		return ""
	}
	return r.Request.URI
}

func (r *Result) OK() bool {
	return r != nil && r.Status == status.Success
}

// HasBody reports whether rules can inspect a parsed body.
func (r *Result) HasBody() bool {
	return r != nil && r.Data != nil
}

func (r *Result) Missing(f resolver.Family) bool {
	if r == nil {
		return false
	}
	for _, m := range r.MissingFamilies {
		if m.Family == f {
			return true
		}
	}
	return false
}

func IsRDAPContentType(value string) bool {
	mediaType, _, err := mime.ParseMediaType(value)
	return err == nil && mediaType == RDAPMediaType
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}
