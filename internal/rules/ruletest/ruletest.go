// Package ruletest provides a fake RDAP server and query contexts for rule
// tests.
package ruletest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"github.com/gorilla/mux"
	"github.com/zhouchenh/rdapct/internal/cache"
	"github.com/zhouchenh/rdapct/internal/config"
	"github.com/zhouchenh/rdapct/internal/dataset"
	"github.com/zhouchenh/rdapct/internal/network/resolver"
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

const Host = "rdap.test"

const DomainBody = `{"rdapConformance":["rdap_level_0"],"objectClassName":"domain","ldhName":"example.com"}`

const ErrorBody = `{"rdapConformance":["rdap_level_0"],"errorCode":404,"title":"Not Found"}`

const HelpBody = `{"rdapConformance":["rdap_level_0"],"notices":[{"title":"Help","description":["help"]}]}`

type Server struct {
	*httptest.Server
	Router *mux.Router
}

func NewServer(t *testing.T) *Server {
	t.Helper()
	router := mux.NewRouter()
	s := &Server{Server: httptest.NewServer(router), Router: router}
	t.Cleanup(s.Close)
	return s
}

// NewTLSServer starts an HTTPS server. Its URIs use the loopback address
// the test certificate is issued for.
func NewTLSServer(t *testing.T) *Server {
	t.Helper()
	router := mux.NewRouter()
	s := &Server{Server: httptest.NewTLSServer(router), Router: router}
	t.Cleanup(s.Close)
	return s
}

// URI returns the address of path on the server, using Host as host name for
// plain HTTP servers.
func (s *Server) URI(path string) string {
	u, _ := url.Parse(s.URL)
	if u.Scheme == "https" {
		return s.URL + path
	}
	return "http://" + Host + ":" + u.Port() + path
}

// RDAP serves body with the RDAP media type and status for path.
func (s *Server) RDAP(path string, status int, body string) {
	s.Router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rdap+json")
		w.WriteHeader(status)
		if r.Method != http.MethodHead {
			_, _ = w.Write([]byte(body))
		}
	})
}

func (s *Server) Redirect(path, target string, status int) {
	s.Router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, status)
	})
}

func Config(uri string) *config.Config {
	return &config.Config{
		URI:          uri,
		Timeout:      2 * time.Second,
		MaxRedirects: 3,
		UseIPv4:      true,
		Parallelism:  1,
	}
}

// Shared returns fresh shared components with Host pinned to the loopback
// address. server may be nil; a TLS server's certificate is trusted.
func Shared(t *testing.T, server *Server, ds dataset.Service) querycontext.Shared {
	t.Helper()
	r, err := resolver.New(resolver.Options{})
	if err != nil {
		t.Fatalf("resolver.New: %v", err)
	}
	r.Pin(Host, net.ParseIP("127.0.0.1"))
	if ds == nil {
		ds = dataset.NewStatic(nil)
	}
	shared := querycontext.Shared{
		Cache:    cache.New(64, 8),
		Resolver: r,
		Dataset:  ds,
	}
	if server != nil && server.TLS != nil {
		pool := x509.NewCertPool()
		pool.AddCert(server.Certificate())
		shared.TLSConfig = &tls.Config{RootCAs: pool}
	}
	return shared
}

// Context builds a context for cfg. When primary is true the primary query
// is executed.
func Context(t *testing.T, server *Server, cfg *config.Config, ds dataset.Service, primary bool) *querycontext.Context {
	t.Helper()
	return ContextWith(t, Shared(t, server, ds), cfg, primary)
}

// ContextWith is Context on existing shared components.
func ContextWith(t *testing.T, shared querycontext.Shared, cfg *config.Config, primary bool) *querycontext.Context {
	t.Helper()
	qc, err := querycontext.New(context.Background(), cfg, shared)
	if err != nil {
		t.Fatalf("querycontext.New: %v", err)
	}
	if primary {
		qc.ExecutePrimary()
	}
	return qc
}
