package querycontext

import (
	"context"
	"crypto/tls"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/zhouchenh/rdapct/internal/cache"
	"github.com/zhouchenh/rdapct/internal/config"
	"github.com/zhouchenh/rdapct/internal/dataset"
	"github.com/zhouchenh/rdapct/internal/logger"
	"github.com/zhouchenh/rdapct/internal/network/query"
	"github.com/zhouchenh/rdapct/internal/network/resolver"
	"github.com/zhouchenh/rdapct/internal/results"
	"golang.org/x/time/rate"
	"net/http"
	"strconv"
	"sync"
)

// Shared holds the components every run may use concurrently. They are
// constructed once by the host and injected into each Context. Dataset is
// replaced for runs whose configuration carries its own datasets.
type Shared struct {
	Cache    *cache.ResponseCache
	Resolver *resolver.Resolver
	Dataset  dataset.Service

	// TLSConfig overrides the client TLS settings, e.g. to trust a test CA.
	TLSConfig *tls.Config
}

// Context is the state of exactly one validation run. Nothing in it is
// shared with another run except the components of Shared.
type Context struct {
	id        string
	ctx       context.Context
	config    *config.Config
	dataset   dataset.Service
	queryType config.QueryType
	object    string
	cache     *cache.ResponseCache
	resolver  *resolver.Resolver
	executor  *query.Executor
	sink      *results.Sink
	log       zerolog.Logger

	mu       sync.Mutex
	primary  *query.Result
	current  *query.Result
	group    string
	families map[string]bool
}

// New builds the context of one run. cfg is copied, so later changes to it
// are not observed by the run.
func New(ctx context.Context, cfg *config.Config, shared Shared) (*Context, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if shared.Cache == nil {
		return nil, ErrNilCache
	}
	if shared.Resolver == nil {
		return nil, ErrNilResolver
	}
	if shared.Dataset == nil {
		return nil, ErrNilDataset
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	c := &Context{
		id:      uuid.NewString(),
		ctx:     ctx,
		config:  cfg.Clone(),
		dataset: shared.Dataset,
		cache:   shared.Cache,
		sink:    results.NewSink(),

		families: make(map[string]bool),
	}
	if len(c.config.Datasets) > 0 {
		c.dataset = dataset.NewStatic(c.config.Datasets)
	}
	c.queryType, c.object = c.config.QueryType()
	c.log = logger.ForQuery(c.id)

	c.resolver = shared.Resolver
	if c.config.CustomDNS != "" {
		r, err := shared.Resolver.WithCustomResolver(c.config.CustomDNS)
		if err != nil {
			return nil, config.ErrInvalidCustomDNS
		}
		c.resolver = r
	}

	c.executor = &query.Executor{
		Resolver:     c.resolver,
		Parser:       c.cache.JSON,
		Timeout:      c.config.Timeout,
		MaxRedirects: c.config.MaxRedirects,
		IPv4:         c.config.UseIPv4,
		IPv6:         c.config.UseIPv6,
		UserAgent:    c.config.UserAgent,
		TLSConfig:    shared.TLSConfig,
	}
	if c.config.Socks5Proxy != "" {
		c.executor.Socks5 = &query.Socks5Proxy{
			Server:   c.config.Socks5Proxy,
			Username: c.config.Socks5Username,
			Password: c.config.Socks5Password,
		}
	}
	if c.config.ProbeRate > 0 {
		c.executor.Limiter = rate.NewLimiter(rate.Limit(c.config.ProbeRate), 1)
	}
	return c, nil
}

func (c *Context) ID() string {
	return c.id
}

// Config returns the configuration snapshot of the run. It must be treated
// as read-only.
func (c *Context) Config() *config.Config {
	return c.config
}

func (c *Context) Dataset() dataset.Service {
	return c.dataset
}

func (c *Context) QueryType() config.QueryType {
	return c.queryType
}

// Object is the queried object derived from the URI, e.g. the A-label of a
// domain lookup.
func (c *Context) Object() string {
	return c.object
}

// Done is the cancellation context of the run.
func (c *Context) Done() context.Context {
	return c.ctx
}

func (c *Context) Logger() *zerolog.Logger {
	return &c.log
}

// Query executes req with the run's network settings and stores the result
// in the current query slot. No finding is recorded.
func (c *Context) Query(req query.Request) *query.Result {
	result := c.executor.Execute(c.ctx, req)
	c.mu.Lock()
	c.current = result
	c.mu.Unlock()
	c.log.Debug().
		Str("uri", req.URI).
		Str("method", result.Request.Method).
		Stringer("status", result.Status).
		Int("hops", len(result.Hops)).
		Dur("elapsed", result.Elapsed).
		Msg("query")
	return result
}

// Execute is Query followed by recording the network findings of the result.
// A host missing an address family is reported once per run.
func (c *Context) Execute(req query.Request) *query.Result {
	result := c.Query(req)
	c.Report(c.unreported(NetworkFindings(result))...)
	return result
}

func (c *Context) unreported(findings []results.Finding) []results.Finding {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := findings[:0]
	for _, f := range findings {
		if f.Code == results.CodeNoIPv4 || f.Code == results.CodeNoIPv6 {
			key := strconv.Itoa(f.Code) + "|" + f.Value
			if c.families[key] {
				continue
			}
			c.families[key] = true
		}
		out = append(out, f)
	}
	return out
}

// ExecutePrimary runs the query for the configured URI and keeps it as the
// primary result that body rules inspect.
func (c *Context) ExecutePrimary() *query.Result {
	result := c.Execute(query.Request{URI: c.config.URI, Method: http.MethodGet})
	c.mu.Lock()
	c.primary = result
	c.mu.Unlock()
	return result
}

func (c *Context) Primary() *query.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.primary
}

// Current is the most recent query of the run.
func (c *Context) Current() *query.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Data is the parsed body of the primary response, or nil.
func (c *Context) Data() interface{} {
	if p := c.Primary(); p != nil {
		return p.Data
	}
	return nil
}

// Parse returns the cached parse of content.
func (c *Context) Parse(content []byte) (interface{}, error) {
	return c.cache.JSON.Parse(content)
}

// Schema returns the compiled validator for name, keyed by the fingerprint
// of the run's dataset.
func (c *Context) Schema(name string, compile func() (*jsonschema.Schema, error)) (*jsonschema.Schema, error) {
	return c.cache.Schemas.Validator(name, c.dataset.Fingerprint(), compile)
}

func (c *Context) Addresses(host string) resolver.AddressSet {
	return c.resolver.Lookup(c.ctx, host)
}

// SetGroup names the rule group stamped on findings reported from now on.
func (c *Context) SetGroup(group string) {
	c.mu.Lock()
	c.group = group
	c.mu.Unlock()
}

// Report appends findings to the run's sink. Missing request metadata is
// taken from the current query.
func (c *Context) Report(findings ...results.Finding) {
	if len(findings) == 0 {
		return
	}
	c.mu.Lock()
	current, group := c.current, c.group
	c.mu.Unlock()
	for i := range findings {
		if findings[i].Group == "" {
			findings[i].Group = group
		}
		if findings[i].URI == "" && current != nil {
			findings[i].URI = current.URI()
			findings[i].Method = current.Request.Method
			findings[i].HTTPStatus = current.StatusCode()
		}
	}
	c.sink.Add(findings...)
}

// ReportCode is Report for a single finding with the registered message.
func (c *Context) ReportCode(code int, value string) {
	c.Report(results.New(code, value))
}

// RecordOutcome rolls the result of one rule into its group.
func (c *Context) RecordOutcome(group string, ok bool) {
	c.sink.SetGroupStatus(group, ok)
}

func (c *Context) RecordRuleFailure(failure results.RuleFailure) {
	c.sink.AddRuleFailure(failure)
}

// Results is the read side of the run's sink.
func (c *Context) Results() Results {
	return c.sink
}

// Results is what the reporting layer reads after a run.
type Results interface {
	All() []results.Finding
	Count() int
	Has(code int) bool
	GroupOK(group string) (ok bool, known bool)
	GroupsOK() []string
	GroupErrors() []string
	RuleFailures() []results.RuleFailure
}
