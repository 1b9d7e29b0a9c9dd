package core

import (
	"context"
	"errors"
	"github.com/miekg/dns"
	"github.com/zhouchenh/go-descriptor"
	"github.com/zhouchenh/rdapct/internal/config"
	_ "github.com/zhouchenh/rdapct/internal/features"
	"github.com/zhouchenh/rdapct/internal/metrics"
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"github.com/zhouchenh/rdapct/internal/results"
	"github.com/zhouchenh/rdapct/internal/rules/httpstatus"
	"github.com/zhouchenh/rdapct/internal/rules/objectclass"
	"github.com/zhouchenh/rdapct/internal/rules/queryfailure"
	"github.com/zhouchenh/rdapct/internal/rules/ruletest"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
)

type stubRule struct {
	name      string
	group     string
	launch    bool
	body      bool
	panics    bool
	findings  int
	validated int32
}

func (r *stubRule) Type() descriptor.Type { return nil }
func (r *stubRule) TypeName() string      { return r.name }
func (r *stubRule) GroupName() string     { return r.group }
func (r *stubRule) NeedsBody() bool       { return r.body }
func (r *stubRule) Launch(_ *querycontext.Context) bool {
	return r.launch
}
func (r *stubRule) Validate(qc *querycontext.Context) bool {
	atomic.AddInt32(&r.validated, 1)
	if r.panics {
		panic("boom")
	}
	for i := 0; i < r.findings; i++ {
		qc.ReportCode(results.CodeUnexpectedHTTPStatus, r.name)
	}
	return r.findings == 0
}

func newValidator(t *testing.T, server *ruletest.Server, rules ...rule.Rule) *Validator {
	t.Helper()
	return &Validator{Shared: ruletest.Shared(t, server, nil), Rules: rules}
}

func TestRunRejectsBothFamiliesDisabled(t *testing.T) {
	server := ruletest.NewServer(t)
	var hits int32
	server.Router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})
	cfg := ruletest.Config(server.URI("/domain/example.com"))
	cfg.UseIPv4, cfg.UseIPv6 = false, false
	qc, err := newValidator(t, server).Run(context.Background(), cfg)
	if !errors.Is(err, config.ErrNoAddressFamily) {
		t.Fatalf("expected ErrNoAddressFamily, got %v", err)
	}
	if qc != nil {
		t.Fatalf("expected no context for rejected input")
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("expected no request before validation, got %d", hits)
	}
}

func TestRunNilConfig(t *testing.T) {
	if _, err := newValidator(t, nil).Run(context.Background(), nil); !errors.Is(err, ErrNilConfig) {
		t.Fatalf("expected ErrNilConfig, got %v", err)
	}
}

func TestRunRedirectThenSuccess(t *testing.T) {
	server := ruletest.NewServer(t)
	server.Redirect("/domain/example.com", "/v2/domain/example.com", http.StatusMovedPermanently)
	server.RDAP("/v2/domain/example.com", http.StatusOK, ruletest.DomainBody)
	v := newValidator(t, server, &httpstatus.HTTPStatus{}, &objectclass.ObjectClassName{}, &queryfailure.QueryFailure{})

	qc, err := v.Run(context.Background(), ruletest.Config(server.URI("/domain/example.com")))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := qc.Results().Count(); n != 0 {
		t.Fatalf("expected no findings, got %v", qc.Results().All())
	}
	report := NewReport(qc)
	if !report.OK() || report.Status != "SUCCESS" || len(report.GroupErrors) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.GroupOK) != 3 {
		t.Fatalf("expected 3 passing groups, got %v", report.GroupOK)
	}
}

func TestRunRecoversRulePanic(t *testing.T) {
	server := ruletest.NewServer(t)
	server.RDAP("/domain/example.com", http.StatusOK, ruletest.DomainBody)
	broken := &stubRule{name: "broken", group: "brokenGroup", launch: true, panics: true}
	after := &stubRule{name: "after", group: "afterGroup", launch: true, findings: 1}
	m := metrics.New()
	v := newValidator(t, server, broken, after)
	v.Metrics = m

	qc, err := v.Run(context.Background(), ruletest.Config(server.URI("/domain/example.com")))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if atomic.LoadInt32(&after.validated) != 1 {
		t.Fatalf("expected the rule after the panic to run")
	}
	failures := qc.Results().RuleFailures()
	if len(failures) != 1 || failures[0].Rule != "broken" || failures[0].Reason != "boom" {
		t.Fatalf("unexpected rule failures %+v", failures)
	}
	if _, known := qc.Results().GroupOK("brokenGroup"); known {
		t.Fatalf("a failed rule must not roll into its group")
	}
	if ok, known := qc.Results().GroupOK("afterGroup"); !known || ok {
		t.Fatalf("expected afterGroup to fail, got ok=%v known=%v", ok, known)
	}
	for _, f := range qc.Results().All() {
		if f.Value == "broken" {
			t.Fatalf("a panic must not produce a finding: %+v", f)
		}
	}
	if NewReport(qc).OK() {
		t.Fatalf("report with a rule failure is not OK")
	}
}

func TestRunSkipsRulesThatDoNotLaunch(t *testing.T) {
	server := ruletest.NewServer(t)
	server.RDAP("/domain/example.com", http.StatusOK, ruletest.DomainBody)
	idle := &stubRule{name: "idle", group: "idleGroup", findings: 1}
	v := newValidator(t, server, idle)
	qc, err := v.Run(context.Background(), ruletest.Config(server.URI("/domain/example.com")))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if atomic.LoadInt32(&idle.validated) != 0 || qc.Results().Count() != 0 {
		t.Fatalf("a rule that does not launch must not run")
	}
	if _, known := qc.Results().GroupOK("idleGroup"); known {
		t.Fatalf("a rule that does not launch has no outcome")
	}
}

func TestRunSkipsBodyRulesWithoutBody(t *testing.T) {
	server := ruletest.NewServer(t)
	server.RDAP("/domain/example.com", http.StatusNotFound, ruletest.ErrorBody)
	bodyRule := &stubRule{name: "body", group: "bodyGroup", launch: true, body: true}
	plain := &stubRule{name: "plain", group: "plainGroup", launch: true}
	v := newValidator(t, server, bodyRule, plain)
	if _, err := v.Run(context.Background(), ruletest.Config(server.URI("/domain/example.com"))); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if atomic.LoadInt32(&bodyRule.validated) != 0 {
		t.Fatalf("body rule ran without a body")
	}
	if atomic.LoadInt32(&plain.validated) != 1 {
		t.Fatalf("expected the plain rule to run")
	}
}

func TestLaunchIsIdempotent(t *testing.T) {
	rules, err := rule.Build(nil)
	if err != nil {
		t.Fatalf("rule.Build: %v", err)
	}
	uris := []string{
		"https://rdap.test/domain/example.com",
		"https://rdap.test/nameserver/ns1.example.com",
		"http://rdap.test/ip/192.0.2.0/24",
		"https://rdap.test/help",
		"https://rdap.test/domains?name=exa*",
	}
	for _, uri := range uris {
		cfg := ruletest.Config(uri)
		cfg.ProfileFeb2024 = true
		cfg.GTLDRegistry = true
		qc := ruletest.Context(t, nil, cfg, nil, false)
		for _, r := range rules {
			first := r.Launch(qc)
			for i := 0; i < 3; i++ {
				if r.Launch(qc) != first {
					t.Fatalf("%s on %s: Launch is not stable", r.TypeName(), uri)
				}
			}
		}
		if qc.Current() != nil || qc.Results().Count() != 0 {
			t.Fatalf("Launch on %s performed I/O or reported findings", uri)
		}
	}
}

func TestRunBatchIsolation(t *testing.T) {
	server := ruletest.NewServer(t)
	server.RDAP("/domain/good.example", http.StatusOK, ruletest.DomainBody)
	server.RDAP("/domain/bad.example", http.StatusInternalServerError, ruletest.ErrorBody)
	v := newValidator(t, server, &httpstatus.HTTPStatus{})

	var cfgs []*config.Config
	for i := 0; i < 12; i++ {
		path := "/domain/good.example"
		if i%2 == 1 {
			path = "/domain/bad.example"
		}
		cfgs = append(cfgs, ruletest.Config(server.URI(path)))
	}
	outcomes := v.RunBatch(context.Background(), cfgs, 4)
	if len(outcomes) != len(cfgs) {
		t.Fatalf("expected %d outcomes, got %d", len(cfgs), len(outcomes))
	}
	ids := make(map[string]bool)
	for i, o := range outcomes {
		if o.Err != nil {
			t.Fatalf("run %d: %v", i, o.Err)
		}
		if ids[o.Context.ID()] {
			t.Fatalf("run %d reuses context id %s", i, o.Context.ID())
		}
		ids[o.Context.ID()] = true
		findings := o.Context.Results().All()
		if i%2 == 0 {
			if len(findings) != 0 {
				t.Fatalf("run %d: expected no findings, got %v", i, findings)
			}
			continue
		}
		if len(findings) != 1 || findings[0].Code != results.CodeUnexpectedHTTPStatus {
			t.Fatalf("run %d: unexpected findings %v", i, findings)
		}
		if !strings.HasSuffix(findings[0].URI, "/domain/bad.example") {
			t.Fatalf("run %d: finding carries foreign URI %s", i, findings[0].URI)
		}
	}
}

func TestRunBatchReportsBadInputPerRun(t *testing.T) {
	server := ruletest.NewServer(t)
	server.RDAP("/domain/example.com", http.StatusOK, ruletest.DomainBody)
	v := newValidator(t, server, &httpstatus.HTTPStatus{})
	bad := ruletest.Config(server.URI("/domain/example.com"))
	bad.CustomDNS = "invalid.dns.server"
	outcomes := v.RunBatch(context.Background(), []*config.Config{ruletest.Config(server.URI("/domain/example.com")), bad}, 0)
	if outcomes[0].Err != nil || outcomes[0].Context == nil {
		t.Fatalf("expected the first run to succeed, got %v", outcomes[0].Err)
	}
	var runErr *RunError
	if !errors.As(outcomes[1].Err, &runErr) || runErr.Index != 1 {
		t.Fatalf("expected RunError for run 1, got %v", outcomes[1].Err)
	}
	if !errors.Is(outcomes[1].Err, config.ErrInvalidCustomDNS) || !config.IsBadInput(outcomes[1].Err) {
		t.Fatalf("expected a custom DNS input error, got %v", outcomes[1].Err)
	}
}

func TestRunCanceled(t *testing.T) {
	server := ruletest.NewServer(t)
	server.RDAP("/domain/example.com", http.StatusOK, ruletest.DomainBody)
	r := &stubRule{name: "stub", group: "stubGroup", launch: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	qc, err := newValidator(t, server, r).Run(ctx, ruletest.Config(server.URI("/domain/example.com")))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if qc == nil || qc.Primary() == nil {
		t.Fatalf("expected the partial context")
	}
	if atomic.LoadInt32(&r.validated) != 0 {
		t.Fatalf("no rule may run after cancellation")
	}
}

func TestSessions(t *testing.T) {
	server := ruletest.NewServer(t)
	server.RDAP("/domain/example.com", http.StatusOK, ruletest.DomainBody)
	v := newValidator(t, server, &httpstatus.HTTPStatus{})
	if _, err := v.Session("x"); !errors.Is(err, ErrNoSessions) {
		t.Fatalf("expected ErrNoSessions, got %v", err)
	}
	v.Sessions = querycontext.NewSessions()
	qc, err := v.Run(context.Background(), ruletest.Config(server.URI("/domain/example.com")))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, err := v.Session(qc.ID()); err != nil || got != qc {
		t.Fatalf("expected kept session, got %v %v", got, err)
	}
	if err := v.Release(qc.ID()); err != nil {
		t.Fatalf("Release: %v", err)
	}
	var unknown querycontext.UnknownSessionError
	if _, err := v.Session(qc.ID()); !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownSessionError, got %v", err)
	}
}

func TestRunSendsDefaultUserAgent(t *testing.T) {
	server := ruletest.NewServer(t)
	agents := make(chan string, 1)
	server.Router.HandleFunc("/domain/example.com", func(w http.ResponseWriter, r *http.Request) {
		agents <- r.UserAgent()
		w.Header().Set("Content-Type", "application/rdap+json")
		_, _ = w.Write([]byte(ruletest.DomainBody))
	})
	cfg := ruletest.Config(server.URI("/domain/example.com"))
	if _, err := newValidator(t, server, &httpstatus.HTTPStatus{}).Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := <-agents; got != UserAgent() {
		t.Fatalf("expected user agent %q, got %q", UserAgent(), got)
	}
	if cfg.UserAgent != "" {
		t.Fatalf("Run modified the caller's config")
	}
}

func startRefusingDNSServer(t *testing.T) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	started := make(chan struct{})
	server := &dns.Server{PacketConn: pc, NotifyStartedFunc: func() { close(started) }, Handler: dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
		reply := new(dns.Msg)
		reply.SetRcode(req, dns.RcodeRefused)
		_ = w.WriteMsg(reply)
	})}
	go func() {
		_ = server.ActivateAndServe()
	}()
	<-started
	t.Cleanup(func() {
		_ = server.Shutdown()
	})
	return pc.LocalAddr().String()
}

func TestRunRejectsUnreachableCustomDNS(t *testing.T) {
	server := ruletest.NewServer(t)
	var hits int32
	server.Router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})
	cfg := ruletest.Config(server.URI("/domain/example.com"))
	cfg.CustomDNS = "127.0.0.1:1"
	qc, err := newValidator(t, server, &queryfailure.QueryFailure{}).Run(context.Background(), cfg)
	if !errors.Is(err, config.ErrUnreachableCustomDNS) || !config.IsBadInput(err) {
		t.Fatalf("expected ErrUnreachableCustomDNS, got %v", err)
	}
	if qc != nil {
		t.Fatalf("expected no context when the custom resolver is unreachable")
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("expected no request to the server, got %d", hits)
	}
}

func TestRunAcceptsAnsweringCustomDNS(t *testing.T) {
	server := ruletest.NewServer(t)
	server.RDAP("/domain/example.com", http.StatusOK, ruletest.DomainBody)
	cfg := ruletest.Config(server.URI("/domain/example.com"))
	cfg.CustomDNS = startRefusingDNSServer(t)
	qc, err := newValidator(t, server, &queryfailure.QueryFailure{}).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("expected a refusing resolver to count as reachable, got %v", err)
	}
	if qc.Results().Count() != 0 {
		t.Fatalf("expected no findings, got %v", qc.Results().All())
	}
}
