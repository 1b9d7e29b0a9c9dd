package domaininvalid

import (
	"github.com/zhouchenh/rdapct/internal/results"
	"github.com/zhouchenh/rdapct/internal/rules/ruletest"
	"net/http"
	"testing"
)

func newRule() *DomainInvalid {
	return &DomainInvalid{Domain: defaultDomain}
}

func TestDomainInvalid(t *testing.T) {
	server := ruletest.NewServer(t)
	server.RDAP("/ok/domain/test.invalid", http.StatusNotFound, ruletest.ErrorBody)
	server.RDAP("/found/domain/test.invalid", http.StatusOK, ruletest.DomainBody)
	server.RDAP("/bad/domain/test.invalid", http.StatusBadRequest, ruletest.ErrorBody)
	server.Router.HandleFunc("/html/domain/test.invalid", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("<html></html>"))
	})
	server.RDAP("/noerror/domain/test.invalid", http.StatusNotFound, `{"rdapConformance":["rdap_level_0"]}`)
	server.Redirect("/loop/domain/test.invalid", "/loop/domain/test.invalid", http.StatusFound)
	server.Redirect("/moved/domain/test.invalid", "/ok/domain/test.invalid", http.StatusMovedPermanently)
	server.Redirect("/away/domain/test.invalid", "https://elsewhere.test/domain/test.invalid", http.StatusMovedPermanently)

	cases := []struct {
		base string
		ok   bool
		code int
	}{
		{"/ok", true, 0},
		{"/moved", true, 0},
		{"/found", false, results.CodeInvalidDomainStatus},
		{"/bad", false, results.CodeInvalidDomainStatus},
		{"/html", false, results.CodeInvalidDomainNotRDAPContent},
		{"/noerror", false, results.CodeInvalidDomainNotRDAPContent},
		{"/loop", false, results.CodeInvalidDomainRedirectLoop},
		{"/away", false, results.CodeInvalidDomainCrossOrigin},
	}
	for _, c := range cases {
		qc := ruletest.Context(t, server, ruletest.Config(server.URI(c.base+"/domain/example.com")), nil, false)
		if !newRule().Launch(qc) {
			t.Fatalf("%s: expected launch", c.base)
		}
		if got := newRule().Validate(qc); got != c.ok {
			t.Fatalf("%s: expected %v, got %v (%v)", c.base, c.ok, got, qc.Results().All())
		}
		if c.code != 0 && !qc.Results().Has(c.code) {
			t.Fatalf("%s: expected code %d, got %v", c.base, c.code, qc.Results().All())
		}
	}

	qc := ruletest.Context(t, server, ruletest.Config(server.URI("/bad/domain/example.com")), nil, false)
	if !(&DomainInvalid{Domain: defaultDomain, AllowBadRequest: true}).Validate(qc) {
		t.Fatalf("expected 400 to be accepted, got %v", qc.Results().All())
	}
}

func TestDomainInvalidLaunch(t *testing.T) {
	qc := ruletest.Context(t, nil, ruletest.Config("https://rdap.test/entity/X"), nil, false)
	if newRule().Launch(qc) {
		t.Fatalf("only domain queries probe an invalid domain")
	}
}
