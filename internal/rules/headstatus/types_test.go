package headstatus

import (
	"github.com/zhouchenh/rdapct/internal/results"
	"github.com/zhouchenh/rdapct/internal/rules/ruletest"
	"net/http"
	"testing"
)

func TestHeadStatus(t *testing.T) {
	server := ruletest.NewServer(t)
	server.RDAP("/domain/example.com", http.StatusOK, ruletest.DomainBody)
	server.Router.HandleFunc("/domain/nohead.example", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/rdap+json")
		_, _ = w.Write([]byte(ruletest.DomainBody))
	})

	cfg := ruletest.Config(server.URI("/domain/example.com"))
	cfg.ProfileFeb2024 = true
	qc := ruletest.Context(t, server, cfg, nil, true)
	if !Rule.Launch(qc) || !Rule.Validate(qc) {
		t.Fatalf("expected matching HEAD status, got %v", qc.Results().All())
	}

	cfg = ruletest.Config(server.URI("/domain/nohead.example"))
	cfg.ProfileFeb2024 = true
	qc = ruletest.Context(t, server, cfg, nil, true)
	if Rule.Validate(qc) || !qc.Results().Has(results.CodeHeadStatusMismatch) {
		t.Fatalf("expected HEAD mismatch, got %v", qc.Results().All())
	}
	if f := qc.Results().All()[0]; f.Value != "HEAD 405, GET 200" || f.Method != http.MethodHead {
		t.Fatalf("unexpected finding %+v", f)
	}
}

func TestHeadStatusLaunch(t *testing.T) {
	qc := ruletest.Context(t, nil, ruletest.Config("https://rdap.test/domain/example.com"), nil, false)
	if Rule.Launch(qc) {
		t.Fatalf("expected no launch without the 2024 profile")
	}
}
