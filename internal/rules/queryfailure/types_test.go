package queryfailure

import (
	"github.com/zhouchenh/rdapct/internal/results"
	"github.com/zhouchenh/rdapct/internal/rules/ruletest"
	"net/http"
	"testing"
)

func TestQueryFailure(t *testing.T) {
	server := ruletest.NewServer(t)
	server.RDAP("/domain/example.com", http.StatusOK, ruletest.DomainBody)

	qc := ruletest.Context(t, server, ruletest.Config(server.URI("/domain/example.com")), nil, true)
	if !Rule.Launch(qc) || !Rule.Validate(qc) {
		t.Fatalf("expected successful primary query to pass")
	}

	failed := ruletest.Context(t, nil, ruletest.Config("http://127.0.0.1:1/domain/example.com"), nil, true)
	if !Rule.Launch(failed) {
		t.Fatalf("the rule always launches")
	}
	count := failed.Results().Count()
	if Rule.Validate(failed) {
		t.Fatalf("expected failed primary query to fail the group")
	}
	if count == 0 || failed.Results().Count() != count || !failed.Results().Has(results.CodeConnectionFailed) {
		t.Fatalf("expected only the query's own finding, got %v", failed.Results().All())
	}
}
