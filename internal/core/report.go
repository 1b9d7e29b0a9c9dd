package core

import (
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"github.com/zhouchenh/rdapct/internal/results"
)

// Report is the document printed for a finished run.
type Report struct {
	ID           string                `json:"id"`
	URI          string                `json:"uri"`
	QueryType    string                `json:"queryType"`
	Status       string                `json:"status"`
	Results      []results.Finding     `json:"results"`
	GroupOK      []string              `json:"groupOK"`
	GroupErrors  []string              `json:"groupErrorWarning"`
	RuleFailures []results.RuleFailure `json:"ruleFailures,omitempty"`
}

func NewReport(qc *querycontext.Context) Report {
	r := Report{
		ID:           qc.ID(),
		URI:          qc.Config().URI,
		QueryType:    string(qc.QueryType()),
		Results:      qc.Results().All(),
		GroupOK:      qc.Results().GroupsOK(),
		GroupErrors:  qc.Results().GroupErrors(),
		RuleFailures: qc.Results().RuleFailures(),
	}
	if p := qc.Primary(); p != nil {
		r.Status = p.Status.String()
	}
	if r.GroupOK == nil {
		r.GroupOK = []string{}
	}
	if r.GroupErrors == nil {
		r.GroupErrors = []string{}
	}
	return r
}

// OK reports whether the run found no errors. Warnings do not count.
func (r Report) OK() bool {
	if len(r.RuleFailures) > 0 {
		return false
	}
	for _, f := range r.Results {
		if f.IsError() {
			return false
		}
	}
	return true
}
