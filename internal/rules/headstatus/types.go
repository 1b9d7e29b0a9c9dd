package headstatus

import (
	"github.com/zhouchenh/go-descriptor"
	"github.com/zhouchenh/rdapct/internal/common"
	"github.com/zhouchenh/rdapct/internal/network/query"
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"github.com/zhouchenh/rdapct/internal/results"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
	"net/http"
	"strconv"
)

// HeadStatus repeats the primary query with HEAD and expects the status code
// of the GET.
type HeadStatus struct{}

var Rule = new(HeadStatus)

var typeOfHeadStatus = descriptor.TypeOfNew(&Rule)

func (r *HeadStatus) Type() descriptor.Type {
	return typeOfHeadStatus
}

func (r *HeadStatus) TypeName() string {
	return "headStatus"
}

func (r *HeadStatus) GroupName() string {
	return "rdapProfileHeadValidation"
}

func (r *HeadStatus) Launch(qc *querycontext.Context) bool {
	return qc.Config().ProfileFeb2024 && qc.QueryType().IsLookup()
}

func (r *HeadStatus) Validate(qc *querycontext.Context) bool {
	primary := qc.Primary()
	if primary == nil || primary.Terminal() == nil || primary.Status.Transport() {
		return true
	}
	head := qc.Execute(query.Request{URI: qc.Config().URI, Method: http.MethodHead})
	if head.StatusCode() == primary.StatusCode() {
		return true
	}
	value := head.Status.String()
	if head.Terminal() != nil {
		value = strconv.Itoa(head.StatusCode())
	}
	qc.ReportCode(results.CodeHeadStatusMismatch, common.Concatenate("HEAD ", value, ", GET ", primary.StatusCode()))
	return false
}

func init() {
	if err := rule.RegisterDefaultRule(&descriptor.Descriptor{
		Type:   typeOfHeadStatus,
		Filler: descriptor.ObjectFiller{ValueSource: descriptor.DefaultValue{Value: Rule}},
	}); err != nil {
		common.ErrOutput(err)
	}
}
