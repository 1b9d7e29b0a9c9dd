package helpquery

import (
	"github.com/zhouchenh/go-descriptor"
	"github.com/zhouchenh/rdapct/internal/common"
	"github.com/zhouchenh/rdapct/internal/config"
	"github.com/zhouchenh/rdapct/internal/jsonpointer"
	"github.com/zhouchenh/rdapct/internal/network/query"
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"github.com/zhouchenh/rdapct/internal/results"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
	"net/http"
	"strconv"
)

// HelpQuery sends GET {base}/help and expects a 200 RDAP response that
// declares rdapConformance.
type HelpQuery struct{}

var Rule = new(HelpQuery)

var typeOfHelpQuery = descriptor.TypeOfNew(&Rule)

func (r *HelpQuery) Type() descriptor.Type {
	return typeOfHelpQuery
}

func (r *HelpQuery) TypeName() string {
	return "helpQuery"
}

func (r *HelpQuery) GroupName() string {
	return "stdRdapHelpQueryValidation"
}

func (r *HelpQuery) Launch(qc *querycontext.Context) bool {
	return qc.QueryType() != config.QueryUnknown
}

func (r *HelpQuery) Validate(qc *querycontext.Context) bool {
	result := qc.Execute(query.Request{URI: qc.Config().BaseURI() + "/help", Method: http.MethodGet})
	if !result.OK() || result.StatusCode() != http.StatusOK || !result.HasBody() {
		value := result.Status.String()
		if code := result.StatusCode(); code != 0 {
			value = common.Concatenate(value, " ", strconv.Itoa(code))
		}
		qc.ReportCode(results.CodeHelpQueryFailed, value)
		return false
	}
	if conformance, ok := jsonpointer.Strings(result.Data, "/rdapConformance"); !ok || len(conformance) == 0 {
		qc.ReportCode(results.CodeHelpMissingConformance, "#/rdapConformance")
		return false
	}
	return true
}

func init() {
	if err := rule.RegisterDefaultRule(&descriptor.Descriptor{
		Type:   typeOfHelpQuery,
		Filler: descriptor.ObjectFiller{ValueSource: descriptor.DefaultValue{Value: Rule}},
	}); err != nil {
		common.ErrOutput(err)
	}
}
