package httpstatus

import (
	"github.com/zhouchenh/go-descriptor"
	"github.com/zhouchenh/rdapct/internal/common"
	"github.com/zhouchenh/rdapct/internal/config"
	"github.com/zhouchenh/rdapct/internal/network/status"
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"github.com/zhouchenh/rdapct/internal/results"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
	"net/http"
	"strconv"
)

// HTTPStatus checks that the primary query ended with 200, or with 404 for
// lookups and searches.
type HTTPStatus struct{}

var Rule = new(HTTPStatus)

var typeOfHTTPStatus = descriptor.TypeOfNew(&Rule)

func (r *HTTPStatus) Type() descriptor.Type {
	return typeOfHTTPStatus
}

func (r *HTTPStatus) TypeName() string {
	return "httpStatus"
}

func (r *HTTPStatus) GroupName() string {
	return "stdRdapHttpStatusValidation"
}

func (r *HTTPStatus) Launch(qc *querycontext.Context) bool {
	return qc.QueryType() != config.QueryUnknown
}

func (r *HTTPStatus) Validate(qc *querycontext.Context) bool {
	primary := qc.Primary()
	if primary == nil || primary.Terminal() == nil || primary.Status.Transport() || primary.Status == status.TooManyRedirects {
		return true
	}
	code := primary.StatusCode()
	switch {
	case code == http.StatusOK:
		return true
	case code == http.StatusNotFound && qc.QueryType() != config.QueryHelp:
		return true
	}
	qc.ReportCode(results.CodeUnexpectedHTTPStatus, strconv.Itoa(code))
	return false
}

func init() {
	if err := rule.RegisterDefaultRule(&descriptor.Descriptor{
		Type:   typeOfHTTPStatus,
		Filler: descriptor.ObjectFiller{ValueSource: descriptor.DefaultValue{Value: Rule}},
	}); err != nil {
		common.ErrOutput(err)
	}
}
