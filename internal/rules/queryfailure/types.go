package queryfailure

import (
	"github.com/zhouchenh/go-descriptor"
	"github.com/zhouchenh/rdapct/internal/common"
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
)

// QueryFailure rolls the classification of the primary query into the
// network group. The finding itself is recorded when the query runs.
type QueryFailure struct{}

var Rule = new(QueryFailure)

var typeOfQueryFailure = descriptor.TypeOfNew(&Rule)

func (r *QueryFailure) Type() descriptor.Type {
	return typeOfQueryFailure
}

func (r *QueryFailure) TypeName() string {
	return "queryFailure"
}

func (r *QueryFailure) GroupName() string {
	return "stdRdapNetworkValidation"
}

func (r *QueryFailure) Launch(*querycontext.Context) bool {
	return true
}

func (r *QueryFailure) Validate(qc *querycontext.Context) bool {
	primary := qc.Primary()
	return primary == nil || primary.OK()
}

func init() {
	if err := rule.RegisterDefaultRule(&descriptor.Descriptor{
		Type:   typeOfQueryFailure,
		Filler: descriptor.ObjectFiller{ValueSource: descriptor.DefaultValue{Value: Rule}},
	}); err != nil {
		common.ErrOutput(err)
	}
}
