package objectclass

import (
	"github.com/openrdap/rdap"
	"github.com/zhouchenh/go-descriptor"
	"github.com/zhouchenh/rdapct/internal/common"
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"github.com/zhouchenh/rdapct/internal/results"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
	"net/http"
)

// ObjectClassName decodes the primary response into its typed RDAP object and
// checks the object class against the query type and the rdapConformance
// declaration.
type ObjectClassName struct{}

var Rule = new(ObjectClassName)

var typeOfObjectClassName = descriptor.TypeOfNew(&Rule)

func (r *ObjectClassName) Type() descriptor.Type {
	return typeOfObjectClassName
}

func (r *ObjectClassName) TypeName() string {
	return "objectClassName"
}

func (r *ObjectClassName) GroupName() string {
	return "stdRdapConformanceValidation"
}

func (r *ObjectClassName) NeedsBody() bool {
	return true
}

func (r *ObjectClassName) Launch(qc *querycontext.Context) bool {
	return qc.QueryType().IsLookup() || qc.QueryType().IsSearch()
}

func (r *ObjectClassName) Validate(qc *querycontext.Context) bool {
	primary := qc.Primary()
	if primary.StatusCode() != http.StatusOK {
		return true
	}
	// rdap.Decoder only accepts raw JSON, so the typed decode is a second pass
	// over the body. Field types are checked here, not by the cached parse.
	decoded, err := rdap.NewDecoder(primary.Body()).Decode()
	if err != nil {
		qc.ReportCode(results.CodeUndecodableResponse, err.Error())
		return false
	}
	class, conformance := describe(decoded)
	ok := true
	if want := qc.QueryType().ObjectClassName(); want != "" && class != want {
		qc.ReportCode(results.CodeObjectClassMismatch, class)
		ok = false
	}
	switch {
	case len(conformance) == 0:
		qc.ReportCode(results.CodeMissingConformance, "#/rdapConformance")
		ok = false
	case !contains(conformance, "rdap_level_0"):
		qc.ReportCode(results.CodeMissingRdapLevelZero, "#/rdapConformance")
		ok = false
	}
	return ok
}

func describe(decoded interface{}) (class string, conformance []string) {
	switch v := decoded.(type) {
	case *rdap.Domain:
		return v.ObjectClassName, v.Conformance
	case *rdap.Nameserver:
		return v.ObjectClassName, v.Conformance
	case *rdap.Entity:
		return v.ObjectClassName, v.Conformance
	case *rdap.Autnum:
		return v.ObjectClassName, v.Conformance
	case *rdap.IPNetwork:
		return v.ObjectClassName, v.Conformance
	case *rdap.DomainSearchResults:
		return "", v.Conformance
	case *rdap.NameserverSearchResults:
		return "", v.Conformance
	case *rdap.EntitySearchResults:
		return "", v.Conformance
	case *rdap.Help:
		return "", v.Conformance
	case *rdap.Error:
		return "", v.Conformance
	}
	return "", nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func init() {
	if err := rule.RegisterDefaultRule(&descriptor.Descriptor{
		Type:   typeOfObjectClassName,
		Filler: descriptor.ObjectFiller{ValueSource: descriptor.DefaultValue{Value: Rule}},
	}); err != nil {
		common.ErrOutput(err)
	}
}
