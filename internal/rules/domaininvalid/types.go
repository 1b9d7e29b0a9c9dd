package domaininvalid

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/zhouchenh/go-descriptor"
	"github.com/zhouchenh/rdapct/internal/common"
	"github.com/zhouchenh/rdapct/internal/config"
	"github.com/zhouchenh/rdapct/internal/network/query"
	"github.com/zhouchenh/rdapct/internal/network/status"
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"github.com/zhouchenh/rdapct/internal/results"
	"github.com/zhouchenh/rdapct/internal/schema"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
	"net/http"
	"strconv"
)

const defaultDomain = "test.invalid"

// DomainInvalid queries a domain that cannot exist. The server must answer
// 404 with an RDAP error body, following redirects only within its own
// origin and never looping.
type DomainInvalid struct {
	Domain string
	// AllowBadRequest also accepts 400, which some profiles permit for
	// names that are not valid in the zone.
	AllowBadRequest bool
}

var typeOfDomainInvalid = descriptor.TypeOfNew(new(*DomainInvalid))

func (r *DomainInvalid) Type() descriptor.Type {
	return typeOfDomainInvalid
}

func (r *DomainInvalid) TypeName() string {
	return "domainInvalid"
}

func (r *DomainInvalid) GroupName() string {
	return "stdRdapDomainInvalidValidation"
}

func (r *DomainInvalid) Launch(qc *querycontext.Context) bool {
	return qc.QueryType() == config.QueryDomain
}

func (r *DomainInvalid) Validate(qc *querycontext.Context) bool {
	result := qc.Execute(query.Request{
		URI:    qc.Config().BaseURI() + "/domain/" + r.Domain,
		Method: http.MethodGet,
		Policy: query.SameOrigin,
	})
	switch {
	case result.Loop || result.Status == status.TooManyRedirects:
		qc.ReportCode(results.CodeInvalidDomainRedirectLoop, result.URI())
		return false
	case result.Blocked != "":
		qc.ReportCode(results.CodeInvalidDomainCrossOrigin, result.Blocked)
		return false
	case result.Status.Transport() || result.Terminal() == nil:
		qc.ReportCode(results.CodeInvalidDomainStatus, result.Status.String())
		return false
	}
	code := result.StatusCode()
	if code != http.StatusNotFound && !(r.AllowBadRequest && code == http.StatusBadRequest) {
		qc.ReportCode(results.CodeInvalidDomainStatus, strconv.Itoa(code))
		return false
	}
	body := result.Body()
	if len(body) == 0 {
		return true
	}
	if !query.IsRDAPContentType(result.Terminal().Header.Get("Content-Type")) {
		qc.ReportCode(results.CodeInvalidDomainNotRDAPContent, result.Terminal().Header.Get("Content-Type"))
		return false
	}
	document, err := qc.Parse(body)
	if err != nil {
		qc.ReportCode(results.CodeInvalidDomainNotRDAPContent, err.Error())
		return false
	}
	validator, err := qc.Schema(schema.Error, func() (*jsonschema.Schema, error) {
		return schema.Compile(schema.Error, qc.Dataset())
	})
	if err != nil {
		qc.ReportCode(results.CodeSchemaUnavailable, schema.Error)
		return false
	}
	if violations := schema.Violations(validator.Validate(document)); len(violations) > 0 {
		qc.ReportCode(results.CodeInvalidDomainNotRDAPContent, violations[0].String())
		return false
	}
	return true
}

func init() {
	if err := rule.RegisterDefaultRule(&descriptor.Descriptor{
		Type: typeOfDomainInvalid,
		Filler: descriptor.Fillers{
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"Domain"},
				ValueSource: descriptor.ValueSources{
					descriptor.ObjectAtPath{
						ObjectPath: descriptor.Path{"domain"},
						AssignableKind: descriptor.ConvertibleKind{
							Kind: descriptor.KindString,
							ConvertFunction: func(original interface{}) (converted interface{}, ok bool) {
								str, ok := original.(string)
								if !ok {
									return
								}
								if ok = common.IsDomainName(str); !ok {
									return
								}
								return config.NormalizeDomain(str), true
							},
						},
					},
					descriptor.DefaultValue{Value: defaultDomain},
				},
			},
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"AllowBadRequest"},
				ValueSource: descriptor.ValueSources{
					descriptor.ObjectAtPath{
						ObjectPath:     descriptor.Path{"allowBadRequest"},
						AssignableKind: descriptor.KindBool,
					},
					descriptor.DefaultValue{Value: false},
				},
			},
		},
	}); err != nil {
		common.ErrOutput(err)
	}
}
