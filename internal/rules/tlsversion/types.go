package tlsversion

import (
	"crypto/tls"
	"github.com/zhouchenh/go-descriptor"
	"github.com/zhouchenh/rdapct/internal/common"
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"github.com/zhouchenh/rdapct/internal/results"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
	"net/url"
	"strings"
)

// TLSVersion checks that every HTTPS hop of the primary query negotiated
// at least MinVersion.
type TLSVersion struct {
	MinVersion uint16
}

var typeOfTLSVersion = descriptor.TypeOfNew(new(*TLSVersion))

func (r *TLSVersion) Type() descriptor.Type {
	return typeOfTLSVersion
}

func (r *TLSVersion) TypeName() string {
	return "tlsVersion"
}

func (r *TLSVersion) GroupName() string {
	return "tigTLSValidation"
}

func (r *TLSVersion) Launch(qc *querycontext.Context) bool {
	u, err := url.Parse(qc.Config().URI)
	return err == nil && strings.EqualFold(u.Scheme, "https")
}

func (r *TLSVersion) Validate(qc *querycontext.Context) bool {
	primary := qc.Primary()
	if primary == nil {
		return true
	}
	ok := true
	for _, hop := range primary.Hops {
		if hop.TLS == nil || hop.TLS.Version >= r.MinVersion {
			continue
		}
		f := results.New(results.CodeTLSVersion, tls.VersionName(hop.TLS.Version))
		f.URI, f.Method, f.HTTPStatus = hop.URI, hop.Method, hop.StatusCode
		qc.Report(f)
		ok = false
	}
	return ok
}

var versions = map[string]uint16{
	"1.0": tls.VersionTLS10,
	"1.1": tls.VersionTLS11,
	"1.2": tls.VersionTLS12,
	"1.3": tls.VersionTLS13,
}

func init() {
	if err := rule.RegisterDefaultRule(&descriptor.Descriptor{
		Type: typeOfTLSVersion,
		Filler: descriptor.Fillers{
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"MinVersion"},
				ValueSource: descriptor.ValueSources{
					descriptor.ObjectAtPath{
						ObjectPath: descriptor.Path{"minVersion"},
						AssignableKind: descriptor.ConvertibleKind{
							Kind: descriptor.KindString,
							ConvertFunction: func(original interface{}) (converted interface{}, ok bool) {
								str, ok := original.(string)
								if !ok {
									return
								}
								version, ok := versions[strings.TrimPrefix(strings.ToLower(str), "tls")]
								if !ok {
									return nil, false
								}
								return version, true
							},
						},
					},
					descriptor.DefaultValue{Value: uint16(tls.VersionTLS12)},
				},
			},
		},
	}); err != nil {
		common.ErrOutput(err)
	}
}
