package ipaddresses

import (
	"github.com/zhouchenh/go-descriptor"
	"github.com/zhouchenh/rdapct/internal/common"
	"github.com/zhouchenh/rdapct/internal/dataset"
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"github.com/zhouchenh/rdapct/internal/results"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
	"net"
	"net/url"
)

// IPAddresses checks that no address the server host resolves to lies in a
// special-purpose block of the IANA registries.
type IPAddresses struct{}

var Rule = new(IPAddresses)

var typeOfIPAddresses = descriptor.TypeOfNew(&Rule)

func (r *IPAddresses) Type() descriptor.Type {
	return typeOfIPAddresses
}

func (r *IPAddresses) TypeName() string {
	return "ipAddresses"
}

func (r *IPAddresses) GroupName() string {
	return "tigIPv4IPv6Validation"
}

func (r *IPAddresses) Launch(qc *querycontext.Context) bool {
	return qc.Config().GTLDRegistry || qc.Config().GTLDRegistrar
}

func (r *IPAddresses) Validate(qc *querycontext.Context) bool {
	u, err := url.Parse(qc.Config().URI)
	if err != nil {
		return true
	}
	set := qc.Addresses(u.Hostname())
	ok := check(qc, set.V4, dataset.SpecialIPv4Addresses, results.CodeReservedIPv4)
	return check(qc, set.V6, dataset.SpecialIPv6Addresses, results.CodeReservedIPv6) && ok
}

func check(qc *querycontext.Context, ips []net.IP, kind dataset.Kind, code int) bool {
	ok := true
	for _, ip := range ips {
		if qc.Dataset().Contains(kind, ip.String()) {
			qc.ReportCode(code, ip.String())
			ok = false
		}
	}
	return ok
}

func init() {
	if err := rule.RegisterDefaultRule(&descriptor.Descriptor{
		Type:   typeOfIPAddresses,
		Filler: descriptor.ObjectFiller{ValueSource: descriptor.DefaultValue{Value: Rule}},
	}); err != nil {
		common.ErrOutput(err)
	}
}
