package casefolding

import (
	"github.com/zhouchenh/go-descriptor"
	"github.com/zhouchenh/rdapct/internal/common"
	"github.com/zhouchenh/rdapct/internal/config"
	"github.com/zhouchenh/rdapct/internal/network/query"
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"github.com/zhouchenh/rdapct/internal/results"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
	"golang.org/x/net/idna"
	"net/http"
	"strconv"
	"strings"
	"unicode"
)

// DomainCaseFolding queries the domain again with mixed-case labels. Domain
// names are case-insensitive, so the terminal status must not change.
type DomainCaseFolding struct{}

var Rule = new(DomainCaseFolding)

var typeOfDomainCaseFolding = descriptor.TypeOfNew(&Rule)

func (r *DomainCaseFolding) Type() descriptor.Type {
	return typeOfDomainCaseFolding
}

func (r *DomainCaseFolding) TypeName() string {
	return "domainCaseFolding"
}

func (r *DomainCaseFolding) GroupName() string {
	return "rdapProfileDomainCaseFoldingValidation"
}

func (r *DomainCaseFolding) Launch(qc *querycontext.Context) bool {
	return qc.QueryType() == config.QueryDomain && (qc.Config().ProfileFeb2019 || qc.Config().ProfileFeb2024)
}

func (r *DomainCaseFolding) Validate(qc *querycontext.Context) bool {
	primary := qc.Primary()
	if primary == nil || primary.Terminal() == nil || primary.Status.Transport() {
		return true
	}
	folded, ok := Fold(qc.Object())
	if !ok {
		return true
	}
	uri := qc.Config().BaseURI() + "/domain/" + folded
	result := qc.Execute(query.Request{URI: uri, Method: http.MethodGet})
	if result.StatusCode() == primary.StatusCode() {
		return true
	}
	value := result.Status.String()
	if result.Terminal() != nil {
		value = strconv.Itoa(result.StatusCode())
	}
	qc.ReportCode(results.CodeCaseFoldingMismatch, common.Concatenate(uri, " ", value))
	return false
}

// Fold alternates the case of the ASCII letters of domain. It reports false
// when domain has no letter to fold or the folded name is not the same
// domain.
func Fold(domain string) (string, bool) {
	var b strings.Builder
	upper := false
	changed := false
	for _, c := range domain {
		if c < unicode.MaxASCII && unicode.IsLetter(c) {
			if upper {
				c = unicode.ToUpper(c)
				changed = true
			} else {
				c = unicode.ToLower(c)
			}
			upper = !upper
		}
		b.WriteRune(c)
	}
	folded := b.String()
	if !changed {
		return "", false
	}
	canonical, err := idna.Lookup.ToASCII(folded)
	if err != nil || !strings.EqualFold(canonical, domain) {
		return "", false
	}
	return folded, true
}

func init() {
	if err := rule.RegisterDefaultRule(&descriptor.Descriptor{
		Type:   typeOfDomainCaseFolding,
		Filler: descriptor.ObjectFiller{ValueSource: descriptor.DefaultValue{Value: Rule}},
	}); err != nil {
		common.ErrOutput(err)
	}
}
