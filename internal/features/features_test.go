package features

import (
	"crypto/tls"
	"errors"
	"github.com/zhouchenh/rdapct/internal/rules/declarative"
	"github.com/zhouchenh/rdapct/internal/rules/domaininvalid"
	"github.com/zhouchenh/rdapct/internal/rules/schemavalidation"
	"github.com/zhouchenh/rdapct/internal/rules/tlsversion"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
	"testing"
)

func TestDefaultRuleSet(t *testing.T) {
	rules, err := rule.Build(nil)
	if err != nil {
		t.Fatalf("build defaults: %v", err)
	}
	want := []string{
		"domainCaseFolding", "domainInvalid", "headStatus", "helpQuery", "httpStatus",
		"ipAddresses", "objectClassName", "queryFailure", "schema", "tlsVersion",
	}
	if len(rules) != len(want) {
		t.Fatalf("expected %d default rules, got %d", len(want), len(rules))
	}
	for i, r := range rules {
		if r.TypeName() != want[i] {
			t.Fatalf("rule #%d: expected %s, got %s", i, want[i], r.TypeName())
		}
		if r.GroupName() == "" {
			t.Fatalf("rule %s has no group", r.TypeName())
		}
	}
}

func TestRegisteredTypeNamesIncludeDeclarative(t *testing.T) {
	for _, name := range rule.RegisteredTypeNames() {
		if name == "jsonPointer" {
			return
		}
	}
	t.Fatalf("jsonPointer is not registered")
}

func TestBuildFromSpecs(t *testing.T) {
	rules, err := rule.Build([]interface{}{
		"httpStatus",
		map[string]interface{}{"type": "schema", "config": map[string]interface{}{"maxFindings": float64(5)}},
		map[string]interface{}{"type": "domainInvalid", "config": map[string]interface{}{"domain": "nothing.invalid", "allowBadRequest": true}},
		map[string]interface{}{"type": "tlsVersion", "config": map[string]interface{}{"minVersion": "1.3"}},
		map[string]interface{}{"type": "jsonPointer", "config": map[string]interface{}{
			"pointer": "#/port43",
			"shape":   "string",
			"code":    float64(-65300),
			"message": "port43 must be a string",
			"group":   "port43Validation",
		}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(rules) != 5 {
		t.Fatalf("expected 5 rules, got %d", len(rules))
	}
	if rules[0].TypeName() != "httpStatus" {
		t.Fatalf("expected httpStatus first, got %s", rules[0].TypeName())
	}
	if s, ok := rules[1].(*schemavalidation.SchemaValidation); !ok || s.MaxFindings != 5 {
		t.Fatalf("unexpected schema rule %#v", rules[1])
	}
	if d, ok := rules[2].(*domaininvalid.DomainInvalid); !ok || d.Domain != "nothing.invalid" || !d.AllowBadRequest {
		t.Fatalf("unexpected domainInvalid rule %#v", rules[2])
	}
	if v, ok := rules[3].(*tlsversion.TLSVersion); !ok || v.MinVersion != tls.VersionTLS13 {
		t.Fatalf("unexpected tlsVersion rule %#v", rules[3])
	}
	p, ok := rules[4].(*declarative.JSONPointer)
	if !ok {
		t.Fatalf("unexpected declarative rule %#v", rules[4])
	}
	if p.Pointer != "/port43" || p.Shape != "string" || p.Code != -65300 || p.GroupName() != "port43Validation" {
		t.Fatalf("unexpected declarative config %+v", p)
	}
}

func TestBuildRejectsBadSpecs(t *testing.T) {
	cases := [][]interface{}{
		{"noSuchRule"},
		{map[string]interface{}{"type": "noSuchRule"}},
		{map[string]interface{}{"config": map[string]interface{}{}}},
		{map[string]interface{}{"type": "jsonPointer", "config": map[string]interface{}{"shape": "string"}}},
		{map[string]interface{}{"type": "jsonPointer", "config": map[string]interface{}{"pointer": "port43", "code": float64(-1)}}},
		{"httpStatus", float64(3)},
	}
	for i, specs := range cases {
		_, err := rule.Build(specs)
		var bad rule.BadRuleConfigError
		if !errors.As(err, &bad) {
			t.Fatalf("case %d: expected BadRuleConfigError, got %v", i, err)
		}
		if int(bad) != len(specs)-1 {
			t.Fatalf("case %d: expected index %d, got %d", i, len(specs)-1, int(bad))
		}
	}
}
