package config

import (
	"errors"
	"github.com/zhouchenh/rdapct/internal/dataset"
	"strings"
	"testing"
	"time"
)

const minimalConfig = `{
  "uri": "https://rdap.example.com/domain/example.com"
}`

func noEnv(string) string { return "" }

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(strings.NewReader(minimalConfig), noEnv)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if config.Timeout != DefaultTimeout {
		t.Fatalf("expected default timeout, got %v", config.Timeout)
	}
	if config.MaxRedirects != DefaultMaxRedirects {
		t.Fatalf("expected default max redirects, got %d", config.MaxRedirects)
	}
	if !config.UseIPv4 || !config.UseIPv6 {
		t.Fatalf("expected both address families enabled by default")
	}
	if config.Parallelism != DefaultParallelism {
		t.Fatalf("expected default parallelism, got %d", config.Parallelism)
	}
}

func TestLoadConfigFields(t *testing.T) {
	json := `{
  "uri": "https://rdap.example.com/domain/example.com",
  "timeout": "2.5",
  "maxRedirects": 1,
  "useIPv6": false,
  "gtldRegistry": true,
  "customDns": "8.8.8.8",
  "probeRate": 5,
  "datasets": {"ipv4SpecialRegistry": ["10.0.0.0/8"]},
  "rules": ["httpStatus", {"type": "schema", "config": {}}]
}`
	config, err := LoadConfig(strings.NewReader(json), noEnv)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if config.Timeout != 2500*time.Millisecond {
		t.Fatalf("expected 2.5s timeout, got %v", config.Timeout)
	}
	if config.MaxRedirects != 1 || config.UseIPv6 || !config.GTLDRegistry {
		t.Fatalf("unexpected config %+v", config)
	}
	if config.CustomDNS != "8.8.8.8" || config.ProbeRate != 5 {
		t.Fatalf("unexpected config %+v", config)
	}
	if got := config.Datasets[dataset.SpecialIPv4Addresses]; len(got) != 1 || got[0] != "10.0.0.0/8" {
		t.Fatalf("unexpected datasets %v", config.Datasets)
	}
	if len(config.Rules) != 2 {
		t.Fatalf("expected 2 raw rule specs, got %d", len(config.Rules))
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvURI:       "https://other.example/help",
		EnvCustomDNS: "1.1.1.1:5353",
		EnvTimeout:   "750ms",
	}
	config, err := LoadConfig(strings.NewReader(minimalConfig), func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if config.URI != env[EnvURI] || config.CustomDNS != env[EnvCustomDNS] || config.Timeout != 750*time.Millisecond {
		t.Fatalf("env overrides not applied: %+v", config)
	}
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	cases := map[string]error{
		`{}`:                                                                                      ErrMissingURI,
		`{"uri": "ftp://rdap.example.com/help"}`:                                                  ErrInvalidURI,
		`{"uri": "https://rdap.example.com/help", "useIPv4": false, "useIPv6": false}`:            ErrNoAddressFamily,
		`{"uri": "https://rdap.example.com/help", "gtldRegistry": true, "gtldRegistrar": true}`:   ErrRegistryAndRegistrar,
		`{"uri": "https://rdap.example.com/help", "customDns": "invalid.dns.server"}`:             ErrInvalidCustomDNS,
		`{"uri": "https://rdap.example.com/help", "maxRedirects": -1}`:                            ErrInvalidMaxRedirects,
		`{"uri": "https://rdap.example.com/help", "timeout": 0}`:                                  ErrInvalidTimeout,
	}
	for json, want := range cases {
		_, err := LoadConfig(strings.NewReader(json), noEnv)
		if !errors.Is(err, want) {
			t.Fatalf("%s: expected %v, got %v", json, want, err)
		}
		if !IsBadInput(err) {
			t.Fatalf("%s: expected bad input classification for %v", json, err)
		}
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("{invalid"), noEnv)
	if err == nil {
		t.Fatalf("expected JSON parse error")
	}
}

func TestCustomDNSValidation(t *testing.T) {
	base := &Config{URI: "https://rdap.example.com/help", Timeout: time.Second, UseIPv4: true, Parallelism: 1}
	if err := base.Clone(func(c *Config) { c.CustomDNS = "8.8.8.8" }).Validate(); err != nil {
		t.Fatalf("expected 8.8.8.8 to be accepted, got %v", err)
	}
	if err := base.Clone(func(c *Config) { c.CustomDNS = "invalid.dns.server" }).Validate(); !errors.Is(err, ErrInvalidCustomDNS) {
		t.Fatalf("expected invalid.dns.server to be rejected, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := &Config{Datasets: map[dataset.Kind][]string{dataset.DomainStatus: {"active"}}}
	clone := original.Clone(func(c *Config) { c.URI = "https://x.example/help" })
	clone.Datasets[dataset.DomainStatus][0] = "inactive"
	if original.Datasets[dataset.DomainStatus][0] != "active" || original.URI != "" {
		t.Fatalf("clone shares state with original")
	}
}

func TestParseQueryType(t *testing.T) {
	cases := []struct {
		uri    string
		t      QueryType
		object string
	}{
		{"https://rdap.example.com/rdap/domain/EXAMPLE.com", QueryDomain, "example.com"},
		{"https://rdap.example.com/domain/b%C3%BCcher.example", QueryDomain, "xn--bcher-kva.example"},
		{"https://rdap.example.com/nameserver/ns1.example.com.", QueryNameserver, "ns1.example.com"},
		{"https://rdap.example.com/entity/ABC-123", QueryEntity, "ABC-123"},
		{"https://rdap.example.com/autnum/64496", QueryAutnum, "64496"},
		{"https://rdap.example.com/ip/192.0.2.0/24", QueryIPNetwork, "192.0.2.0/24"},
		{"https://rdap.example.com/ip/192.0.2.1", QueryIPNetwork, "192.0.2.1"},
		{"https://rdap.example.com/help", QueryHelp, ""},
		{"https://rdap.example.com/domains?name=ex*", QueryDomainSearch, "name=ex*"},
		{"https://rdap.example.com/unknown/x", QueryUnknown, ""},
	}
	for _, c := range cases {
		gotType, gotObject := ParseQueryType(c.uri)
		if gotType != c.t || gotObject != c.object {
			t.Fatalf("%s: expected (%q, %q), got (%q, %q)", c.uri, c.t, c.object, gotType, gotObject)
		}
	}
}

func TestBaseURI(t *testing.T) {
	cases := map[string]string{
		"https://rdap.example.com/rdap/domain/example.com": "https://rdap.example.com/rdap",
		"https://rdap.example.com/domain/example.com":      "https://rdap.example.com",
		"https://rdap.example.com:8443/v1/ip/192.0.2.0/24": "https://rdap.example.com:8443/v1",
		"https://rdap.example.com/help":                    "https://rdap.example.com",
		"https://rdap.example.com/rdap/domains?name=ex*":   "https://rdap.example.com/rdap",
		"https://rdap.example.com/rdap/unknown/x":          "https://rdap.example.com/rdap/unknown/x",
	}
	for in, want := range cases {
		if got := BaseURI(in); got != want {
			t.Fatalf("BaseURI(%q): expected %q, got %q", in, want, got)
		}
	}
}
