package config

import (
	"golang.org/x/net/idna"
	"net/url"
	"strings"
)

type QueryType string

const (
	QueryDomain           QueryType = "domain"
	QueryNameserver       QueryType = "nameserver"
	QueryEntity           QueryType = "entity"
	QueryAutnum           QueryType = "autnum"
	QueryIPNetwork        QueryType = "ip network"
	QueryHelp             QueryType = "help"
	QueryDomainSearch     QueryType = "domains"
	QueryNameserverSearch QueryType = "nameservers"
	QueryEntitySearch     QueryType = "entities"
	QueryUnknown          QueryType = ""
)

// ObjectClassName is the objectClassName an RDAP server returns for a lookup
// of this type. Searches and help have none.
func (t QueryType) ObjectClassName() string {
	switch t {
	case QueryDomain:
		return "domain"
	case QueryNameserver:
		return "nameserver"
	case QueryEntity:
		return "entity"
	case QueryAutnum:
		return "autnum"
	case QueryIPNetwork:
		return "ip network"
	}
	return ""
}

func (t QueryType) IsLookup() bool {
	return t.ObjectClassName() != ""
}

func (t QueryType) IsSearch() bool {
	return t == QueryDomainSearch || t == QueryNameserverSearch || t == QueryEntitySearch
}

var lookupSegments = map[string]QueryType{
	"domain":     QueryDomain,
	"nameserver": QueryNameserver,
	"entity":     QueryEntity,
	"autnum":     QueryAutnum,
	"ip":         QueryIPNetwork,
}

var searchSegments = map[string]QueryType{
	"domains":     QueryDomainSearch,
	"nameservers": QueryNameserverSearch,
	"entities":    QueryEntitySearch,
}

// QueryType derives the query type and its object from the URI path. Domain
// and nameserver objects are returned as lowercase A-labels.
func (c *Config) QueryType() (QueryType, string) {
	return ParseQueryType(c.URI)
}

func ParseQueryType(uri string) (QueryType, string) {
	t, object, _ := parse(uri)
	return t, object
}

// BaseURI is the URI with the query path removed, without a trailing slash.
// Secondary queries such as /help are built on it.
func (c *Config) BaseURI() string {
	return BaseURI(c.URI)
}

func BaseURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	_, _, n := parse(uri)
	segments := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	if n > len(segments) {
		n = len(segments)
	}
	base := &url.URL{Scheme: u.Scheme, Host: u.Host}
	if kept := segments[:len(segments)-n]; len(kept) > 0 && kept[0] != "" {
		base.RawPath = "/" + strings.Join(kept, "/")
		base.Path, _ = url.PathUnescape(base.RawPath)
	}
	return base.String()
}

// parse returns the query type, its object and how many trailing path
// segments form the query.
func parse(uri string) (QueryType, string, int) {
	u, err := url.Parse(uri)
	if err != nil {
		return QueryUnknown, "", 0
	}
	segments := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	for i := range segments {
		if s, err := url.PathUnescape(segments[i]); err == nil {
			segments[i] = s
		}
	}
	n := len(segments)
	if n == 0 || segments[0] == "" {
		return QueryUnknown, "", 0
	}
	last := strings.ToLower(segments[n-1])
	if last == "help" {
		return QueryHelp, "", 1
	}
	if t, ok := searchSegments[last]; ok {
		return t, u.RawQuery, 1
	}
	// ip lookups may carry a prefix length: /ip/192.0.2.0/24
	if n >= 3 && strings.ToLower(segments[n-3]) == "ip" {
		return QueryIPNetwork, segments[n-2] + "/" + segments[n-1], 3
	}
	if n < 2 {
		return QueryUnknown, "", 0
	}
	t, ok := lookupSegments[strings.ToLower(segments[n-2])]
	if !ok {
		return QueryUnknown, "", 0
	}
	object := segments[n-1]
	if t == QueryDomain || t == QueryNameserver {
		object = NormalizeDomain(object)
	}
	return t, object, 2
}

// NormalizeDomain converts a domain to its lowercase A-label form. Names that
// cannot be converted are only lowercased.
func NormalizeDomain(name string) string {
	name = strings.TrimSuffix(name, ".")
	if ascii, err := idna.Lookup.ToASCII(name); err == nil {
		return strings.ToLower(ascii)
	}
	return strings.ToLower(name)
}
