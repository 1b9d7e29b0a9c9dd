package query

import (
	"net/url"
	"strings"
)

func parseQueryURI(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || u.Hostname() == "" {
		return nil, ErrInvalidURI
	}
	if err := checkScheme(u); err != nil {
		return nil, err
	}
	return u, nil
}

func checkScheme(u *url.URL) error {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return nil
	}
	return UnsupportedSchemeError(u.Scheme)
}

// nextURI resolves location against the current hop with its user info and
// fragment removed, and validates the result.
func nextURI(current *url.URL, location string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return nil, ErrInvalidURI
	}
	base := *current
	base.User = nil
	base.Fragment = ""
	base.RawFragment = ""
	next := base.ResolveReference(ref)
	next.User = nil
	next.Fragment = ""
	next.RawFragment = ""
	if next.Hostname() == "" {
		return nil, ErrInvalidURI
	}
	if err := checkScheme(next); err != nil {
		return nil, err
	}
	return next, nil
}
