package query

import "errors"

var (
	ErrInvalidURI       = errors.New("network/query: Invalid query URI")
	ErrMissingLocation  = errors.New("network/query: Redirect without Location header")
	ErrTooManyRedirects = errors.New("network/query: Too many redirects")
	ErrNoAddress        = errors.New("network/query: No address for any enabled address family")
	ErrNilResolver      = errors.New("network/query: Nil resolver")
)

type UnsupportedSchemeError string

func (e UnsupportedSchemeError) Error() string {
	return "network/query: Unsupported URI scheme " + string(e)
}
