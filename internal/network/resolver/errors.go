package resolver

type InvalidCustomResolverError string

func (e InvalidCustomResolverError) Error() string {
	return "network/resolver: Custom DNS resolver " + string(e) + " is not a literal IPv4 or IPv6 address"
}

// UnreachableServerError is a custom resolver that did not answer at all.
type UnreachableServerError struct {
	Server string
	Err    error
}

func (e *UnreachableServerError) Error() string {
	return "network/resolver: Custom DNS resolver " + e.Server + " did not answer: " + e.Err.Error()
}

func (e *UnreachableServerError) Unwrap() error {
	return e.Err
}
