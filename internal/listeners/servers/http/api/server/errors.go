package server

import "errors"

var (
	ErrNilValidator      = errors.New("listeners/servers/http/api/server: nil validator")
	ErrMissingURI        = errors.New("listeners/servers/http/api/server: missing uri parameter")
	ErrUnsupportedMethod = errors.New("listeners/servers/http/api/server: unsupported method")
	ErrInvalidListen     = errors.New("listeners/servers/http/api/server: invalid listen address")
)
