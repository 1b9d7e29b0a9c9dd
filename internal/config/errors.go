package config

import (
	"errors"
)

var (
	ErrBadConfig            = errors.New("config: Bad config")
	ErrMissingURI           = MissingRequiredConfigError("uri")
	ErrNoAddressFamily      = ConflictingConfigError("useIPv4 and useIPv6 cannot both be disabled")
	ErrRegistryAndRegistrar = ConflictingConfigError("gtldRegistry and gtldRegistrar are mutually exclusive")
	ErrThinWithoutRegistry  = ConflictingConfigError("thinRegistry requires gtldRegistry")
	ErrInvalidURI           = InvalidValueError("uri")
	ErrInvalidTimeout       = InvalidValueError("timeout")
	ErrInvalidMaxRedirects  = InvalidValueError("maxRedirects")
	ErrInvalidCustomDNS     = InvalidValueError("customDns")
	ErrUnreachableCustomDNS = UnreachableServerError("customDns")
	ErrInvalidParallelism   = InvalidValueError("parallelism")
	ErrInvalidProbeRate     = InvalidValueError("probeRate")
	ErrProfile2019And2024   = ConflictingConfigError("profile versions 2019 and 2024 are mutually exclusive")
)

type MissingRequiredConfigError string

func (e MissingRequiredConfigError) Error() string {
	return "config: Missing required config for " + string(e)
}

type InvalidValueError string

func (e InvalidValueError) Error() string {
	return "config: Invalid value for " + string(e)
}

type ConflictingConfigError string

func (e ConflictingConfigError) Error() string {
	return "config: " + string(e)
}

type UnreachableServerError string

func (e UnreachableServerError) Error() string {
	return "config: No answer from the server of " + string(e)
}

// IsBadInput reports whether err is a configuration problem, which ends a run
// before any network traffic.
func IsBadInput(err error) bool {
	var missing MissingRequiredConfigError
	var invalid InvalidValueError
	var conflicting ConflictingConfigError
	var unreachable UnreachableServerError
	return errors.Is(err, ErrBadConfig) || errors.As(err, &missing) || errors.As(err, &invalid) || errors.As(err, &conflicting) || errors.As(err, &unreachable)
}
