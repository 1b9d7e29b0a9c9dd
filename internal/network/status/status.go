package status

// Status is the terminal classification of one query. At most one status is
// reported per attempt.
type Status int

const (
	Success            Status = 0
	ConnectionFailed   Status = 10
	HandshakeFailed    Status = 11
	InvalidCertificate Status = 12
	RevokedCertificate Status = 13
	ExpiredCertificate Status = 14
	CertificateError   Status = 15
	TooManyRedirects   Status = 16
	HTTPError          Status = 17
	ResponseInvalid    Status = 18
	WrongContentType   Status = 19
	NetworkSendFail    Status = 20
	NetworkReceiveFail Status = 21
	UnknownHost        Status = 22
)

var names = map[Status]string{
	Success:            "SUCCESS",
	ConnectionFailed:   "CONNECTION_FAILED",
	HandshakeFailed:    "HANDSHAKE_FAILED",
	InvalidCertificate: "INVALID_CERTIFICATE",
	RevokedCertificate: "REVOKED_CERTIFICATE",
	ExpiredCertificate: "EXPIRED_CERTIFICATE",
	CertificateError:   "CERTIFICATE_ERROR",
	TooManyRedirects:   "TOO_MANY_REDIRECTS",
	HTTPError:          "HTTP_ERROR",
	ResponseInvalid:    "RESPONSE_INVALID",
	WrongContentType:   "WRONG_CONTENT_TYPE",
	NetworkSendFail:    "NETWORK_SEND_FAIL",
	NetworkReceiveFail: "NETWORK_RECEIVE_FAIL",
	UnknownHost:        "UNKNOWN_HOST",
}

func (s Status) String() string {
	if n, ok := names[s]; ok {
		return n
	}
	return "UNKNOWN"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Transport reports whether the status means no usable HTTP exchange took
// place, so there is no response body to inspect.
func (s Status) Transport() bool {
	switch s {
	case Success, WrongContentType, ResponseInvalid, TooManyRedirects, HTTPError:
		return false
	}
	return true
}

// Fault refines NetworkReceiveFail by the shape of the broken response.
type Fault string

const (
	NoFault   Fault = ""
	Empty     Fault = "empty"
	Truncated Fault = "truncated"
	Reset     Fault = "reset"
	Garbled   Fault = "garbled"
	Timeout   Fault = "timeout"
)
