package querycontext

import (
	"github.com/zhouchenh/rdapct/internal/network/query"
	"github.com/zhouchenh/rdapct/internal/network/resolver"
	"github.com/zhouchenh/rdapct/internal/network/status"
	"github.com/zhouchenh/rdapct/internal/results"
	"strconv"
)

var statusCodes = map[status.Status]int{
	status.ConnectionFailed:   results.CodeConnectionFailed,
	status.HandshakeFailed:    results.CodeHandshakeFailed,
	status.InvalidCertificate: results.CodeInvalidCertificate,
	status.RevokedCertificate: results.CodeRevokedCertificate,
	status.ExpiredCertificate: results.CodeExpiredCertificate,
	status.CertificateError:   results.CodeCertificateError,
	status.TooManyRedirects:   results.CodeTooManyRedirects,
	status.HTTPError:          results.CodeHTTPError,
	status.ResponseInvalid:    results.CodeResponseInvalid,
	status.WrongContentType:   results.CodeWrongContentType,
	status.NetworkSendFail:    results.CodeNetworkSendFail,
	status.NetworkReceiveFail: results.CodeNetworkReceiveFail,
	status.UnknownHost:        results.CodeUnknownHost,
}

// StatusCode returns the finding code of a classified status.
func StatusCode(s status.Status) (int, bool) {
	code, ok := statusCodes[s]
	return code, ok
}

// NetworkFindings converts the classification of a query result into
// findings: at most one for the status, plus one per missing address family.
func NetworkFindings(result *query.Result) []results.Finding {
	if result == nil {
		return nil
	}
	var findings []results.Finding
	for _, m := range result.MissingFamilies {
		code := results.CodeNoIPv4
		if m.Family == resolver.IPv6 {
			code = results.CodeNoIPv6
		}
		findings = append(findings, withRequest(results.New(code, m.Host), result, m.URI))
	}
	code, ok := StatusCode(result.Status)
	if !ok {
		return findings
	}
	value := result.URI()
	switch result.Status {
	case status.WrongContentType:
		if hop := result.Terminal(); hop != nil {
			value = hop.Header.Get("Content-Type")
		}
	case status.TooManyRedirects:
		value = strconv.Itoa(result.Redirects())
	case status.ConnectionFailed, status.NetworkReceiveFail, status.NetworkSendFail:
		if result.Fault != status.NoFault {
			value = string(result.Fault)
		}
	}
	return append(findings, withRequest(results.New(code, value), result, result.URI()))
}

func withRequest(f results.Finding, result *query.Result, uri string) results.Finding {
	f.URI = uri
	f.Method = result.Request.Method
	f.HTTPStatus = result.StatusCode()
	return f
}
