package results

// Stable finding codes. A code names one logical violation no matter which
// rule raised it.
const (
	CodeConnectionFailed   = -13007
	CodeHandshakeFailed    = -13008
	CodeInvalidCertificate = -13009
	CodeRevokedCertificate = -13010
	CodeExpiredCertificate = -13011
	CodeCertificateError   = -13012
	CodeTooManyRedirects   = -13013
	CodeHTTPError          = -13014
	CodeResponseInvalid    = -13015
	CodeWrongContentType   = -13016
	CodeNetworkSendFail    = -13017
	CodeNetworkReceiveFail = -13018
	CodeUnknownHost        = -13019

	CodeUnexpectedHTTPStatus = -13002
	CodeHeadStatusMismatch   = -13020

	CodeSchemaViolation   = -12100
	CodeSchemaUnavailable = -12101

	CodeObjectClassMismatch  = -12200
	CodeMissingConformance   = -12201
	CodeUndecodableResponse  = -12202
	CodeMissingRdapLevelZero = -12203

	CodeCaseFoldingMismatch = -10403

	CodeTLSVersion = -20100

	CodeReservedIPv4 = -20300
	CodeReservedIPv6 = -20301

	CodeNoIPv4 = -20400
	CodeNoIPv6 = -20401

	CodeHelpQueryFailed        = -20700
	CodeHelpMissingConformance = -20701

	CodeInvalidDomainStatus         = -65300
	CodeInvalidDomainRedirectLoop   = -65301
	CodeInvalidDomainCrossOrigin    = -65302
	CodeInvalidDomainNotRDAPContent = -65303
)

var messages = map[int]string{
	CodeConnectionFailed:   "The connection to the RDAP server failed or timed out.",
	CodeHandshakeFailed:    "The TLS handshake with the RDAP server failed.",
	CodeInvalidCertificate: "The TLS certificate does not match the RDAP server host name.",
	CodeRevokedCertificate: "The TLS certificate of the RDAP server has been revoked.",
	CodeExpiredCertificate: "The TLS certificate of the RDAP server has expired.",
	CodeCertificateError:   "The TLS certificate of the RDAP server is not trusted.",
	CodeTooManyRedirects:   "The RDAP server redirected more times than allowed.",
	CodeHTTPError:          "The RDAP server returned an unusable HTTP response.",
	CodeResponseInvalid:    "The RDAP response is not a valid JSON object or array.",
	CodeWrongContentType:   "The Content-Type header is not application/rdap+json.",
	CodeNetworkSendFail:    "Sending the request to the RDAP server failed.",
	CodeNetworkReceiveFail: "Receiving the response from the RDAP server failed.",
	CodeUnknownHost:        "The RDAP server host name could not be resolved.",

	CodeUnexpectedHTTPStatus: "The HTTP status code was neither 200 nor 404.",
	CodeHeadStatusMismatch:   "The HTTP status code of a HEAD request differs from the GET request.",

	CodeSchemaViolation:   "The response does not validate against the RDAP JSON schema.",
	CodeSchemaUnavailable: "No JSON schema is available for this query type.",

	CodeObjectClassMismatch:  "The objectClassName does not match the query type.",
	CodeMissingConformance:   "The rdapConformance member is missing from the top-most object.",
	CodeUndecodableResponse:  "The response could not be decoded as an RDAP object.",
	CodeMissingRdapLevelZero: "The rdapConformance array does not contain rdap_level_0.",

	CodeCaseFoldingMismatch: "A case-folded domain query did not return the same result.",

	CodeTLSVersion: "The RDAP server negotiated a TLS version older than 1.2.",

	CodeReservedIPv4: "The RDAP server host resolves to a reserved IPv4 address.",
	CodeReservedIPv6: "The RDAP server host resolves to a reserved IPv6 address.",

	CodeNoIPv4: "The RDAP service is not provided over IPv4.",
	CodeNoIPv6: "The RDAP service is not provided over IPv6.",

	CodeHelpQueryFailed:        "The help query did not return a 200 RDAP response.",
	CodeHelpMissingConformance: "The help response does not contain rdapConformance.",

	CodeInvalidDomainStatus:         "A query for an invalid domain did not return 404.",
	CodeInvalidDomainRedirectLoop:   "A query for an invalid domain resulted in a redirect loop.",
	CodeInvalidDomainCrossOrigin:    "A query for an invalid domain was redirected to another origin.",
	CodeInvalidDomainNotRDAPContent: "The error response for an invalid domain is not RDAP JSON.",
}

// Message returns the registered message of a code, or an empty string.
func Message(code int) string {
	return messages[code]
}

// New builds a finding with the registered message of code.
func New(code int, value string) Finding {
	return Finding{Code: code, Value: value, Message: messages[code]}
}
