package common

import (
	"fmt"
	"github.com/miekg/dns"
	"github.com/zhouchenh/rdapct/internal/logger"
	"net"
	"net/url"
	"strconv"
	"strings"
)

var ErrOutputErrorHandler = func(err error) {
	ErrOutput(err)
}

func Output(a ...interface{}) {
	_, _ = fmt.Fprintln(logger.Output(), a...)
}

func ErrOutput(a ...interface{}) {
	logger.Error().Msg(fmt.Sprint(a...))
}

func ParseIPv4v6(str string) (ip net.IP) {
	ip = net.ParseIP(str)
	if ip == nil {
		return
	}
	if ipv4Addr := ip.To4(); ipv4Addr != nil {
		return ipv4Addr
	}
	return
}

// ParseLiteralAddress accepts "ip", "ip:port" and "[ip]:port". Host names are
// rejected. A missing port yields defaultPort.
func ParseLiteralAddress(str string, defaultPort uint16) (ip net.IP, port uint16, ok bool) {
	str = strings.TrimSpace(str)
	if str == "" {
		return nil, 0, false
	}
	if ip = ParseIPv4v6(strings.TrimSuffix(strings.TrimPrefix(str, "["), "]")); ip != nil {
		return ip, defaultPort, true
	}
	host, portStr, err := net.SplitHostPort(str)
	if err != nil {
		return nil, 0, false
	}
	if ip = ParseIPv4v6(host); ip == nil {
		return nil, 0, false
	}
	p, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || p == 0 {
		return nil, 0, false
	}
	return ip, uint16(p), true
}

func IsIPv4(ip net.IP) bool {
	return ip != nil && ip.To4() != nil
}

func IsDomainName(name string) (ok bool) {
	_, ok = dns.IsDomainName(name)
	return
}

// CanonicalHost lowercases a host name and strips a trailing dot. Literal
// addresses are returned in their canonical textual form.
func CanonicalHost(host string) string {
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if ip := ParseIPv4v6(host); ip != nil {
		return ip.String()
	}
	return strings.TrimSuffix(strings.ToLower(host), ".")
}

func EnsureFQDN(name string) string {
	if dns.IsFqdn(name) {
		return name
	}
	return name + "."
}

// Origin returns scheme://host:port with the default port made explicit.
func Origin(u *url.URL) string {
	if u == nil {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	port := u.Port()
	if port == "" {
		switch scheme {
		case "https":
			port = "443"
		case "http":
			port = "80"
		}
	}
	return scheme + "://" + net.JoinHostPort(CanonicalHost(u.Hostname()), port)
}

func Concatenate(a ...interface{}) string {
	builder := strings.Builder{}
	for _, value := range a {
		builder.WriteString(fmt.Sprint(value))
	}
	return builder.String()
}

func SnakeCaseConcatenate(a ...interface{}) string {
	builder := strings.Builder{}
	for _, value := range a {
		str := fmt.Sprint(value)
		if str == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("_")
		}
		builder.WriteString(str)
	}
	return builder.String()
}

func UpperString(s string) string {
	return strings.ToUpper(s)
}
