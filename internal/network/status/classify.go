package status

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"os"
	"strings"
	"syscall"
)

// Phase tells the classifier how far the exchange got when err happened.
type Phase int

const (
	PhaseDial Phase = iota
	PhaseHandshake
	PhaseSend
	PhaseReceive
	PhaseBody
)

const alertCertificateRevoked = 44

// Classify maps a transport error to exactly one status. TLS causes take
// precedence over timeouts, which are always ConnectionFailed, and both take
// precedence over the phase.
func Classify(err error, phase Phase) (Status, Fault) {
	if err == nil {
		return Success, NoFault
	}
	if s, ok := classifyTLS(err); ok {
		return s, NoFault
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return UnknownHost, NoFault
	}
	if isTimeout(err) {
		return ConnectionFailed, Timeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return ConnectionFailed, NoFault
	}
	if phase == PhaseDial {
		return ConnectionFailed, NoFault
	}
	if phase == PhaseHandshake {
		return HandshakeFailed, NoFault
	}
	switch {
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE) && phase >= PhaseReceive:
		return NetworkReceiveFail, Reset
	case errors.Is(err, io.EOF):
		if phase == PhaseBody {
			return NetworkReceiveFail, Truncated
		}
		return NetworkReceiveFail, Empty
	case errors.Is(err, io.ErrUnexpectedEOF):
		return NetworkReceiveFail, Truncated
	case isMalformed(err):
		return NetworkReceiveFail, Garbled
	}
	if phase == PhaseSend {
		return NetworkSendFail, NoFault
	}
	return NetworkReceiveFail, NoFault
}

func classifyTLS(err error) (Status, bool) {
	var alert tls.AlertError
	if errors.As(err, &alert) && uint8(alert) == alertCertificateRevoked {
		return RevokedCertificate, true
	}
	if strings.Contains(err.Error(), "certificate revoked") {
		return RevokedCertificate, true
	}
	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return InvalidCertificate, true
	}
	var invalid x509.CertificateInvalidError
	if errors.As(err, &invalid) {
		if invalid.Reason == x509.Expired {
			return ExpiredCertificate, true
		}
		return CertificateError, true
	}
	var unknown x509.UnknownAuthorityError
	if errors.As(err, &unknown) {
		return CertificateError, true
	}
	var verify *tls.CertificateVerificationError
	if errors.As(err, &verify) {
		return CertificateError, true
	}
	var record tls.RecordHeaderError
	if errors.As(err, &record) {
		return HandshakeFailed, true
	}
	return 0, false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isMalformed(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "malformed HTTP") ||
		strings.Contains(msg, "bad chunk") ||
		strings.Contains(msg, "invalid byte in chunk") ||
		strings.Contains(msg, "server sent")
}
