package status

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"
	"testing"
)

func wrap(err error) error {
	return &url.Error{Op: "Get", URL: "https://rdap.example/domain/a", Err: err}
}

func TestClassifyTLS(t *testing.T) {
	cases := []struct {
		err  error
		want Status
	}{
		{x509.HostnameError{Host: "rdap.example", Certificate: &x509.Certificate{}}, InvalidCertificate},
		{x509.CertificateInvalidError{Reason: x509.Expired}, ExpiredCertificate},
		{x509.CertificateInvalidError{Reason: x509.NotAuthorizedToSign}, CertificateError},
		{x509.UnknownAuthorityError{}, CertificateError},
		{tls.AlertError(alertCertificateRevoked), RevokedCertificate},
		{&tls.CertificateVerificationError{Err: x509.CertificateInvalidError{Reason: x509.Expired}}, ExpiredCertificate},
	}
	for _, c := range cases {
		got, _ := Classify(wrap(c.err), PhaseHandshake)
		if got != c.want {
			t.Fatalf("%T: expected %v, got %v", c.err, c.want, got)
		}
	}
}

func TestClassifyTimeout(t *testing.T) {
	got, fault := Classify(wrap(context.DeadlineExceeded), PhaseDial)
	if got != ConnectionFailed || fault != Timeout {
		t.Fatalf("expected connection timeout, got %v %v", got, fault)
	}
	got, fault = Classify(wrap(context.DeadlineExceeded), PhaseBody)
	if got != ConnectionFailed || fault != Timeout {
		t.Fatalf("expected timeout during body read to be a connection failure, got %v %v", got, fault)
	}
}

func TestClassifyDialAndReceive(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	if got, _ := Classify(wrap(refused), PhaseDial); got != ConnectionFailed {
		t.Fatalf("expected ConnectionFailed, got %v", got)
	}
	if got, fault := Classify(wrap(io.EOF), PhaseReceive); got != NetworkReceiveFail || fault != Empty {
		t.Fatalf("expected empty receive failure, got %v %v", got, fault)
	}
	if got, fault := Classify(wrap(io.ErrUnexpectedEOF), PhaseBody); got != NetworkReceiveFail || fault != Truncated {
		t.Fatalf("expected truncated receive failure, got %v %v", got, fault)
	}
	reset := &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}
	if got, fault := Classify(wrap(reset), PhaseReceive); got != NetworkReceiveFail || fault != Reset {
		t.Fatalf("expected reset, got %v %v", got, fault)
	}
	garbled := fmt.Errorf("net/http: HTTP/1.x transport connection broken: malformed HTTP response %q", "xx")
	if got, fault := Classify(wrap(garbled), PhaseReceive); got != NetworkReceiveFail || fault != Garbled {
		t.Fatalf("expected garbled, got %v %v", got, fault)
	}
	pipe := &net.OpError{Op: "write", Net: "tcp", Err: syscall.EPIPE}
	if got, _ := Classify(wrap(pipe), PhaseSend); got != NetworkSendFail {
		t.Fatalf("expected NetworkSendFail, got %v", got)
	}
}

func TestClassifyNil(t *testing.T) {
	if got, _ := Classify(nil, PhaseBody); got != Success {
		t.Fatalf("expected Success, got %v", got)
	}
	if !errors.Is(wrap(io.EOF), io.EOF) {
		t.Fatalf("url.Error should unwrap")
	}
}

func TestStatusString(t *testing.T) {
	if TooManyRedirects.String() != "TOO_MANY_REDIRECTS" {
		t.Fatalf("unexpected name %s", TooManyRedirects)
	}
	if !ConnectionFailed.Transport() || WrongContentType.Transport() {
		t.Fatalf("unexpected Transport classification")
	}
}
