package dataset

import "testing"

func TestStaticContains(t *testing.T) {
	s := NewStatic(map[Kind][]string{
		RegistrarID:          {"292", "1"},
		SpecialIPv4Addresses: {"10.0.0.0/8", "192.0.2.0/24"},
		SpecialIPv6Addresses: {"2001:db8::/32"},
		EPPRoid:              {"VRSN"},
	})
	if !s.Contains(RegistrarID, "292") || s.Contains(RegistrarID, "293") {
		t.Fatalf("unexpected registrar membership")
	}
	if !s.Contains(EPPRoid, "vrsn") {
		t.Fatalf("membership should be case-insensitive")
	}
	if !s.Contains(SpecialIPv4Addresses, "10.1.2.3") || s.Contains(SpecialIPv4Addresses, "8.8.8.8") {
		t.Fatalf("unexpected IPv4 block membership")
	}
	if !s.Contains(SpecialIPv6Addresses, "2001:db8::1") {
		t.Fatalf("expected documentation prefix to match")
	}
	if s.Contains(DomainStatus, "active") {
		t.Fatalf("unknown kind should contain nothing")
	}
}

func TestStaticFingerprintIsOrderIndependent(t *testing.T) {
	a := NewStatic(map[Kind][]string{RegistrarID: {"1", "2"}, EPPRoid: {"X"}})
	b := NewStatic(map[Kind][]string{EPPRoid: {"X"}, RegistrarID: {"2", "1"}})
	c := NewStatic(map[Kind][]string{RegistrarID: {"1"}})
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("expected equal fingerprints")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Fatalf("expected different fingerprints for different data")
	}
}

func TestStaticLoaded(t *testing.T) {
	s := NewStatic(map[Kind][]string{DomainStatus: {"active"}, SpecialIPv4Addresses: {"10.0.0.0/8"}, EPPRoid: {}})
	if !s.Loaded(DomainStatus) || !s.Loaded(SpecialIPv4Addresses) {
		t.Fatalf("expected loaded kinds")
	}
	if s.Loaded(EPPRoid) || s.Loaded(MediaTypes) {
		t.Fatalf("empty or absent kinds are not loaded")
	}
}
