package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"sort"
	"strings"
)

// Kind names one reference dataset.
type Kind string

const (
	EPPRoid              Kind = "eppRoid"
	RegistrarID          Kind = "registrarId"
	LinkRelations        Kind = "linkRelations"
	MediaTypes           Kind = "mediaTypes"
	RDAPExtensions       Kind = "rdapExtensions"
	DomainStatus         Kind = "domainStatus"
	SpecialIPv4Addresses Kind = "ipv4SpecialRegistry"
	SpecialIPv6Addresses Kind = "ipv6SpecialRegistry"
)

// Service answers read-only membership questions about already loaded
// reference data.
type Service interface {
	Contains(kind Kind, key string) bool
	// Loaded reports whether any data of kind is available.
	Loaded(kind Kind) bool
	Fingerprint() string
}

// Static is an in-memory Service. Entries of the address kinds may be
// CIDR blocks; a key matches when it falls inside one.
type Static struct {
	sets        map[Kind]map[string]struct{}
	blocks      map[Kind][]*net.IPNet
	fingerprint string
}

func NewStatic(data map[Kind][]string) *Static {
	s := &Static{
		sets:   make(map[Kind]map[string]struct{}),
		blocks: make(map[Kind][]*net.IPNet),
	}
	hash := sha256.New()
	kinds := make([]string, 0, len(data))
	for kind := range data {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		kind := Kind(k)
		values := append([]string(nil), data[kind]...)
		sort.Strings(values)
		set := make(map[string]struct{}, len(values))
		for _, value := range values {
			if _, block, err := net.ParseCIDR(value); err == nil {
				s.blocks[kind] = append(s.blocks[kind], block)
			} else {
				set[normalize(value)] = struct{}{}
			}
			hash.Write([]byte(k + "\x00" + value + "\n"))
		}
		s.sets[kind] = set
	}
	s.fingerprint = hex.EncodeToString(hash.Sum(nil))[:16]
	return s
}

func (s *Static) Contains(kind Kind, key string) bool {
	if s == nil {
		return false
	}
	if _, ok := s.sets[kind][normalize(key)]; ok {
		return true
	}
	if blocks := s.blocks[kind]; len(blocks) > 0 {
		if ip := net.ParseIP(key); ip != nil {
			for _, block := range blocks {
				if block.Contains(ip) {
					return true
				}
			}
		}
	}
	return false
}

func (s *Static) Loaded(kind Kind) bool {
	if s == nil {
		return false
	}
	return len(s.sets[kind]) > 0 || len(s.blocks[kind]) > 0
}

func (s *Static) Fingerprint() string {
	if s == nil {
		return ""
	}
	return s.fingerprint
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
