package results

import (
	"sort"
	"sync"
)

// Sink is the append-only collection of findings of one validation run.
type Sink struct {
	mutex    sync.Mutex
	findings []Finding
	groups   map[string]bool
	failures []RuleFailure
}

func NewSink() *Sink {
	return &Sink{groups: make(map[string]bool)}
}

func (s *Sink) Add(findings ...Finding) {
	if len(findings) < 1 {
		return
	}
	s.mutex.Lock()
	s.findings = append(s.findings, findings...)
	s.mutex.Unlock()
}

// All returns a snapshot of the findings in insertion order.
func (s *Sink) All() []Finding {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]Finding, len(s.findings))
	copy(out, s.findings)
	return out
}

func (s *Sink) Count() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.findings)
}

func (s *Sink) Has(code int) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, f := range s.findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

// SetGroupStatus records the outcome of one rule of a group. A group that
// has seen a failing rule stays failed.
func (s *Sink) SetGroupStatus(group string, ok bool) {
	if group == "" {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if prev, known := s.groups[group]; known && !prev {
		return
	}
	s.groups[group] = ok
}

func (s *Sink) GroupOK(group string) (ok bool, known bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	ok, known = s.groups[group]
	return
}

func (s *Sink) GroupsOK() []string {
	return s.groupsWith(true)
}

func (s *Sink) GroupErrors() []string {
	return s.groupsWith(false)
}

func (s *Sink) groupsWith(status bool) []string {
	s.mutex.Lock()
	var names []string
	for name, ok := range s.groups {
		if ok == status {
			names = append(names, name)
		}
	}
	s.mutex.Unlock()
	sort.Strings(names)
	return names
}

func (s *Sink) AddRuleFailure(failure RuleFailure) {
	s.mutex.Lock()
	s.failures = append(s.failures, failure)
	s.mutex.Unlock()
}

func (s *Sink) RuleFailures() []RuleFailure {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]RuleFailure, len(s.failures))
	copy(out, s.failures)
	return out
}
