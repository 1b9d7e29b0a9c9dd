package rule

import (
	"fmt"
	"github.com/zhouchenh/go-descriptor"
	"sort"
)

var registeredRule = make(map[string]descriptor.Describable)
var defaultRuleTypes []string

func RegisterRule(describable descriptor.Describable) error {
	if describable == nil {
		return NotRegistrableError("<nil>")
	}
	r, ok := describable.GetPrototype().(Rule)
	if !ok {
		return NotRegistrableError(fmt.Sprintf("%T", describable.GetPrototype()))
	}
	t := r.TypeName()
	if len(t) < 1 {
		return NotRegistrableError(fmt.Sprintf("%T", r))
	}
	if _, hasKey := registeredRule[t]; hasKey {
		return AlreadyRegisteredError(t)
	}
	registeredRule[t] = describable
	return nil
}

// RegisterDefaultRule registers describable and adds its type to the rule set
// used when a configuration names no rules. The descriptor must be able to
// describe an empty config object.
func RegisterDefaultRule(describable descriptor.Describable) error {
	if err := RegisterRule(describable); err != nil {
		return err
	}
	defaultRuleTypes = append(defaultRuleTypes, describable.GetPrototype().(Rule).TypeName())
	return nil
}

func GetRuleDescriptorByTypeName(typeName string) (describable descriptor.Describable, ok bool) {
	describable, ok = registeredRule[typeName]
	return
}

func RegisteredTypeNames() []string {
	names := make([]string, 0, len(registeredRule))
	for name := range registeredRule {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build turns configuration values into rules. An empty spec list yields
// the default rule set.
func Build(specs []interface{}) ([]Rule, error) {
	if len(specs) == 0 {
		types := append([]string(nil), defaultRuleTypes...)
		sort.Strings(types)
		for _, t := range types {
			specs = append(specs, t)
		}
	}
	rules := make([]Rule, 0, len(specs))
	for index, spec := range specs {
		object, s, f := Descriptor().Describe(spec)
		if s < 1 || f > 0 {
			return nil, BadRuleConfigError(index)
		}
		r, ok := object.(Rule)
		if !ok || r == nil {
			return nil, BadRuleConfigError(index)
		}
		rules = append(rules, r)
	}
	return rules, nil
}
