package rule

import (
	"github.com/zhouchenh/go-descriptor"
	"github.com/zhouchenh/rdapct/internal/config/typed"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
)

func init() {
	rule.RegisterAssignmentFunctionByKind(descriptor.KindMap, func(i interface{}) (object interface{}, ok bool) {
		typedValue, s, f := typed.ValueDescriptor.Describe(i)
		ok = s > 0 && f < 1
		if !ok {
			return
		}
		object, s, f = rule.Descriptor().Describe(typedValue)
		ok = s > 0 && f < 1
		return
	})
	rule.RegisterAssignmentFunctionByKind(descriptor.KindString, func(i interface{}) (object interface{}, ok bool) {
		name, ok := i.(string)
		if !ok {
			return
		}
		object, s, f := rule.Descriptor().Describe(typed.Value{Type: name, Value: map[string]interface{}{}})
		ok = s > 0 && f < 1
		return
	})
}
