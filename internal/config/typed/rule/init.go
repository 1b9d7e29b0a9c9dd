package rule

import (
	"github.com/zhouchenh/go-descriptor"
	"github.com/zhouchenh/rdapct/internal/config/typed"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
)

func init() {
	rule.RegisterAssignmentFunctionByType(descriptor.TypeOfNew(new(typed.Value)), func(i interface{}) (object interface{}, ok bool) {
		typedValue, ok := i.(typed.Value)
		if !ok {
			return
		}
		describable, ok := rule.GetRuleDescriptorByTypeName(typedValue.Type)
		if !ok || describable == nil {
			return nil, false
		}
		object, s, f := describable.Describe(typedValue.Value)
		ok = s > 0 && f < 1
		return
	})
}
