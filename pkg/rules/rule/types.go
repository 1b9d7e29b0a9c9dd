package rule

import (
	"github.com/zhouchenh/go-descriptor"
	"github.com/zhouchenh/rdapct/internal/querycontext"
)

// Rule is one conformance check.
//
// Launch is the applicability gate. It must depend only on the
// configuration and the query type of qc: no I/O and no findings.
//
// Validate performs the check and writes findings to qc. It returns true
// when no finding was recorded.
//
// A Rule value is shared by concurrent runs and keeps no per-run state.
type Rule interface {
	Type() descriptor.Type
	TypeName() string
	GroupName() string
	Launch(qc *querycontext.Context) bool
	Validate(qc *querycontext.Context) bool
}

// BodyRule is implemented by rules that inspect the parsed response body.
// They are skipped when the primary query produced none.
type BodyRule interface {
	Rule
	NeedsBody() bool
}

var typeOfRule = descriptor.TypeOfNew(new(Rule))

func Type() descriptor.Type {
	return typeOfRule
}

var registeredAssignmentFunctionByType = make(map[descriptor.Type]descriptor.AssignmentFunction)
var registeredAssignmentFunctionByKind = make(map[descriptor.Kind]descriptor.AssignmentFunction)

var privateDescriptor = descriptor.Descriptor{
	Type: typeOfRule,
	Filler: descriptor.ObjectFiller{
		ValueSource: descriptor.ObjectAtPath{
			ObjectPath: descriptor.Root,
			AssignableKind: descriptor.AssignmentFunction(func(i interface{}) (object interface{}, ok bool) {
				t := descriptor.TypeOf(i)
				f, ok := registeredAssignmentFunctionByType[t]
				if !ok {
					k := descriptor.KindOf(i)
					f, ok = registeredAssignmentFunctionByKind[k]
					if !ok {
						return
					}
				}
				return f(i)
			}),
		},
	},
}

// Descriptor describes a Rule from either a {"type", "config"} object or a
// bare type name.
func Descriptor() descriptor.Describable {
	return &privateDescriptor
}

func RegisterAssignmentFunctionByType(t descriptor.Type, f descriptor.AssignmentFunction) {
	if t == nil || f == nil {
		return
	}
	registeredAssignmentFunctionByType[t] = f
}

func RegisterAssignmentFunctionByKind(k descriptor.Kind, f descriptor.AssignmentFunction) {
	if f == nil {
		return
	}
	registeredAssignmentFunctionByKind[k] = f
}
