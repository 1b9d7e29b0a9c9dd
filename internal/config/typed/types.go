package typed

import (
	"github.com/zhouchenh/go-descriptor"
	"strings"
)

// Value is a {"type": ..., "config": ...} entry of the rules array. Config
// is handed unchanged to the descriptor registered for Type.
type Value struct {
	Type  string
	Value interface{}
}

var ValueDescriptor = descriptor.Descriptor{
	Type: descriptor.TypeOfNew(new(Value)),
	Filler: descriptor.Fillers{
		descriptor.ObjectFiller{
			ObjectPath: descriptor.Path{"Type"},
			ValueSource: descriptor.ObjectAtPath{
				ObjectPath: descriptor.Path{"type"},
				AssignableKind: descriptor.ConvertibleKind{
					Kind: descriptor.KindString,
					ConvertFunction: func(original interface{}) (converted interface{}, ok bool) {
						str, ok := original.(string)
						if !ok {
							return
						}
						str = strings.TrimSpace(str)
						return str, str != ""
					},
				},
			},
		},
		descriptor.ObjectFiller{
			ObjectPath: descriptor.Path{"Value"},
			ValueSource: descriptor.ValueSources{
				descriptor.ObjectAtPath{
					ObjectPath:     descriptor.Path{"config"},
					AssignableKind: descriptor.KindMap,
				},
				descriptor.DefaultValue{Value: map[string]interface{}{}},
			},
		},
	},
}
