package declarative

import (
	"github.com/zhouchenh/go-descriptor"
	"github.com/zhouchenh/rdapct/internal/common"
	"github.com/zhouchenh/rdapct/internal/config"
	"github.com/zhouchenh/rdapct/internal/dataset"
	"github.com/zhouchenh/rdapct/internal/jsonpointer"
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"github.com/zhouchenh/rdapct/internal/results"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
	"strconv"
	"strings"
)

// Shapes accepted besides the JSON type names of jsonpointer.Shape.
const (
	ShapePresent = "present"
	ShapeAbsent  = "absent"
)

// JSONPointer is a rule described entirely by configuration: the value at
// Pointer must have Shape and, when Dataset is set, every string found there
// must be a member of that dataset.
type JSONPointer struct {
	Pointer    string
	Shape      string
	Dataset    dataset.Kind
	Code       int
	Message    string
	Group      string
	QueryTypes []config.QueryType
	Profile    string
}

var typeOfJSONPointer = descriptor.TypeOfNew(new(*JSONPointer))

func (r *JSONPointer) Type() descriptor.Type {
	return typeOfJSONPointer
}

func (r *JSONPointer) TypeName() string {
	return "jsonPointer"
}

func (r *JSONPointer) GroupName() string {
	return r.Group
}

func (r *JSONPointer) NeedsBody() bool {
	return true
}

func (r *JSONPointer) Launch(qc *querycontext.Context) bool {
	cfg := qc.Config()
	switch r.Profile {
	case "2019":
		if !cfg.ProfileFeb2019 {
			return false
		}
	case "2024":
		if !cfg.ProfileFeb2024 {
			return false
		}
	}
	if len(r.QueryTypes) == 0 {
		return true
	}
	for _, t := range r.QueryTypes {
		if t == qc.QueryType() {
			return true
		}
	}
	return false
}

func (r *JSONPointer) Validate(qc *querycontext.Context) bool {
	value, found := jsonpointer.Lookup(qc.Data(), r.Pointer)
	switch r.Shape {
	case ShapeAbsent:
		if found {
			r.report(qc, "#"+r.Pointer)
			return false
		}
		return true
	case ShapePresent, "":
		if !found {
			r.report(qc, "#"+r.Pointer)
			return false
		}
	default:
		if !found || jsonpointer.Shape(value) != r.Shape {
			r.report(qc, "#"+r.Pointer)
			return false
		}
	}
	if r.Dataset == "" {
		return true
	}
	ok := true
	for _, m := range members(r.Pointer, value) {
		if !qc.Dataset().Contains(r.Dataset, m.value) {
			r.report(qc, "#"+m.pointer+": "+m.value)
			ok = false
		}
	}
	return ok
}

func (r *JSONPointer) report(qc *querycontext.Context, value string) {
	f := results.New(r.Code, value)
	if r.Message != "" {
		f.Message = r.Message
	}
	qc.Report(f)
}

type member struct {
	pointer string
	value   string
}

// members lists the strings at pointer. Array items keep their index in the
// document; items that are not strings are skipped.
func members(pointer string, value interface{}) []member {
	switch v := value.(type) {
	case string:
		return []member{{pointer: pointer, value: v}}
	case []interface{}:
		out := make([]member, 0, len(v))
		for i, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, member{pointer: jsonpointer.Join(pointer, strconv.Itoa(i)), value: s})
			}
		}
		return out
	}
	return nil
}

var shapes = map[string]bool{
	"object": true, "array": true, "string": true, "number": true, "boolean": true, "null": true,
	ShapePresent: true, ShapeAbsent: true,
}

func init() {
	if err := rule.RegisterRule(&descriptor.Descriptor{
		Type: typeOfJSONPointer,
		Filler: descriptor.Fillers{
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"Pointer"},
				ValueSource: descriptor.ObjectAtPath{
					ObjectPath: descriptor.Path{"pointer"},
					AssignableKind: descriptor.ConvertibleKind{
						Kind: descriptor.KindString,
						ConvertFunction: func(original interface{}) (converted interface{}, ok bool) {
							str, ok := original.(string)
							if !ok {
								return
							}
							str = strings.TrimPrefix(str, "#")
							if str != "" && !strings.HasPrefix(str, "/") {
								return nil, false
							}
							return str, true
						},
					},
				},
			},
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"Shape"},
				ValueSource: descriptor.ValueSources{
					descriptor.ObjectAtPath{
						ObjectPath: descriptor.Path{"shape"},
						AssignableKind: descriptor.ConvertibleKind{
							Kind: descriptor.KindString,
							ConvertFunction: func(original interface{}) (converted interface{}, ok bool) {
								str, ok := original.(string)
								if !ok || !shapes[str] {
									return nil, false
								}
								return str, true
							},
						},
					},
					descriptor.DefaultValue{Value: ShapePresent},
				},
			},
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"Dataset"},
				ValueSource: descriptor.ValueSources{
					descriptor.ObjectAtPath{
						ObjectPath: descriptor.Path{"dataset"},
						AssignableKind: descriptor.ConvertibleKind{
							Kind: descriptor.KindString,
							ConvertFunction: func(original interface{}) (converted interface{}, ok bool) {
								str, ok := original.(string)
								if !ok {
									return
								}
								return dataset.Kind(str), true
							},
						},
					},
					descriptor.DefaultValue{Value: dataset.Kind("")},
				},
			},
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"Code"},
				ValueSource: descriptor.ObjectAtPath{
					ObjectPath: descriptor.Path{"code"},
					AssignableKind: descriptor.ConvertibleKind{
						Kind: descriptor.KindFloat64,
						ConvertFunction: func(original interface{}) (converted interface{}, ok bool) {
							num, ok := original.(float64)
							if !ok || num == 0 || num != float64(int(num)) {
								return nil, false
							}
							return int(num), true
						},
					},
				},
			},
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"Message"},
				ValueSource: descriptor.ValueSources{
					descriptor.ObjectAtPath{
						ObjectPath:     descriptor.Path{"message"},
						AssignableKind: descriptor.KindString,
					},
					descriptor.DefaultValue{Value: ""},
				},
			},
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"Group"},
				ValueSource: descriptor.ValueSources{
					descriptor.ObjectAtPath{
						ObjectPath:     descriptor.Path{"group"},
						AssignableKind: descriptor.KindString,
					},
					descriptor.DefaultValue{Value: "declarativeValidation"},
				},
			},
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"QueryTypes"},
				ValueSource: descriptor.ValueSources{
					descriptor.ObjectAtPath{
						ObjectPath: descriptor.Path{"queryTypes"},
						AssignableKind: descriptor.ConvertibleKind{
							Kind: descriptor.KindSlice,
							ConvertFunction: func(original interface{}) (converted interface{}, ok bool) {
								arr, ok := original.([]interface{})
								if !ok {
									return
								}
								var types []config.QueryType
								for _, i := range arr {
									str, ok := i.(string)
									if !ok {
										return nil, false
									}
									types = append(types, config.QueryType(str))
								}
								return types, true
							},
						},
					},
					descriptor.DefaultValue{Value: []config.QueryType(nil)},
				},
			},
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"Profile"},
				ValueSource: descriptor.ValueSources{
					descriptor.ObjectAtPath{
						ObjectPath:     descriptor.Path{"profile"},
						AssignableKind: descriptor.KindString,
					},
					descriptor.DefaultValue{Value: ""},
				},
			},
		},
	}); err != nil {
		common.ErrOutput(err)
	}
}
