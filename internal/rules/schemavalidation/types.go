package schemavalidation

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/zhouchenh/go-descriptor"
	"github.com/zhouchenh/rdapct/internal/common"
	"github.com/zhouchenh/rdapct/internal/querycontext"
	"github.com/zhouchenh/rdapct/internal/results"
	"github.com/zhouchenh/rdapct/internal/schema"
	"github.com/zhouchenh/rdapct/pkg/rules/rule"
	"strconv"
)

// SchemaValidation validates the primary response body against the schema of
// the query type.
type SchemaValidation struct {
	// MaxFindings caps the reported violations. Zero reports all of them.
	MaxFindings int
}

var typeOfSchemaValidation = descriptor.TypeOfNew(new(*SchemaValidation))

func (r *SchemaValidation) Type() descriptor.Type {
	return typeOfSchemaValidation
}

func (r *SchemaValidation) TypeName() string {
	return "schema"
}

func (r *SchemaValidation) GroupName() string {
	return "stdRdapSchemaValidation"
}

func (r *SchemaValidation) NeedsBody() bool {
	return true
}

func (r *SchemaValidation) Launch(qc *querycontext.Context) bool {
	_, ok := schema.ForQueryType(qc.QueryType())
	return ok
}

func (r *SchemaValidation) Validate(qc *querycontext.Context) bool {
	name, _ := schema.ForQueryType(qc.QueryType())
	validator, err := qc.Schema(name, func() (*jsonschema.Schema, error) {
		return schema.Compile(name, qc.Dataset())
	})
	if err != nil {
		qc.Logger().Warn().Err(err).Str("schema", name).Msg("schema unavailable")
		qc.ReportCode(results.CodeSchemaUnavailable, name)
		return false
	}
	violations := schema.Violations(validator.Validate(qc.Data()))
	if len(violations) == 0 {
		return true
	}
	for i, v := range violations {
		if r.MaxFindings > 0 && i >= r.MaxFindings {
			qc.ReportCode(results.CodeSchemaViolation, strconv.Itoa(len(violations)-i)+" more")
			break
		}
		qc.ReportCode(results.CodeSchemaViolation, v.String())
	}
	return false
}

func init() {
	if err := rule.RegisterDefaultRule(&descriptor.Descriptor{
		Type: typeOfSchemaValidation,
		Filler: descriptor.Fillers{
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"MaxFindings"},
				ValueSource: descriptor.ValueSources{
					descriptor.ObjectAtPath{
						ObjectPath: descriptor.Path{"maxFindings"},
						AssignableKind: descriptor.ConvertibleKind{
							Kind: descriptor.KindFloat64,
							ConvertFunction: func(original interface{}) (converted interface{}, ok bool) {
								num, ok := original.(float64)
								if !ok || num < 0 {
									return nil, false
								}
								return int(num), true
							},
						},
					},
					descriptor.DefaultValue{Value: 0},
				},
			},
		},
	}); err != nil {
		common.ErrOutput(err)
	}
}
