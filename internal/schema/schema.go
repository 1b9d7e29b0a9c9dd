package schema

import (
	"embed"
	"errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/zhouchenh/rdapct/internal/config"
	"github.com/zhouchenh/rdapct/internal/dataset"
	"io/fs"
	"path"
	"sort"
)

//go:embed json/*.json
var files embed.FS

const baseURL = "https://schema.rdapct.invalid/"

const (
	Domain           = "rdap_domain.json"
	Nameserver       = "rdap_nameserver.json"
	Entity           = "rdap_entity.json"
	Autnum           = "rdap_autnum.json"
	IPNetwork        = "rdap_ip_network.json"
	Help             = "rdap_help.json"
	Error            = "rdap_error.json"
	DomainSearch     = "rdap_domains.json"
	NameserverSearch = "rdap_nameservers.json"
	EntitySearch     = "rdap_entities.json"
)

var byQueryType = map[config.QueryType]string{
	config.QueryDomain:           Domain,
	config.QueryNameserver:       Nameserver,
	config.QueryEntity:           Entity,
	config.QueryAutnum:           Autnum,
	config.QueryIPNetwork:        IPNetwork,
	config.QueryHelp:             Help,
	config.QueryDomainSearch:     DomainSearch,
	config.QueryNameserverSearch: NameserverSearch,
	config.QueryEntitySearch:     EntitySearch,
}

// ForQueryType returns the schema a successful response of t must satisfy.
func ForQueryType(t config.QueryType) (string, bool) {
	name, ok := byQueryType[t]
	return name, ok
}

// Formats backed by reference data. A format whose dataset is not loaded
// accepts every value.
var datasetFormats = map[string]dataset.Kind{
	"rdap-domain-status": dataset.DomainStatus,
	"rdap-link-relation": dataset.LinkRelations,
	"rdap-media-type":    dataset.MediaTypes,
	"rdap-extension":     dataset.RDAPExtensions,
}

func Names() []string {
	entries, _ := fs.ReadDir(files, "json")
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

// Compile builds the validator of the named schema against ds. The result
// depends only on name and ds.Fingerprint().
func Compile(name string, ds dataset.Service) (*jsonschema.Schema, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if _, err := fs.Stat(files, path.Join("json", name)); err != nil {
		return nil, UnknownSchemaError(name)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if compiler.Formats == nil {
		compiler.Formats = make(map[string]func(interface{}) bool)
	}
	for format, kind := range datasetFormats {
		compiler.Formats[format] = membership(ds, kind)
	}
	for _, n := range Names() {
		f, err := files.Open(path.Join("json", n))
		if err != nil {
			return nil, err
		}
		err = compiler.AddResource(baseURL+n, f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
	}
	return compiler.Compile(baseURL + name)
}

func membership(ds dataset.Service, kind dataset.Kind) func(interface{}) bool {
	return func(v interface{}) bool {
		s, ok := v.(string)
		if !ok || !ds.Loaded(kind) {
			return true
		}
		return ds.Contains(kind, s)
	}
}

// Violation is one failed leaf assertion.
type Violation struct {
	InstanceLocation string
	KeywordLocation  string
	Message          string
}

func (v Violation) String() string {
	return "#" + v.InstanceLocation + ": " + v.Message
}

// Violations flattens a validation error into its leaf causes. Errors that
// are not validation errors yield nothing.
func Violations(err error) []Violation {
	var validationError *jsonschema.ValidationError
	if !errors.As(err, &validationError) {
		return nil
	}
	var out []Violation
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, Violation{
				InstanceLocation: e.InstanceLocation,
				KeywordLocation:  e.KeywordLocation,
				Message:          e.Message,
			})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(validationError)
	return out
}
