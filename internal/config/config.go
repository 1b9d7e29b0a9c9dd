package config

import (
	"github.com/zhouchenh/go-descriptor"
	"github.com/zhouchenh/rdapct/internal/common"
	"github.com/zhouchenh/rdapct/internal/dataset"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 3
	DefaultParallelism  = 4
)

// Config is the immutable input of a validation run. Use Clone to derive a
// modified copy.
type Config struct {
	URI            string
	Timeout        time.Duration
	MaxRedirects   int
	UseIPv4        bool
	UseIPv6        bool
	GTLDRegistry   bool
	GTLDRegistrar  bool
	ThinRegistry   bool
	ProfileFeb2019 bool
	ProfileFeb2024 bool
	CustomDNS      string
	Socks5Proxy    string
	Socks5Username string
	Socks5Password string
	UserAgent      string
	ProbeRate      float64
	Parallelism    int
	Datasets       map[dataset.Kind][]string
	Rules          []interface{}
}

// Clone returns a deep copy of c with modify applied to it.
func (c *Config) Clone(modify ...func(*Config)) *Config {
	clone := *c
	if c.Datasets != nil {
		clone.Datasets = make(map[dataset.Kind][]string, len(c.Datasets))
		for k, v := range c.Datasets {
			clone.Datasets[k] = append([]string(nil), v...)
		}
	}
	clone.Rules = append([]interface{}(nil), c.Rules...)
	for _, f := range modify {
		f(&clone)
	}
	return &clone
}

// Validate checks everything that can be checked without network access.
func (c *Config) Validate() error {
	if c == nil {
		return ErrBadConfig
	}
	if strings.TrimSpace(c.URI) == "" {
		return ErrMissingURI
	}
	u, err := url.Parse(c.URI)
	if err != nil || u.Hostname() == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidURI
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxRedirects < 0 {
		return ErrInvalidMaxRedirects
	}
	if !c.UseIPv4 && !c.UseIPv6 {
		return ErrNoAddressFamily
	}
	if c.GTLDRegistry && c.GTLDRegistrar {
		return ErrRegistryAndRegistrar
	}
	if c.ThinRegistry && !c.GTLDRegistry {
		return ErrThinWithoutRegistry
	}
	if c.ProfileFeb2019 && c.ProfileFeb2024 {
		return ErrProfile2019And2024
	}
	if c.CustomDNS != "" {
		if _, _, ok := common.ParseLiteralAddress(c.CustomDNS, 53); !ok {
			return ErrInvalidCustomDNS
		}
	}
	if c.Parallelism < 1 {
		return ErrInvalidParallelism
	}
	if c.ProbeRate < 0 {
		return ErrInvalidProbeRate
	}
	return nil
}

var typeOfConfig = descriptor.TypeOfNew(new(*Config))

func Type() descriptor.Type {
	return typeOfConfig
}

func durationKinds() descriptor.AssignableKinds {
	return descriptor.AssignableKinds{
		descriptor.ConvertibleKind{
			Kind: descriptor.KindFloat64,
			ConvertFunction: func(original interface{}) (converted interface{}, ok bool) {
				num, ok := original.(float64)
				if !ok {
					return
				}
				return time.Duration(num * float64(time.Second)), true
			},
		},
		descriptor.ConvertibleKind{
			Kind: descriptor.KindString,
			ConvertFunction: func(original interface{}) (converted interface{}, ok bool) {
				str, ok := original.(string)
				if !ok {
					return
				}
				if d, err := time.ParseDuration(str); err == nil {
					return d, true
				}
				num, err := strconv.ParseFloat(str, 64)
				if err != nil {
					return nil, false
				}
				return time.Duration(num * float64(time.Second)), true
			},
		},
	}
}

func intKinds() descriptor.AssignableKinds {
	return descriptor.AssignableKinds{
		descriptor.ConvertibleKind{
			Kind: descriptor.KindFloat64,
			ConvertFunction: func(original interface{}) (converted interface{}, ok bool) {
				num, ok := original.(float64)
				if !ok {
					return
				}
				return int(num), true
			},
		},
		descriptor.ConvertibleKind{
			Kind: descriptor.KindString,
			ConvertFunction: func(original interface{}) (converted interface{}, ok bool) {
				str, ok := original.(string)
				if !ok {
					return
				}
				i, err := strconv.Atoi(str)
				if err != nil {
					return nil, false
				}
				return i, true
			},
		},
	}
}

func stringField(field, key string, def string) descriptor.ObjectFiller {
	return descriptor.ObjectFiller{
		ObjectPath: descriptor.Path{field},
		ValueSource: descriptor.ValueSources{
			descriptor.ObjectAtPath{
				ObjectPath:     descriptor.Path{key},
				AssignableKind: descriptor.KindString,
			},
			descriptor.DefaultValue{Value: def},
		},
	}
}

func boolField(field, key string, def bool) descriptor.ObjectFiller {
	return descriptor.ObjectFiller{
		ObjectPath: descriptor.Path{field},
		ValueSource: descriptor.ValueSources{
			descriptor.ObjectAtPath{
				ObjectPath:     descriptor.Path{key},
				AssignableKind: descriptor.KindBool,
			},
			descriptor.DefaultValue{Value: def},
		},
	}
}

var (
	numberKeys = map[string]bool{"timeout": true, "maxRedirects": true, "probeRate": true, "parallelism": true}
	boolKeys   = map[string]bool{
		"useIPv4": true, "useIPv6": true, "gtldRegistry": true, "gtldRegistrar": true,
		"thinRegistry": true, "useRdapProfileFeb2019": true, "useRdapProfileFeb2024": true,
	}
)

// ScalarValue converts the text of a scalar key, e.g. from a query string,
// to the JSON type the key is described with. Other keys stay strings.
func ScalarValue(key, value string) interface{} {
	switch {
	case numberKeys[key]:
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return n
		}
	case boolKeys[key]:
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return value
}

func Descriptor() descriptor.Describable {
	return &descriptor.Descriptor{
		Type: typeOfConfig,
		Filler: descriptor.Fillers{
			stringField("URI", "uri", ""),
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"Timeout"},
				ValueSource: descriptor.ValueSources{
					descriptor.ObjectAtPath{
						ObjectPath:     descriptor.Path{"timeout"},
						AssignableKind: durationKinds(),
					},
					descriptor.DefaultValue{Value: DefaultTimeout},
				},
			},
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"MaxRedirects"},
				ValueSource: descriptor.ValueSources{
					descriptor.ObjectAtPath{
						ObjectPath:     descriptor.Path{"maxRedirects"},
						AssignableKind: intKinds(),
					},
					descriptor.DefaultValue{Value: DefaultMaxRedirects},
				},
			},
			boolField("UseIPv4", "useIPv4", true),
			boolField("UseIPv6", "useIPv6", true),
			boolField("GTLDRegistry", "gtldRegistry", false),
			boolField("GTLDRegistrar", "gtldRegistrar", false),
			boolField("ThinRegistry", "thinRegistry", false),
			boolField("ProfileFeb2019", "useRdapProfileFeb2019", false),
			boolField("ProfileFeb2024", "useRdapProfileFeb2024", false),
			stringField("CustomDNS", "customDns", ""),
			stringField("Socks5Proxy", "socks5Proxy", ""),
			stringField("Socks5Username", "socks5Username", ""),
			stringField("Socks5Password", "socks5Password", ""),
			stringField("UserAgent", "userAgent", ""),
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"ProbeRate"},
				ValueSource: descriptor.ValueSources{
					descriptor.ObjectAtPath{
						ObjectPath:     descriptor.Path{"probeRate"},
						AssignableKind: descriptor.KindFloat64,
					},
					descriptor.DefaultValue{Value: float64(0)},
				},
			},
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"Parallelism"},
				ValueSource: descriptor.ValueSources{
					descriptor.ObjectAtPath{
						ObjectPath:     descriptor.Path{"parallelism"},
						AssignableKind: intKinds(),
					},
					descriptor.DefaultValue{Value: DefaultParallelism},
				},
			},
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"Datasets"},
				ValueSource: descriptor.ValueSources{
					descriptor.ObjectAtPath{
						ObjectPath: descriptor.Path{"datasets"},
						AssignableKind: descriptor.ConvertibleKind{
							Kind: descriptor.KindMap,
							ConvertFunction: func(original interface{}) (converted interface{}, ok bool) {
								m, ok := original.(map[string]interface{})
								if !ok {
									return
								}
								datasets := make(map[dataset.Kind][]string, len(m))
								for kind, rawEntries := range m {
									arr, ok := rawEntries.([]interface{})
									if !ok {
										return nil, false
									}
									entries := make([]string, 0, len(arr))
									for _, rawEntry := range arr {
										entry, ok := rawEntry.(string)
										if !ok {
											return nil, false
										}
										entries = append(entries, entry)
									}
									datasets[dataset.Kind(kind)] = entries
								}
								return datasets, true
							},
						},
					},
					descriptor.DefaultValue{Value: map[dataset.Kind][]string{}},
				},
			},
			descriptor.ObjectFiller{
				ObjectPath: descriptor.Path{"Rules"},
				ValueSource: descriptor.ValueSources{
					descriptor.ObjectAtPath{
						ObjectPath:     descriptor.Path{"rules"},
						AssignableKind: descriptor.KindSlice,
					},
					descriptor.DefaultValue{Value: []interface{}(nil)},
				},
			},
		},
	}
}
