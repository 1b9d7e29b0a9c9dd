package cache

import "github.com/santhosh-tekuri/jsonschema/v5"

// SchemaCache holds compiled validators keyed by schema name and the
// fingerprint of the dataset the schema formats were bound to.
type SchemaCache struct {
	store *store
}

func NewSchemaCache(maxEntries int) *SchemaCache {
	return &SchemaCache{store: newStore(maxEntries)}
}

func SchemaKey(name, fingerprint string) string {
	return name + "@" + fingerprint
}

// Validator returns the cached validator or compiles and stores one.
func (c *SchemaCache) Validator(name, fingerprint string, compile func() (*jsonschema.Schema, error)) (*jsonschema.Schema, error) {
	if compile == nil {
		return nil, ErrNilCompiler
	}
	value, err := c.store.load(SchemaKey(name, fingerprint), func() (interface{}, error) {
		return compile()
	})
	if err != nil {
		return nil, err
	}
	return value.(*jsonschema.Schema), nil
}

func (c *SchemaCache) Clear() {
	c.store.clear()
}

func (c *SchemaCache) Stats() Stats {
	return c.store.stats()
}
