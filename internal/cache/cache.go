package cache

// ResponseCache bundles the parsed JSON cache and the compiled schema cache
// shared by every validation run of a process.
type ResponseCache struct {
	JSON    *JSONCache
	Schemas *SchemaCache
}

func New(maxJSONEntries, maxSchemaEntries int) *ResponseCache {
	return &ResponseCache{
		JSON:    NewJSONCache(maxJSONEntries),
		Schemas: NewSchemaCache(maxSchemaEntries),
	}
}

func (c *ResponseCache) Clear() {
	c.JSON.Clear()
	c.Schemas.Clear()
}
