package nbt

// Compound is a decoded name->value map. Values are int8/int16/int32/int64,
// float32/float64, string, []byte, []int32, []int64, []any (lists) or nested
// Compound.
//
// Accessors return a zero value when the key is absent or holds a different
// type; callers gate on Has when the distinction matters.
type Compound map[string]any

// Has reports whether the key is present at all.
func (c Compound) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// GetInt returns any integral field widened to int. Bytes read from the wire
// are signed; callers that store slot indices in a byte mask them as needed.
func (c Compound) GetInt(name string) int {
	switch v := c[name].(type) {
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 0
	}
}

// GetFloat returns a float or double field as float64.
func (c Compound) GetFloat(name string) float64 {
	switch v := c[name].(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	default:
		return 0
	}
}

// GetString returns a string field, or "".
func (c Compound) GetString(name string) string {
	if v, ok := c[name].(string); ok {
		return v
	}
	return ""
}

// GetList returns a list field, or an empty slice.
func (c Compound) GetList(name string) []any {
	if v, ok := c[name].([]any); ok {
		return v
	}
	return nil
}

// GetCompound returns a nested compound field, or nil.
func (c Compound) GetCompound(name string) Compound {
	if v, ok := c[name].(Compound); ok {
		return v
	}
	return nil
}

// GetCompoundList returns the compound elements of a list field, dropping
// elements of other types.
func (c Compound) GetCompoundList(name string) []Compound {
	list := c.GetList(name)
	out := make([]Compound, 0, len(list))
	for _, e := range list {
		if cc, ok := e.(Compound); ok {
			out = append(out, cc)
		}
	}
	return out
}
