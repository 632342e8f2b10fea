package event

// Map is a read-only view over a nested JSON object. It replaces the
// dynamic attribute access bots use for fields the typed structs do not
// model: optional fields resolve permissively, a missing path is simply
// reported as absent.
type Map map[string]interface{}

// Get walks the given key path and returns the value at the end of it
func (m Map) Get(path ...string) (interface{}, bool) {
	if len(path) == 0 {
		return nil, false
	}

	var current interface{} = map[string]interface{}(m)
	for _, key := range path {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// String returns the string at the given path, or "" when absent or not
// a string
func (m Map) String(path ...string) string {
	v, ok := m.Get(path...)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Int64 returns the number at the given path. JSON numbers decode as
// float64; they are truncated toward zero.
func (m Map) Int64(path ...string) int64 {
	v, ok := m.Get(path...)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

// Bool returns the boolean at the given path, or false when absent
func (m Map) Bool(path ...string) bool {
	v, ok := m.Get(path...)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Map returns the nested object at the given path, or nil when absent
func (m Map) Map(path ...string) Map {
	v, ok := m.Get(path...)
	if !ok {
		return nil
	}
	obj, _ := v.(map[string]interface{})
	return Map(obj)
}

// Slice returns the array at the given path, or nil when absent
func (m Map) Slice(path ...string) []interface{} {
	v, ok := m.Get(path...)
	if !ok {
		return nil
	}
	s, _ := v.([]interface{})
	return s
}
