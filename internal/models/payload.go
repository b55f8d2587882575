package models

// Payload holds opaque named clip attributes (display name, media reference...).
// Values are JSON-shaped: nil, bool, numbers, strings, []any and map[string]any.
type Payload map[string]any

// Clone returns a deep copy of p. A nil payload stays nil.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge returns a copy of p with every key of patch applied on top.
func (p Payload) Merge(patch Payload) Payload {
	out := p.Clone()
	if out == nil {
		out = make(Payload, len(patch))
	}
	for k, v := range patch {
		out[k] = cloneValue(v)
	}
	return out
}

// Name returns the "name" attribute when it is a string.
func (p Payload) Name() string {
	s, _ := p["name"].(string)
	return s
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = cloneValue(e)
		}
		return m
	case Payload:
		return x.Clone()
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = cloneValue(e)
		}
		return s
	case []string:
		return append([]string(nil), x...)
	default:
		return v
	}
}
