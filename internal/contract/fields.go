package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Fields is a JSON object's members kept verbatim and in source order. A
// repeated key keeps its first position and its last value.
type Fields struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewFields builds Fields from alternating key/value pairs, mainly for tests.
func NewFields(pairs ...string) Fields {
	var f Fields
	for i := 0; i+1 < len(pairs); i += 2 {
		f.Set(pairs[i], json.RawMessage(pairs[i+1]))
	}
	return f
}

func (f Fields) Len() int { return len(f.keys) }

// Keys returns the member names in source order.
func (f Fields) Keys() []string {
	return append([]string(nil), f.keys...)
}

func (f Fields) Get(key string) (json.RawMessage, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Set replaces key's value in place, or appends key when it is new.
func (f *Fields) Set(key string, value json.RawMessage) {
	if f.values == nil {
		f.values = make(map[string]json.RawMessage)
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Clone returns a copy that can be changed without touching f.
func (f Fields) Clone() Fields {
	out := Fields{
		keys:   append([]string(nil), f.keys...),
		values: make(map[string]json.RawMessage, len(f.values)),
	}
	for k, v := range f.values {
		out.values[k] = v
	}
	return out
}

func (f Fields) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	b.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := enc.Encode(k); err != nil {
			return nil, err
		}
		b.Truncate(b.Len() - 1) // Encode's trailing newline
		b.WriteByte(':')
		b.Write(f.values[k])
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected a JSON object, got %s", bytes.TrimSpace(data))
	}

	*f = Fields{values: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected an object key, got %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decoding %q: %w", key, err)
		}
		f.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
