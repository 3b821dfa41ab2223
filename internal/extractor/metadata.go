package extractor

import (
	"encoding/json"
	"strings"
)

// Field is one metadata entry. A nil Value serializes to an empty string.
type Field struct {
	Key   string
	Value *string
}

// Metadata is an ordered key to optional-string mapping extracted from the
// document information dictionary. Order is preserved through serialization
// because callers compare the serialized form exactly.
type Metadata []Field

// Set appends a key with a concrete value.
func (m Metadata) Set(key, value string) Metadata {
	return append(m, Field{Key: key, Value: &value})
}

// SetNil appends a key with no value.
func (m Metadata) SetNil(key string) Metadata {
	return append(m, Field{Key: key})
}

// Serialize renders the metadata as a pretty-printed JSON object with
// four-space indentation and keys in insertion order. Nil values become "",
// and an empty or nil mapping becomes "{}".
func (m Metadata) Serialize() string {
	if len(m) == 0 {
		return "{}"
	}

	var b strings.Builder
	b.WriteString("{\n")
	for i, f := range m {
		value := ""
		if f.Value != nil {
			value = *f.Value
		}
		// json.Marshal never fails for strings; it handles escaping.
		key, _ := json.Marshal(f.Key)
		val, _ := json.Marshal(value)
		b.WriteString("    ")
		b.Write(key)
		b.WriteString(": ")
		b.Write(val)
		if i < len(m)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}
