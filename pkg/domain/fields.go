package domain

import (
	"encoding/json"
	"fmt"
)

// Canonical field names produced by content extraction. These are the only
// keys that may appear in Fields maps.
const (
	FieldTitle       = "title"
	FieldSummary     = "summary"
	FieldDescription = "description"
	FieldContent     = "content"
	FieldKeyTopics   = "key_topics"
	FieldGuestNames  = "guest_names"
)

// KnownFields lists every canonical field name in display order.
var KnownFields = []string{
	FieldTitle,
	FieldSummary,
	FieldDescription,
	FieldContent,
	FieldKeyTopics,
	FieldGuestNames,
}

// listFields are the fields whose values are lists of strings rather than a
// single string.
var listFields = map[string]bool{
	FieldKeyTopics:  true,
	FieldGuestNames: true,
}

// IsKnownField reports whether name is one of the canonical field names.
func IsKnownField(name string) bool {
	for _, f := range KnownFields {
		if f == name {
			return true
		}
	}
	return false
}

// IsListField reports whether the named field carries a list of strings.
func IsListField(name string) bool {
	return listFields[name]
}

// FieldValue holds one extracted or translated field value, which on the wire
// is either a JSON string or a JSON array of strings.
type FieldValue struct {
	Text string
	List []string
}

// StringValue builds a single-string field value.
func StringValue(s string) FieldValue {
	return FieldValue{Text: s}
}

// ListValue builds a list-of-strings field value.
func ListValue(items ...string) FieldValue {
	return FieldValue{List: items}
}

// IsList reports whether the value carries a list rather than a single string.
func (v FieldValue) IsList() bool {
	return v.List != nil
}

// IsEmpty reports whether the value carries neither text nor list items.
func (v FieldValue) IsEmpty() bool {
	return v.Text == "" && len(v.List) == 0
}

// MarshalJSON encodes the value as a bare string or an array of strings,
// matching the shape the extraction endpoint returns.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.IsList() {
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts either a JSON string or a JSON array of strings.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = FieldValue{Text: s}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = FieldValue{List: list}
		return nil
	}

	return fmt.Errorf("field value must be a string or an array of strings")
}

// Fields maps canonical field names to their values. Not every field is
// guaranteed present.
type Fields map[string]FieldValue

// Clone returns a deep copy of the field map.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for name, v := range f {
		if v.IsList() {
			list := make([]string, len(v.List))
			copy(list, v.List)
			out[name] = FieldValue{List: list}
			continue
		}
		out[name] = v
	}
	return out
}

// Names returns the field names present in the map, in canonical order first
// and any unknown names after.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for _, known := range KnownFields {
		if _, ok := f[known]; ok {
			names = append(names, known)
		}
	}
	for name := range f {
		if !IsKnownField(name) {
			names = append(names, name)
		}
	}
	return names
}
