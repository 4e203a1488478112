package valuetype

import "bytes"

// MetadataKind tags which variant a MetadataValue holds.
type MetadataKind int

const (
	// MetadataText holds a UTF-8 string value.
	MetadataText MetadataKind = iota
	// MetadataBinary holds an opaque byte blob.
	MetadataBinary
)

// MetadataValue is a tagged union of a text or binary metadata value.
// Exactly one of Text/Binary is meaningful, selected by Kind. Empty
// strings and empty blobs are both valid values.
type MetadataValue struct {
	Kind   MetadataKind
	Text   string
	Binary []byte
}

// NewText creates a text-tagged MetadataValue.
func NewText(s string) MetadataValue {
	return MetadataValue{Kind: MetadataText, Text: s}
}

// NewBinary creates a binary-tagged MetadataValue.
func NewBinary(b []byte) MetadataValue {
	return MetadataValue{Kind: MetadataBinary, Binary: b}
}

// Equal compares two MetadataValues by tag and content. Binary values
// compare by byte content so that hashing and map-keying remain stable
// across restarts, per the degenerate-case contract for binary blobs.
func (m MetadataValue) Equal(other MetadataValue) bool {
	if m.Kind != other.Kind {
		return false
	}
	switch m.Kind {
	case MetadataText:
		return m.Text == other.Text
	case MetadataBinary:
		return bytes.Equal(m.Binary, other.Binary)
	default:
		return false
	}
}

// mapKey returns a string usable as a Go map key for this value. Binary
// values are prefixed distinctly from text values so that a text value
// and a binary value with coincidentally identical bytes never collide.
func (m MetadataValue) mapKey() string {
	switch m.Kind {
	case MetadataText:
		return "t:" + m.Text
	case MetadataBinary:
		return "b:" + string(m.Binary)
	default:
		return ""
	}
}

// MapKey exposes mapKey for use by reverse indices outside this package.
func (m MetadataValue) MapKey() string { return m.mapKey() }

// MetadataMap is a mapping from metadata key to MetadataValue. Keys are
// case-sensitive; insertion order carries no meaning.
type MetadataMap map[string]MetadataValue

// Clone returns a shallow copy safe to store independently of the
// caller's map, since entries are always copied out of the store by
// value (no internal reference escapes the store's lock scope).
func (m MetadataMap) Clone() MetadataMap {
	if m == nil {
		return nil
	}
	out := make(MetadataMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
