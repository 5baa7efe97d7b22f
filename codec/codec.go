// Package codec selects the JSON encoder used for persisted documents.
//
// The registry, index configs and vector sets are all written through a
// Codec. Both built-ins emit identical two-space indented JSON, so a data
// directory written with one reads back with the other.
package codec

// Indent is the indentation of persisted documents.
const Indent = "  "

// Codec encodes and decodes documents. Implementations must be safe for
// concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}

// ByName resolves "json" or "go-json".
func ByName(name string) (Codec, bool) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}
