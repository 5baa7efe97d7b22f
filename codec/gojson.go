package codec

import gojson "github.com/goccy/go-json"

// GoJSON encodes with github.com/goccy/go-json. It is the default.
type GoJSON struct{}

func (GoJSON) Name() string { return "go-json" }

func (GoJSON) Marshal(v any) ([]byte, error) {
	return gojson.MarshalIndent(v, "", Indent)
}

func (GoJSON) Unmarshal(data []byte, v any) error {
	return gojson.Unmarshal(data, v)
}
