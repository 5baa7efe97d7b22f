package codec

import "encoding/json"

// JSON encodes with encoding/json.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", Indent)
}

func (JSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
