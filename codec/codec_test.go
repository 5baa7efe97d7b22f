package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name   string            `json:"name"`
	Values []float64         `json:"values"`
	Meta   map[string]string `json:"meta,omitempty"`
}

func TestByName(t *testing.T) {
	c, ok := ByName("json")
	require.True(t, ok)
	assert.Equal(t, "json", c.Name())

	c, ok = ByName("go-json")
	require.True(t, ok)
	assert.Equal(t, "go-json", c.Name())

	_, ok = ByName("msgpack")
	assert.False(t, ok)
}

func TestCodecs_Indented(t *testing.T) {
	in := doc{Name: "a", Values: []float64{1, 0.5}}
	want := "{\n  \"name\": \"a\",\n  \"values\": [\n    1,\n    0.5\n  ]\n}"

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			b, err := c.Marshal(in)
			require.NoError(t, err)
			assert.Equal(t, want, string(b))

			var out doc
			require.NoError(t, c.Unmarshal(b, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestCodecs_Malformed(t *testing.T) {
	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			var out doc
			assert.Error(t, c.Unmarshal([]byte(`{"name": `), &out))
		})
	}
}

func TestCodecs_Interchangeable(t *testing.T) {
	in := doc{Name: "x", Values: []float64{0.1, -2}, Meta: map[string]string{"b": "2", "a": "1"}}

	a, err := JSON{}.Marshal(in)
	require.NoError(t, err)
	b, err := GoJSON{}.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	var out doc
	require.NoError(t, GoJSON{}.Unmarshal(a, &out))
	assert.Equal(t, in, out)
}

func TestDefault(t *testing.T) {
	assert.Equal(t, "go-json", Default.Name())
}
