package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pinelocal/distance"
)

func TestIndexDescription_JSON(t *testing.T) {
	d := Describe(IndexDefinition{
		Name:      "t",
		Dimension: 3,
		Metric:    distance.MetricCosine,
		Spec:      Spec{Serverless: ServerlessSpec{Cloud: "aws", Region: "us-east-1"}},
	})

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "t",
		"dimension": 3,
		"metric": "cosine",
		"spec": {"serverless": {"cloud": "aws", "region": "us-east-1"}},
		"status": {"ready": true, "state": "Ready"}
	}`, string(b))

	var back IndexDescription
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back)
}

func TestVector_OmitsEmptyMetadata(t *testing.T) {
	b, err := json.Marshal(Vector{ID: "v1", Values: []float64{1, 0}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "v1", "values": [1, 0]}`, string(b))
}

func TestCreateIndexRequest_Definition(t *testing.T) {
	req := CreateIndexRequest{Name: "a", Dimension: 2, Metric: distance.MetricDotProduct}
	def := req.Definition()
	assert.Equal(t, "a", def.Name)
	assert.Equal(t, 2, def.Dimension)
	assert.Equal(t, distance.MetricDotProduct, def.Metric)
}

func TestNewIndexStats(t *testing.T) {
	b, err := json.Marshal(NewIndexStats(3, 2))
	require.NoError(t, err)
	assert.JSONEq(t, `{"dimension":3,"totalVectorCount":2,"namespaces":{"":{"vectorCount":2}}}`, string(b))

	empty := NewIndexStats(3, 0)
	assert.NotNil(t, empty.Namespaces)
	assert.Empty(t, empty.Namespaces)
}
