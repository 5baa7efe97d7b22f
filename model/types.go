package model

import (
	"github.com/hupe1980/pinelocal/distance"
)

// StateReady is the only state an index is ever reported in.
const StateReady = "Ready"

// ServerlessSpec describes where a hosted index would be placed. It is stored
// and echoed back but never interpreted.
type ServerlessSpec struct {
	Cloud  string `json:"cloud"`
	Region string `json:"region"`
}

// Spec is the placement descriptor of an index.
type Spec struct {
	Serverless ServerlessSpec `json:"serverless"`
}

// IndexDefinition is the immutable configuration of an index.
type IndexDefinition struct {
	Name      string          `json:"name"`
	Dimension int             `json:"dimension"`
	Metric    distance.Metric `json:"metric"`
	Spec      Spec            `json:"spec"`
}

// IndexStatus reports the readiness of an index.
type IndexStatus struct {
	Ready bool   `json:"ready"`
	State string `json:"state"`
}

// ReadyStatus returns the status every existing index is reported with.
func ReadyStatus() IndexStatus {
	return IndexStatus{Ready: true, State: StateReady}
}

// IndexDescription is a registry entry: the definition plus its status.
type IndexDescription struct {
	IndexDefinition
	Status IndexStatus `json:"status"`
}

// Describe combines def with a ready status.
func Describe(def IndexDefinition) IndexDescription {
	return IndexDescription{IndexDefinition: def, Status: ReadyStatus()}
}

// CreateIndexRequest carries the fields required to create an index.
type CreateIndexRequest struct {
	Name      string          `json:"name"`
	Dimension int             `json:"dimension"`
	Metric    distance.Metric `json:"metric"`
	Spec      Spec            `json:"spec"`
}

// Definition converts the request into an IndexDefinition.
func (r CreateIndexRequest) Definition() IndexDefinition {
	return IndexDefinition(r)
}

// Metadata is an open-ended key/value mapping attached to a vector.
// It is opaque to the engine.
type Metadata map[string]any

// Vector is a stored or incoming embedding.
type Vector struct {
	ID       string    `json:"id"`
	Values   []float64 `json:"values"`
	Metadata Metadata  `json:"metadata,omitempty"`
}

// VectorSet is the persisted collection of vectors of one index.
type VectorSet struct {
	Vectors []Vector `json:"vectors"`
}

// Len returns the number of vectors in the set.
func (s VectorSet) Len() int { return len(s.Vectors) }

// UpsertRequest is a batch of vectors to insert or replace.
type UpsertRequest struct {
	Vectors   []Vector `json:"vectors"`
	Namespace string   `json:"namespace,omitempty"`
}

// UpsertResponse reports how many vectors of the batch were written.
type UpsertResponse struct {
	UpsertedCount int `json:"upsertedCount"`
}

// QueryRequest describes a top-K similarity query.
type QueryRequest struct {
	Vector          []float64 `json:"vector"`
	TopK            int       `json:"topK"`
	Namespace       string    `json:"namespace,omitempty"`
	IncludeValues   bool      `json:"includeValues,omitempty"`
	IncludeMetadata bool      `json:"includeMetadata,omitempty"`
}

// Match is a single scored query result.
type Match struct {
	ID       string    `json:"id"`
	Score    float64   `json:"score"`
	Values   []float64 `json:"values,omitempty"`
	Metadata Metadata  `json:"metadata,omitempty"`
}

// QueryResponse holds the ranked matches of a query.
type QueryResponse struct {
	Matches   []Match `json:"matches"`
	Namespace string  `json:"namespace"`
}

// ListIndexesResponse wraps the registry entries returned by a list call.
type ListIndexesResponse struct {
	Indexes []IndexDescription `json:"indexes"`
}

// NamespaceSummary counts the vectors of one namespace.
type NamespaceSummary struct {
	VectorCount int `json:"vectorCount"`
}

// IndexStats summarizes the contents of an index. Namespaces are not
// partitioned, so every vector is counted under the default namespace "".
type IndexStats struct {
	Dimension        int                         `json:"dimension"`
	TotalVectorCount int                         `json:"totalVectorCount"`
	Namespaces       map[string]NamespaceSummary `json:"namespaces"`
}

// NewIndexStats builds the stats of an index with dimension dim holding count vectors.
func NewIndexStats(dim, count int) IndexStats {
	ns := map[string]NamespaceSummary{}
	if count > 0 {
		ns[""] = NamespaceSummary{VectorCount: count}
	}
	return IndexStats{Dimension: dim, TotalVectorCount: count, Namespaces: ns}
}
