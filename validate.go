package pinelocal

import (
	"github.com/hupe1980/pinelocal/internal/store"
	"github.com/hupe1980/pinelocal/model"
)

// ValidIndexName reports whether name is 1 to 45 characters of lower-case
// letters, digits and hyphens.
func ValidIndexName(name string) bool {
	return store.ValidIndexName(name)
}

func validateName(name string) error {
	if !ValidIndexName(name) {
		return ErrInvalidIndexName
	}
	return nil
}

// validateDefinition checks fields in the order the HTTP API reports them:
// name, dimension, metric, spec.
func validateDefinition(def model.IndexDefinition) error {
	if err := validateName(def.Name); err != nil {
		return err
	}
	if def.Dimension <= 0 {
		return &ErrInvalidDimension{Dimension: def.Dimension}
	}
	if !def.Metric.Valid() {
		return ErrInvalidMetric
	}
	if def.Spec.Serverless.Cloud == "" || def.Spec.Serverless.Region == "" {
		return ErrInvalidSpec
	}
	return nil
}

// validateVectors checks a batch against the definition the engine read
// under the index lock.
func validateVectors(def model.IndexDefinition, vectors []model.Vector) error {
	dim := def.Dimension
	for _, v := range vectors {
		if v.ID == "" {
			return ErrInvalidVectorID
		}
		if len(v.Values) != dim {
			return &ErrDimensionMismatch{ID: v.ID, Expected: dim, Actual: len(v.Values)}
		}
	}
	return nil
}
