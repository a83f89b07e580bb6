package storage

import (
	"context"
	"errors"

	"survivorrl/internal/model"
)

var ErrDuplicateVersion = errors.New("model version already stored")

// Store defines persistence for registry records, evaluations and comparisons.
// Model versions are append-only: saving an existing name/version pair fails
// with ErrDuplicateVersion.
type Store interface {
	Init(ctx context.Context) error
	SaveModel(ctx context.Context, meta model.ModelMetadata) error
	GetModel(ctx context.Context, name string, version int) (model.ModelMetadata, bool, error)
	ListModelVersions(ctx context.Context, name string) ([]model.ModelMetadata, error)
	ListModelNames(ctx context.Context) ([]string, error)
	SaveEvaluation(ctx context.Context, result model.EvaluationResult) error
	ListEvaluations(ctx context.Context, modelName string) ([]model.EvaluationResult, error)
	SaveComparison(ctx context.Context, comparison model.ModelComparison) (string, error)
	GetComparison(ctx context.Context, id string) (model.ModelComparison, bool, error)
	ListComparisonIDs(ctx context.Context) ([]string, error)
}

// LatestEvaluation returns the most recently saved evaluation of modelName.
// A positive version restricts the search to evaluations of that version.
func LatestEvaluation(ctx context.Context, store Store, modelName string, version int) (model.EvaluationResult, bool, error) {
	results, err := store.ListEvaluations(ctx, modelName)
	if err != nil {
		return model.EvaluationResult{}, false, err
	}
	for i := len(results) - 1; i >= 0; i-- {
		if version <= 0 || results[i].ModelVersion == version {
			return results[i], true, nil
		}
	}
	return model.EvaluationResult{}, false, nil
}
