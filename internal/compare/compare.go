// Package compare ranks evaluated models and pairs up two versions of one
// model for side-by-side review.
package compare

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"survivorrl/internal/model"
)

var ErrModelMismatch = errors.New("version comparison across different models")

// Compare snapshots results and ranks the compared models from best to worst.
func Compare(results map[string]model.EvaluationResult, at time.Time) model.ModelComparison {
	copied := make(map[string]model.EvaluationResult, len(results))
	names := make([]string, 0, len(results))
	for name, result := range results {
		copied[name] = result.Clone()
		names = append(names, name)
	}
	sort.Strings(names)

	return model.ModelComparison{
		VersionedRecord: model.CurrentVersion(),
		Timestamp:       model.NewTimestamp(at),
		ModelNames:      names,
		Results:         copied,
		Ranking:         Rank(results),
		Annotations:     model.Annotations{},
	}
}

// Rank orders model names by mean reward descending. Equal means rank the
// lower standard deviation first and remaining ties fall back to name order.
// A NaN mean ranks below every number and a NaN deviation above every number.
func Rank(results map[string]model.EvaluationResult) []string {
	ranking := make([]string, 0, len(results))
	for name := range results {
		ranking = append(ranking, name)
	}
	sort.Slice(ranking, func(i, j int) bool {
		a, b := results[ranking[i]], results[ranking[j]]
		if c := compareNaNLast(-a.MeanReward, -b.MeanReward); c != 0 {
			return c < 0
		}
		if c := compareNaNLast(a.StdDev, b.StdDev); c != 0 {
			return c < 0
		}
		return ranking[i] < ranking[j]
	})
	return ranking
}

// compareNaNLast orders x and y ascending with NaN greater than any number.
func compareNaNLast(x, y float64) int {
	xNaN, yNaN := math.IsNaN(x), math.IsNaN(y)
	switch {
	case xNaN && yNaN:
		return 0
	case xNaN:
		return 1
	case yNaN:
		return -1
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

// CompareVersions pairs two registered versions of name with their
// evaluations. Both metadata records must belong to name.
func CompareVersions(name string, v1, v2 model.ModelMetadata, r1, r2 model.EvaluationResult) (model.ModelVersionComparison, error) {
	if v1.Name != name || v2.Name != name || v1.Name != v2.Name {
		return model.ModelVersionComparison{}, fmt.Errorf("%w: want %q, got %q and %q", ErrModelMismatch, name, v1.Name, v2.Name)
	}
	return model.ModelVersionComparison{
		ModelName: name,
		Version1:  v1.Version,
		Version2:  v2.Version,
		Metadata1: v1.Clone(),
		Metadata2: v2.Clone(),
		Result1:   r1.Clone(),
		Result2:   r2.Clone(),
	}, nil
}
