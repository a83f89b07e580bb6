package storage

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"survivorrl/internal/model"
)

const (
	CurrentSchemaVersion = model.CurrentSchemaVersion
	CurrentCodecVersion  = model.CurrentCodecVersion
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeModel(m model.ModelMetadata) ([]byte, error) {
	return json.Marshal(m)
}

func DecodeModel(data []byte) (model.ModelMetadata, error) {
	var meta model.ModelMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return model.ModelMetadata{}, err
	}
	if err := checkVersion(meta.VersionedRecord); err != nil {
		return model.ModelMetadata{}, err
	}
	return meta, nil
}

func EncodeEvaluation(r model.EvaluationResult) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeEvaluation(data []byte) (model.EvaluationResult, error) {
	var result model.EvaluationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return model.EvaluationResult{}, err
	}
	if err := checkVersion(result.VersionedRecord); err != nil {
		return model.EvaluationResult{}, err
	}
	if result.Rewards == nil {
		result.Rewards = []float64{}
	}
	return result, nil
}

func EncodeComparison(c model.ModelComparison) ([]byte, error) {
	return json.Marshal(c)
}

func DecodeComparison(data []byte) (model.ModelComparison, error) {
	var comparison model.ModelComparison
	if err := json.Unmarshal(data, &comparison); err != nil {
		return model.ModelComparison{}, err
	}
	if err := checkVersion(comparison.VersionedRecord); err != nil {
		return model.ModelComparison{}, err
	}
	return comparison, nil
}

// NewComparisonID returns a fresh identifier for a persisted comparison.
func NewComparisonID() string {
	return uuid.NewString()
}

func withComparisonID(c model.ModelComparison) model.ModelComparison {
	if c.ID == "" {
		c.ID = NewComparisonID()
	}
	return c
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
