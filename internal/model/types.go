package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TimestampLayout is the wall-clock format used for every persisted timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

func CurrentVersion() VersionedRecord {
	return VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

// Timestamp is a wall-clock instant serialized as TimestampLayout in UTC with
// second precision.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{Time: t.UTC().Truncate(time.Second)}
}

func ParseTimestamp(s string) (Timestamp, error) {
	if strings.TrimSpace(s) == "" {
		return Timestamp{}, nil
	}
	t, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return Timestamp{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return Timestamp{Time: t}, nil
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}

func (t Timestamp) Equal(other Timestamp) bool {
	return t.String() == other.String()
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Annotations is an open-ended string mapping attached to records. Keys carry
// no schema.
type Annotations map[string]string

// Keys returns the annotation keys in ascending order.
func (a Annotations) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a Annotations) Clone() Annotations {
	if a == nil {
		return nil
	}
	out := make(Annotations, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

type ModelMetadata struct {
	VersionedRecord
	Name             string      `json:"name"`
	Path             string      `json:"path"`
	Version          int         `json:"version"`
	Description      string      `json:"description"`
	CreatedAt        Timestamp   `json:"created_at"`
	FileSize         int64       `json:"file_size"`
	RegistrationTime float64     `json:"registration_time"`
	Annotations      Annotations `json:"annotations,omitempty"`
}

func (m ModelMetadata) Clone() ModelMetadata {
	m.Annotations = m.Annotations.Clone()
	return m
}

// EvaluationResult aggregates per-episode rewards for one model.
// EpisodeCount always equals len(Rewards).
type EvaluationResult struct {
	VersionedRecord
	ModelName    string    `json:"model_name"`
	ModelVersion int       `json:"model_version,omitempty"`
	Timestamp    Timestamp `json:"timestamp"`
	EpisodeCount int       `json:"episode_count"`
	MeanReward   float64   `json:"mean_reward"`
	MaxReward    float64   `json:"max_reward"`
	MinReward    float64   `json:"min_reward"`
	StdDev       float64   `json:"std_dev"`
	Rewards      []float64 `json:"rewards"`
}

func (r EvaluationResult) Clone() EvaluationResult {
	r.Rewards = append([]float64{}, r.Rewards...)
	return r
}

type ModelComparison struct {
	VersionedRecord
	ID          string                      `json:"id,omitempty"`
	Timestamp   Timestamp                   `json:"timestamp"`
	ModelNames  []string                    `json:"model_names"`
	Results     map[string]EvaluationResult `json:"results"`
	Ranking     []string                    `json:"ranking"`
	Annotations Annotations                 `json:"annotations,omitempty"`
}

func (c ModelComparison) Clone() ModelComparison {
	c.ModelNames = append([]string(nil), c.ModelNames...)
	c.Ranking = append([]string(nil), c.Ranking...)
	c.Annotations = c.Annotations.Clone()
	if c.Results != nil {
		results := make(map[string]EvaluationResult, len(c.Results))
		for name, result := range c.Results {
			results[name] = result.Clone()
		}
		c.Results = results
	}
	return c
}

type ModelVersionComparison struct {
	ModelName string           `json:"model_name"`
	Version1  int              `json:"version1"`
	Version2  int              `json:"version2"`
	Metadata1 ModelMetadata    `json:"metadata1"`
	Metadata2 ModelMetadata    `json:"metadata2"`
	Result1   EvaluationResult `json:"result1"`
	Result2   EvaluationResult `json:"result2"`
}

// MeanDelta is the mean reward of the second version minus the first.
func (c ModelVersionComparison) MeanDelta() float64 {
	return c.Result2.MeanReward - c.Result1.MeanReward
}
