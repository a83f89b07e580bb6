package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"survivorrl/internal/action"
	"survivorrl/internal/state"
)

// Profile holds the learning and runtime tunables of one training run.
type Profile struct {
	StateSize           int     `json:"state_size"`
	ActionCount         int     `json:"action_count"`
	LearningRate        float64 `json:"learning_rate"`
	DiscountFactor      float64 `json:"discount_factor"`
	ExplorationRate     float64 `json:"exploration_rate"`
	MemorySize          int     `json:"memory_size"`
	BatchSize           int     `json:"batch_size"`
	CoordinationEnabled bool    `json:"coordination_enabled"`
	CoordinationWeight  float64 `json:"coordination_weight"`
}

func Default() Profile {
	return Profile{
		StateSize:           state.VectorSize,
		ActionCount:         action.Count,
		LearningRate:        0.0003,
		DiscountFactor:      0.99,
		ExplorationRate:     0.1,
		MemorySize:          10000,
		BatchSize:           64,
		CoordinationEnabled: true,
		CoordinationWeight:  0.5,
	}
}

// Valid reports whether the sizes and learning parameters are strictly
// positive. Recommended bounds are advisory and not checked here.
func (p Profile) Valid() bool {
	return p.StateSize > 0 &&
		p.ActionCount > 0 &&
		p.LearningRate > 0 &&
		p.DiscountFactor > 0 &&
		p.MemorySize > 0 &&
		p.BatchSize > 0
}

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// RecommendedBounds are the tuning ranges shown to operators, keyed by the
// JSON field name.
var RecommendedBounds = map[string]Range{
	"learning_rate":       {Min: 1e-5, Max: 1e-2},
	"discount_factor":     {Min: 0.8, Max: 0.999},
	"exploration_rate":    {Min: 0, Max: 1},
	"memory_size":         {Min: 1000, Max: 1000000},
	"batch_size":          {Min: 8, Max: 1024},
	"coordination_weight": {Min: 0, Max: 1},
}

// OutOfBounds returns the sorted field names whose values fall outside
// RecommendedBounds.
func (p Profile) OutOfBounds() []string {
	values := map[string]float64{
		"learning_rate":       p.LearningRate,
		"discount_factor":     p.DiscountFactor,
		"exploration_rate":    p.ExplorationRate,
		"memory_size":         float64(p.MemorySize),
		"batch_size":          float64(p.BatchSize),
		"coordination_weight": p.CoordinationWeight,
	}
	var out []string
	for name, value := range values {
		bounds, ok := RecommendedBounds[name]
		if ok && !bounds.Contains(value) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Load reads a JSON profile on top of Default. Numeric fields accept either
// integer or float encodings and unknown keys are ignored.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, err
	}
	p, err := Parse(data)
	if err != nil {
		return Profile{}, fmt.Errorf("load profile %s: %w", path, err)
	}
	return p, nil
}

func Parse(data []byte) (Profile, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Profile{}, err
	}

	p := Default()
	if v, ok := asInt(raw["state_size"]); ok {
		p.StateSize = v
	}
	if v, ok := asInt(raw["action_count"]); ok {
		p.ActionCount = v
	}
	if v, ok := asFloat64(raw["learning_rate"]); ok {
		p.LearningRate = v
	}
	if v, ok := asFloat64(raw["discount_factor"]); ok {
		p.DiscountFactor = v
	}
	if v, ok := asFloat64(raw["exploration_rate"]); ok {
		p.ExplorationRate = v
	}
	if v, ok := asInt(raw["memory_size"]); ok {
		p.MemorySize = v
	}
	if v, ok := asInt(raw["batch_size"]); ok {
		p.BatchSize = v
	}
	if v, ok := asBool(raw["coordination_enabled"]); ok {
		p.CoordinationEnabled = v
	}
	if v, ok := asFloat64(raw["coordination_weight"]); ok {
		p.CoordinationWeight = v
	}
	return p, nil
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
