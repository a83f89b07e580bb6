package reward

import (
	"math"
	"sort"
	"strings"
)

// Weights are the per-term coefficients of the shaped reward. The four reward
// terms are expected to be >= 0 and the two penalties <= 0; Valid checks that.
type Weights struct {
	DamageDealtReward  float64 `json:"damage_dealt_reward"`
	SurvivalReward     float64 `json:"survival_reward"`
	CoordinationReward float64 `json:"coordination_reward"`
	PositioningReward  float64 `json:"positioning_reward"`
	DeathPenalty       float64 `json:"death_penalty"`
	TimeoutPenalty     float64 `json:"timeout_penalty"`
}

func Default() Weights {
	return Weights{
		DamageDealtReward:  10.0,
		SurvivalReward:     0.1,
		CoordinationReward: 2.0,
		PositioningReward:  0.5,
		DeathPenalty:       -50.0,
		TimeoutPenalty:     -10.0,
	}
}

func Aggressive() Weights {
	return Weights{
		DamageDealtReward:  20.0,
		SurvivalReward:     0.05,
		CoordinationReward: 1.0,
		PositioningReward:  0.5,
		DeathPenalty:       -30.0,
		TimeoutPenalty:     -5.0,
	}
}

func Defensive() Weights {
	return Weights{
		DamageDealtReward:  5.0,
		SurvivalReward:     0.3,
		CoordinationReward: 1.0,
		PositioningReward:  1.5,
		DeathPenalty:       -100.0,
		TimeoutPenalty:     -5.0,
	}
}

func Coordinated() Weights {
	return Weights{
		DamageDealtReward:  8.0,
		SurvivalReward:     0.1,
		CoordinationReward: 10.0,
		PositioningReward:  1.0,
		DeathPenalty:       -50.0,
		TimeoutPenalty:     -10.0,
	}
}

var presets = map[string]func() Weights{
	"default":     Default,
	"aggressive":  Aggressive,
	"defensive":   Defensive,
	"coordinated": Coordinated,
}

// Preset resolves a named weight profile case-insensitively.
func Preset(name string) (Weights, bool) {
	fn, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Weights{}, false
	}
	return fn(), true
}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (w Weights) Valid() bool {
	return w.DamageDealtReward >= 0 &&
		w.SurvivalReward >= 0 &&
		w.CoordinationReward >= 0 &&
		w.PositioningReward >= 0 &&
		w.DeathPenalty <= 0 &&
		w.TimeoutPenalty <= 0
}

// Scale multiplies every coefficient by factor. Signs follow the factor, so a
// negative factor produces weights that fail Valid.
func Scale(w Weights, factor float64) Weights {
	return Weights{
		DamageDealtReward:  w.DamageDealtReward * factor,
		SurvivalReward:     w.SurvivalReward * factor,
		CoordinationReward: w.CoordinationReward * factor,
		PositioningReward:  w.PositioningReward * factor,
		DeathPenalty:       w.DeathPenalty * factor,
		TimeoutPenalty:     w.TimeoutPenalty * factor,
	}
}

// Lerp blends a toward b. t is clamped to [0, 1].
func Lerp(a, b Weights, t float64) Weights {
	t = clamp01(t)
	return Weights{
		DamageDealtReward:  lerp(a.DamageDealtReward, b.DamageDealtReward, t),
		SurvivalReward:     lerp(a.SurvivalReward, b.SurvivalReward, t),
		CoordinationReward: lerp(a.CoordinationReward, b.CoordinationReward, t),
		PositioningReward:  lerp(a.PositioningReward, b.PositioningReward, t),
		DeathPenalty:       lerp(a.DeathPenalty, b.DeathPenalty, t),
		TimeoutPenalty:     lerp(a.TimeoutPenalty, b.TimeoutPenalty, t),
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(t float64) float64 {
	if t < 0 || math.IsNaN(t) {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
