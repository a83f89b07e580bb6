package reward

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}

func weightsAlmostEqual(a, b Weights) bool {
	return almostEqual(a.DamageDealtReward, b.DamageDealtReward) &&
		almostEqual(a.SurvivalReward, b.SurvivalReward) &&
		almostEqual(a.CoordinationReward, b.CoordinationReward) &&
		almostEqual(a.PositioningReward, b.PositioningReward) &&
		almostEqual(a.DeathPenalty, b.DeathPenalty) &&
		almostEqual(a.TimeoutPenalty, b.TimeoutPenalty)
}

func TestComputeDefaultWeights(t *testing.T) {
	got := Compute(Default(), Outcome{DamageDealt: 2, SurvivalTime: 3, IsDead: true})
	if !almostEqual(got, -29.7) {
		t.Fatalf("expected -29.7, got %f", got)
	}
}

func TestComputeAllTerms(t *testing.T) {
	w := Weights{
		DamageDealtReward:  1,
		SurvivalReward:     2,
		CoordinationReward: 3,
		PositioningReward:  4,
		DeathPenalty:       -5,
		TimeoutPenalty:     -6,
	}
	o := Outcome{DamageDealt: 1, SurvivalTime: 1, CoordinationBonus: 1, PositioningBonus: 1, IsDead: true, IsTimeout: true}
	if got := Compute(w, o); got != -1 {
		t.Fatalf("expected -1, got %f", got)
	}
	o.IsDead = false
	o.IsTimeout = false
	if got := Compute(w, o); got != 10 {
		t.Fatalf("expected 10 without penalties, got %f", got)
	}
}

func TestComputeIsUnclamped(t *testing.T) {
	got := Compute(Default(), Outcome{DamageDealt: 1e6})
	if got != 1e7 {
		t.Fatalf("expected unclamped reward, got %f", got)
	}
	got = Compute(Default(), Outcome{DamageDealt: -3})
	if got != -30 {
		t.Fatalf("expected negative reward from negative damage, got %f", got)
	}
}

func TestBreakdownTotalsToCompute(t *testing.T) {
	o := Outcome{DamageDealt: 4, SurvivalTime: 12, CoordinationBonus: 0.5, PositioningBonus: 2, IsTimeout: true}
	terms := Breakdown(Coordinated(), o)
	if terms.Death != 0 || terms.Timeout != -10 {
		t.Fatalf("unexpected penalty terms: %+v", terms)
	}
	if !almostEqual(terms.Total(), Compute(Coordinated(), o)) {
		t.Fatalf("expected breakdown total %f to match compute %f", terms.Total(), Compute(Coordinated(), o))
	}
}

func TestScale(t *testing.T) {
	w := Default()
	scaled := Scale(w, 2.0)
	want := Weights{
		DamageDealtReward:  2 * w.DamageDealtReward,
		SurvivalReward:     2 * w.SurvivalReward,
		CoordinationReward: 2 * w.CoordinationReward,
		PositioningReward:  2 * w.PositioningReward,
		DeathPenalty:       2 * w.DeathPenalty,
		TimeoutPenalty:     2 * w.TimeoutPenalty,
	}
	if scaled != want {
		t.Fatalf("unexpected scaled weights: %+v", scaled)
	}
	if Scale(w, -1).Valid() {
		t.Fatal("expected sign-flipped weights to be invalid")
	}
}

func TestLerpEndpointsAndClamp(t *testing.T) {
	a := Aggressive()
	b := Defensive()
	if got := Lerp(a, b, 0); got != a {
		t.Fatalf("expected a at t=0, got %+v", got)
	}
	if got := Lerp(a, b, 1); !weightsAlmostEqual(got, b) {
		t.Fatalf("expected b at t=1, got %+v", got)
	}
	if Lerp(a, b, -1) != Lerp(a, b, 0) {
		t.Fatal("expected t<0 clamped to 0")
	}
	if Lerp(a, b, 7) != Lerp(a, b, 1) {
		t.Fatal("expected t>1 clamped to 1")
	}
	if Lerp(a, b, math.NaN()) != a {
		t.Fatal("expected NaN t treated as 0")
	}
	mid := Lerp(a, b, 0.5)
	if !almostEqual(mid.DamageDealtReward, 12.5) || !almostEqual(mid.DeathPenalty, -65) {
		t.Fatalf("unexpected midpoint: %+v", mid)
	}
}

func TestValid(t *testing.T) {
	for _, name := range PresetNames() {
		w, ok := Preset(name)
		if !ok {
			t.Fatalf("expected preset %s", name)
		}
		if !w.Valid() {
			t.Fatalf("expected preset %s to be valid: %+v", name, w)
		}
	}
	bad := Default()
	bad.DeathPenalty = 1
	if bad.Valid() {
		t.Fatal("expected positive death penalty to be invalid")
	}
	bad = Default()
	bad.SurvivalReward = -0.1
	if bad.Valid() {
		t.Fatal("expected negative survival reward to be invalid")
	}
	if !(Weights{}).Valid() {
		t.Fatal("expected zero weights to be valid")
	}
}

func TestPresetLookup(t *testing.T) {
	w, ok := Preset(" Aggressive ")
	if !ok || w != Aggressive() {
		t.Fatalf("expected aggressive preset, got %+v ok=%t", w, ok)
	}
	if _, ok := Preset("berserk"); ok {
		t.Fatal("expected unknown preset to fail")
	}
	names := PresetNames()
	if len(names) != 4 || names[0] != "aggressive" || names[3] != "defensive" {
		t.Fatalf("unexpected preset names: %v", names)
	}
}
