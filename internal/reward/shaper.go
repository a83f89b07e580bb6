package reward

// Outcome is what the simulation reports for one step or episode.
type Outcome struct {
	DamageDealt       float64 `json:"damage_dealt"`
	SurvivalTime      float64 `json:"survival_time"`
	CoordinationBonus float64 `json:"coordination_bonus"`
	PositioningBonus  float64 `json:"positioning_bonus"`
	IsDead            bool    `json:"is_dead"`
	IsTimeout         bool    `json:"is_timeout"`
}

// Terms holds the signed contribution of each weight to a shaped reward.
type Terms struct {
	Damage       float64 `json:"damage"`
	Survival     float64 `json:"survival"`
	Coordination float64 `json:"coordination"`
	Positioning  float64 `json:"positioning"`
	Death        float64 `json:"death"`
	Timeout      float64 `json:"timeout"`
}

func (t Terms) Total() float64 {
	return t.Damage + t.Survival + t.Coordination + t.Positioning + t.Death + t.Timeout
}

func Breakdown(w Weights, o Outcome) Terms {
	terms := Terms{
		Damage:       o.DamageDealt * w.DamageDealtReward,
		Survival:     o.SurvivalTime * w.SurvivalReward,
		Coordination: o.CoordinationBonus * w.CoordinationReward,
		Positioning:  o.PositioningBonus * w.PositioningReward,
	}
	if o.IsDead {
		terms.Death = w.DeathPenalty
	}
	if o.IsTimeout {
		terms.Timeout = w.TimeoutPenalty
	}
	return terms
}

// Compute returns the weighted linear reward for o. The sum is not clamped.
func Compute(w Weights, o Outcome) float64 {
	return Breakdown(w, o).Total()
}
