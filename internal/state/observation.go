package state

import "math"

const (
	MaxAllies    = 2
	MaxObstacles = 1
)

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Distance(other Vec2) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

func (v Vec2) finite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

// Observation is the per-tick situation of one enemy agent. The agent is the
// enemy, the opponent is the player it hunts.
type Observation struct {
	AgentPosition       Vec2    `json:"agent_position"`
	AgentVelocity       Vec2    `json:"agent_velocity"`
	AgentHealth         float64 `json:"agent_health"`
	OpponentPosition    Vec2    `json:"opponent_position"`
	OpponentVelocity    Vec2    `json:"opponent_velocity"`
	OpponentHealth      float64 `json:"opponent_health"`
	NearbyAllies        []Vec2  `json:"nearby_allies"`
	NearbyObstacles     []Vec2  `json:"nearby_obstacles"`
	TimeSinceLastAttack float64 `json:"time_since_last_attack"`
	DistanceToOpponent  float64 `json:"distance_to_opponent"`
	MonstersInRange     int     `json:"monsters_in_range"`
}

// Padded returns a copy whose ally and obstacle lists hold exactly their
// capacity. Extra entries are dropped and missing ones sit at the origin.
func (o Observation) Padded() Observation {
	out := o
	out.NearbyAllies = padded(o.NearbyAllies, MaxAllies)
	out.NearbyObstacles = padded(o.NearbyObstacles, MaxObstacles)
	return out
}

// Clone returns a copy that shares no slices with o.
func Clone(o Observation) Observation {
	out := o
	if o.NearbyAllies != nil {
		out.NearbyAllies = append(make([]Vec2, 0, len(o.NearbyAllies)), o.NearbyAllies...)
	}
	if o.NearbyObstacles != nil {
		out.NearbyObstacles = append(make([]Vec2, 0, len(o.NearbyObstacles)), o.NearbyObstacles...)
	}
	return out
}

// Validate reports whether every number in o is finite and the health, time,
// distance and count fields are non-negative.
func Validate(o Observation) bool {
	if !o.AgentPosition.finite() || !o.AgentVelocity.finite() ||
		!o.OpponentPosition.finite() || !o.OpponentVelocity.finite() {
		return false
	}
	for _, v := range []float64{o.AgentHealth, o.OpponentHealth, o.TimeSinceLastAttack, o.DistanceToOpponent} {
		if !isFinite(v) || v < 0 {
			return false
		}
	}
	if o.MonstersInRange < 0 {
		return false
	}
	for _, p := range o.NearbyAllies {
		if !p.finite() {
			return false
		}
	}
	for _, p := range o.NearbyObstacles {
		if !p.finite() {
			return false
		}
	}
	return true
}

func padded(in []Vec2, capacity int) []Vec2 {
	out := make([]Vec2, capacity)
	copy(out, in)
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
