package state

// VectorSize is the length of an encoded observation.
const VectorSize = 20

// Offsets into the encoded vector.
const (
	idxAgentPosX = iota
	idxAgentPosY
	idxAgentVelX
	idxAgentVelY
	idxAgentHealth
	idxOpponentPosX
	idxOpponentPosY
	idxOpponentVelX
	idxOpponentVelY
	idxOpponentHealth
	idxTimeSinceAttack
	idxDistanceToOpponent
	idxMonstersInRange
	idxAlliesStart
	idxObstaclesStart   = idxAlliesStart + 2*MaxAllies
	idxObstacleDistance = idxObstaclesStart + 2*MaxObstacles
)

// Encode lays o out as a VectorSize vector. Ally and obstacle lists are
// zero-padded up to capacity and truncated beyond it. The trailing slot holds
// the distance from the agent to the first obstacle, or 0 when there is none.
func Encode(o Observation) []float64 {
	out := make([]float64, VectorSize)
	out[idxAgentPosX] = o.AgentPosition.X
	out[idxAgentPosY] = o.AgentPosition.Y
	out[idxAgentVelX] = o.AgentVelocity.X
	out[idxAgentVelY] = o.AgentVelocity.Y
	out[idxAgentHealth] = o.AgentHealth
	out[idxOpponentPosX] = o.OpponentPosition.X
	out[idxOpponentPosY] = o.OpponentPosition.Y
	out[idxOpponentVelX] = o.OpponentVelocity.X
	out[idxOpponentVelY] = o.OpponentVelocity.Y
	out[idxOpponentHealth] = o.OpponentHealth
	out[idxTimeSinceAttack] = o.TimeSinceLastAttack
	out[idxDistanceToOpponent] = o.DistanceToOpponent
	out[idxMonstersInRange] = float64(o.MonstersInRange)

	for i := 0; i < MaxAllies && i < len(o.NearbyAllies); i++ {
		out[idxAlliesStart+2*i] = o.NearbyAllies[i].X
		out[idxAlliesStart+2*i+1] = o.NearbyAllies[i].Y
	}
	for i := 0; i < MaxObstacles && i < len(o.NearbyObstacles); i++ {
		out[idxObstaclesStart+2*i] = o.NearbyObstacles[i].X
		out[idxObstaclesStart+2*i+1] = o.NearbyObstacles[i].Y
	}
	if len(o.NearbyObstacles) > 0 {
		out[idxObstacleDistance] = o.AgentPosition.Distance(o.NearbyObstacles[0])
	}
	return out
}

// Decode rebuilds an observation from an encoded vector. A vector shorter
// than VectorSize is treated as no data and yields the zero observation with
// padded lists. The obstacle distance slot is ignored, the distance to the
// opponent is recomputed from the decoded positions and the monster count is
// truncated toward zero.
func Decode(v []float64) Observation {
	if len(v) < VectorSize {
		return Observation{}.Padded()
	}

	o := Observation{
		AgentPosition:       Vec2{X: v[idxAgentPosX], Y: v[idxAgentPosY]},
		AgentVelocity:       Vec2{X: v[idxAgentVelX], Y: v[idxAgentVelY]},
		AgentHealth:         v[idxAgentHealth],
		OpponentPosition:    Vec2{X: v[idxOpponentPosX], Y: v[idxOpponentPosY]},
		OpponentVelocity:    Vec2{X: v[idxOpponentVelX], Y: v[idxOpponentVelY]},
		OpponentHealth:      v[idxOpponentHealth],
		TimeSinceLastAttack: v[idxTimeSinceAttack],
		MonstersInRange:     int(v[idxMonstersInRange]),
		NearbyAllies:        make([]Vec2, MaxAllies),
		NearbyObstacles:     make([]Vec2, MaxObstacles),
	}
	for i := 0; i < MaxAllies; i++ {
		o.NearbyAllies[i] = Vec2{X: v[idxAlliesStart+2*i], Y: v[idxAlliesStart+2*i+1]}
	}
	for i := 0; i < MaxObstacles; i++ {
		o.NearbyObstacles[i] = Vec2{X: v[idxObstaclesStart+2*i], Y: v[idxObstaclesStart+2*i+1]}
	}
	o.DistanceToOpponent = o.AgentPosition.Distance(o.OpponentPosition)
	return o
}
