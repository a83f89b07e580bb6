package action

import "strings"

// Action is a discrete decision a policy can select for an enemy agent.
type Action int

const (
	MoveTowardPlayer Action = iota
	MoveAwayFromPlayer
	MoveLeft
	MoveRight
	Attack
	Coordinate
	Flank
	Wait
)

// Count is the size of the action space.
const Count = 8

const (
	UnknownName  = "Unknown"
	UnknownColor = "#808080"
)

var names = [Count]string{
	MoveTowardPlayer:   "MoveTowardPlayer",
	MoveAwayFromPlayer: "MoveAwayFromPlayer",
	MoveLeft:           "MoveLeft",
	MoveRight:          "MoveRight",
	Attack:             "Attack",
	Coordinate:         "Coordinate",
	Flank:              "Flank",
	Wait:               "Wait",
}

var colors = [Count]string{
	MoveTowardPlayer:   "#e53935",
	MoveAwayFromPlayer: "#1e88e5",
	MoveLeft:           "#fdd835",
	MoveRight:          "#fb8c00",
	Attack:             "#8e24aa",
	Coordinate:         "#43a047",
	Flank:              "#00acc1",
	Wait:               "#ffffff",
}

func Valid(code int) bool {
	return code >= 0 && code < Count
}

// Name returns the display label for code, or UnknownName when code is
// outside the action space.
func Name(code int) string {
	if !Valid(code) {
		return UnknownName
	}
	return names[code]
}

// Color returns the debug overlay color for code, or UnknownColor when code
// is outside the action space.
func Color(code int) string {
	if !Valid(code) {
		return UnknownColor
	}
	return colors[code]
}

func All() []Action {
	out := make([]Action, 0, Count)
	for code := 0; code < Count; code++ {
		out = append(out, Action(code))
	}
	return out
}

// Parse resolves a label case-insensitively.
func Parse(label string) (Action, bool) {
	label = strings.TrimSpace(label)
	for code, name := range names {
		if strings.EqualFold(name, label) {
			return Action(code), true
		}
	}
	return 0, false
}

func (a Action) Valid() bool { return Valid(int(a)) }

func (a Action) String() string { return Name(int(a)) }

func (a Action) Color() string { return Color(int(a)) }
