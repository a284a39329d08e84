package main

// PlayerRadius is the collision radius of every player circle.
const PlayerRadius = 10.0

// TasksPerPlayer is how many task stations each crew member is assigned.
const TasksPerPlayer = 6

// Task is a position the owning player must visit to mark complete.
type Task struct {
	Position Position `json:"position"`
	Finished bool     `json:"finished"`
}

// Player is one member of the session. Position and Speed are owned by the
// simulation; everything else changes only through orchestrator events.
type Player struct {
	Name     string   `json:"name"`
	UUID     UUID     `json:"uuid"`
	Color    Color    `json:"color"`
	Position Position `json:"position"`
	Dead     bool     `json:"dead"`
	Impostor bool     `json:"impostor"`
	Tasks    []Task   `json:"tasks"`
	Speed    Speed    `json:"speed"`
}

// NewPlayer creates a living crew member with no tasks assigned yet.
func NewPlayer(uuid UUID, name string, color Color, position Position) *Player {
	return &Player{
		Name:     name,
		UUID:     uuid,
		Color:    color,
		Position: position,
	}
}

// EligibleToVote reports whether the player may cast a vote during the day.
func (p *Player) EligibleToVote() bool {
	return !p.Dead
}

// DeadBody is a snapshot of a death: the victim's color and where they fell.
// Bodies accumulate through a day and are cleared when night begins.
type DeadBody struct {
	Color    Color    `json:"color"`
	Position Position `json:"position"`
}

// FinishedTask reports completion of one task by index into the player's list.
type FinishedTask struct {
	Index int `json:"index"`
}

// PlayerStartInfo is one player's assignment for a new round.
type PlayerStartInfo struct {
	UUID  UUID   `json:"uuid"`
	Team  Team   `json:"team"`
	Tasks []Task `json:"tasks"`
}

// StartInfo carries every player's assignment. The host computes it once and
// applies it with NoteGameStarted so every peer agrees on roles.
type StartInfo struct {
	Assignments []PlayerStartInfo `json:"assignments"`
}
