package main

import "time"

// Team is one of the two factions.
type Team int

const (
	TeamCrew Team = iota
	TeamImpostors
)

func (t Team) String() string {
	if t == TeamImpostors {
		return "impostors"
	}
	return "crew"
}

// GameStatus is the top-level phase of a session. Each variant carries only
// the data that exists in that phase, so e.g. a DayState is only reachable
// while the session is actually in a day.
//
//	Connecting -> Lobby -> Playing(Night) <-> Playing(Day) -> Won | Disconnected
type GameStatus interface {
	// Finished reports whether the session has reached a terminal state.
	Finished() bool
	statusName() string
}

// Connecting is the initial state, before any player is authoritative.
type Connecting struct{}

// Lobby has players joined but the game not yet started.
type Lobby struct{}

// Playing wraps the night/day cycle.
type Playing struct {
	State PlayState
}

// Won is terminal: one team has met its victory condition.
type Won struct {
	Winner Team
}

// Disconnected is terminal: the roster emptied out.
type Disconnected struct{}

func (Connecting) Finished() bool   { return false }
func (Lobby) Finished() bool        { return false }
func (Playing) Finished() bool      { return false }
func (Won) Finished() bool          { return true }
func (Disconnected) Finished() bool { return true }

func (Connecting) statusName() string   { return "connecting" }
func (Lobby) statusName() string        { return "lobby" }
func (s Playing) statusName() string    { return s.State.playStateName() }
func (Won) statusName() string          { return "won" }
func (Disconnected) statusName() string { return "disconnected" }

// PlayState is the in-game sub-phase.
type PlayState interface {
	playStateName() string
}

// Night is the free movement and task phase.
type Night struct{}

// Day is the discussion-and-voting phase following a reported death.
type Day struct {
	State *DayState
}

func (Night) playStateName() string { return "night" }
func (Day) playStateName() string   { return "day" }

// DayState holds the votes cast so far and the voting countdown.
type DayState struct {
	Votes         map[UUID]VoteTarget
	TimeRemaining time.Duration
}

// NewDayState starts a fresh day with an empty ballot.
func NewDayState(votingTime time.Duration) *DayState {
	return &DayState{
		Votes:         make(map[UUID]VoteTarget),
		TimeRemaining: votingTime,
	}
}

// ProgressTime advances the countdown, saturating at zero.
func (d *DayState) ProgressTime(elapsed time.Duration) {
	if elapsed >= d.TimeRemaining {
		d.TimeRemaining = 0
		return
	}
	d.TimeRemaining -= elapsed
}
