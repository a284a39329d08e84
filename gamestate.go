package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// Settings is the immutable per-session configuration. Distances are in map
// units between circle centers.
type Settings struct {
	Speed          float64
	KillDistance   float64
	TaskDistance   float64
	ReportDistance float64
	VotingTime     time.Duration
}

// DefaultSettings returns the tuning the game ships with.
func DefaultSettings() Settings {
	return Settings{
		Speed:          2.0,
		TaskDistance:   32.0,
		KillDistance:   64.0,
		ReportDistance: 96.0,
		VotingTime:     120 * time.Second,
	}
}

// timeStepsPassed converts elapsed wall time into multiples of the 16ms
// reference step, so motion scales linearly with real time regardless of how
// often Simulate is invoked.
func timeStepsPassed(elapsed time.Duration) float64 {
	return float64(elapsed.Nanoseconds()) / float64((16 * time.Millisecond).Nanoseconds())
}

// GameState is the authoritative state of one session. It is not safe for
// concurrent use: a single serialized caller (the session loop) must own all
// mutation, per the single-writer discipline.
type GameState struct {
	Status   GameStatus
	Settings Settings
	Map      *GameMap
	Players  map[UUID]*Player
	Bodies   []DeadBody

	rng *rand.Rand
}

// NewGameState creates a session in the Connecting state. The RNG is
// injected so impostor selection, spawns and task placement are
// reproducible under a fixed seed.
func NewGameState(rng *rand.Rand) *GameState {
	return &GameState{
		Status:   Connecting{},
		Settings: DefaultSettings(),
		Map:      FirstMap(),
		Players:  make(map[UUID]*Player),
		rng:      rng,
	}
}

// Simulate advances the session by the elapsed wall time. It returns true
// once the session has reached a terminal state.
func (gs *GameState) Simulate(elapsed time.Duration) bool {
	gs.progressTime(elapsed)
	switch status := gs.Status.(type) {
	case Lobby:
		gs.simulateMovement(elapsed)
	case Playing:
		switch play := status.State.(type) {
		case Night:
			gs.simulateMovement(elapsed)
		case Day:
			// Movement is suspended during the day; only the vote runs.
			if gs.isDayOver(play.State) {
				gs.endDay(play.State)
			}
		}
	case Connecting, Won, Disconnected:
		// Nothing to simulate.
	}
	return gs.Status.Finished()
}

func (gs *GameState) progressTime(elapsed time.Duration) {
	if day, ok := gs.DayState(); ok {
		day.ProgressTime(elapsed)
	}
}

// DayState returns the current day's state, if the session is in a day.
func (gs *GameState) DayState() (*DayState, bool) {
	if playing, ok := gs.Status.(Playing); ok {
		if day, ok := playing.State.(Day); ok {
			return day.State, true
		}
	}
	return nil, false
}

// simulateMovement advances every moving player, resolving collisions
// against the static geometry and clamping into map bounds. Two calls with
// elapsed e1 then e2 land exactly where one call with e1+e2 would, absent
// collisions.
func (gs *GameState) simulateMovement(elapsed time.Duration) {
	steps := timeStepsPassed(elapsed)
	for _, player := range gs.Players {
		if player.Speed.IsZero() {
			continue
		}

		movement := player.Speed.Scale(steps)
		for _, shape := range gs.Map.StaticGeometry {
			movement = shape.Collide(player.Position, PlayerRadius, movement)
		}

		newPos := player.Position.Add(movement)
		player.Position = gs.Map.ConstrainCircleWithinBounds(newPos, PlayerRadius)
	}
}

// isDayOver holds once the countdown hits zero or every living player has
// cast a vote.
func (gs *GameState) isDayOver(day *DayState) bool {
	if day.TimeRemaining <= 0 {
		return true
	}
	for uuid, player := range gs.Players {
		if !player.EligibleToVote() {
			continue
		}
		if _, voted := day.Votes[uuid]; !voted {
			return false
		}
	}
	return true
}

// endDay resolves the election, applies its effect, and flips to night.
func (gs *GameState) endDay(day *DayState) {
	switch winner := day.DetermineElectionWinner(); {
	case winner.Skip:
		// The crew have chosen a strange mercy.
	default:
		if player, ok := gs.Players[winner.Player]; ok {
			player.Dead = true
		}
	}
	gs.checkForVictories()
	gs.Bodies = nil
	gs.PlacePlayersAroundTable()
	if _, ok := gs.Status.(Playing); ok {
		// A victory during the transition is final; only flip to night if
		// the game is still going.
		gs.Status = Playing{State: Night{}}
	}
}

// tableCenter and tableSeatRadius define the circular seating arrangement
// used at the start of each round and after every meeting.
var tableCenter = Position{X: 275.0, Y: 275.0}

const tableSeatRadius = 100.0

// PlacePlayersAroundTable seats everyone evenly around the conference table
// and zeroes their velocity. Iteration is in UUID order so every host
// computes the same seats.
func (gs *GameState) PlacePlayersAroundTable() {
	ids := gs.sortedPlayerIDs()
	numPlayers := float64(len(ids))
	for i, uuid := range ids {
		player := gs.Players[uuid]
		angle := (float64(i) / numPlayers) * 2.0 * math.Pi
		player.Position = Position{
			X: tableCenter.X + tableSeatRadius*math.Sin(angle),
			Y: tableCenter.Y + tableSeatRadius*math.Cos(angle),
		}
		player.Speed = Speed{}
	}
}

// sortedPlayerIDs returns the roster keys in byte order. Map iteration order
// would otherwise leak into seating and impostor selection.
func (gs *GameState) sortedPlayerIDs() []UUID {
	ids := make([]UUID, 0, len(gs.Players))
	for uuid := range gs.Players {
		ids = append(ids, uuid)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return ids
}

// AddPlayer joins a new player while the session is still forming. The first
// join moves Connecting to Lobby. Colors are unique per session; a full
// color pool means the session is full.
func (gs *GameState) AddPlayer(name string) (*Player, error) {
	switch gs.Status.(type) {
	case Connecting, Lobby:
	default:
		return nil, fmt.Errorf("cannot join: game status is %s", gs.Status.statusName())
	}

	color, ok := gs.freeColor()
	if !ok {
		return nil, fmt.Errorf("cannot join: no free colors, session is full")
	}

	player := NewPlayer(RandomUUID(gs.rng), name, color, gs.Map.RandomPosition(gs.rng))
	gs.Players[player.UUID] = player
	gs.Status = Lobby{}
	return player, nil
}

// freeColor picks the first color not already worn by a player.
func (gs *GameState) freeColor() (Color, bool) {
	taken := make(map[Color]bool, len(gs.Players))
	for _, player := range gs.Players {
		taken[player.Color] = true
	}
	for _, color := range AllColors() {
		if !taken[color] {
			return color, true
		}
	}
	return 0, false
}

// GetGameStartInfo draws the round assignments: exactly one impostor chosen
// uniformly among the current players, and a fresh task list for everyone.
func (gs *GameState) GetGameStartInfo() StartInfo {
	ids := gs.sortedPlayerIDs()
	impostorIndex := gs.rng.Intn(len(ids))

	assignments := make([]PlayerStartInfo, 0, len(ids))
	for i, uuid := range ids {
		info := PlayerStartInfo{
			UUID:  uuid,
			Team:  TeamCrew,
			Tasks: make([]Task, 0, TasksPerPlayer),
		}
		if i == impostorIndex {
			info.Team = TeamImpostors
		}
		for t := 0; t < TasksPerPlayer; t++ {
			info.Tasks = append(info.Tasks, gs.Map.RandomTask(gs.rng))
		}
		assignments = append(assignments, info)
	}
	return StartInfo{Assignments: assignments}
}

// NoteGameStarted applies the round assignments and begins the first night.
// Only legal from the lobby; an assignment for an unknown player fails the
// whole call without touching state.
func (gs *GameState) NoteGameStarted(startInfo *StartInfo) error {
	if _, ok := gs.Status.(Lobby); !ok {
		return fmt.Errorf("got a message to start a game when not in the lobby, game status: %s",
			gs.Status.statusName())
	}
	for _, info := range startInfo.Assignments {
		if _, ok := gs.Players[info.UUID]; !ok {
			return fmt.Errorf("unable to find player with uuid %s when starting game", info.UUID)
		}
	}
	for _, info := range startInfo.Assignments {
		player := gs.Players[info.UUID]
		player.Impostor = info.Team == TeamImpostors
		player.Tasks = append([]Task(nil), info.Tasks...)
	}
	gs.Status = Playing{State: Night{}}
	gs.PlacePlayersAroundTable()
	return nil
}

// StartGame is the one-shot form: draw assignments and apply them.
func (gs *GameState) StartGame() error {
	if _, ok := gs.Status.(Lobby); !ok {
		return fmt.Errorf("got a message to start a game when not in the lobby, game status: %s",
			gs.Status.statusName())
	}
	startInfo := gs.GetGameStartInfo()
	return gs.NoteGameStarted(&startInfo)
}

// StartDay begins the discussion phase after a reported body. Only legal
// from night.
func (gs *GameState) StartDay() error {
	playing, ok := gs.Status.(Playing)
	if !ok {
		return fmt.Errorf("cannot start a day: game status is %s", gs.Status.statusName())
	}
	if _, ok := playing.State.(Night); !ok {
		return fmt.Errorf("cannot start a day: already in one")
	}
	gs.Status = Playing{State: Day{State: NewDayState(gs.Settings.VotingTime)}}
	return nil
}

// CastVote records one ballot. A later vote from the same player overwrites
// the earlier one.
func (gs *GameState) CastVote(voter UUID, target VoteTarget) error {
	day, ok := gs.DayState()
	if !ok {
		return fmt.Errorf("cannot vote: game status is %s", gs.Status.statusName())
	}
	player, ok := gs.Players[voter]
	if !ok {
		return fmt.Errorf("cannot vote: no player with uuid %s", voter)
	}
	if !player.EligibleToVote() {
		return fmt.Errorf("cannot vote: %s is dead", player.Name)
	}
	day.Votes[voter] = target
	return nil
}

// NoteDeath marks every player wearing the body's color dead, records the
// body, and checks whether the impostors just won. Repeated reports for an
// already-dead player are harmless.
func (gs *GameState) NoteDeath(body DeadBody) error {
	for _, player := range gs.Players {
		if player.Color == body.Color {
			player.Dead = true
		}
	}
	gs.Bodies = append(gs.Bodies, body)
	gs.checkForImpostorWin()
	return nil
}

// NoteFinishedTask marks the given task finished. Unknown players or indices
// are tolerated silently; the host may deliver events for entities this
// state no longer recognizes.
func (gs *GameState) NoteFinishedTask(playerUUID UUID, finished FinishedTask) error {
	if player, ok := gs.Players[playerUUID]; ok {
		if finished.Index >= 0 && finished.Index < len(player.Tasks) {
			player.Tasks[finished.Index].Finished = true
		}
	}
	gs.checkForCrewWin()
	return nil
}

// HandleDisconnection removes a player from the roster. An empty roster ends
// the session unconditionally; otherwise victories are re-evaluated and any
// votes naming the leaver are purged so their voters can re-cast.
func (gs *GameState) HandleDisconnection(disconnected UUID) {
	delete(gs.Players, disconnected)
	if len(gs.Players) == 0 {
		gs.Status = Disconnected{}
		return
	}
	gs.checkForVictories()
	if day, ok := gs.DayState(); ok {
		for voter, target := range day.Votes {
			if !target.Skip && target.Player == disconnected {
				delete(day.Votes, voter)
			}
		}
	}
}

func (gs *GameState) win(team Team) {
	gs.Status = Won{Winner: team}
}

// inPlay reports whether the session is in the night/day cycle. Victory
// checks outside of play would trip vacuously (a lobby roster has no tasks),
// so both checks require it.
func (gs *GameState) inPlay() bool {
	_, ok := gs.Status.(Playing)
	return ok
}

// checkForImpostorWin: impostors win when the living impostors are at least
// as many as the living crew.
func (gs *GameState) checkForImpostorWin() {
	if !gs.inPlay() {
		return
	}
	impostorCount, crewCount := 0, 0
	for _, player := range gs.Players {
		if player.Dead {
			continue
		}
		if player.Impostor {
			impostorCount++
		} else {
			crewCount++
		}
	}
	if impostorCount >= crewCount {
		gs.win(TeamImpostors)
	}
}

// checkForCrewWin: the crew wins once every non-impostor has finished every
// task.
func (gs *GameState) checkForCrewWin() {
	if !gs.inPlay() {
		return
	}
	for _, player := range gs.Players {
		if player.Impostor {
			continue
		}
		for _, task := range player.Tasks {
			if !task.Finished {
				return
			}
		}
	}
	gs.win(TeamCrew)
}

// checkForVictories re-evaluates both win conditions. Only meaningful while
// the game is actually in play.
func (gs *GameState) checkForVictories() {
	switch gs.Status.(type) {
	case Playing:
	default:
		return
	}
	gs.checkForCrewWin()
	gs.checkForImpostorWin()
}
