package main

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate       = 60 // simulation ticks per second
	BroadcastRate  = 30 // state broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

// Broadcaster is the client-facing side of a connection
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Game owns one session's simulation. It serializes all access to the
// GameState behind its mutex: the tick loop and the websocket event handlers
// are the only callers, and the core itself does no locking.
type Game struct {
	mu       sync.Mutex
	state    *GameState
	clients  map[UUID]Broadcaster
	tick     uint64
	running  bool
	finished bool
	stop     chan struct{}

	db        *DB
	startedAt time.Time
}

// NewGame creates a session simulation seeded from the given source.
func NewGame(db *DB, seed int64) *Game {
	return &Game{
		state:   NewGameState(rand.New(rand.NewSource(seed))),
		clients: make(map[UUID]Broadcaster),
		stop:    make(chan struct{}),
		db:      db,
	}
}

// Run drives the simulation until the session ends. Elapsed wall time is
// measured each tick, so the sim stays correct even if the ticker slips.
func (g *Game) Run() {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			g.update(now.Sub(last))
			last = now
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()
}

func (g *Game) stopLocked() {
	if g.running {
		g.running = false
		close(g.stop)
	}
}

// update runs one tick
func (g *Game) update(elapsed time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tick++
	before := g.state.Status.statusName()
	done := g.state.Simulate(elapsed)
	after := g.state.Status.statusName()

	if before == "day" && after == "night" {
		g.broadcastJSON(Envelope{T: MsgNight})
	}

	if g.tick%BroadcastEvery == 0 {
		g.broadcastState()
	}
	if done {
		g.finishLocked()
	}
}

// AddPlayer joins a player to the session's lobby
func (g *Game) AddPlayer(name string) (*Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.AddPlayer(name)
}

// RemovePlayer handles a disconnection
func (g *Game) RemovePlayer(uuid UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.clients, uuid)
	g.state.HandleDisconnection(uuid)
	if g.state.Status.Finished() {
		g.finishLocked()
	}
}

// SetClient associates a connection with a player
func (g *Game) SetClient(uuid UUID, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[uuid] = client
}

// PlayerCount returns the roster size
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.state.Players)
}

// HandleInput applies a velocity update. The simulation trusts whatever it
// is handed, so the speed cap is enforced here at the boundary.
func (g *Game) HandleInput(uuid UUID, input InputMsg) {
	g.mu.Lock()
	defer g.mu.Unlock()

	player, ok := g.state.Players[uuid]
	if !ok {
		return
	}
	speed := Speed{DX: input.DX, DY: input.DY}
	if max := g.state.Settings.Speed; speed.Magnitude() > max {
		speed = speed.Normalize().Scale(max)
	}
	player.Speed = speed
}

// HandleStart begins the round: one impostor is drawn, tasks are dealt, and
// each player is privately told their own assignment.
func (g *Game) HandleStart(uuid UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.state.Players[uuid]; !ok {
		return fmt.Errorf("unknown player")
	}
	if _, ok := g.state.Status.(Lobby); !ok {
		return fmt.Errorf("cannot start: game status is %s", g.state.Status.statusName())
	}

	startInfo := g.state.GetGameStartInfo()
	if err := g.state.NoteGameStarted(&startInfo); err != nil {
		return err
	}
	g.startedAt = time.Now()

	for _, info := range startInfo.Assignments {
		client, ok := g.clients[info.UUID]
		if !ok {
			continue
		}
		client.SendJSON(Envelope{T: MsgStarted, Data: StartedMsg{
			Impostor: info.Team == TeamImpostors,
			Tasks:    taskViews(info.Tasks),
		}})
	}
	g.broadcastState()
	return nil
}

// HandleKill validates an impostor kill attempt and records the death.
func (g *Game) HandleKill(killer UUID, targetID UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	playing, ok := g.state.Status.(Playing)
	if !ok {
		return fmt.Errorf("cannot kill: game status is %s", g.state.Status.statusName())
	}
	if _, ok := playing.State.(Night); !ok {
		return fmt.Errorf("cannot kill during the day")
	}

	attacker, ok := g.state.Players[killer]
	if !ok || !attacker.Impostor || attacker.Dead {
		return fmt.Errorf("not a living impostor")
	}
	victim, ok := g.state.Players[targetID]
	if !ok || victim.Dead || victim.Impostor {
		return fmt.Errorf("invalid kill target")
	}
	if attacker.Position.Distance(victim.Position) > g.state.Settings.KillDistance {
		return fmt.Errorf("target out of range")
	}

	if err := g.state.NoteDeath(DeadBody{Color: victim.Color, Position: victim.Position}); err != nil {
		return err
	}
	if g.state.Status.Finished() {
		g.finishLocked()
	}
	return nil
}

// HandleReport starts the day if the reporter is standing near a body.
func (g *Game) HandleReport(reporter UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	player, ok := g.state.Players[reporter]
	if !ok || player.Dead {
		return fmt.Errorf("reporter is not a living player")
	}

	near := false
	for _, body := range g.state.Bodies {
		if player.Position.Distance(body.Position) <= g.state.Settings.ReportDistance {
			near = true
			break
		}
	}
	if !near {
		return fmt.Errorf("no body within report distance")
	}

	if err := g.state.StartDay(); err != nil {
		return err
	}
	day, _ := g.state.DayState()
	g.broadcastJSON(Envelope{T: MsgDay, Data: DayMsg{TimeRemainingMS: day.TimeRemaining.Milliseconds()}})
	return nil
}

// HandleVote casts a ballot. Target is a player uuid or "skip".
func (g *Game) HandleVote(voter UUID, target string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	voteTarget := SkipVote()
	if target != "skip" {
		uuid, err := ParseUUID(target)
		if err != nil {
			return err
		}
		if _, ok := g.state.Players[uuid]; !ok {
			return fmt.Errorf("cannot vote for unknown player %s", uuid)
		}
		voteTarget = PlayerVote(uuid)
	}
	return g.state.CastVote(voter, voteTarget)
}

// HandleTask validates proximity and marks a task finished.
func (g *Game) HandleTask(uuid UUID, index int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	playing, ok := g.state.Status.(Playing)
	if !ok {
		return fmt.Errorf("cannot finish a task: game status is %s", g.state.Status.statusName())
	}
	if _, ok := playing.State.(Night); !ok {
		return fmt.Errorf("cannot finish a task during the day")
	}

	player, ok := g.state.Players[uuid]
	if !ok || player.Dead || player.Impostor {
		return fmt.Errorf("not a living crew member")
	}
	if index < 0 || index >= len(player.Tasks) {
		return fmt.Errorf("no task at index %d", index)
	}
	if player.Position.Distance(player.Tasks[index].Position) > g.state.Settings.TaskDistance {
		return fmt.Errorf("task out of range")
	}

	if err := g.state.NoteFinishedTask(uuid, FinishedTask{Index: index}); err != nil {
		return err
	}
	if g.state.Status.Finished() {
		g.finishLocked()
	}
	return nil
}

// finishLocked records the outcome, tells everyone, and stops the loop.
// Caller must hold the lock.
func (g *Game) finishLocked() {
	if g.finished {
		return
	}
	g.finished = true

	outcome := OutcomeMsg{}
	if won, ok := g.state.Status.(Won); ok {
		outcome.Winner = won.Winner.String()
	}
	g.broadcastJSON(Envelope{T: MsgOutcome, Data: outcome})
	g.broadcastState()

	if g.db != nil {
		if won, ok := g.state.Status.(Won); ok {
			duration := time.Duration(0)
			if !g.startedAt.IsZero() {
				duration = time.Since(g.startedAt)
			}
			if err := g.db.RecordMatch(won.Winner, duration, g.state.Players); err != nil {
				log.Printf("record match: %v", err)
			}
		}
	}
	g.stopLocked()
}

// broadcastState sends the current snapshot to all clients as binary msgpack
func (g *Game) broadcastState() {
	data, err := msgpack.Marshal(snapshot(g.state, g.tick))
	if err != nil {
		log.Printf("snapshot marshal: %v", err)
		return
	}
	for _, client := range g.clients {
		client.SendBinary(data)
	}
}

// broadcastJSON sends a control message to all clients
func (g *Game) broadcastJSON(msg Envelope) {
	for _, client := range g.clients {
		client.SendJSON(msg)
	}
}
