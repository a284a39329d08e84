package main

import (
	"sync"
	"testing"
)

// mockBroadcaster captures sent messages for testing
type mockBroadcaster struct {
	mu       sync.Mutex
	messages []interface{}
	binary   [][]byte
}

func (m *mockBroadcaster) SendJSON(msg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

func (m *mockBroadcaster) SendBinary(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.binary = append(m.binary, data)
}

func (m *mockBroadcaster) jsonCount(msgType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.messages {
		if env, ok := msg.(Envelope); ok && env.T == msgType {
			n++
		}
	}
	return n
}

// newTestGame builds a started 4-player game with mock clients attached.
func newTestGame(t *testing.T) (*Game, map[UUID]*mockBroadcaster) {
	t.Helper()
	g := NewGame(nil, 42)

	mocks := make(map[UUID]*mockBroadcaster)
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		p, err := g.AddPlayer(name)
		if err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
		mock := &mockBroadcaster{}
		mocks[p.UUID] = mock
		g.SetClient(p.UUID, mock)
	}

	starter := g.state.sortedPlayerIDs()[0]
	if err := g.HandleStart(starter); err != nil {
		t.Fatalf("start: %v", err)
	}
	return g, mocks
}

func TestHandleStartTellsEachPlayerTheirRole(t *testing.T) {
	_, mocks := newTestGame(t)
	impostors := 0
	for _, mock := range mocks {
		mock.mu.Lock()
		var started *StartedMsg
		for _, msg := range mock.messages {
			if env, ok := msg.(Envelope); ok && env.T == MsgStarted {
				s := env.Data.(StartedMsg)
				started = &s
			}
		}
		mock.mu.Unlock()
		if started == nil {
			t.Fatal("player never received their assignment")
		}
		if started.Impostor {
			impostors++
		}
		if len(started.Tasks) != TasksPerPlayer {
			t.Errorf("expected %d tasks in assignment, got %d", TasksPerPlayer, len(started.Tasks))
		}
	}
	if impostors != 1 {
		t.Errorf("exactly one client should be told they are the impostor, got %d", impostors)
	}
}

func TestHandleInputClampsSpeed(t *testing.T) {
	g, _ := newTestGame(t)
	uuid := g.state.sortedPlayerIDs()[0]

	g.HandleInput(uuid, InputMsg{DX: 100, DY: 0})

	speed := g.state.Players[uuid].Speed
	if speed.Magnitude() > g.state.Settings.Speed+1e-9 {
		t.Errorf("speed %f exceeds the cap %f", speed.Magnitude(), g.state.Settings.Speed)
	}
	if speed.DY != 0 || speed.DX <= 0 {
		t.Errorf("clamp should preserve direction, got %+v", speed)
	}

	g.HandleInput(uuid, InputMsg{DX: 0.5, DY: 0.5})
	speed = g.state.Players[uuid].Speed
	if speed.DX != 0.5 || speed.DY != 0.5 {
		t.Errorf("sub-cap input should pass through, got %+v", speed)
	}
}

func TestHandleKillValidatesRange(t *testing.T) {
	g, _ := newTestGame(t)
	impostor := impostorOf(t, g.state)
	victim := crewOf(g.state)[0]

	impostor.Position = Position{X: 500, Y: 500}
	victim.Position = Position{X: 900, Y: 500}
	if err := g.HandleKill(impostor.UUID, victim.UUID); err == nil {
		t.Error("kill from across the map should fail")
	}
	if victim.Dead {
		t.Fatal("failed kill must not mark the victim dead")
	}

	victim.Position = Position{X: 540, Y: 500}
	if err := g.HandleKill(impostor.UUID, victim.UUID); err != nil {
		t.Fatalf("in-range kill failed: %v", err)
	}
	if !victim.Dead {
		t.Error("victim should be dead")
	}
	if len(g.state.Bodies) != 1 {
		t.Errorf("expected a body, got %d", len(g.state.Bodies))
	}
}

func TestCrewCannotKill(t *testing.T) {
	g, _ := newTestGame(t)
	crew := crewOf(g.state)
	crew[0].Position = crew[1].Position
	if err := g.HandleKill(crew[0].UUID, crew[1].UUID); err == nil {
		t.Error("a crew member must not be able to kill")
	}
}

func TestHandleReportStartsDay(t *testing.T) {
	g, mocks := newTestGame(t)
	impostor := impostorOf(t, g.state)
	victim := crewOf(g.state)[0]
	reporter := crewOf(g.state)[1]

	impostor.Position = victim.Position
	if err := g.HandleKill(impostor.UUID, victim.UUID); err != nil {
		t.Fatal(err)
	}

	reporter.Position = Position{X: victim.Position.X + 500, Y: victim.Position.Y}
	if err := g.HandleReport(reporter.UUID); err == nil {
		t.Error("report far from any body should fail")
	}

	reporter.Position = Position{X: victim.Position.X + 50, Y: victim.Position.Y}
	if err := g.HandleReport(reporter.UUID); err != nil {
		t.Fatalf("report: %v", err)
	}

	day, ok := g.state.DayState()
	if !ok {
		t.Fatal("report should have started the day")
	}
	if day.TimeRemaining != g.state.Settings.VotingTime {
		t.Errorf("fresh day should have the full countdown, got %v", day.TimeRemaining)
	}
	for _, mock := range mocks {
		if mock.jsonCount(MsgDay) != 1 {
			t.Error("every client should be told the day started")
		}
	}
}

func TestHandleTaskValidatesProximity(t *testing.T) {
	g, _ := newTestGame(t)
	crew := crewOf(g.state)[0]

	crew.Position = Position{X: crew.Tasks[0].Position.X + 300, Y: crew.Tasks[0].Position.Y}
	if err := g.HandleTask(crew.UUID, 0); err == nil {
		t.Error("task from far away should fail")
	}

	crew.Position = crew.Tasks[0].Position
	if err := g.HandleTask(crew.UUID, 0); err != nil {
		t.Fatalf("task: %v", err)
	}
	if !crew.Tasks[0].Finished {
		t.Error("task should be finished")
	}
}

func TestHandleVoteParsesTarget(t *testing.T) {
	g, _ := newTestGame(t)
	impostor := impostorOf(t, g.state)
	victim := crewOf(g.state)[0]
	voter := crewOf(g.state)[1]

	impostor.Position = victim.Position
	if err := g.HandleKill(impostor.UUID, victim.UUID); err != nil {
		t.Fatal(err)
	}
	voter.Position = victim.Position
	if err := g.HandleReport(voter.UUID); err != nil {
		t.Fatal(err)
	}

	if err := g.HandleVote(voter.UUID, "not-a-uuid"); err == nil {
		t.Error("malformed vote target should fail")
	}
	if err := g.HandleVote(voter.UUID, "skip"); err != nil {
		t.Fatalf("skip vote: %v", err)
	}
	if err := g.HandleVote(voter.UUID, impostor.UUID.String()); err != nil {
		t.Fatalf("player vote: %v", err)
	}

	day, _ := g.state.DayState()
	if got := day.Votes[voter.UUID]; got.Skip || got.Player != impostor.UUID {
		t.Errorf("expected the final vote to stand, got %v", got)
	}
}

func TestGameFinishBroadcastsOutcome(t *testing.T) {
	g, mocks := newTestGame(t)

	// Impostor kills until parity: 3 crew to 1 impostor, two kills needed.
	impostor := impostorOf(t, g.state)
	crew := crewOf(g.state)
	for _, victim := range crew[:2] {
		impostor.Position = victim.Position
		if err := g.HandleKill(impostor.UUID, victim.UUID); err != nil {
			t.Fatal(err)
		}
	}

	if !g.state.Status.Finished() {
		t.Fatalf("expected a finished game, got %s", g.state.Status.statusName())
	}
	for _, mock := range mocks {
		if mock.jsonCount(MsgOutcome) != 1 {
			t.Error("every client should receive the outcome")
		}
	}
}
