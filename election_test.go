package main

import (
	"math/rand"
	"testing"
	"time"
)

func TestElectionNoVotesIsSkip(t *testing.T) {
	day := NewDayState(time.Minute)
	if winner := day.DetermineElectionWinner(); !winner.Skip {
		t.Errorf("empty ballot should skip, got %v", winner)
	}
}

func TestElectionClearWinner(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	target := RandomUUID(rng)
	other := RandomUUID(rng)

	day := NewDayState(time.Minute)
	day.Votes[RandomUUID(rng)] = PlayerVote(target)
	day.Votes[RandomUUID(rng)] = PlayerVote(target)
	day.Votes[RandomUUID(rng)] = PlayerVote(other)

	winner := day.DetermineElectionWinner()
	if winner.Skip || winner.Player != target {
		t.Errorf("expected %s to win, got %v", target, winner)
	}
}

func TestElectionTopTwoTieIsSkip(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	a := RandomUUID(rng)
	b := RandomUUID(rng)

	day := NewDayState(time.Minute)
	day.Votes[RandomUUID(rng)] = PlayerVote(a)
	day.Votes[RandomUUID(rng)] = PlayerVote(a)
	day.Votes[RandomUUID(rng)] = PlayerVote(b)
	day.Votes[RandomUUID(rng)] = PlayerVote(b)

	if winner := day.DetermineElectionWinner(); !winner.Skip {
		t.Errorf("tied top counts should skip, got %v", winner)
	}
}

func TestElectionSkipMajorityWins(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	a := RandomUUID(rng)

	day := NewDayState(time.Minute)
	day.Votes[RandomUUID(rng)] = SkipVote()
	day.Votes[RandomUUID(rng)] = SkipVote()
	day.Votes[RandomUUID(rng)] = PlayerVote(a)

	if winner := day.DetermineElectionWinner(); !winner.Skip {
		t.Errorf("skip majority should skip, got %v", winner)
	}
}

func TestDayStateProgressTimeSaturates(t *testing.T) {
	day := NewDayState(2 * time.Second)
	day.ProgressTime(1500 * time.Millisecond)
	if day.TimeRemaining != 500*time.Millisecond {
		t.Errorf("expected 500ms remaining, got %v", day.TimeRemaining)
	}
	day.ProgressTime(10 * time.Second)
	if day.TimeRemaining != 0 {
		t.Errorf("countdown must saturate at zero, got %v", day.TimeRemaining)
	}
	day.ProgressTime(time.Second)
	if day.TimeRemaining != 0 {
		t.Errorf("countdown must stay at zero, got %v", day.TimeRemaining)
	}
}

func TestStatusFinished(t *testing.T) {
	cases := []struct {
		status GameStatus
		want   bool
	}{
		{Connecting{}, false},
		{Lobby{}, false},
		{Playing{State: Night{}}, false},
		{Playing{State: Day{State: NewDayState(time.Minute)}}, false},
		{Won{Winner: TeamCrew}, true},
		{Won{Winner: TeamImpostors}, true},
		{Disconnected{}, true},
	}
	for _, tc := range cases {
		if got := tc.status.Finished(); got != tc.want {
			t.Errorf("%s: Finished() = %v, want %v", tc.status.statusName(), got, tc.want)
		}
	}
}
