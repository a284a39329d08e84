package main

// VoteTarget is what a ballot names: a specific player, or skip.
// The zero value votes for the zero UUID; use SkipVote or PlayerVote.
type VoteTarget struct {
	Player UUID
	Skip   bool
}

// SkipVote returns the "eject nobody" target.
func SkipVote() VoteTarget {
	return VoteTarget{Skip: true}
}

// PlayerVote returns a target naming the given player.
func PlayerVote(uuid UUID) VoteTarget {
	return VoteTarget{Player: uuid}
}

func (v VoteTarget) String() string {
	if v.Skip {
		return "skip"
	}
	return v.Player.String()
}

// DetermineElectionWinner tallies the day's votes. The target with the
// strictly highest count wins; a tie between the top two counts, or an empty
// ballot, resolves to skip.
func (d *DayState) DetermineElectionWinner() VoteTarget {
	counts := make(map[VoteTarget]int)
	for _, target := range d.Votes {
		counts[target]++
	}

	best, runnerUp := 0, 0
	var winner VoteTarget
	for target, count := range counts {
		if count > best {
			runnerUp = best
			best = count
			winner = target
		} else if count > runnerUp {
			runnerUp = count
		}
	}
	if best == 0 || best == runnerUp {
		return SkipVote()
	}
	return winner
}
