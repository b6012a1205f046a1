package main

import (
	"math"
)

// PollAggregator drives the audience poll round: Idle → Open → Idle.
// Votes are tallied per option and deduplicated per voter identity.
type PollAggregator struct {
	store *Store
}

func newPollAggregator(store *Store) *PollAggregator {
	return &PollAggregator{store: store}
}

// startIn opens a poll round on an already-locked state. Shared with
// the lifeline engine so the audience-poll lifeline and an explicit
// start follow the same precondition.
func (p *PollAggregator) startIn(gs *GameState) error {
	if gs.Poll.Active {
		return ErrPollActive
	}

	gs.Poll.Active = true
	gs.Poll.Votes = zeroVotes()
	gs.Poll.Voters = make(map[string]bool)

	return nil
}

// Start opens a new poll round. Starting while a round is open is
// rejected rather than silently discarding in-flight votes.
func (p *PollAggregator) Start() error {
	var rejected error

	p.store.Mutate(func(gs *GameState) {
		rejected = p.startIn(gs)
	})

	return rejected
}

// SubmitVote records one vote for option from voter. Votes outside an
// open round, for unknown options, or from a voter who already voted
// this round are rejected without touching the tally.
func (p *PollAggregator) SubmitVote(voter string, option OptionLabel) error {
	if !option.valid() {
		return ErrInvalidOption
	}

	var rejected error

	p.store.Mutate(func(gs *GameState) {
		if !gs.Poll.Active {
			rejected = ErrPollNotActive
			return
		}
		if gs.Poll.Voters[voter] {
			rejected = ErrAlreadyVoted
			return
		}

		gs.Poll.Voters[voter] = true
		gs.Poll.Votes[option]++
	})

	return rejected
}

// End closes the open round and returns per-option percentages, rounded
// half-up. An empty poll yields a flat 25/25/25/25 so the results
// screen never renders a degenerate all-zero chart.
func (p *PollAggregator) End() (map[OptionLabel]int, error) {
	var rejected error
	var votes map[OptionLabel]int

	snapshot := p.store.Mutate(func(gs *GameState) {
		if !gs.Poll.Active {
			rejected = ErrPollNotActive
			return
		}
		gs.Poll.Active = false
	})
	if rejected != nil {
		return nil, rejected
	}

	votes = snapshot.Poll.Votes

	return pollPercentages(votes), nil
}

func pollPercentages(votes map[OptionLabel]int) map[OptionLabel]int {
	total := 0
	for _, n := range votes {
		total += n
	}

	results := make(map[OptionLabel]int, len(optionLabels))

	if total == 0 {
		for _, o := range optionLabels {
			results[o] = 25
		}
		return results
	}

	for _, o := range optionLabels {
		results[o] = int(math.Floor(float64(votes[o])*100/float64(total) + 0.5))
	}

	return results
}
