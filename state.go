package main

import (
	"sync"
)

// LifelineKind identifies one of the three one-shot lifelines.
type LifelineKind string

const (
	LifelineFiftyFifty   LifelineKind = "50-50"
	LifelineAudiencePoll LifelineKind = "audience_poll"
	LifelinePhoneFriend  LifelineKind = "phone_friend"
)

var lifelineKinds = []LifelineKind{LifelineFiftyFifty, LifelineAudiencePoll, LifelinePhoneFriend}

func (k LifelineKind) valid() bool {
	switch k {
	case LifelineFiftyFifty, LifelineAudiencePoll, LifelinePhoneFriend:
		return true
	}
	return false
}

// OptionLabel is one of the four answer slots of a question.
type OptionLabel string

const (
	OptionA OptionLabel = "A"
	OptionB OptionLabel = "B"
	OptionC OptionLabel = "C"
	OptionD OptionLabel = "D"
)

var optionLabels = []OptionLabel{OptionA, OptionB, OptionC, OptionD}

func (o OptionLabel) valid() bool {
	switch o {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// PollState tracks the current audience poll round. Voters holds the
// identities that have already voted this round, so a resubmission or a
// reconnect cannot inflate a single voter's influence.
type PollState struct {
	Active bool
	Votes  map[OptionLabel]int
	Voters map[string]bool
}

// FFFState tracks the fastest-finger-first round. Armed is Active=true
// with no Winner; locked is Active=false with Winner set.
type FFFState struct {
	Active bool
	Winner string
}

// GameState is the single shared aggregate for the running session.
// Nothing outside the Store touches it directly.
type GameState struct {
	CurrentQuestion int
	Lifelines       map[LifelineKind]bool
	Poll            PollState
	FFF             FFFState
}

func newGameState() GameState {
	return GameState{
		Lifelines: freshLifelines(),
		Poll: PollState{
			Votes:  zeroVotes(),
			Voters: make(map[string]bool),
		},
	}
}

func freshLifelines() map[LifelineKind]bool {
	m := make(map[LifelineKind]bool, len(lifelineKinds))
	for _, k := range lifelineKinds {
		m[k] = true
	}
	return m
}

func zeroVotes() map[OptionLabel]int {
	m := make(map[OptionLabel]int, len(optionLabels))
	for _, o := range optionLabels {
		m[o] = 0
	}
	return m
}

func (gs GameState) clone() GameState {
	out := gs

	out.Lifelines = make(map[LifelineKind]bool, len(gs.Lifelines))
	for k, v := range gs.Lifelines {
		out.Lifelines[k] = v
	}

	out.Poll.Votes = make(map[OptionLabel]int, len(gs.Poll.Votes))
	for o, n := range gs.Poll.Votes {
		out.Poll.Votes[o] = n
	}

	out.Poll.Voters = make(map[string]bool, len(gs.Poll.Voters))
	for id, v := range gs.Poll.Voters {
		out.Poll.Voters[id] = v
	}

	return out
}

// Store owns the one GameState for the process. All reads hand out deep
// copies, and all writes run under a single mutex, so concurrent events
// serialize into a strict order with no torn reads.
type Store struct {
	mu    sync.Mutex
	state GameState
}

func newStore() *Store {
	return &Store{state: newGameState()}
}

// Get returns a snapshot of the current state.
func (s *Store) Get() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.clone()
}

// Mutate applies fn to the state under exclusive access and returns a
// snapshot of the result. The order in which callers acquire the lock
// is the order their effects become visible; this is what makes the
// buzzer race and lifeline consumption single-winner.
func (s *Store) Mutate(fn func(*GameState)) GameState {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)

	return s.state.clone()
}
