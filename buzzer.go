package main

// BuzzerArbiter runs the fastest-finger-first race. Activate arms the
// buzzer; the first buzz to win the store's mutation slot locks the
// round. Losing buzzes are silent no-ops, since contestants cannot know
// they lost the race beforehand.
type BuzzerArbiter struct {
	store *Store
}

func newBuzzerArbiter(store *Store) *BuzzerArbiter {
	return &BuzzerArbiter{store: store}
}

// Activate arms the buzzer from any state, discarding any previous
// round's winner. Calling it again before a buzz simply re-arms.
func (b *BuzzerArbiter) Activate() {
	b.store.Mutate(func(gs *GameState) {
		gs.FFF.Active = true
		gs.FFF.Winner = ""
	})
}

// Buzz records identity as the round winner if the buzzer is still
// armed. Exactly one buzz per round succeeds; the rest return
// ErrBuzzerNotArmed and leave the winner untouched.
func (b *BuzzerArbiter) Buzz(identity string) (string, error) {
	var rejected error

	b.store.Mutate(func(gs *GameState) {
		if !gs.FFF.Active || gs.FFF.Winner != "" {
			rejected = ErrBuzzerNotArmed
			return
		}

		gs.FFF.Winner = identity
		gs.FFF.Active = false
	})

	if rejected != nil {
		return "", rejected
	}

	return identity, nil
}
