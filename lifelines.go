package main

import (
	"math/rand"
)

// LifelineResult carries the lifeline-specific side effect of a
// successful activation.
type LifelineResult struct {
	Kind LifelineKind

	// Removed holds the two incorrect options struck by 50-50.
	Removed []OptionLabel

	// PollQuestion is the question index an audience poll opened for.
	PollQuestion int
}

// LifelineEngine validates and applies one-shot lifeline activation.
// Each kind is consumable exactly once until ResetAll.
type LifelineEngine struct {
	store *Store
	bank  *QuestionBank
	poll  *PollAggregator
	rng   *rand.Rand
}

func newLifelineEngine(store *Store, bank *QuestionBank, poll *PollAggregator, rng *rand.Rand) *LifelineEngine {
	return &LifelineEngine{
		store: store,
		bank:  bank,
		poll:  poll,
		rng:   rng,
	}
}

// Activate consumes the given lifeline and computes its side effect.
// Precondition failures (unknown kind, already consumed, poll already
// open) leave the lifeline untouched.
func (e *LifelineEngine) Activate(kind LifelineKind) (LifelineResult, error) {
	if !kind.valid() {
		return LifelineResult{}, ErrUnknownLifeline
	}

	result := LifelineResult{Kind: kind}
	var rejected error

	e.store.Mutate(func(gs *GameState) {
		if !gs.Lifelines[kind] {
			rejected = ErrLifelineUnavailable
			return
		}

		switch kind {
		case LifelineFiftyFifty:
			question, err := e.bank.Get(gs.CurrentQuestion)
			if err != nil {
				rejected = err
				return
			}
			result.Removed = e.removeTwoWrong(question.Correct)

		case LifelineAudiencePoll:
			// Checked before consumption: a rejected poll start
			// must not burn the one-shot.
			if err := e.poll.startIn(gs); err != nil {
				rejected = err
				return
			}
			result.PollQuestion = gs.CurrentQuestion

		case LifelinePhoneFriend:
			// Notification only; the countdown lives client-side.
		}

		gs.Lifelines[kind] = false
	})

	if rejected != nil {
		return LifelineResult{}, rejected
	}

	return result, nil
}

// removeTwoWrong picks a uniform without-replacement sample of 2 from
// the 3 incorrect options.
func (e *LifelineEngine) removeTwoWrong(correct OptionLabel) []OptionLabel {
	wrong := make([]OptionLabel, 0, len(optionLabels)-1)
	for _, o := range optionLabels {
		if o != correct {
			wrong = append(wrong, o)
		}
	}

	perm := e.rng.Perm(len(wrong))

	return []OptionLabel{wrong[perm[0]], wrong[perm[1]]}
}

// ResetAll restores every lifeline for a fresh round and returns the
// resulting availability map.
func (e *LifelineEngine) ResetAll() map[LifelineKind]bool {
	snapshot := e.store.Mutate(func(gs *GameState) {
		gs.Lifelines = freshLifelines()
	})

	return snapshot.Lifelines
}
