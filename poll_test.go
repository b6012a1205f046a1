package main

import (
	"errors"
	"testing"
)

func TestPollPercentages(t *testing.T) {
	poll := newPollAggregator(newStore())

	if err := poll.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	votes := []struct {
		voter  string
		option OptionLabel
	}{
		{"p1", OptionA},
		{"p2", OptionA},
		{"p3", OptionA},
		{"p4", OptionB},
	}
	for _, v := range votes {
		if err := poll.SubmitVote(v.voter, v.option); err != nil {
			t.Fatalf("SubmitVote(%s, %s) returned error: %v", v.voter, v.option, err)
		}
	}

	results, err := poll.End()
	if err != nil {
		t.Fatalf("End returned error: %v", err)
	}

	expected := map[OptionLabel]int{OptionA: 75, OptionB: 25, OptionC: 0, OptionD: 0}
	for o, pct := range expected {
		if results[o] != pct {
			t.Fatalf("expected %s=%d%%, got %d%%", o, pct, results[o])
		}
	}
}

func TestPollEmptyYieldsFlatDistribution(t *testing.T) {
	poll := newPollAggregator(newStore())

	if err := poll.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	results, err := poll.End()
	if err != nil {
		t.Fatalf("End returned error: %v", err)
	}

	for _, o := range optionLabels {
		if results[o] != 25 {
			t.Fatalf("expected flat 25%% for %s, got %d%%", o, results[o])
		}
	}
}

func TestPollRoundsHalfUp(t *testing.T) {
	poll := newPollAggregator(newStore())

	if err := poll.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	// 1/3, 1/3, 1/3 → 33.33… rounds down to 33.
	for i, voter := range []string{"p1", "p2", "p3"} {
		if err := poll.SubmitVote(voter, optionLabels[i]); err != nil {
			t.Fatalf("SubmitVote returned error: %v", err)
		}
	}

	results, err := poll.End()
	if err != nil {
		t.Fatalf("End returned error: %v", err)
	}
	if results[OptionA] != 33 || results[OptionB] != 33 || results[OptionC] != 33 || results[OptionD] != 0 {
		t.Fatalf("unexpected results: %v", results)
	}
}

func TestPollVoteOutsideRound(t *testing.T) {
	store := newStore()
	poll := newPollAggregator(store)

	if err := poll.SubmitVote("p1", OptionA); !errors.Is(err, ErrPollNotActive) {
		t.Fatalf("expected ErrPollNotActive before start, got %v", err)
	}

	if err := poll.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := poll.End(); err != nil {
		t.Fatalf("End returned error: %v", err)
	}

	if err := poll.SubmitVote("p1", OptionA); !errors.Is(err, ErrPollNotActive) {
		t.Fatalf("expected ErrPollNotActive after end, got %v", err)
	}
	if store.Get().Poll.Votes[OptionA] != 0 {
		t.Fatalf("rejected vote changed the tally")
	}
}

func TestPollInvalidOption(t *testing.T) {
	poll := newPollAggregator(newStore())

	if err := poll.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if err := poll.SubmitVote("p1", "E"); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
}

func TestPollDeduplicatesVoters(t *testing.T) {
	store := newStore()
	poll := newPollAggregator(store)

	if err := poll.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if err := poll.SubmitVote("p1", OptionA); err != nil {
		t.Fatalf("first vote returned error: %v", err)
	}
	if err := poll.SubmitVote("p1", OptionB); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	gs := store.Get()
	if gs.Poll.Votes[OptionA] != 1 || gs.Poll.Votes[OptionB] != 0 {
		t.Fatalf("duplicate vote changed the tally: %v", gs.Poll.Votes)
	}
}

func TestPollRestartWhileOpenRejected(t *testing.T) {
	store := newStore()
	poll := newPollAggregator(store)

	if err := poll.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := poll.SubmitVote("p1", OptionC); err != nil {
		t.Fatalf("SubmitVote returned error: %v", err)
	}

	if err := poll.Start(); !errors.Is(err, ErrPollActive) {
		t.Fatalf("expected ErrPollActive, got %v", err)
	}

	// In-flight votes survive the rejected restart.
	if store.Get().Poll.Votes[OptionC] != 1 {
		t.Fatalf("rejected restart discarded in-flight votes")
	}
}

func TestPollEndTwiceRejected(t *testing.T) {
	poll := newPollAggregator(newStore())

	if err := poll.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := poll.End(); err != nil {
		t.Fatalf("first End returned error: %v", err)
	}
	if _, err := poll.End(); !errors.Is(err, ErrPollNotActive) {
		t.Fatalf("expected ErrPollNotActive on second End, got %v", err)
	}
}

func TestPollRestartResetsState(t *testing.T) {
	store := newStore()
	poll := newPollAggregator(store)

	if err := poll.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := poll.SubmitVote("p1", OptionD); err != nil {
		t.Fatalf("SubmitVote returned error: %v", err)
	}
	if _, err := poll.End(); err != nil {
		t.Fatalf("End returned error: %v", err)
	}

	if err := poll.Start(); err != nil {
		t.Fatalf("restart returned error: %v", err)
	}

	gs := store.Get()
	if gs.Poll.Votes[OptionD] != 0 {
		t.Fatalf("restart kept stale votes: %v", gs.Poll.Votes)
	}

	// p1 may vote again in the new round.
	if err := poll.SubmitVote("p1", OptionA); err != nil {
		t.Fatalf("vote in new round returned error: %v", err)
	}
}
