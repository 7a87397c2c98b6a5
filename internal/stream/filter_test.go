package stream

import (
	"reflect"
	"testing"
)

func filterFixture() []Message {
	return []Message{
		{Level: LevelInfo, Logger: "bid.optimizer", Text: "raised bid for Wireless Mouse"},
		{Level: LevelWarn, Logger: "inventory.brake", Text: "stock below threshold"},
		{Level: LevelError, Logger: "amazon.api", Text: "throttled, backing off"},
		{Level: LevelInfo, Logger: "fsm", Text: "state OBSERVING -> BIDDING"},
	}
}

func TestVisible_AllPassthrough(t *testing.T) {
	msgs := filterFixture()

	for _, crit := range []Criteria{{}, {Level: LevelAll}, {Level: LevelAll, Query: ""}} {
		got := Visible(msgs, crit)
		if len(got) != len(msgs) {
			t.Errorf("Visible(%+v) returned %d, want %d", crit, len(got), len(msgs))
		}
	}
}

func TestVisible_LevelFilter(t *testing.T) {
	got := Visible(filterFixture(), Criteria{Level: LevelInfo})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, msg := range got {
		if msg.Level != LevelInfo {
			t.Errorf("leaked level %v", msg.Level)
		}
	}
}

func TestVisible_QueryMatchesTextAndLogger(t *testing.T) {
	// Case-insensitive match on payload text
	got := Visible(filterFixture(), Criteria{Query: "wireless mouse"})
	if len(got) != 1 || got[0].Logger != "bid.optimizer" {
		t.Errorf("text query result = %+v", got)
	}

	// Matches the source identifier too
	got = Visible(filterFixture(), Criteria{Query: "AMAZON"})
	if len(got) != 1 || got[0].Level != LevelError {
		t.Errorf("logger query result = %+v", got)
	}
}

func TestVisible_Conjunctive(t *testing.T) {
	// Level matches two entries, query narrows to one
	got := Visible(filterFixture(), Criteria{Level: LevelInfo, Query: "fsm"})
	if len(got) != 1 || got[0].Logger != "fsm" {
		t.Errorf("conjunctive result = %+v", got)
	}

	// Query matches but level does not: nothing passes
	got = Visible(filterFixture(), Criteria{Level: LevelError, Query: "fsm"})
	if len(got) != 0 {
		t.Errorf("disjoint criteria let %d through", len(got))
	}
}

func TestVisible_Idempotent(t *testing.T) {
	msgs := filterFixture()
	crit := Criteria{Level: LevelInfo, Query: "bid"}

	first := Visible(msgs, crit)
	second := Visible(msgs, crit)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated filtering differs: %+v vs %+v", first, second)
	}
}

func TestVisible_NoMutation(t *testing.T) {
	msgs := filterFixture()
	before := make([]Message, len(msgs))
	copy(before, msgs)

	Visible(msgs, Criteria{Level: LevelWarn, Query: "stock"})

	if !reflect.DeepEqual(before, msgs) {
		t.Error("Visible mutated its input")
	}
}

func TestVisible_Empty(t *testing.T) {
	if got := Visible(nil, Criteria{Level: LevelInfo}); len(got) != 0 {
		t.Errorf("Visible(nil) = %v, want empty", got)
	}
}
