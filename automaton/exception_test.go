package automaton

import "testing"

func TestExceptionAutomatonNeverRejects(t *testing.T) {
	b := NewExceptionBuilder()
	b.AddPattern([]byte("\n\n"))
	ea := b.Build()

	s := ea.Start()
	for _, c := range []byte("aaaaaaaa\n") {
		s = ea.NextState(s, c)
		if got := ea.Classify(s); got == Reject {
			t.Fatalf("exception automaton classified %v at byte %q, must never reject", got, c)
		}
	}
}

func TestExceptionAutomatonDetectsPattern(t *testing.T) {
	b := NewExceptionBuilder()
	b.AddPattern([]byte("\n\n"))
	ea := b.Build()

	s := ea.Start()
	s = ea.NextState(s, 'a')
	if ea.Classify(s) != InProgress {
		t.Fatalf("single unrelated byte must be InProgress")
	}
	s = ea.NextState(s, '\n')
	if ea.Classify(s) != InProgress {
		t.Fatalf("one newline must not yet complete the pattern")
	}
	s = ea.NextState(s, '\n')
	if ea.Classify(s) != Accept {
		t.Fatalf("two consecutive newlines must complete the forbidden pattern")
	}
}

func TestExceptionAutomatonRestartsAfterPartialMatch(t *testing.T) {
	b := NewExceptionBuilder()
	b.AddPattern([]byte("ab"))
	ea := b.Build()

	// "aab" should still be detected: the failure link must restart matching
	// from the 'a' at position 1 after the first 'a' doesn't extend to "ab".
	s := ea.Start()
	for _, c := range []byte("aab") {
		s = ea.NextState(s, c)
	}
	if ea.Classify(s) != Accept {
		t.Fatalf("expected failure-link restart to still detect \"ab\" inside \"aab\"")
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	packed := Pack(StateID(12345), 7)
	state, counter := Unpack(packed)
	if state != 12345 || counter != 7 {
		t.Fatalf("round trip mismatch: got state=%d counter=%d", state, counter)
	}
}

func TestCounterExceeds(t *testing.T) {
	bound := uint32(5)
	if CounterExceeds(4, &bound) {
		t.Errorf("4+1=5 must not exceed bound 5")
	}
	if !CounterExceeds(5, &bound) {
		t.Errorf("5+1=6 must exceed bound 5")
	}
	if CounterExceeds(1000, nil) {
		t.Errorf("nil bound must never exceed")
	}
}
