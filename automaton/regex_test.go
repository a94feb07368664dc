package automaton

import "testing"

func run(t *testing.T, dfa *DFA, s string) Class {
	t.Helper()
	state := dfa.Start(true)
	for i := 0; i < len(s); i++ {
		state = dfa.NextState(state, s[i])
	}
	return dfa.Classify(state)
}

func TestCompileRegexLiteralAndDot(t *testing.T) {
	dfa, err := CompileRegex("a.c")
	if err != nil {
		t.Fatalf("CompileRegex: %v", err)
	}
	if got := run(t, dfa, "abc"); got != Accept {
		t.Errorf("abc: got %v, want Accept", got)
	}
	if got := run(t, dfa, "abd"); got != Reject {
		t.Errorf("abd: got %v, want Reject", got)
	}
	if got := run(t, dfa, "ab"); got != InProgress {
		t.Errorf("ab: got %v, want InProgress", got)
	}
}

func TestCompileRegexPlusAndClass(t *testing.T) {
	dfa, err := CompileRegex("[a-c]+")
	if err != nil {
		t.Fatalf("CompileRegex: %v", err)
	}
	if got := run(t, dfa, "abcba"); got != Accept {
		t.Errorf("abcba: got %v, want Accept", got)
	}
	if got := run(t, dfa, "abcd"); got != Reject {
		t.Errorf("abcd: got %v, want Reject", got)
	}
}

func TestCompileRegexDotPlusAcceptsEverythingButControlsEmpty(t *testing.T) {
	dfa, err := CompileRegex(".+")
	if err != nil {
		t.Fatalf("CompileRegex: %v", err)
	}
	if got := run(t, dfa, "x"); got != Accept {
		t.Errorf("x: got %v, want Accept", got)
	}
	if got := run(t, dfa, "xy"); got != Accept {
		t.Errorf("xy: got %v, want Accept", got)
	}
	start := dfa.Start(true)
	if dfa.Classify(start) == Accept {
		t.Errorf("empty input must not already be accepting for .+")
	}
}

func TestCompileRegexBounded(t *testing.T) {
	dfa, err := CompileRegex("a{2,3}")
	if err != nil {
		t.Fatalf("CompileRegex: %v", err)
	}
	if got := run(t, dfa, "a"); got != InProgress {
		t.Errorf("a: got %v, want InProgress", got)
	}
	if got := run(t, dfa, "aa"); got != Accept {
		t.Errorf("aa: got %v, want Accept", got)
	}
	if got := run(t, dfa, "aaa"); got != Accept {
		t.Errorf("aaa: got %v, want Accept", got)
	}
	if got := run(t, dfa, "aaaa"); got != Reject {
		t.Errorf("aaaa: got %v, want Reject", got)
	}
}

func TestFirstBytes(t *testing.T) {
	dfa, err := CompileRegex("ab|ac")
	if err != nil {
		t.Fatalf("CompileRegex: %v", err)
	}
	fb := dfa.FirstBytes(dfa.Start(true))
	if !fb['a'] {
		t.Errorf("expected 'a' to be a live first byte")
	}
	if fb['z'] {
		t.Errorf("'z' must not be a live first byte")
	}
}
