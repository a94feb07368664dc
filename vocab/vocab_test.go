package vocab

import "testing"

func tokens() [][]byte {
	return [][]byte{
		[]byte("a"),
		[]byte("ab"),
		[]byte("abc"),
		[]byte("b"),
		{'a', Sep, 'z'},
	}
}

func TestNewIndexesOrdinaryTokensIntoTrie(t *testing.T) {
	v := New(tokens(), 4)
	root := v.Root()

	na := v.Child(root, 'a')
	if na < 0 {
		t.Fatalf("expected a trie edge for 'a' from the root")
	}
	if got := v.TokensEndingAt(na); len(got) != 1 || got[0] != 0 {
		t.Errorf("token 0 (%q) should end at the 'a' node, got %v", tokens()[0], got)
	}

	nab := v.Child(na, 'b')
	if nab < 0 {
		t.Fatalf("expected a trie edge for 'b' from the 'a' node")
	}
	if got := v.TokensEndingAt(nab); len(got) != 1 || got[0] != 1 {
		t.Errorf("token 1 (%q) should end at the 'ab' node, got %v", tokens()[1], got)
	}

	nabc := v.Child(nab, 'c')
	if nabc < 0 {
		t.Fatalf("expected a trie edge for 'c' from the 'ab' node")
	}
	if got := v.TokensEndingAt(nabc); len(got) != 1 || got[0] != 2 {
		t.Errorf("token 2 (%q) should end at the 'abc' node, got %v", tokens()[2], got)
	}

	nb := v.Child(root, 'b')
	if nb < 0 {
		t.Fatalf("expected a trie edge for 'b' from the root")
	}
	if got := v.TokensEndingAt(nb); len(got) != 1 || got[0] != 3 {
		t.Errorf("token 3 (%q) should end at the 'b' node, got %v", tokens()[3], got)
	}
}

func TestChildMissingEdgeIsNegative(t *testing.T) {
	v := New(tokens(), 4)
	if n := v.Child(v.Root(), 'z'); n >= 0 {
		t.Errorf("no token starts with 'z', expected a negative NodeID, got %d", n)
	}
}

func TestTokensContainingSepAreRoutedAroundTheTrie(t *testing.T) {
	v := New(tokens(), 4)
	sep := v.WithSeparatorTokens()
	if len(sep) != 1 || sep[0] != 4 {
		t.Fatalf("expected token 4 (containing Sep) to be the sole with-separator token, got %v", sep)
	}

	root := v.Root()
	na := v.Child(root, 'a')
	if v.Child(na, Sep) >= 0 {
		t.Errorf("the trie must never contain an edge labeled Sep")
	}
}

func TestEOSIsPreserved(t *testing.T) {
	v := New(tokens(), 4)
	if v.EOS != 4 {
		t.Errorf("EOS = %d, want 4", v.EOS)
	}
}
