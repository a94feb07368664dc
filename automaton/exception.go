package automaton

// ExceptionAutomaton is the "never-dead" automaton behind except!(X): a
// trie of the alternatives of X with Aho-Corasick failure links, so that
// every byte has a defined transition and the automaton restarts matching
// from the longest viable suffix instead of ever dying. Classify therefore
// never returns Reject for this automaton; a RegexComplement item relies on
// the recognizer's repetition-count packing (see Pack/Unpack) to bound how
// long a non-matching run may continue, not on the automaton rejecting.
type ExceptionAutomaton struct {
	goTo   [][256]int
	fail   []int
	isWord []bool // true at nodes where some pattern ends, directly or via fail chain
}

// ExceptionBuilder incrementally builds an ExceptionAutomaton from the
// alternatives of X, one literal byte-string per AddPattern call. This
// mirrors the NewBuilder/AddPattern/Build shape of github.com/coregx/ahocorasick,
// whose search-oriented Automaton we could not drive byte-by-byte (see
// DESIGN.md); the algorithm here (trie + BFS failure links) is the standard
// Aho-Corasick construction, authored directly against that shape.
type ExceptionBuilder struct {
	children []map[byte]int
	isWord   []bool
}

// NewExceptionBuilder starts a new builder with just the root node.
func NewExceptionBuilder() *ExceptionBuilder {
	return &ExceptionBuilder{
		children: []map[byte]int{{}},
		isWord:   []bool{false},
	}
}

// AddPattern registers one alternative of X.
func (b *ExceptionBuilder) AddPattern(pattern []byte) {
	cur := 0
	for _, c := range pattern {
		next, ok := b.children[cur][c]
		if !ok {
			next = len(b.children)
			b.children = append(b.children, map[byte]int{})
			b.isWord = append(b.isWord, false)
			b.children[cur][c] = next
		}
		cur = next
	}
	b.isWord[cur] = true
}

// Build finalizes the trie into a dense automaton with failure links.
func (b *ExceptionBuilder) Build() *ExceptionAutomaton {
	n := len(b.children)
	goTo := make([][256]int, n)
	for i := range goTo {
		for c := 0; c < 256; c++ {
			goTo[i][c] = -1
		}
	}
	for i, m := range b.children {
		for c, next := range m {
			goTo[i][int(c)] = next
		}
	}
	fail := make([]int, n)
	isWord := append([]bool{}, b.isWord...)

	var queue []int
	for c := 0; c < 256; c++ {
		if goTo[0][c] == -1 {
			goTo[0][c] = 0
		} else {
			fail[goTo[0][c]] = 0
			queue = append(queue, goTo[0][c])
		}
	}
	for qi := 0; qi < len(queue); qi++ {
		u := queue[qi]
		if isWord[fail[u]] {
			isWord[u] = true
		}
		for c := 0; c < 256; c++ {
			v := goTo[u][c]
			if v == -1 {
				goTo[u][c] = goTo[fail[u]][c]
				continue
			}
			fail[v] = goTo[fail[u]][c]
			queue = append(queue, v)
		}
	}
	return &ExceptionAutomaton{goTo: goTo, fail: fail, isWord: isWord}
}

// Start returns the root node.
func (a *ExceptionAutomaton) Start() int { return 0 }

// NextState advances node s on byte b. Always defined; never dies.
func (a *ExceptionAutomaton) NextState(s int, b byte) int {
	return a.goTo[s][b]
}

// Classify reports Accept if any alternative of X ends at node s (directly
// or through a failure-linked suffix), InProgress otherwise. Reject is
// never produced.
func (a *ExceptionAutomaton) Classify(s int) Class {
	if a.isWord[s] {
		return Accept
	}
	return InProgress
}
