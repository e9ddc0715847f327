package corpus

import (
	"github.com/derekparker/trie"
	"github.com/emirpasic/gods/sets/hashset"
)

// terminal is the child rune the trie uses to mark the end of a key.
const terminal rune = 0

// Automaton is an Aho-Corasick automaton for a set of words. Its goto
// function is a trie, failure links and output sets are layered on top.
type Automaton struct {
	trie *trie.Trie
	fail map[*trie.Node]*trie.Node
	out  map[*trie.Node][]string
}

// NewAutomaton builds an automaton matching all of words. Empty words are
// ignored.
func NewAutomaton(words []string) *Automaton {
	ac := &Automaton{
		trie: trie.New(),
		fail: make(map[*trie.Node]*trie.Node),
		out:  make(map[*trie.Node][]string),
	}
	for _, w := range words {
		if w == "" {
			continue
		}
		ac.trie.Add(w, w)
		end := ac.walk(w)
		if len(ac.out[end]) == 0 { // keep the own word first
			ac.out[end] = []string{w}
		}
	}
	ac.link()
	return ac
}

// walk follows the goto function along the runes of a word that has been
// added before.
func (ac *Automaton) walk(w string) *trie.Node {
	node := ac.trie.Root()
	for _, r := range w {
		node = node.Children()[r]
	}
	return node
}

// link sets failure links in breadth-first order and merges the output of
// every node's failure target into the node's output.
func (ac *Automaton) link() {
	root := ac.trie.Root()
	ac.fail[root] = root
	var queue []*trie.Node
	for r, child := range root.Children() {
		if r == terminal {
			continue
		}
		ac.fail[child] = root
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for r, child := range node.Children() {
			if r == terminal {
				continue
			}
			ac.fail[child] = ac.next(ac.fail[node], r)
			if f := ac.out[ac.fail[child]]; len(f) > 0 {
				ac.out[child] = append(ac.out[child], f...)
			}
			queue = append(queue, child)
		}
	}
}

// next is the automaton's transition function.
func (ac *Automaton) next(state *trie.Node, r rune) *trie.Node {
	root := ac.trie.Root()
	for {
		if child, ok := state.Children()[r]; ok && r != terminal {
			return child
		}
		if state == root {
			return root
		}
		state = ac.fail[state]
	}
}

// Find calls found for every occurrence of a word of the automaton in text,
// including text itself if it is one of the words.
func (ac *Automaton) Find(text string, found func(word string)) {
	state := ac.trie.Root()
	for _, r := range text {
		state = ac.next(state, r)
		for _, w := range ac.out[state] {
			found(w)
		}
	}
}

// RemoveSubstringWords returns the words which are not a proper substring of
// another word of the set. Applying it to its own result is a no-op.
func RemoveSubstringWords(words []string) []string {
	ac := NewAutomaton(words)
	res := hashset.New()
	for _, w := range words {
		res.Add(w)
	}
	for _, w := range words {
		ac.Find(w, func(found string) {
			if found != w {
				res.Remove(found)
			}
		})
	}
	survivors := make([]string, 0, res.Size())
	for _, v := range res.Values() {
		survivors = append(survivors, v.(string))
	}
	return survivors
}
