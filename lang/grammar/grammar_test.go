package grammar

import (
	"os"
	"testing"

	"golang.org/x/exp/ebnf"
)

// TestEBNF verifies the language's declaration grammar (spec.md §4.4) is
// self-consistent: every production referenced by another production is
// itself defined, and the grammar is reachable from Program, the same
// sanity check the teacher ran over its own grammar.ebnf before trusting
// it as documentation.
func TestEBNF(t *testing.T) {
	f, err := os.Open("asterisk.ebnf")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	g, err := ebnf.Parse("asterisk.ebnf", f)
	if err != nil {
		t.Fatal(err)
	}
	if err := ebnf.Verify(g, "Program"); err != nil {
		t.Fatal(err)
	}
}
