package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenStringCoversEveryKind(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String(), "missing string representation of token %d", tok)
	}
}

func TestLookupResolvesKeywords(t *testing.T) {
	cases := map[string]Token{
		"and":    AND,
		"struct": STRUCT,
		"let":    LET,
		"mut":    MUT,
		"fn":     FN,
		"switch": SWITCH,
		"case":   CASE,
		"Int":    TYPE_INT,
		"Float":  TYPE_FLOAT,
		"String": TYPE_STRING,
		"Bool":   TYPE_BOOL,
		"Void":   TYPE_VOID,
	}
	for lit, want := range cases {
		require.Equal(t, want, Lookup(lit), "Lookup(%q)", lit)
	}
}

func TestLookupFallsBackToIdent(t *testing.T) {
	for _, lit := range []string{"n", "myVar", "Point", "notAKeyword"} {
		require.Equal(t, IDENT, Lookup(lit), "Lookup(%q)", lit)
	}
}

func TestLookupIsCaseSensitive(t *testing.T) {
	require.Equal(t, IDENT, Lookup("Let"))
	require.Equal(t, IDENT, Lookup("STRUCT"))
}
