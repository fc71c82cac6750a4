package lexer_test

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/asterisk/internal/filetest"
	"github.com/mna/asterisk/lang/lexer"
	"github.com/mna/asterisk/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpdateLexerTests = flag.Bool("test.update-lexer-tests", false, "If set, replace expected lexer test results with actual results.")

// TestScan runs the lexer over every fixture in testdata/in and diffs the
// rendered token stream against the matching golden file in testdata/out,
// in the style of the teacher's lang/scanner golden tests.
func TestScan(t *testing.T) {
	srcDir, wantDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".ast") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			require.NoError(t, err)

			var buf strings.Builder
			l := lexer.New(src)
			for {
				tok, val := l.Next()
				fmt.Fprintf(&buf, "%d %s %q\n", val.Line, tok, val.Raw)
				if tok == token.EOF {
					break
				}
			}
			filetest.DiffOutput(t, fi, buf.String(), wantDir, testUpdateLexerTests)
		})
	}
}

func TestNumbers(t *testing.T) {
	tok, val := lexer.New([]byte("42")).Next()
	assert.Equal(t, token.INT, tok)
	assert.Equal(t, int64(42), val.Int)

	tok, val = lexer.New([]byte("3.25")).Next()
	assert.Equal(t, token.FLOAT, tok)
	assert.Equal(t, 3.25, val.Float)

	tok, val = lexer.New([]byte("99999999999999999999")).Next()
	assert.Equal(t, token.ILLEGAL, tok)
	assert.Contains(t, val.Raw, "out of range")
}

func TestStrings(t *testing.T) {
	tok, val := lexer.New([]byte(`'hello'`)).Next()
	assert.Equal(t, token.STRING, tok)
	assert.Equal(t, "hello", val.Raw)

	tok, val = lexer.New([]byte(`"hello"`)).Next()
	assert.Equal(t, token.STRING, tok)
	assert.Equal(t, "hello", val.Raw)

	tok, _ = lexer.New([]byte(`'unterminated`)).Next()
	assert.Equal(t, token.ILLEGAL, tok)
}

func TestCommentsAndWhitespace(t *testing.T) {
	src := []byte("// a line comment\n/* a\nblock comment */let")
	l := lexer.New(src)
	tok, val := l.Next()
	assert.Equal(t, token.LET, tok)
	assert.Equal(t, 3, val.Line)
}

func TestKeywordsAndOperators(t *testing.T) {
	src := []byte("fn mut const && || == != <= => -> &")
	want := []token.Token{
		token.FN, token.MUT, token.CONST, token.AMP_AMP, token.PIPE_PIPE,
		token.EQ_EQ, token.BANG_EQ, token.LT_EQ, token.ARROW, token.MINUS_GT, token.AMP,
	}
	l := lexer.New(src)
	for _, w := range want {
		tok, _ := l.Next()
		assert.Equal(t, w, tok)
	}
	tok, _ := l.Next()
	assert.Equal(t, token.EOF, tok)
}

func TestEOFIsTotal(t *testing.T) {
	l := lexer.New([]byte("   "))
	for i := 0; i < 3; i++ {
		tok, _ := l.Next()
		assert.Equal(t, token.EOF, tok)
	}
}
