package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbenhaga/notionclipper/pkg/document"
)

func plain(text string) document.Inline {
	return document.TextRun(text, document.Styles{})
}

func styled(text string, styles document.Styles) document.Inline {
	return document.TextRun(text, styles)
}

func TestTokenize_Empty(t *testing.T) {
	assert.Empty(t, Tokenize("", Options{}))
}

func TestTokenize_NoMatches(t *testing.T) {
	got := Tokenize("just plain text", Options{})
	assert.Equal(t, []document.Inline{plain("just plain text")}, got)
}

func TestTokenize_Bold(t *testing.T) {
	got := Tokenize("**bold**", Options{})
	assert.Equal(t, []document.Inline{styled("bold", document.Styles{Bold: true})}, got)
}

func TestTokenize_PlainSplit(t *testing.T) {
	got := Tokenize("a *b* c", Options{})
	assert.Equal(t, []document.Inline{
		plain("a "),
		styled("b", document.Styles{Italic: true}),
		plain(" c"),
	}, got)
}

func TestTokenize_Escapes(t *testing.T) {
	got := Tokenize(`\*not bold\*`, Options{})
	assert.Equal(t, []document.Inline{plain("*not bold*")}, got)
}

func TestTokenize_EscapedDollarAndBrackets(t *testing.T) {
	got := Tokenize(`\$5 and \[x\]`, Options{EnableLinks: true})
	assert.Equal(t, []document.Inline{plain("$5 and [x]")}, got)
}

func TestTokenize_Styles(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []document.Inline
	}{
		{"italic star", "*it*", []document.Inline{styled("it", document.Styles{Italic: true})}},
		{"italic underscore", "_it_", []document.Inline{styled("it", document.Styles{Italic: true})}},
		{"underline", "__under__", []document.Inline{styled("under", document.Styles{Underline: true})}},
		{"strikethrough", "~~gone~~", []document.Inline{styled("gone", document.Styles{Strikethrough: true})}},
		{"code", "`x := 1`", []document.Inline{styled("x := 1", document.Styles{Code: true})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input, Options{}))
		})
	}
}

func TestTokenize_BoldItalic(t *testing.T) {
	got := Tokenize("***both***", Options{})
	assert.Equal(t, []document.Inline{
		styled("both", document.Styles{Bold: true, Italic: true}),
	}, got)
}

func TestTokenize_Equation(t *testing.T) {
	got := Tokenize("$x^2$", Options{})
	assert.Equal(t, []document.Inline{document.EquationRun("x^2")}, got)
}

func TestTokenize_EquationIsolation(t *testing.T) {
	// The equation outranks the surrounding bold markers, which fall
	// through as literal text. The equation item itself must never carry
	// style flags.
	got := Tokenize("**$x^2$**", Options{})
	require.Len(t, got, 3)
	assert.Equal(t, plain("**"), got[0])
	assert.Equal(t, document.EquationRun("x^2"), got[1])
	assert.True(t, got[1].Styles.IsZero())
	assert.Equal(t, plain("**"), got[2])
}

func TestTokenize_CodeOutranksBold(t *testing.T) {
	got := Tokenize("**`c`**", Options{})
	assert.Equal(t, []document.Inline{
		plain("**"),
		styled("c", document.Styles{Code: true}),
		plain("**"),
	}, got)
}

func TestTokenize_Link(t *testing.T) {
	got := Tokenize("see [docs](https://example.com) now", Options{EnableLinks: true})
	assert.Equal(t, []document.Inline{
		plain("see "),
		document.LinkRun("docs", "https://example.com"),
		plain(" now"),
	}, got)
}

func TestTokenize_Autolink(t *testing.T) {
	got := Tokenize("go to https://example.com today", Options{EnableLinks: true})
	assert.Equal(t, []document.Inline{
		plain("go to "),
		document.LinkRun("https://example.com", "https://example.com"),
		plain(" today"),
	}, got)
}

func TestTokenize_AutolinkInsideLinkDropped(t *testing.T) {
	got := Tokenize("[docs](https://example.com)", Options{EnableLinks: true})
	assert.Equal(t, []document.Inline{
		document.LinkRun("docs", "https://example.com"),
	}, got)
}

func TestTokenize_LinksDisabled(t *testing.T) {
	got := Tokenize("[docs](https://example.com)", Options{})
	assert.Equal(t, []document.Inline{plain("[docs](https://example.com)")}, got)
}

func TestTokenize_UnterminatedMarkersPassThrough(t *testing.T) {
	tests := []string{
		"**unterminated",
		"`open code",
		"$no closing",
		"[label](unclosed",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			got := Tokenize(input, Options{EnableLinks: true})
			assert.Equal(t, []document.Inline{plain(input)}, got)
		})
	}
}

// Partially-overlapping spans of equal priority resolve by sort order:
// the earlier match wins and the later one is dropped, even though it was
// a valid annotation on its own. This is long-standing behavior that
// callers depend on; the test pins it.
func TestTokenize_EqualPriorityPartialOverlap(t *testing.T) {
	got := Tokenize("_a *b_ c*", Options{})
	assert.Equal(t, []document.Inline{
		styled("a *b", document.Styles{Italic: true}),
		plain(" c*"),
	}, got)
}

func TestTokenize_ItalicInsideBoldDropped(t *testing.T) {
	got := Tokenize("**bold**", Options{})
	require.Len(t, got, 1)
	assert.True(t, got[0].Styles.Bold)
	assert.False(t, got[0].Styles.Italic)
}

func TestTokenize_MultipleRuns(t *testing.T) {
	got := Tokenize("**a** and *b* and `c`", Options{})
	assert.Equal(t, []document.Inline{
		styled("a", document.Styles{Bold: true}),
		plain(" and "),
		styled("b", document.Styles{Italic: true}),
		plain(" and "),
		styled("c", document.Styles{Code: true}),
	}, got)
}

func TestTokenize_GaplessCoverage(t *testing.T) {
	input := "pre **b** mid $e$ post"
	got := Tokenize(input, Options{})

	var rebuilt string
	for _, in := range got {
		switch in.Type {
		case document.InlineText:
			rebuilt += in.Text
		case document.InlineEquation:
			rebuilt += in.Expression
		}
	}
	assert.Equal(t, "pre b mid e post", rebuilt)
}
