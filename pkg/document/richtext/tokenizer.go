// Package richtext lexes plain styled text into the canonical inline
// content representation. The tokenizer never fails: malformed or
// unterminated markers simply do not match and pass through as literal
// text.
package richtext

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rbenhaga/notionclipper/pkg/document"
)

// Options controls which patterns are scanned.
type Options struct {
	// EnableLinks turns on markdown links and bare-URL autolinking. When
	// false neither pattern is scanned at all.
	EnableLinks bool
}

type matchKind int

const (
	kindEquation matchKind = iota
	kindCode
	kindLink
	kindAutolink
	kindBold
	kindUnderline
	kindItalic
	kindStrikethrough
)

// Fixed priorities, lower wins. Plain text is implicitly 9, below all
// matches.
var kindPriority = map[matchKind]int{
	kindEquation:      1,
	kindCode:          2,
	kindLink:          3,
	kindAutolink:      4,
	kindBold:          5,
	kindUnderline:     6,
	kindItalic:        7,
	kindStrikethrough: 8,
}

type match struct {
	start    int
	end      int
	kind     matchKind
	priority int
	text     string // inner content without delimiters
	url      string // links only
}

var (
	reEscape     = regexp.MustCompile("\\\\([*_`~\\[\\]()$])")
	reEquation   = regexp.MustCompile(`\$([^$\n]+)\$`)
	reCode       = regexp.MustCompile("`([^`\n]+)`")
	reBoldItalic = regexp.MustCompile(`\*\*\*([^\n]+?)\*\*\*`)
	reBold       = regexp.MustCompile(`\*\*([^\n]+?)\*\*`)
	reUnderline  = regexp.MustCompile(`__([^\n]+?)__`)
	// Single-character delimiters require non-space content edges, the
	// usual emphasis rule. Without it "a * b * c" style text produces
	// spurious matches that swallow real ones further right.
	reItalicStar = regexp.MustCompile(`\*([^\s*](?:[^*\n]*?[^\s*])?)\*`)
	reItalicUnd  = regexp.MustCompile(`_([^\s_](?:[^_\n]*?[^\s_])?)_`)
	reStrike     = regexp.MustCompile(`~~([^\n]+?)~~`)
	reLink       = regexp.MustCompile(`\[([^\]\n]*)\]\(([^)\n]*)\)`)
	reAutolink   = regexp.MustCompile(`https?://[^\s<>]+`)
)

// Escaped special characters are swapped for private-use-area runes before
// pattern matching and restored on every emitted token, so literal
// punctuation is never read as formatting.
const escapables = "*_`~[]()$"

const placeholderBase = ''

var placeholderRestorer = func() *strings.Replacer {
	pairs := make([]string, 0, len(escapables)*2)
	for i, c := range escapables {
		pairs = append(pairs, string(placeholderBase+rune(i)), string(c))
	}
	return strings.NewReplacer(pairs...)
}()

func maskEscapes(s string) string {
	return reEscape.ReplaceAllStringFunc(s, func(esc string) string {
		idx := strings.IndexByte(escapables, esc[1])
		return string(placeholderBase + rune(idx))
	})
}

func restoreEscapes(s string) string {
	return placeholderRestorer.Replace(s)
}

// Tokenize lexes s into a gapless, non-overlapping sequence of inline
// items. Empty input yields no items; input without matches yields a
// single plain text run.
func Tokenize(s string, opts Options) []document.Inline {
	if s == "" {
		return nil
	}

	masked := maskEscapes(s)
	matches := collect(masked, opts)
	matches = dropOverlapped(matches)

	return emit(masked, matches)
}

func collect(s string, opts Options) []match {
	var matches []match

	// Bold-italic spans are claimed first: they expand into two synthetic
	// matches over the same span (the italic annotation merges into the
	// emitted bold token), and the narrower bold/italic matches the
	// simpler patterns find inside the same span must not compete.
	tripleSpans := reBoldItalic.FindAllStringSubmatchIndex(s, -1)

	inTriple := func(start, end int) bool {
		for _, span := range tripleSpans {
			if start < span[1] && span[0] < end {
				return true
			}
		}
		return false
	}

	add := func(kind matchKind, spans [][]int, textGroup, urlGroup int) {
		for _, span := range spans {
			if (kind == kindBold || kind == kindItalic) && inTriple(span[0], span[1]) {
				continue
			}
			m := match{
				start:    span[0],
				end:      span[1],
				kind:     kind,
				priority: kindPriority[kind],
			}
			if textGroup >= 0 {
				m.text = s[span[2*textGroup]:span[2*textGroup+1]]
			} else {
				m.text = s[span[0]:span[1]]
			}
			if urlGroup >= 0 {
				m.url = s[span[2*urlGroup]:span[2*urlGroup+1]]
			}
			matches = append(matches, m)
		}
	}

	add(kindEquation, reEquation.FindAllStringSubmatchIndex(s, -1), 1, -1)
	add(kindCode, reCode.FindAllStringSubmatchIndex(s, -1), 1, -1)

	for _, span := range tripleSpans {
		inner := s[span[2]:span[3]]
		matches = append(matches,
			match{start: span[0], end: span[1], kind: kindBold, priority: kindPriority[kindBold], text: inner},
			match{start: span[0], end: span[1], kind: kindItalic, priority: kindPriority[kindItalic], text: inner},
		)
	}

	add(kindBold, reBold.FindAllStringSubmatchIndex(s, -1), 1, -1)
	add(kindUnderline, reUnderline.FindAllStringSubmatchIndex(s, -1), 1, -1)
	add(kindItalic, reItalicStar.FindAllStringSubmatchIndex(s, -1), 1, -1)
	add(kindItalic, reItalicUnd.FindAllStringSubmatchIndex(s, -1), 1, -1)
	add(kindStrikethrough, reStrike.FindAllStringSubmatchIndex(s, -1), 1, -1)

	if opts.EnableLinks {
		add(kindLink, reLink.FindAllStringSubmatchIndex(s, -1), 1, 2)
		add(kindAutolink, reAutolink.FindAllStringSubmatchIndex(s, -1), -1, -1)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].start != matches[j].start {
			return matches[i].start < matches[j].start
		}
		return matches[i].priority < matches[j].priority
	})

	return matches
}

// dropOverlapped removes matches overlapped by a strictly higher-priority
// match with a different span. Identical spans survive so their
// annotations can merge at emission. Equal-priority partial overlaps are
// left in and resolved by the cursor walk: earliest in sort order wins,
// the other is dropped.
func dropOverlapped(matches []match) []match {
	kept := matches[:0]
	for i, m := range matches {
		overlapped := false
		for j, other := range matches {
			if i == j || other.priority >= m.priority {
				continue
			}
			sameSpan := other.start == m.start && other.end == m.end
			if !sameSpan && other.start < m.end && m.start < other.end {
				overlapped = true
				break
			}
		}
		if !overlapped {
			kept = append(kept, m)
		}
	}
	return kept
}

func emit(masked string, matches []match) []document.Inline {
	var (
		out       []document.Inline
		cursor    int
		lastStart = -1
		lastEnd   = -1
	)

	appendPlain := func(raw string) {
		if raw == "" {
			return
		}
		out = append(out, document.TextRun(restoreEscapes(raw), document.Styles{}))
	}

	for _, m := range matches {
		if m.start < cursor {
			// Already consumed. A match spanning exactly the emitted
			// token's range contributes its annotation instead of a
			// token of its own.
			if m.start == lastStart && m.end == lastEnd && len(out) > 0 {
				mergeAnnotation(&out[len(out)-1], m)
			}
			continue
		}

		appendPlain(masked[cursor:m.start])
		out = append(out, makeToken(m))
		cursor = m.end
		lastStart, lastEnd = m.start, m.end
	}

	appendPlain(masked[cursor:])

	return out
}

func makeToken(m match) document.Inline {
	text := restoreEscapes(m.text)

	switch m.kind {
	case kindEquation:
		return document.EquationRun(text)
	case kindCode:
		return document.TextRun(text, document.Styles{Code: true})
	case kindLink:
		return document.LinkRun(text, restoreEscapes(m.url))
	case kindAutolink:
		return document.LinkRun(text, text)
	case kindBold:
		return document.TextRun(text, document.Styles{Bold: true})
	case kindUnderline:
		return document.TextRun(text, document.Styles{Underline: true})
	case kindItalic:
		return document.TextRun(text, document.Styles{Italic: true})
	case kindStrikethrough:
		return document.TextRun(text, document.Styles{Strikethrough: true})
	default:
		return document.TextRun(text, document.Styles{})
	}
}

// mergeAnnotation folds a same-span match's style into an already emitted
// token. Equation items never receive style flags; links keep their own
// content untouched.
func mergeAnnotation(target *document.Inline, m match) {
	if target.Type != document.InlineText {
		return
	}

	switch m.kind {
	case kindBold:
		target.Styles.Bold = true
	case kindUnderline:
		target.Styles.Underline = true
	case kindItalic:
		target.Styles.Italic = true
	case kindStrikethrough:
		target.Styles.Strikethrough = true
	case kindCode:
		target.Styles.Code = true
	}
}
