package document

import "encoding/json"

// InlineType tags the members of the inline content union.
type InlineType string

const (
	InlineText     InlineType = "text"
	InlineLink     InlineType = "link"
	InlineMention  InlineType = "mention"
	InlineEquation InlineType = "equation"
)

// MentionType distinguishes the mention sub-kinds carried over from the
// host API.
type MentionType string

const (
	MentionUser     MentionType = "user"
	MentionPage     MentionType = "page"
	MentionDate     MentionType = "date"
	MentionDatabase MentionType = "database"
)

// Styles is the set of inline formatting flags. Equation items never carry
// styles.
type Styles struct {
	Bold          bool `json:"bold,omitempty"`
	Italic        bool `json:"italic,omitempty"`
	Underline     bool `json:"underline,omitempty"`
	Strikethrough bool `json:"strikethrough,omitempty"`
	Code          bool `json:"code,omitempty"`
}

// IsZero reports whether no style flag is set.
func (s Styles) IsZero() bool {
	return s == Styles{}
}

// Merge returns the union of both style sets.
func (s Styles) Merge(other Styles) Styles {
	return Styles{
		Bold:          s.Bold || other.Bold,
		Italic:        s.Italic || other.Italic,
		Underline:     s.Underline || other.Underline,
		Strikethrough: s.Strikethrough || other.Strikethrough,
		Code:          s.Code || other.Code,
	}
}

// Inline is one item of a block's ordered inline content. Type selects
// which fields are meaningful:
//
//   - InlineText: Text, Styles
//   - InlineLink: URL, Content (text runs making up the link label)
//   - InlineMention: MentionType, DisplayText, OriginalData
//   - InlineEquation: Expression
type Inline struct {
	Type         InlineType      `json:"type"`
	Text         string          `json:"text,omitempty"`
	Styles       Styles          `json:"styles,omitempty"`
	URL          string          `json:"url,omitempty"`
	Content      []Inline        `json:"content,omitempty"`
	MentionType  MentionType     `json:"mentionType,omitempty"`
	DisplayText  string          `json:"displayText,omitempty"`
	OriginalData json.RawMessage `json:"originalData,omitempty"`
	Expression   string          `json:"expression,omitempty"`
}

// TextRun returns a plain or styled text item.
func TextRun(text string, styles Styles) Inline {
	return Inline{Type: InlineText, Text: text, Styles: styles}
}

// LinkRun returns a link item labeled with a single plain text run.
func LinkRun(label, url string) Inline {
	return Inline{
		Type:    InlineLink,
		URL:     url,
		Content: []Inline{TextRun(label, Styles{})},
	}
}

// EquationRun returns an inline equation item.
func EquationRun(expression string) Inline {
	return Inline{Type: InlineEquation, Expression: expression}
}

// Clone returns a deep copy of the inline item.
func (in Inline) Clone() Inline {
	clone := in

	if in.Content != nil {
		clone.Content = make([]Inline, len(in.Content))
		for i, nested := range in.Content {
			clone.Content[i] = nested.Clone()
		}
	}
	if in.OriginalData != nil {
		clone.OriginalData = make(json.RawMessage, len(in.OriginalData))
		copy(clone.OriginalData, in.OriginalData)
	}

	return clone
}

// PlainText returns the user-visible text of the item.
func (in Inline) PlainText() string {
	switch in.Type {
	case InlineText:
		return in.Text
	case InlineLink:
		var out string
		for _, nested := range in.Content {
			out += nested.PlainText()
		}
		return out
	case InlineMention:
		return in.DisplayText
	case InlineEquation:
		return in.Expression
	default:
		return ""
	}
}

// PlainText flattens a list of inline items into a single string.
func PlainText(content []Inline) string {
	var out string
	for _, in := range content {
		out += in.PlainText()
	}
	return out
}
