package notion

import (
	"encoding/json"

	"github.com/rbenhaga/notionclipper/pkg/document"
)

func annotationStyles(a *Annotations) document.Styles {
	if a == nil {
		return document.Styles{}
	}
	return document.Styles{
		Bold:          a.Bold,
		Italic:        a.Italic,
		Underline:     a.Underline,
		Strikethrough: a.Strikethrough,
		Code:          a.Code,
	}
}

func styleAnnotations(s document.Styles) *Annotations {
	if s.IsZero() {
		return nil
	}
	return &Annotations{
		Bold:          s.Bold,
		Italic:        s.Italic,
		Underline:     s.Underline,
		Strikethrough: s.Strikethrough,
		Code:          s.Code,
	}
}

// FromRichText converts host rich text 1:1 into canonical inline content.
// The input is already structured, so it never passes through the
// tokenizer. Mention payloads are preserved verbatim for potential future
// reconstruction.
func FromRichText(items []RichText) []document.Inline {
	var out []document.Inline

	for _, rt := range items {
		switch rt.Type {
		case "mention":
			in := document.Inline{
				Type:        document.InlineMention,
				DisplayText: rt.PlainText,
			}
			if rt.Mention != nil {
				in.MentionType = document.MentionType(rt.Mention.Type)
				if data, err := json.Marshal(rt.Mention); err == nil {
					in.OriginalData = data
				}
			}
			out = append(out, in)

		case "equation":
			if rt.Equation != nil {
				out = append(out, document.EquationRun(rt.Equation.Expression))
			}

		default: // "text"
			if rt.Text == nil {
				if rt.PlainText != "" {
					out = append(out, document.TextRun(rt.PlainText, annotationStyles(rt.Annotations)))
				}
				continue
			}

			styles := annotationStyles(rt.Annotations)
			if rt.Text.Link != nil {
				out = append(out, document.Inline{
					Type:    document.InlineLink,
					URL:     rt.Text.Link.URL,
					Content: []document.Inline{document.TextRun(rt.Text.Content, styles)},
				})
				continue
			}
			out = append(out, document.TextRun(rt.Text.Content, styles))
		}
	}

	return out
}

// ToRichText converts canonical inline content back into the host shape.
func ToRichText(content []document.Inline) []RichText {
	var out []RichText

	for _, in := range content {
		switch in.Type {
		case document.InlineLink:
			// One host item per labeled text run, each carrying the link.
			runs := in.Content
			if len(runs) == 0 {
				runs = []document.Inline{document.TextRun(in.URL, document.Styles{})}
			}
			for _, run := range runs {
				out = append(out, RichText{
					Type: "text",
					Text: &TextContent{
						Content: run.PlainText(),
						Link:    &TextLink{URL: in.URL},
					},
					Annotations: styleAnnotations(run.Styles),
					PlainText:   run.PlainText(),
					Href:        in.URL,
				})
			}

		case document.InlineMention:
			rt := RichText{
				Type:      "mention",
				PlainText: in.DisplayText,
			}
			var m Mention
			if len(in.OriginalData) > 0 && json.Unmarshal(in.OriginalData, &m) == nil {
				rt.Mention = &m
			} else {
				// Without the original payload the mention cannot be
				// reconstructed; fall back to its display text.
				rt = RichText{
					Type:      "text",
					Text:      &TextContent{Content: in.DisplayText},
					PlainText: in.DisplayText,
				}
			}
			out = append(out, rt)

		case document.InlineEquation:
			out = append(out, RichText{
				Type:      "equation",
				Equation:  &Equation{Expression: in.Expression},
				PlainText: in.Expression,
			})

		default: // text
			out = append(out, RichText{
				Type:        "text",
				Text:        &TextContent{Content: in.Text},
				Annotations: styleAnnotations(in.Styles),
				PlainText:   in.Text,
			})
		}
	}

	return out
}

// PlainString flattens host rich text to its concatenated plain text.
func PlainString(items []RichText) string {
	var out string
	for _, rt := range items {
		switch {
		case rt.Text != nil:
			out += rt.Text.Content
		case rt.Equation != nil:
			out += rt.Equation.Expression
		default:
			out += rt.PlainText
		}
	}
	return out
}
