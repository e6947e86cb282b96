package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/rbenhaga/notionclipper/pkg/document"
)

// Render emits the document back as markdown for preview or plain-text
// export. The output favors readability over byte-for-byte round trips:
// degraded blocks render as their closest markdown form.
func Render(doc *document.Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}

	var buf bytes.Buffer

	fm := &Frontmatter{Title: doc.Metadata.Title, Source: doc.Metadata.Source.URL}
	header, err := fm.Marshal()
	if err != nil {
		return nil, err
	}
	if header != nil {
		buf.Write(header)
		buf.WriteByte('\n')
	}

	renderBlocks(&buf, doc.Content, "", 0)

	return buf.Bytes(), nil
}

func renderBlocks(buf *bytes.Buffer, blocks []*document.Block, indent string, depth int) {
	for i, b := range blocks {
		if i > 0 {
			buf.WriteByte('\n')
		}
		renderBlock(buf, b, indent, depth)
	}
}

func renderBlock(buf *bytes.Buffer, b *document.Block, indent string, depth int) {
	if depth > document.MaxDepth {
		fmt.Fprintf(buf, "%s<!-- nesting depth limit, subtree omitted -->\n", indent)
		return
	}

	line := func(format string, args ...interface{}) {
		buf.WriteString(indent)
		fmt.Fprintf(buf, format, args...)
		buf.WriteByte('\n')
	}

	childIndent := indent

	switch b.Type {
	case document.TypeHeading1:
		line("# %s", renderInlines(b.Content))
	case document.TypeHeading2:
		line("## %s", renderInlines(b.Content))
	case document.TypeHeading3:
		line("### %s", renderInlines(b.Content))

	case document.TypeBulletList, document.TypeToggle:
		line("- %s", renderInlines(b.Content))
		childIndent += "  "
	case document.TypeNumberedList:
		line("1. %s", renderInlines(b.Content))
		childIndent += "   "
	case document.TypeTodoList:
		mark := " "
		if b.Props.Checked != nil && *b.Props.Checked {
			mark = "x"
		}
		line("- [%s] %s", mark, renderInlines(b.Content))
		childIndent += "  "

	case document.TypeQuote, document.TypeCallout:
		text := renderInlines(b.Content)
		if b.Type == document.TypeCallout && b.Props.Icon != "" {
			text = b.Props.Icon + " " + text
		}
		line("> %s", text)
		childIndent += "> "

	case document.TypeCode:
		line("```%s", b.Props.Language)
		for _, codeLine := range strings.Split(document.PlainText(b.Content), "\n") {
			line("%s", codeLine)
		}
		line("```")

	case document.TypeDivider:
		line("---")

	case document.TypeImage:
		line("![%s](%s)", b.Props.Caption, b.Props.URL)
	case document.TypeVideo, document.TypeAudio, document.TypeFile,
		document.TypeBookmark, document.TypeEmbed:
		line("<%s>", b.Props.URL)

	case document.TypeEquation:
		line("$$%s$$", b.Props.Expression)

	case document.TypeTable:
		renderTable(buf, b, indent)
		return

	case document.TypeUnsupported:
		line("<!-- %s -->", b.Props.OriginalType)

	case document.TypeColumnList, document.TypeColumn, document.TypeSyncedBlock, document.TypeTableRow:
		// Structural wrappers render as their contents.

	default:
		if text := renderInlines(b.Content); text != "" {
			line("%s", text)
		}
	}

	renderBlocks(buf, b.Children, childIndent, depth+1)
}

func renderTable(buf *bytes.Buffer, table *document.Block, indent string) {
	for i, row := range table.Children {
		cells := make([]string, 0, len(row.Children))
		for _, cell := range row.Children {
			cells = append(cells, renderInlines(cell.Content))
		}
		fmt.Fprintf(buf, "%s| %s |\n", indent, strings.Join(cells, " | "))

		if i == 0 && table.Props.HasColumnHeader {
			seps := make([]string, len(cells))
			for j := range seps {
				seps[j] = "---"
			}
			fmt.Fprintf(buf, "%s| %s |\n", indent, strings.Join(seps, " | "))
		}
	}
}

func renderInlines(content []document.Inline) string {
	var sb strings.Builder
	for _, in := range content {
		sb.WriteString(renderInline(in))
	}
	return sb.String()
}

func renderInline(in document.Inline) string {
	switch in.Type {
	case document.InlineLink:
		var label strings.Builder
		for _, run := range in.Content {
			label.WriteString(renderInline(run))
		}
		return fmt.Sprintf("[%s](%s)", label.String(), in.URL)

	case document.InlineEquation:
		return "$" + in.Expression + "$"

	case document.InlineMention:
		return in.DisplayText

	default:
		return renderStyled(in.Text, in.Styles)
	}
}

func renderStyled(text string, s document.Styles) string {
	if s.Code {
		return "`" + text + "`"
	}
	if s.Strikethrough {
		text = "~~" + text + "~~"
	}
	if s.Underline {
		text = "__" + text + "__"
	}
	if s.Italic {
		text = "*" + text + "*"
	}
	if s.Bold {
		text = "**" + text + "**"
	}
	return text
}
