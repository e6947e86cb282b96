// Package markdown captures markdown text into the canonical document.
// goldmark supplies the block structure; inline text runs through the same
// tokenizer the rest of the library uses, so markup semantics never fork.
package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/rbenhaga/notionclipper/pkg/document"
	"github.com/rbenhaga/notionclipper/pkg/document/richtext"
)

// Options controls the capture.
type Options struct {
	// Inline is passed through to the inline tokenizer.
	Inline richtext.Options
}

var taskMarker = regexp.MustCompile(`^\[[ xX]\]\s+`)

var defaultMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.TaskList),
)

type parseState struct {
	source   []byte
	opts     Options
	warnings []document.Warning
}

func (st *parseState) warn(blockType, message string, severity document.Severity) {
	st.warnings = append(st.warnings, document.Warning{
		BlockType: blockType,
		Message:   message,
		Severity:  severity,
	})
}

// Parse captures markdown source into a canonical document. An optional
// YAML frontmatter supplies the title and source URL. Block kinds outside
// the canonical model degrade to paragraphs with an in-band warning;
// the only error is malformed frontmatter.
func Parse(src []byte, opts Options) (*document.Document, []document.Warning, error) {
	raw, content := splitSource(src)

	fm, err := parseFrontmatter(raw)
	if err != nil {
		return nil, nil, err
	}

	st := &parseState{source: content, opts: opts}

	root := defaultMarkdown.Parser().Parse(text.NewReader(content))
	blocks := st.convertChildren(root)

	document.UpdateTreeHashes(blocks)

	doc := document.NewDocument(title(fm, blocks))
	doc.Metadata.Source = document.Source{Kind: "markdown"}
	if fm != nil {
		doc.Metadata.Source.URL = fm.Source
	}
	doc.Content = blocks
	doc.Touch()

	return doc, st.warnings, nil
}

func title(fm *Frontmatter, blocks []*document.Block) string {
	if fm != nil && fm.Title != "" {
		return fm.Title
	}
	for _, b := range blocks {
		if b.Type == document.TypeHeading1 {
			return b.PlainText()
		}
	}
	return ""
}

func (st *parseState) convertChildren(n ast.Node) []*document.Block {
	var out []*document.Block
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, st.convertNode(c)...)
	}
	return out
}

func (st *parseState) convertNode(n ast.Node) []*document.Block {
	switch n := n.(type) {
	case *ast.Heading:
		return []*document.Block{st.heading(n)}

	case *ast.Paragraph:
		if img, ok := soleImage(n); ok {
			return []*document.Block{st.image(img)}
		}
		return []*document.Block{st.textual(document.TypeParagraph, n)}

	case *ast.TextBlock:
		return []*document.Block{st.textual(document.TypeParagraph, n)}

	case *ast.List:
		return st.list(n)

	case *ast.Blockquote:
		return []*document.Block{st.quote(n)}

	case *ast.FencedCodeBlock:
		b := document.NewBlock(document.TypeCode)
		b.Props.Language = string(n.Language(st.source))
		b.Content = []document.Inline{document.TextRun(st.rawLines(n), document.Styles{})}
		return []*document.Block{b}

	case *ast.CodeBlock:
		b := document.NewBlock(document.TypeCode)
		b.Content = []document.Inline{document.TextRun(st.rawLines(n), document.Styles{})}
		return []*document.Block{b}

	case *ast.ThematicBreak:
		return []*document.Block{document.NewBlock(document.TypeDivider)}

	default:
		kind := n.Kind().String()
		st.warn(kind, fmt.Sprintf("markdown %s has no canonical equivalent, captured as plain text", kind), document.SeverityWarning)
		b := document.NewBlock(document.TypeParagraph)
		if raw := st.rawLines(n); raw != "" {
			b.Content = []document.Inline{document.TextRun(raw, document.Styles{})}
		}
		return []*document.Block{b}
	}
}

func (st *parseState) heading(n *ast.Heading) *document.Block {
	level := n.Level
	if level > 3 {
		st.warn("heading", fmt.Sprintf("heading level %d clamped to 3", level), document.SeverityInfo)
		level = 3
	}

	types := map[int]document.BlockType{
		1: document.TypeHeading1,
		2: document.TypeHeading2,
		3: document.TypeHeading3,
	}

	b := st.textual(types[level], n)
	b.Props.Level = level
	return b
}

func (st *parseState) list(n *ast.List) []*document.Block {
	var out []*document.Block
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		out = append(out, st.listItem(n, item))
	}
	return out
}

func (st *parseState) listItem(list *ast.List, item ast.Node) *document.Block {
	t := document.TypeBulletList
	if list.IsOrdered() {
		t = document.TypeNumberedList
	}

	b := document.NewBlock(t)

	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.TextBlock, *ast.Paragraph:
			if checked, ok := taskState(c); ok {
				b.Type = document.TypeTodoList
				b.Props.Checked = &checked
			}
			if b.Content == nil {
				b.Content = st.inline(taskMarker.ReplaceAllString(st.rawLines(c), ""))
			} else {
				b.Children = append(b.Children, st.textual(document.TypeParagraph, c))
			}
		default:
			b.Children = append(b.Children, st.convertNode(c)...)
		}
	}

	return b
}

// taskState reports whether the list item text opens with a task checkbox
// and, if so, whether it is checked.
func taskState(textNode ast.Node) (checked, ok bool) {
	box, isBox := textNode.FirstChild().(*east.TaskCheckBox)
	if !isBox {
		return false, false
	}
	return box.IsChecked, true
}

func (st *parseState) quote(n *ast.Blockquote) *document.Block {
	b := document.NewBlock(document.TypeQuote)

	first := true
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if first {
			if p, isPara := c.(*ast.Paragraph); isPara {
				b.Content = st.inline(st.rawLines(p))
				first = false
				continue
			}
			first = false
		}
		b.Children = append(b.Children, st.convertNode(c)...)
	}

	return b
}

func (st *parseState) image(img *ast.Image) *document.Block {
	b := document.NewBlock(document.TypeImage)
	b.Props.URL = string(img.Destination)
	b.Props.Caption = string(img.Text(st.source))
	return b
}

func soleImage(p *ast.Paragraph) (*ast.Image, bool) {
	img, ok := p.FirstChild().(*ast.Image)
	if !ok || p.ChildCount() != 1 {
		return nil, false
	}
	return img, true
}

func (st *parseState) textual(t document.BlockType, n ast.Node) *document.Block {
	b := document.NewBlock(t)
	b.Content = st.inline(st.rawLines(n))
	return b
}

func (st *parseState) inline(raw string) []document.Inline {
	if raw == "" {
		return nil
	}
	return richtext.Tokenize(raw, st.opts.Inline)
}

// rawLines reassembles the node's source lines, which is what feeds the
// inline tokenizer instead of goldmark's own inline tree.
func (st *parseState) rawLines(n ast.Node) string {
	lines := n.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, strings.TrimRight(string(seg.Value(st.source)), "\n"))
	}
	return strings.Join(parts, "\n")
}
