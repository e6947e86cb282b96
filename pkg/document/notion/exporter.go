package notion

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rbenhaga/notionclipper/internal/log"
	"github.com/rbenhaga/notionclipper/pkg/document"
)

// Exporter converts a canonical document back into the host block format.
// The mapping mirrors the importer's inverse per type, but is not a pure
// inverse: canonical unsupported blocks degrade further, because the host
// format cannot carry arbitrary unknown payloads on write.
type Exporter struct {
	Logger *zap.Logger
}

func NewExporter() *Exporter {
	return &Exporter{Logger: log.Get()}
}

type exportState struct {
	warnings []document.Warning
}

func (st *exportState) warn(blockID string, blockType document.BlockType, message string, severity document.Severity) {
	st.warnings = append(st.warnings, document.Warning{
		BlockID:   blockID,
		BlockType: string(blockType),
		Message:   message,
		Severity:  severity,
	})
}

// Export converts the document's block tree into an ordered host block
// list. The error is reserved for malformed arguments.
func (e *Exporter) Export(doc *document.Document) ([]Block, []document.Warning, error) {
	if doc == nil {
		return nil, nil, errors.New("nil document")
	}

	st := &exportState{}
	blocks := e.exportBlocks(st, doc.Content, 0)

	logger := e.Logger
	if logger == nil {
		logger = log.Get()
	}
	logger.Debug("exported canonical document",
		zap.String("documentId", doc.ID),
		zap.Int("blocks", len(blocks)),
		zap.Int("warnings", len(st.warnings)),
	)

	return blocks, st.warnings, nil
}

func (e *Exporter) exportBlocks(st *exportState, blocks []*document.Block, depth int) []Block {
	var out []Block
	for _, b := range blocks {
		out = append(out, e.exportBlock(st, b, depth)...)
	}
	return out
}

func (e *Exporter) exportBlock(st *exportState, b *document.Block, depth int) []Block {
	if depth > document.MaxDepth {
		st.warn(b.ID, b.Type, fmt.Sprintf("nesting depth exceeds %d, subtree degraded", document.MaxDepth), document.SeverityError)
		placeholder := fmt.Sprintf("[%s]", b.Type)
		return []Block{{Type: "paragraph", Paragraph: &TextPayload{RichText: []RichText{{
			Type:      "text",
			Text:      &TextContent{Content: placeholder},
			PlainText: placeholder,
		}}}}}
	}

	switch b.Type {
	case document.TypeParagraph:
		hb := Block{Type: "paragraph", Paragraph: &TextPayload{RichText: ToRichText(b.Content)}}
		hb.Children = e.exportBlocks(st, b.Children, depth+1)
		return []Block{hb}

	case document.TypeHeading1, document.TypeHeading2, document.TypeHeading3:
		return e.exportHeading(st, b, depth)

	case document.TypeBulletList:
		hb := Block{Type: "bulleted_list_item", BulletedListItem: &TextPayload{RichText: ToRichText(b.Content)}}
		hb.Children = e.exportBlocks(st, b.Children, depth+1)
		return []Block{hb}

	case document.TypeNumberedList:
		hb := Block{Type: "numbered_list_item", NumberedListItem: &TextPayload{RichText: ToRichText(b.Content)}}
		hb.Children = e.exportBlocks(st, b.Children, depth+1)
		return []Block{hb}

	case document.TypeTodoList:
		checked := b.Props.Checked != nil && *b.Props.Checked
		hb := Block{Type: "to_do", ToDo: &ToDo{RichText: ToRichText(b.Content), Checked: checked}}
		hb.Children = e.exportBlocks(st, b.Children, depth+1)
		return []Block{hb}

	case document.TypeToggle:
		hb := Block{Type: "toggle", Toggle: &TextPayload{RichText: ToRichText(b.Content)}}
		hb.Children = e.exportBlocks(st, b.Children, depth+1)
		return []Block{hb}

	case document.TypeQuote:
		hb := Block{Type: "quote", Quote: &TextPayload{RichText: ToRichText(b.Content)}}
		hb.Children = e.exportBlocks(st, b.Children, depth+1)
		return []Block{hb}

	case document.TypeCallout:
		callout := &Callout{RichText: ToRichText(b.Content), Color: b.Props.Color}
		if b.Props.Icon != "" {
			callout.Icon = &Icon{Type: "emoji", Emoji: b.Props.Icon}
		}
		hb := Block{Type: "callout", Callout: callout}
		hb.Children = e.exportBlocks(st, b.Children, depth+1)
		return []Block{hb}

	case document.TypeCode:
		// The host requires the code body as a plain string; styled runs
		// collapse.
		code := &Code{
			RichText: []RichText{{
				Type:      "text",
				Text:      &TextContent{Content: document.PlainText(b.Content)},
				PlainText: document.PlainText(b.Content),
			}},
			Language: b.Props.Language,
		}
		if b.Props.Caption != "" {
			code.Caption = []RichText{{
				Type:      "text",
				Text:      &TextContent{Content: b.Props.Caption},
				PlainText: b.Props.Caption,
			}}
		}
		return []Block{{Type: "code", Code: code}}

	case document.TypeDivider:
		return []Block{{Type: "divider", Divider: &Empty{}}}

	case document.TypeImage, document.TypeVideo, document.TypeAudio, document.TypeFile:
		return []Block{e.exportMedia(b)}

	case document.TypeBookmark:
		return []Block{{Type: "bookmark", Bookmark: &Bookmark{
			URL:     b.Props.URL,
			Caption: ToRichText(b.Content),
		}}}

	case document.TypeEmbed:
		return []Block{{Type: "embed", Embed: &Embed{URL: b.Props.URL}}}

	case document.TypeEquation:
		return []Block{{Type: "equation", Equation: &Equation{Expression: b.Props.Expression}}}

	case document.TypeTable:
		hb := Block{Type: "table", Table: &Table{
			TableWidth:      b.Props.TableWidth,
			HasColumnHeader: b.Props.HasColumnHeader,
			HasRowHeader:    b.Props.HasRowHeader,
		}}
		hb.Children = e.exportBlocks(st, b.Children, depth+1)
		return []Block{hb}

	case document.TypeTableRow:
		row := &TableRow{}
		for _, cell := range b.Children {
			row.Cells = append(row.Cells, ToRichText(cell.Content))
		}
		return []Block{{Type: "table_row", TableRow: row}}

	case document.TypeColumnList:
		hb := Block{Type: "column_list", ColumnList: &Empty{}}
		hb.Children = e.exportBlocks(st, b.Children, depth+1)
		return []Block{hb}

	case document.TypeColumn:
		hb := Block{Type: "column", Column: &Empty{}}
		hb.Children = e.exportBlocks(st, b.Children, depth+1)
		return []Block{hb}

	case document.TypeSyncedBlock:
		// Static copy: re-created as an original, never as a reference.
		hb := Block{Type: "synced_block", SyncedBlock: &SyncedBlock{}}
		hb.Children = e.exportBlocks(st, b.Children, depth+1)
		return []Block{hb}

	case document.TypeUnsupported:
		placeholder := fmt.Sprintf("[%s]", b.Props.OriginalType)
		st.warn(b.ID, b.Type, fmt.Sprintf("unsupported block degraded to a placeholder paragraph %s", placeholder), document.SeverityWarning)
		return []Block{{Type: "paragraph", Paragraph: &TextPayload{RichText: []RichText{{
			Type:      "text",
			Text:      &TextContent{Content: placeholder},
			PlainText: placeholder,
		}}}}}

	default:
		placeholder := fmt.Sprintf("[%s]", b.Type)
		st.warn(b.ID, b.Type, "unknown canonical type degraded to a placeholder paragraph", document.SeverityWarning)
		return []Block{{Type: "paragraph", Paragraph: &TextPayload{RichText: []RichText{{
			Type:      "text",
			Text:      &TextContent{Content: placeholder},
			PlainText: placeholder,
		}}}}}
	}
}

// exportHeading nests children under the heading only when the canonical
// block is toggleable; otherwise the host cannot attach them and they are
// hoisted after the heading as siblings.
func (e *Exporter) exportHeading(st *exportState, b *document.Block, depth int) []Block {
	payload := &Heading{RichText: ToRichText(b.Content), IsToggleable: b.Props.IsToggleable}

	hb := Block{Type: "heading_" + headingSuffix(b.Type)}
	switch b.Type {
	case document.TypeHeading1:
		hb.Heading1 = payload
	case document.TypeHeading2:
		hb.Heading2 = payload
	default:
		hb.Heading3 = payload
	}

	if b.Props.IsToggleable {
		hb.Children = e.exportBlocks(st, b.Children, depth+1)
		return []Block{hb}
	}

	out := []Block{hb}
	out = append(out, e.exportBlocks(st, b.Children, depth+1)...)
	return out
}

func headingSuffix(t document.BlockType) string {
	switch t {
	case document.TypeHeading1:
		return "1"
	case document.TypeHeading2:
		return "2"
	default:
		return "3"
	}
}

func (e *Exporter) exportMedia(b *document.Block) Block {
	payload := &FilePayload{
		Type:     "external",
		External: &ExternalFile{URL: b.Props.URL},
		Name:     b.Props.Name,
	}
	if b.Props.Caption != "" {
		payload.Caption = []RichText{{
			Type:      "text",
			Text:      &TextContent{Content: b.Props.Caption},
			PlainText: b.Props.Caption,
		}}
	}

	switch b.Type {
	case document.TypeImage:
		return Block{Type: "image", Image: payload}
	case document.TypeVideo:
		return Block{Type: "video", Video: payload}
	case document.TypeAudio:
		return Block{Type: "audio", Audio: payload}
	default:
		return Block{Type: "file", File: payload}
	}
}
