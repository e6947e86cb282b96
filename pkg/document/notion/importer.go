package notion

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rbenhaga/notionclipper/internal/log"
	"github.com/rbenhaga/notionclipper/pkg/document"
)

// ImportMeta carries the page-level context of an import.
type ImportMeta struct {
	SourcePageID string
	WorkspaceID  string
	Title        string
	PageURL      string
}

// Importer converts a host block tree into a canonical document. Lossy
// input degrades in-band: nothing is silently dropped and conversion never
// aborts. An instance is reusable sequentially; per-call state lives in an
// importState threaded through the recursion. Concurrent use requires
// separate instances.
type Importer struct {
	Logger *zap.Logger
}

func NewImporter() *Importer {
	return &Importer{Logger: log.Get()}
}

// importState is the per-call accumulator, reset by virtue of being
// created anew on every Import.
type importState struct {
	warnings   []document.Warning
	mappings   []document.BlockMapping
	orderIndex int
}

func (st *importState) warn(blockID, blockType, message string, severity document.Severity) {
	st.warnings = append(st.warnings, document.Warning{
		BlockID:   blockID,
		BlockType: blockType,
		Message:   message,
		Severity:  severity,
	})
}

func (st *importState) mapBlock(canonical *document.Block, host *Block, parentID string) {
	st.mappings = append(st.mappings, document.BlockMapping{
		CanonicalID:      canonical.ID,
		ExternalID:       host.ID,
		ExternalType:     host.Type,
		SyncedOrderIndex: st.orderIndex,
		SyncedParentID:   parentID,
		Status:           document.MappingSynced,
	})
	st.orderIndex++
}

// Import converts an ordered host block list into a canonical document plus
// the warnings collected along the way. The returned error is reserved for
// malformed arguments; degradation is never an error.
func (imp *Importer) Import(blocks []Block, meta ImportMeta) (*document.Document, []document.Warning, error) {
	for i := range blocks {
		if blocks[i].Type == "" {
			return nil, nil, errors.Errorf("block at index %d has no type", i)
		}
	}

	st := &importState{}
	content := imp.convertBlocks(st, blocks, "", 0)

	document.UpdateTreeHashes(content)

	index := document.Index(content)
	for i := range st.mappings {
		if b, ok := index[st.mappings[i].CanonicalID]; ok {
			st.mappings[i].SyncedContentHash = b.Meta.ContentHash
		}
	}

	now := time.Now().UTC()
	doc := &document.Document{
		SchemaVersion: document.SchemaVersion,
		ID:            document.NewDocumentID(),
		Metadata: document.Metadata{
			Title:     meta.Title,
			CreatedAt: now,
			UpdatedAt: now,
			Source:    document.Source{Kind: "notion", URL: meta.PageURL},
			Stats:     document.Stats(content),
		},
		Content: content,
		ExternalMapping: document.ExternalMapping{
			ExternalPageID: meta.SourcePageID,
			WorkspaceID:    meta.WorkspaceID,
			LastSyncedAt:   now,
			SyncStatus:     document.SyncSynced,
			BlockMappings:  st.mappings,
		},
	}

	logger := imp.Logger
	if logger == nil {
		logger = log.Get()
	}
	logger.Debug("imported host page",
		zap.String("pageId", meta.SourcePageID),
		zap.Int("blocks", doc.Metadata.Stats.BlockCount),
		zap.Int("warnings", len(st.warnings)),
	)

	return doc, st.warnings, nil
}

func (imp *Importer) convertBlocks(st *importState, blocks []Block, parentID string, depth int) []*document.Block {
	var out []*document.Block
	for i := range blocks {
		out = append(out, imp.convertBlock(st, &blocks[i], parentID, depth)...)
	}
	return out
}

// convertBlock returns zero or more canonical blocks for one host block:
// column layouts flatten into several, everything else maps to exactly one.
func (imp *Importer) convertBlock(st *importState, b *Block, parentID string, depth int) []*document.Block {
	if depth > document.MaxDepth {
		cb := imp.unsupported(st, b, parentID)
		st.warn(b.ID, b.Type, fmt.Sprintf("nesting depth exceeds %d, subtree degraded", document.MaxDepth), document.SeverityError)
		return []*document.Block{cb}
	}

	switch b.Type {
	case "paragraph":
		return imp.textish(st, b, parentID, depth, document.TypeParagraph, payloadRichText(b.Paragraph))

	case "heading_1", "heading_2", "heading_3":
		return imp.heading(st, b, parentID, depth)

	case "bulleted_list_item":
		return imp.textish(st, b, parentID, depth, document.TypeBulletList, payloadRichText(b.BulletedListItem))

	case "numbered_list_item":
		return imp.textish(st, b, parentID, depth, document.TypeNumberedList, payloadRichText(b.NumberedListItem))

	case "to_do":
		blocks := imp.textish(st, b, parentID, depth, document.TypeTodoList, todoRichText(b.ToDo))
		if b.ToDo != nil {
			checked := b.ToDo.Checked
			blocks[0].Props.Checked = &checked
		}
		return blocks

	case "toggle":
		return imp.textish(st, b, parentID, depth, document.TypeToggle, payloadRichText(b.Toggle))

	case "quote":
		return imp.textish(st, b, parentID, depth, document.TypeQuote, payloadRichText(b.Quote))

	case "callout":
		var rich []RichText
		if b.Callout != nil {
			rich = b.Callout.RichText
		}
		blocks := imp.textish(st, b, parentID, depth, document.TypeCallout, rich)
		if b.Callout != nil {
			if b.Callout.Icon != nil {
				blocks[0].Props.Icon = b.Callout.Icon.Emoji
			}
			blocks[0].Props.Color = b.Callout.Color
		}
		return blocks

	case "code":
		var rich []RichText
		if b.Code != nil {
			rich = b.Code.RichText
		}
		blocks := imp.textish(st, b, parentID, depth, document.TypeCode, rich)
		if b.Code != nil {
			blocks[0].Props.Language = b.Code.Language
			blocks[0].Props.Caption = PlainString(b.Code.Caption)
		}
		return blocks

	case "divider":
		cb := imp.newCanonical(st, b, parentID, document.TypeDivider)
		return []*document.Block{cb}

	case "image", "video", "audio", "file", "pdf":
		return []*document.Block{imp.media(st, b, parentID)}

	case "bookmark":
		cb := imp.newCanonical(st, b, parentID, document.TypeBookmark)
		if b.Bookmark != nil {
			cb.Props.URL = b.Bookmark.URL
			cb.Content = FromRichText(b.Bookmark.Caption)
		}
		return []*document.Block{cb}

	case "embed":
		cb := imp.newCanonical(st, b, parentID, document.TypeEmbed)
		if b.Embed != nil {
			cb.Props.URL = b.Embed.URL
		}
		return []*document.Block{cb}

	case "equation":
		cb := imp.newCanonical(st, b, parentID, document.TypeEquation)
		if b.Equation != nil {
			cb.Props.Expression = b.Equation.Expression
		}
		return []*document.Block{cb}

	case "table":
		cb := imp.newCanonical(st, b, parentID, document.TypeTable)
		if b.Table != nil {
			cb.Props.TableWidth = b.Table.TableWidth
			cb.Props.HasColumnHeader = b.Table.HasColumnHeader
			cb.Props.HasRowHeader = b.Table.HasRowHeader
		}
		cb.Children = imp.convertBlocks(st, b.Children, cb.ID, depth+1)
		return []*document.Block{cb}

	case "table_row":
		cb := imp.newCanonical(st, b, parentID, document.TypeTableRow)
		if b.TableRow != nil {
			for _, cell := range b.TableRow.Cells {
				cellBlock := document.NewBlock(document.TypeParagraph)
				cellBlock.Content = FromRichText(cell)
				cb.Children = append(cb.Children, cellBlock)
			}
		}
		return []*document.Block{cb}

	case "column_list", "column":
		// Multi-column layout flattens into a linear sequence of the
		// columns' children; the wrappers themselves vanish.
		st.warn(b.ID, b.Type, "multi-column layout flattened to a linear sequence of columns", document.SeverityWarning)
		return imp.convertBlocks(st, b.Children, parentID, depth)

	case "synced_block":
		cb := imp.newCanonical(st, b, parentID, document.TypeSyncedBlock)
		if b.SyncedBlock != nil && b.SyncedBlock.SyncedFrom != nil {
			cb.Props.SyncedFromID = b.SyncedBlock.SyncedFrom.BlockID
			st.warn(b.ID, b.Type, "synced block reference degraded to a static copy", document.SeverityWarning)
		}
		cb.Children = imp.convertBlocks(st, b.Children, cb.ID, depth+1)
		return []*document.Block{cb}

	default:
		cb := imp.unsupported(st, b, parentID)
		st.warn(b.ID, b.Type, fmt.Sprintf("block type %q has no canonical representation, carried verbatim", b.Type), document.SeverityError)
		return []*document.Block{cb}
	}
}

// textish handles the rich-text-bearing family sharing one shape: inline
// content plus recursively converted children.
func (imp *Importer) textish(st *importState, b *Block, parentID string, depth int, t document.BlockType, rich []RichText) []*document.Block {
	cb := imp.newCanonical(st, b, parentID, t)
	cb.Content = FromRichText(rich)
	cb.Children = imp.convertBlocks(st, b.Children, cb.ID, depth+1)
	return []*document.Block{cb}
}

func (imp *Importer) heading(st *importState, b *Block, parentID string, depth int) []*document.Block {
	var (
		t       document.BlockType
		level   int
		payload *Heading
	)
	switch b.Type {
	case "heading_1":
		t, level, payload = document.TypeHeading1, 1, b.Heading1
	case "heading_2":
		t, level, payload = document.TypeHeading2, 2, b.Heading2
	default:
		t, level, payload = document.TypeHeading3, 3, b.Heading3
	}

	cb := imp.newCanonical(st, b, parentID, t)
	cb.Props.Level = level
	if payload != nil {
		cb.Content = FromRichText(payload.RichText)
		cb.Props.IsToggleable = payload.IsToggleable
	}
	cb.Children = imp.convertBlocks(st, b.Children, cb.ID, depth+1)
	return []*document.Block{cb}
}

func (imp *Importer) media(st *importState, b *Block, parentID string) *document.Block {
	var t document.BlockType
	switch b.Type {
	case "image":
		t = document.TypeImage
	case "video":
		t = document.TypeVideo
	case "audio":
		t = document.TypeAudio
	default: // file, pdf
		t = document.TypeFile
	}

	var payload *FilePayload
	switch b.Type {
	case "image":
		payload = b.Image
	case "video":
		payload = b.Video
	case "audio":
		payload = b.Audio
	case "pdf":
		payload = b.PDF
	default:
		payload = b.File
	}

	cb := imp.newCanonical(st, b, parentID, t)
	if payload != nil {
		cb.Props.URL = payload.URLValue()
		cb.Props.Name = payload.Name
		cb.Props.Caption = PlainString(payload.Caption)
		if payload.Hosted() {
			st.warn(b.ID, b.Type, "workspace-hosted media URL expires and should be re-fetched before display", document.SeverityInfo)
		}
	}
	return cb
}

func (imp *Importer) unsupported(st *importState, b *Block, parentID string) *document.Block {
	cb := imp.newCanonical(st, b, parentID, document.TypeUnsupported)
	cb.Props.OriginalType = b.Type
	cb.Props.Original = b.Raw()
	return cb
}

// newCanonical creates the canonical counterpart of a host block and
// records its mapping row.
func (imp *Importer) newCanonical(st *importState, b *Block, parentID string, t document.BlockType) *document.Block {
	cb := document.NewBlock(t)
	cb.Meta.ExternalID = b.ID
	cb.Meta.ExternalType = b.Type
	st.mapBlock(cb, b, parentID)
	return cb
}

func payloadRichText(p *TextPayload) []RichText {
	if p == nil {
		return nil
	}
	return p.RichText
}

func todoRichText(p *ToDo) []RichText {
	if p == nil {
		return nil
	}
	return p.RichText
}
