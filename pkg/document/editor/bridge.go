package editor

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rbenhaga/notionclipper/internal/log"
	"github.com/rbenhaga/notionclipper/pkg/document"
)

// Bridge converts between the canonical document and the editor format.
// The previous document supplied at construction anchors identity: its
// id->block index is built once with a full pre-order traversal and is what
// lets edited blocks keep their canonical ids across cycles.
//
// A Bridge is reusable sequentially. Per-call state lives in values created
// inside each call, never on the struct.
type Bridge struct {
	Logger *zap.Logger

	prev      *document.Document
	prevIndex map[string]*document.Block
}

// NewBridge returns a bridge anchored on prev. A nil prev means there is no
// previous document: FromEditor then creates a fresh one and every block
// classifies as new.
func NewBridge(prev *document.Document) *Bridge {
	b := &Bridge{Logger: log.Get(), prev: prev}
	if prev != nil {
		b.prevIndex = document.Index(prev.Content)
	} else {
		b.prevIndex = map[string]*document.Block{}
	}
	return b
}

// Result is the outcome of an editor-to-canonical conversion: the new
// document plus the change classification against the previous one. The
// classification is informational and never fails, including for empty
// documents.
type Result struct {
	Document         *document.Document
	ModifiedBlockIDs []string
	NewBlockIDs      []string
	DeletedBlockIDs  []string

	// RemovedMappings are the block mappings pruned because their
	// canonical block no longer exists, returned with status deleted so
	// the upload path can delete the host counterparts.
	RemovedMappings []document.BlockMapping

	Warnings []document.Warning
}

type bridgeState struct {
	warnings []document.Warning
}

func (st *bridgeState) warn(blockID string, blockType, message string, severity document.Severity) {
	st.warnings = append(st.warnings, document.Warning{
		BlockID:   blockID,
		BlockType: blockType,
		Message:   message,
		Severity:  severity,
	})
}

// ToEditor maps the previous document to editor blocks. The map is
// stateless: every block gets a fresh editor-local id, and the returned
// canonicalId->editorId map is the caller's to retain (its inverse feeds
// FromEditor after the editing session).
func (b *Bridge) ToEditor() ([]*Block, map[string]string, []document.Warning, error) {
	if b.prev == nil {
		return nil, nil, nil, errors.New("bridge has no document to map")
	}

	st := &bridgeState{}
	idMap := make(map[string]string)
	blocks := b.toEditorBlocks(st, b.prev.Content, idMap, 0)

	return blocks, idMap, st.warnings, nil
}

func (b *Bridge) toEditorBlocks(st *bridgeState, blocks []*document.Block, idMap map[string]string, depth int) []*Block {
	var out []*Block
	for _, cb := range blocks {
		out = append(out, b.toEditorBlock(st, cb, idMap, depth)...)
	}
	return out
}

func (b *Bridge) toEditorBlock(st *bridgeState, cb *document.Block, idMap map[string]string, depth int) []*Block {
	if depth > document.MaxDepth {
		st.warn(cb.ID, string(cb.Type), fmt.Sprintf("nesting depth exceeds %d, subtree degraded", document.MaxDepth), document.SeverityError)
		eb := b.newEditorBlock(cb, idMap)
		eb.Type = TypeParagraph
		eb.Props.OriginalType = string(cb.Type)
		eb.Content = []Inline{{
			Type: "text",
			Text: fmt.Sprintf("[Unsupported block: %s]", cb.Type),
		}}
		return []*Block{eb}
	}

	switch cb.Type {
	case document.TypeColumnList, document.TypeColumn:
		// Same degradation as the importer: the editor has no columns,
		// the wrappers flatten away.
		st.warn(cb.ID, string(cb.Type), "multi-column layout flattened to a linear sequence of columns", document.SeverityWarning)
		return b.toEditorBlocks(st, cb.Children, idMap, depth)

	case document.TypeUnsupported:
		eb := b.newEditorBlock(cb, idMap)
		eb.Type = TypeParagraph
		eb.Props.OriginalType = cb.Props.OriginalType
		eb.Props.Original = cb.Props.Original
		eb.Content = []Inline{{
			Type: "text",
			Text: fmt.Sprintf("[Unsupported block: %s]", cb.Props.OriginalType),
		}}
		return []*Block{eb}

	default:
		eb := b.newEditorBlock(cb, idMap)
		eb.Type = editorTypeFor(cb)
		eb.Props = toEditorProps(cb)
		eb.Content = toEditorContent(cb.Content)
		eb.Children = b.toEditorBlocks(st, cb.Children, idMap, depth+1)
		return []*Block{eb}
	}
}

func (b *Bridge) newEditorBlock(cb *document.Block, idMap map[string]string) *Block {
	eb := &Block{ID: NewBlockID()}
	idMap[cb.ID] = eb.ID
	return eb
}

// FromEditor converts an edited editor tree back into a canonical
// document. editorToCanonical is the caller-supplied reverse id map; a
// resolved id found in the previous document's index is reused, which is
// what keeps identity stable instead of regenerating everything. The
// change classification falls out of hash comparison: same id different
// hash is modified, unresolved id is new, and ids present before but
// absent now are deleted.
func (b *Bridge) FromEditor(blocks []*Block, editorToCanonical map[string]string) (*Result, error) {
	st := &bridgeState{}
	usedIDs := make(map[string]struct{})
	content := b.fromEditorBlocks(st, blocks, editorToCanonical, usedIDs, 0)

	document.UpdateTreeHashes(content)

	result := &Result{Warnings: st.warnings}
	now := time.Now().UTC()

	document.Walk(content, func(cb *document.Block, _ int) bool {
		prev, ok := b.prevIndex[cb.ID]
		if !ok {
			cb.Meta.ModifiedAt = now
			result.NewBlockIDs = append(result.NewBlockIDs, cb.ID)
			return true
		}

		// Reused blocks keep their host linkage and timestamp; only a
		// hash change bumps ModifiedAt.
		cb.Meta.ExternalID = prev.Meta.ExternalID
		cb.Meta.ExternalType = prev.Meta.ExternalType
		cb.Meta.ModifiedAt = prev.Meta.ModifiedAt

		prevHash := prev.Meta.ContentHash
		if prevHash == "" {
			prevHash = document.ContentHash(prev)
		}
		if cb.Meta.ContentHash != prevHash {
			cb.Meta.ModifiedAt = now
			result.ModifiedBlockIDs = append(result.ModifiedBlockIDs, cb.ID)
		}
		return true
	})

	newIDs := document.IDSet(content)
	if b.prev != nil {
		document.Walk(b.prev.Content, func(prevBlock *document.Block, _ int) bool {
			if _, ok := newIDs[prevBlock.ID]; !ok {
				result.DeletedBlockIDs = append(result.DeletedBlockIDs, prevBlock.ID)
			}
			return true
		})
	}

	result.Document = b.assembleDocument(content, result)

	logger := b.Logger
	if logger == nil {
		logger = log.Get()
	}
	logger.Debug("converted editor tree",
		zap.Int("blocks", result.Document.Metadata.Stats.BlockCount),
		zap.Int("modified", len(result.ModifiedBlockIDs)),
		zap.Int("new", len(result.NewBlockIDs)),
		zap.Int("deleted", len(result.DeletedBlockIDs)),
	)

	return result, nil
}

// assembleDocument augments the previous document when one was supplied,
// preserving unrelated metadata, or creates a fresh one with defaults.
func (b *Bridge) assembleDocument(content []*document.Block, result *Result) *document.Document {
	var doc *document.Document
	if b.prev != nil {
		copied := *b.prev
		copied.ExternalMapping.BlockMappings = append([]document.BlockMapping(nil), b.prev.ExternalMapping.BlockMappings...)
		doc = &copied
	} else {
		doc = document.NewDocument("")
	}

	doc.Content = content
	doc.Touch()

	result.RemovedMappings = doc.PruneMappings()

	dirty := len(result.ModifiedBlockIDs)+len(result.NewBlockIDs)+len(result.DeletedBlockIDs) > 0
	if dirty {
		doc.ExternalMapping.SyncStatus = document.SyncPending

		changed := make(map[string]struct{}, len(result.ModifiedBlockIDs))
		for _, id := range result.ModifiedBlockIDs {
			changed[id] = struct{}{}
		}
		for i := range doc.ExternalMapping.BlockMappings {
			if _, ok := changed[doc.ExternalMapping.BlockMappings[i].CanonicalID]; ok {
				doc.ExternalMapping.BlockMappings[i].Status = document.MappingPending
			}
		}
	}

	return doc
}

func (b *Bridge) fromEditorBlocks(st *bridgeState, blocks []*Block, reverse map[string]string, usedIDs map[string]struct{}, depth int) []*document.Block {
	var out []*document.Block
	for _, eb := range blocks {
		if eb == nil {
			continue
		}
		out = append(out, b.fromEditorBlock(st, eb, reverse, usedIDs, depth))
	}
	return out
}

func (b *Bridge) fromEditorBlock(st *bridgeState, eb *Block, reverse map[string]string, usedIDs map[string]struct{}, depth int) *document.Block {
	cb := &document.Block{ID: b.resolveID(eb, reverse, usedIDs)}

	if depth > document.MaxDepth {
		st.warn(eb.ID, eb.Type, fmt.Sprintf("nesting depth exceeds %d, subtree degraded", document.MaxDepth), document.SeverityError)
		return b.degradeToUnsupported(cb, eb)
	}

	// Fallback renders of unsupported blocks rebuild from the preserved
	// payload, ignoring the placeholder text shown in the editor.
	if eb.Props.OriginalType != "" {
		cb.Type = document.TypeUnsupported
		cb.Props.OriginalType = eb.Props.OriginalType
		cb.Props.Original = eb.Props.Original
		return cb
	}

	t, ok := canonicalTypeFor(eb)
	if !ok {
		st.warn(eb.ID, eb.Type, fmt.Sprintf("editor type %q has no canonical representation, carried verbatim", eb.Type), document.SeverityWarning)
		return b.degradeToUnsupported(cb, eb)
	}

	cb.Type = t
	cb.Props = fromEditorProps(eb)
	cb.Content = fromEditorContent(eb.Content)
	cb.Children = b.fromEditorBlocks(st, eb.Children, reverse, usedIDs, depth+1)
	return cb
}

// resolveID reuses the canonical id the reverse map points at, provided it
// exists in the previous document and has not been claimed by another
// editor block in this pass; otherwise the block gets a fresh id and will
// classify as new.
func (b *Bridge) resolveID(eb *Block, reverse map[string]string, usedIDs map[string]struct{}) string {
	if cid, ok := reverse[eb.ID]; ok {
		if _, known := b.prevIndex[cid]; known {
			if _, taken := usedIDs[cid]; !taken {
				usedIDs[cid] = struct{}{}
				return cid
			}
		}
	}
	return document.NewBlockID()
}

func (b *Bridge) degradeToUnsupported(cb *document.Block, eb *Block) *document.Block {
	cb.Type = document.TypeUnsupported
	cb.Props.OriginalType = eb.Type
	if data, err := json.Marshal(eb); err == nil {
		cb.Props.Original = data
	}
	return cb
}

func editorTypeFor(cb *document.Block) string {
	switch cb.Type {
	case document.TypeParagraph:
		return TypeParagraph
	case document.TypeHeading1, document.TypeHeading2, document.TypeHeading3:
		return TypeHeading
	case document.TypeBulletList:
		return TypeBulletListItem
	case document.TypeNumberedList:
		return TypeNumberedListItem
	case document.TypeTodoList:
		return TypeCheckListItem
	case document.TypeToggle:
		return TypeToggleListItem
	case document.TypeQuote:
		return TypeQuote
	case document.TypeCallout:
		return TypeCallout
	case document.TypeCode:
		return TypeCodeBlock
	case document.TypeDivider:
		return TypeDivider
	case document.TypeImage:
		return TypeImage
	case document.TypeVideo:
		return TypeVideo
	case document.TypeAudio:
		return TypeAudio
	case document.TypeFile:
		return TypeFile
	case document.TypeBookmark:
		return TypeBookmark
	case document.TypeEmbed:
		return TypeEmbed
	case document.TypeEquation:
		return TypeEquation
	case document.TypeTable:
		return TypeTable
	case document.TypeTableRow:
		return TypeTableRow
	case document.TypeSyncedBlock:
		return TypeSyncedBlock
	default:
		return TypeParagraph
	}
}

func canonicalTypeFor(eb *Block) (document.BlockType, bool) {
	switch eb.Type {
	case TypeParagraph:
		return document.TypeParagraph, true
	case TypeHeading:
		switch eb.Props.Level {
		case 2:
			return document.TypeHeading2, true
		case 3:
			return document.TypeHeading3, true
		default:
			return document.TypeHeading1, true
		}
	case TypeBulletListItem:
		return document.TypeBulletList, true
	case TypeNumberedListItem:
		return document.TypeNumberedList, true
	case TypeCheckListItem:
		return document.TypeTodoList, true
	case TypeToggleListItem:
		return document.TypeToggle, true
	case TypeQuote:
		return document.TypeQuote, true
	case TypeCallout:
		return document.TypeCallout, true
	case TypeCodeBlock:
		return document.TypeCode, true
	case TypeDivider:
		return document.TypeDivider, true
	case TypeImage:
		return document.TypeImage, true
	case TypeVideo:
		return document.TypeVideo, true
	case TypeAudio:
		return document.TypeAudio, true
	case TypeFile:
		return document.TypeFile, true
	case TypeBookmark:
		return document.TypeBookmark, true
	case TypeEmbed:
		return document.TypeEmbed, true
	case TypeEquation:
		return document.TypeEquation, true
	case TypeTable:
		return document.TypeTable, true
	case TypeTableRow:
		return document.TypeTableRow, true
	case TypeSyncedBlock:
		return document.TypeSyncedBlock, true
	default:
		return "", false
	}
}

func toEditorProps(cb *document.Block) Props {
	p := Props{
		Level:           cb.Props.Level,
		Language:        cb.Props.Language,
		URL:             cb.Props.URL,
		Caption:         cb.Props.Caption,
		Name:            cb.Props.Name,
		Icon:            cb.Props.Icon,
		Color:           cb.Props.Color,
		Expression:      cb.Props.Expression,
		IsToggleable:    cb.Props.IsToggleable,
		TableWidth:      cb.Props.TableWidth,
		HasColumnHeader: cb.Props.HasColumnHeader,
		HasRowHeader:    cb.Props.HasRowHeader,
		SyncedFromID:    cb.Props.SyncedFromID,
	}
	if cb.Props.Checked != nil {
		checked := *cb.Props.Checked
		p.Checked = &checked
	}
	return p
}

func fromEditorProps(eb *Block) document.Props {
	p := document.Props{
		Language:        eb.Props.Language,
		URL:             eb.Props.URL,
		Caption:         eb.Props.Caption,
		Name:            eb.Props.Name,
		Icon:            eb.Props.Icon,
		Color:           eb.Props.Color,
		Expression:      eb.Props.Expression,
		IsToggleable:    eb.Props.IsToggleable,
		TableWidth:      eb.Props.TableWidth,
		HasColumnHeader: eb.Props.HasColumnHeader,
		HasRowHeader:    eb.Props.HasRowHeader,
		SyncedFromID:    eb.Props.SyncedFromID,
	}
	if eb.Type == TypeHeading {
		p.Level = eb.Props.Level
		if p.Level == 0 {
			p.Level = 1
		}
	}
	if eb.Props.Checked != nil {
		checked := *eb.Props.Checked
		p.Checked = &checked
	}
	return p
}

func toEditorStyles(s document.Styles) Styles {
	return Styles{
		Bold:      s.Bold,
		Italic:    s.Italic,
		Underline: s.Underline,
		Strike:    s.Strikethrough,
		Code:      s.Code,
	}
}

func fromEditorStyles(s Styles) document.Styles {
	return document.Styles{
		Bold:          s.Bold,
		Italic:        s.Italic,
		Underline:     s.Underline,
		Strikethrough: s.Strike,
		Code:          s.Code,
	}
}

func toEditorContent(content []document.Inline) []Inline {
	var out []Inline
	for _, in := range content {
		switch in.Type {
		case document.InlineLink:
			link := Inline{Type: "link", Href: in.URL}
			for _, run := range in.Content {
				link.Content = append(link.Content, Inline{
					Type:   "text",
					Text:   run.Text,
					Styles: toEditorStyles(run.Styles),
				})
			}
			out = append(out, link)

		case document.InlineMention:
			out = append(out, Inline{
				Type: "mention",
				Text: in.DisplayText,
				Props: &MentionProps{
					Kind:     string(in.MentionType),
					Original: in.OriginalData,
				},
			})

		case document.InlineEquation:
			out = append(out, Inline{Type: "inlineEquation", Text: in.Expression})

		default:
			out = append(out, Inline{
				Type:   "text",
				Text:   in.Text,
				Styles: toEditorStyles(in.Styles),
			})
		}
	}
	return out
}

func fromEditorContent(content []Inline) []document.Inline {
	var out []document.Inline
	for _, in := range content {
		switch in.Type {
		case "link":
			link := document.Inline{Type: document.InlineLink, URL: in.Href}
			for _, run := range in.Content {
				link.Content = append(link.Content, document.TextRun(run.Text, fromEditorStyles(run.Styles)))
			}
			out = append(out, link)

		case "mention":
			mention := document.Inline{
				Type:        document.InlineMention,
				DisplayText: in.Text,
			}
			if in.Props != nil {
				mention.MentionType = document.MentionType(in.Props.Kind)
				mention.OriginalData = in.Props.Original
			}
			out = append(out, mention)

		case "inlineEquation":
			out = append(out, document.EquationRun(in.Text))

		default:
			out = append(out, document.TextRun(in.Text, fromEditorStyles(in.Styles)))
		}
	}
	return out
}
