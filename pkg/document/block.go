package document

import (
	"encoding/json"
	"time"

	"github.com/rbenhaga/notionclipper/internal/ulid"
)

// MaxDepth bounds the nesting converters will recurse into. Input deeper
// than this degrades to an unsupported block instead of risking the stack.
const MaxDepth = 128

// BlockType is the closed set of canonical block variants. Converters must
// handle every member; anything outside the set is carried as TypeUnsupported.
type BlockType string

const (
	TypeParagraph    BlockType = "paragraph"
	TypeHeading1     BlockType = "heading1"
	TypeHeading2     BlockType = "heading2"
	TypeHeading3     BlockType = "heading3"
	TypeBulletList   BlockType = "bulletList"
	TypeNumberedList BlockType = "numberedList"
	TypeTodoList     BlockType = "todoList"
	TypeToggle       BlockType = "toggle"
	TypeQuote        BlockType = "quote"
	TypeCallout      BlockType = "callout"
	TypeCode         BlockType = "code"
	TypeDivider      BlockType = "divider"
	TypeImage        BlockType = "image"
	TypeVideo        BlockType = "video"
	TypeAudio        BlockType = "audio"
	TypeFile         BlockType = "file"
	TypeBookmark     BlockType = "bookmark"
	TypeEmbed        BlockType = "embed"
	TypeEquation     BlockType = "equation"
	TypeTable        BlockType = "table"
	TypeTableRow     BlockType = "tableRow"
	TypeColumnList   BlockType = "columnList"
	TypeColumn       BlockType = "column"
	TypeSyncedBlock  BlockType = "syncedBlock"
	TypeUnsupported  BlockType = "unsupported"
)

var knownBlockTypes = map[BlockType]struct{}{
	TypeParagraph: {}, TypeHeading1: {}, TypeHeading2: {}, TypeHeading3: {},
	TypeBulletList: {}, TypeNumberedList: {}, TypeTodoList: {}, TypeToggle: {},
	TypeQuote: {}, TypeCallout: {}, TypeCode: {}, TypeDivider: {},
	TypeImage: {}, TypeVideo: {}, TypeAudio: {}, TypeFile: {},
	TypeBookmark: {}, TypeEmbed: {}, TypeEquation: {}, TypeTable: {},
	TypeTableRow: {}, TypeColumnList: {}, TypeColumn: {}, TypeSyncedBlock: {},
	TypeUnsupported: {},
}

// KnownBlockType reports whether t belongs to the canonical set.
func KnownBlockType(t BlockType) bool {
	_, ok := knownBlockTypes[t]
	return ok
}

// Props holds the variant-specific fields of a block. Fields irrelevant to
// the block's type stay zero and are omitted from JSON, so the same struct
// serves the entire closed set without per-variant wrapper types.
type Props struct {
	// Headings.
	Level        int  `json:"level,omitempty"`
	IsToggleable bool `json:"isToggleable,omitempty"`

	// To-do items.
	Checked *bool `json:"checked,omitempty"`

	// Code blocks.
	Language string `json:"language,omitempty"`

	// Media, bookmarks and embeds.
	URL     string `json:"url,omitempty"`
	Caption string `json:"caption,omitempty"`
	Name    string `json:"name,omitempty"`

	// Callouts.
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`

	// Block equations.
	Expression string `json:"expression,omitempty"`

	// Tables.
	TableWidth      int  `json:"tableWidth,omitempty"`
	HasColumnHeader bool `json:"hasColumnHeader,omitempty"`
	HasRowHeader    bool `json:"hasRowHeader,omitempty"`

	// Synced blocks degraded to static copies.
	SyncedFromID string `json:"syncedFromId,omitempty"`

	// Unsupported blocks carry the original type tag and the verbatim
	// payload so nothing is silently dropped.
	OriginalType string          `json:"originalType,omitempty"`
	Original     json.RawMessage `json:"original,omitempty"`
}

// Meta carries the non-semantic bookkeeping of a block. None of its fields
// participate in the content hash.
type Meta struct {
	ContentHash  string    `json:"contentHash,omitempty"`
	ModifiedAt   time.Time `json:"modifiedAt,omitempty"`
	ExternalID   string    `json:"externalId,omitempty"`
	ExternalType string    `json:"externalType,omitempty"`
}

// Block is the canonical representation of a single document node. A parent
// exclusively owns its children; the tree has no cycles and no sharing.
// Mutation is whole-value replacement, so converters deep-copy rather than
// edit in place.
type Block struct {
	ID       string    `json:"id"`
	Type     BlockType `json:"type"`
	Props    Props     `json:"props,omitempty"`
	Content  []Inline  `json:"content,omitempty"`
	Children []*Block  `json:"children,omitempty"`
	Meta     Meta      `json:"meta,omitempty"`
}

// NewBlock returns a block of the given type with a fresh id.
func NewBlock(t BlockType) *Block {
	return &Block{
		ID:   NewBlockID(),
		Type: t,
		Meta: Meta{ModifiedAt: time.Now().UTC()},
	}
}

// NewBlockID generates a block id unique within the process lifetime.
func NewBlockID() string {
	return ulid.GenerateID()
}

// Clone returns a deep copy of the block and its subtree.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}

	clone := *b

	if b.Content != nil {
		clone.Content = make([]Inline, len(b.Content))
		for i, in := range b.Content {
			clone.Content[i] = in.Clone()
		}
	}

	if b.Children != nil {
		clone.Children = make([]*Block, len(b.Children))
		for i, child := range b.Children {
			clone.Children[i] = child.Clone()
		}
	}

	return &clone
}

// PlainText concatenates the text of the block's inline content.
func (b *Block) PlainText() string {
	var out string
	for _, in := range b.Content {
		out += in.PlainText()
	}
	return out
}

// Walk visits the tree rooted at blocks in pre-order. It uses an explicit
// stack, so pathological depth cannot exhaust the call stack. Returning
// false from fn stops the walk.
func Walk(blocks []*Block, fn func(b *Block, depth int) bool) {
	type frame struct {
		block *Block
		depth int
	}

	stack := make([]frame, 0, len(blocks))
	for i := len(blocks) - 1; i >= 0; i-- {
		stack = append(stack, frame{blocks[i], 0})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.block == nil {
			continue
		}
		if !fn(f.block, f.depth) {
			return
		}

		for i := len(f.block.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.block.Children[i], f.depth + 1})
		}
	}
}

// Index returns a pre-order id->block index of the tree.
func Index(blocks []*Block) map[string]*Block {
	index := make(map[string]*Block)
	Walk(blocks, func(b *Block, _ int) bool {
		index[b.ID] = b
		return true
	})
	return index
}

// IDSet returns the set of ids present in the tree.
func IDSet(blocks []*Block) map[string]struct{} {
	ids := make(map[string]struct{})
	Walk(blocks, func(b *Block, _ int) bool {
		ids[b.ID] = struct{}{}
		return true
	})
	return ids
}
