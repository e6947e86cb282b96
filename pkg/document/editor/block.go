// Package editor models the embedded block editor's native format and the
// bidirectional bridge between it and the canonical document. The bridge is
// the identity-sensitive hot path: it keeps canonical block ids stable
// across edit cycles instead of regenerating them.
package editor

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Block is one node of the editor's block tree.
type Block struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Props    Props    `json:"props,omitempty"`
	Content  []Inline `json:"content,omitempty"`
	Children []*Block `json:"children,omitempty"`
}

// Editor block type names, the editor's fixed closed set of built-in plus
// custom types.
const (
	TypeParagraph        = "paragraph"
	TypeHeading          = "heading"
	TypeBulletListItem   = "bulletListItem"
	TypeNumberedListItem = "numberedListItem"
	TypeCheckListItem    = "checkListItem"
	TypeToggleListItem   = "toggleListItem"
	TypeQuote            = "quote"
	TypeCallout          = "callout"
	TypeCodeBlock        = "codeBlock"
	TypeDivider          = "divider"
	TypeImage            = "image"
	TypeVideo            = "video"
	TypeAudio            = "audio"
	TypeFile             = "file"
	TypeBookmark         = "bookmark"
	TypeEmbed            = "embed"
	TypeEquation         = "equation"
	TypeTable            = "table"
	TypeTableRow         = "tableRow"
	TypeSyncedBlock      = "syncedBlock"
)

// Props carries the editor's per-type attributes.
type Props struct {
	Level           int    `json:"level,omitempty"`
	Checked         *bool  `json:"checked,omitempty"`
	Language        string `json:"language,omitempty"`
	URL             string `json:"url,omitempty"`
	Caption         string `json:"caption,omitempty"`
	Name            string `json:"name,omitempty"`
	Icon            string `json:"icon,omitempty"`
	Color           string `json:"color,omitempty"`
	Expression      string `json:"expression,omitempty"`
	IsToggleable    bool   `json:"isToggleable,omitempty"`
	TableWidth      int    `json:"tableWidth,omitempty"`
	HasColumnHeader bool   `json:"hasColumnHeader,omitempty"`
	HasRowHeader    bool   `json:"hasRowHeader,omitempty"`
	SyncedFromID    string `json:"syncedFromId,omitempty"`

	// Fallback renders of canonical unsupported blocks keep the original
	// type and payload here so a later edit cycle can rebuild them
	// without loss.
	OriginalType string          `json:"originalType,omitempty"`
	Original     json.RawMessage `json:"original,omitempty"`
}

// Styles is the editor's inline style object.
type Styles struct {
	Bold      bool `json:"bold,omitempty"`
	Italic    bool `json:"italic,omitempty"`
	Underline bool `json:"underline,omitempty"`
	Strike    bool `json:"strike,omitempty"`
	Code      bool `json:"code,omitempty"`
}

// MentionProps rides on mention inline items; Original is the verbatim
// host payload threaded through for reconstruction.
type MentionProps struct {
	Kind     string          `json:"kind,omitempty"`
	Original json.RawMessage `json:"original,omitempty"`
}

// Inline is one editor inline content item. Type is "text", "link",
// "mention" or "inlineEquation"; for equations Text holds the expression.
type Inline struct {
	Type    string        `json:"type"`
	Text    string        `json:"text,omitempty"`
	Styles  Styles        `json:"styles,omitempty"`
	Href    string        `json:"href,omitempty"`
	Content []Inline      `json:"content,omitempty"`
	Props   *MentionProps `json:"props,omitempty"`
}

// NewBlockID generates an editor-local block id. Editor ids are ephemeral:
// they live only as long as the mounted editor session and never leak into
// the canonical document.
func NewBlockID() string {
	return uuid.NewString()
}
