// Package notion models the host workspace API's block format and the two
// converters crossing it: import into the canonical document and export
// back out of it.
package notion

import "encoding/json"

// Block is one node of the host block tree: keyed by Type, with a
// type-named sibling object holding the variant data, recursive through
// Children.
type Block struct {
	Object      string  `json:"object,omitempty"`
	ID          string  `json:"id,omitempty"`
	Type        string  `json:"type"`
	HasChildren bool    `json:"has_children,omitempty"`
	Children    []Block `json:"children,omitempty"`

	Paragraph        *TextPayload `json:"paragraph,omitempty"`
	Heading1         *Heading     `json:"heading_1,omitempty"`
	Heading2         *Heading     `json:"heading_2,omitempty"`
	Heading3         *Heading     `json:"heading_3,omitempty"`
	BulletedListItem *TextPayload `json:"bulleted_list_item,omitempty"`
	NumberedListItem *TextPayload `json:"numbered_list_item,omitempty"`
	ToDo             *ToDo        `json:"to_do,omitempty"`
	Toggle           *TextPayload `json:"toggle,omitempty"`
	Quote            *TextPayload `json:"quote,omitempty"`
	Callout          *Callout     `json:"callout,omitempty"`
	Code             *Code        `json:"code,omitempty"`
	Divider          *Empty       `json:"divider,omitempty"`
	Image            *FilePayload `json:"image,omitempty"`
	Video            *FilePayload `json:"video,omitempty"`
	Audio            *FilePayload `json:"audio,omitempty"`
	File             *FilePayload `json:"file,omitempty"`
	PDF              *FilePayload `json:"pdf,omitempty"`
	Bookmark         *Bookmark    `json:"bookmark,omitempty"`
	Embed            *Embed       `json:"embed,omitempty"`
	Equation         *Equation    `json:"equation,omitempty"`
	Table            *Table       `json:"table,omitempty"`
	TableRow         *TableRow    `json:"table_row,omitempty"`
	ColumnList       *Empty       `json:"column_list,omitempty"`
	Column           *Empty       `json:"column,omitempty"`
	SyncedBlock      *SyncedBlock `json:"synced_block,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON keeps the verbatim payload alongside the typed fields, so
// unrecognized block types can be carried through conversion unchanged.
func (b *Block) UnmarshalJSON(data []byte) error {
	type alias Block
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*b = Block(a)
	b.raw = append(json.RawMessage(nil), data...)
	return nil
}

// Raw returns the verbatim JSON the block was decoded from, or nil for
// programmatically constructed blocks.
func (b *Block) Raw() json.RawMessage {
	return b.raw
}

type Empty struct{}

// Annotations is the host's inline style object.
type Annotations struct {
	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	Underline     bool   `json:"underline,omitempty"`
	Code          bool   `json:"code,omitempty"`
	Color         string `json:"color,omitempty"`
}

type TextLink struct {
	URL string `json:"url"`
}

type TextContent struct {
	Content string    `json:"content"`
	Link    *TextLink `json:"link,omitempty"`
}

// Mention sub-objects stay raw: the canonical model preserves them verbatim
// for potential future reconstruction, never interprets them.
type Mention struct {
	Type     string          `json:"type"`
	User     json.RawMessage `json:"user,omitempty"`
	Page     json.RawMessage `json:"page,omitempty"`
	Date     json.RawMessage `json:"date,omitempty"`
	Database json.RawMessage `json:"database,omitempty"`
}

type Equation struct {
	Expression string `json:"expression"`
}

// RichText is one host inline item, already structured; it maps 1:1 to
// canonical inline content and never passes through the tokenizer.
type RichText struct {
	Type        string       `json:"type"`
	Text        *TextContent `json:"text,omitempty"`
	Mention     *Mention     `json:"mention,omitempty"`
	Equation    *Equation    `json:"equation,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
	PlainText   string       `json:"plain_text,omitempty"`
	Href        string       `json:"href,omitempty"`
}

type TextPayload struct {
	RichText []RichText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

type Heading struct {
	RichText     []RichText `json:"rich_text"`
	Color        string     `json:"color,omitempty"`
	IsToggleable bool       `json:"is_toggleable,omitempty"`
}

type ToDo struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
	Color    string     `json:"color,omitempty"`
}

type Icon struct {
	Type     string        `json:"type"`
	Emoji    string        `json:"emoji,omitempty"`
	External *ExternalFile `json:"external,omitempty"`
}

type Callout struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
	Color    string     `json:"color,omitempty"`
}

type Code struct {
	RichText []RichText `json:"rich_text"`
	Caption  []RichText `json:"caption,omitempty"`
	Language string     `json:"language,omitempty"`
}

type ExternalFile struct {
	URL string `json:"url"`
}

// HostedFile is a workspace-hosted attachment; its URL expires.
type HostedFile struct {
	URL        string `json:"url"`
	ExpiryTime string `json:"expiry_time,omitempty"`
}

type FilePayload struct {
	Type     string        `json:"type,omitempty"` // "external" or "file"
	External *ExternalFile `json:"external,omitempty"`
	File     *HostedFile   `json:"file,omitempty"`
	Caption  []RichText    `json:"caption,omitempty"`
	Name     string        `json:"name,omitempty"`
}

// URLValue returns whichever URL variant is present.
func (f *FilePayload) URLValue() string {
	switch {
	case f == nil:
		return ""
	case f.External != nil:
		return f.External.URL
	case f.File != nil:
		return f.File.URL
	default:
		return ""
	}
}

// Hosted reports whether the file lives on workspace storage.
func (f *FilePayload) Hosted() bool {
	return f != nil && f.Type == "file"
}

type Bookmark struct {
	URL     string     `json:"url"`
	Caption []RichText `json:"caption,omitempty"`
}

type Embed struct {
	URL string `json:"url"`
}

type Table struct {
	TableWidth      int  `json:"table_width"`
	HasColumnHeader bool `json:"has_column_header,omitempty"`
	HasRowHeader    bool `json:"has_row_header,omitempty"`
}

type TableRow struct {
	Cells [][]RichText `json:"cells"`
}

type SyncedFrom struct {
	BlockID string `json:"block_id"`
}

// SyncedBlock with a nil SyncedFrom is an original; otherwise it is a
// reference to another sync target.
type SyncedBlock struct {
	SyncedFrom *SyncedFrom `json:"synced_from"`
}
