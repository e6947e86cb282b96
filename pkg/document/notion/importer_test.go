package notion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbenhaga/notionclipper/pkg/document"
)

func mustDecodeBlocks(t *testing.T, raw string) []Block {
	t.Helper()
	var blocks []Block
	require.NoError(t, json.Unmarshal([]byte(raw), &blocks))
	return blocks
}

func textItem(content string) RichText {
	return RichText{Type: "text", Text: &TextContent{Content: content}, PlainText: content}
}

func testMeta() ImportMeta {
	return ImportMeta{SourcePageID: "page-1", WorkspaceID: "ws-1", Title: "Clipped page"}
}

func TestImport_Paragraph(t *testing.T) {
	blocks := []Block{{
		ID:        "n1",
		Type:      "paragraph",
		Paragraph: &TextPayload{RichText: []RichText{textItem("hello")}},
	}}

	doc, warnings, err := NewImporter().Import(blocks, testMeta())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, doc.Content, 1)
	b := doc.Content[0]
	assert.Equal(t, document.TypeParagraph, b.Type)
	assert.Equal(t, []document.Inline{document.TextRun("hello", document.Styles{})}, b.Content)
	assert.Equal(t, "n1", b.Meta.ExternalID)
	assert.NotEmpty(t, b.Meta.ContentHash)
	assert.NotEmpty(t, b.ID)
}

func TestImport_DocumentEnvelope(t *testing.T) {
	blocks := []Block{{ID: "n1", Type: "paragraph", Paragraph: &TextPayload{}}}

	doc, _, err := NewImporter().Import(blocks, testMeta())
	require.NoError(t, err)

	assert.Equal(t, document.SchemaVersion, doc.SchemaVersion)
	assert.Equal(t, "Clipped page", doc.Metadata.Title)
	assert.Equal(t, "notion", doc.Metadata.Source.Kind)
	assert.Equal(t, "page-1", doc.ExternalMapping.ExternalPageID)
	assert.Equal(t, "ws-1", doc.ExternalMapping.WorkspaceID)
	assert.Equal(t, document.SyncSynced, doc.ExternalMapping.SyncStatus)
	assert.False(t, doc.ExternalMapping.LastSyncedAt.IsZero())
	require.NoError(t, doc.Validate())
}

func TestImport_BlockMappings(t *testing.T) {
	blocks := []Block{
		{ID: "n1", Type: "toggle", Toggle: &TextPayload{RichText: []RichText{textItem("outer")}},
			Children: []Block{
				{ID: "n2", Type: "paragraph", Paragraph: &TextPayload{RichText: []RichText{textItem("inner")}}},
			}},
		{ID: "n3", Type: "divider", Divider: &Empty{}},
	}

	doc, _, err := NewImporter().Import(blocks, testMeta())
	require.NoError(t, err)

	mappings := doc.ExternalMapping.BlockMappings
	require.Len(t, mappings, 3)

	// Order indexes increase monotonically in conversion order.
	assert.Equal(t, []int{0, 1, 2}, []int{
		mappings[0].SyncedOrderIndex, mappings[1].SyncedOrderIndex, mappings[2].SyncedOrderIndex,
	})

	assert.Equal(t, "n1", mappings[0].ExternalID)
	assert.Equal(t, "toggle", mappings[0].ExternalType)
	assert.Empty(t, mappings[0].SyncedParentID)

	// The child's mapping records its canonical parent.
	assert.Equal(t, "n2", mappings[1].ExternalID)
	assert.Equal(t, doc.Content[0].ID, mappings[1].SyncedParentID)

	index := document.Index(doc.Content)
	for _, m := range mappings {
		assert.Equal(t, document.MappingSynced, m.Status)
		assert.Equal(t, index[m.CanonicalID].Meta.ContentHash, m.SyncedContentHash)
	}
}

func TestImport_HeadingToggleable(t *testing.T) {
	blocks := []Block{{
		ID:       "n1",
		Type:     "heading_2",
		Heading2: &Heading{RichText: []RichText{textItem("title")}, IsToggleable: true},
		Children: []Block{{ID: "n2", Type: "paragraph", Paragraph: &TextPayload{RichText: []RichText{textItem("body")}}}},
	}}

	doc, _, err := NewImporter().Import(blocks, testMeta())
	require.NoError(t, err)

	b := doc.Content[0]
	assert.Equal(t, document.TypeHeading2, b.Type)
	assert.Equal(t, 2, b.Props.Level)
	assert.True(t, b.Props.IsToggleable)
	require.Len(t, b.Children, 1)
}

func TestImport_Todo(t *testing.T) {
	blocks := []Block{{
		ID:   "n1",
		Type: "to_do",
		ToDo: &ToDo{RichText: []RichText{textItem("task")}, Checked: true},
	}}

	doc, _, err := NewImporter().Import(blocks, testMeta())
	require.NoError(t, err)

	b := doc.Content[0]
	assert.Equal(t, document.TypeTodoList, b.Type)
	require.NotNil(t, b.Props.Checked)
	assert.True(t, *b.Props.Checked)
}

func TestImport_ColumnListFlattened(t *testing.T) {
	blocks := []Block{{
		ID:         "n1",
		Type:       "column_list",
		ColumnList: &Empty{},
		Children: []Block{
			{ID: "c1", Type: "column", Column: &Empty{}, Children: []Block{
				{ID: "p1", Type: "paragraph", Paragraph: &TextPayload{RichText: []RichText{textItem("left")}}},
			}},
			{ID: "c2", Type: "column", Column: &Empty{}, Children: []Block{
				{ID: "p2", Type: "paragraph", Paragraph: &TextPayload{RichText: []RichText{textItem("right")}}},
			}},
		},
	}}

	doc, warnings, err := NewImporter().Import(blocks, testMeta())
	require.NoError(t, err)

	// Column wrappers vanish; their children become a linear sequence.
	require.Len(t, doc.Content, 2)
	assert.Equal(t, "left", doc.Content[0].PlainText())
	assert.Equal(t, "right", doc.Content[1].PlainText())

	var columnWarnings int
	for _, w := range warnings {
		if w.Severity == document.SeverityWarning {
			assert.Contains(t, w.Message, "column")
			columnWarnings++
		}
	}
	assert.GreaterOrEqual(t, columnWarnings, 1)
}

func TestImport_EmptyColumnListStillWarns(t *testing.T) {
	blocks := []Block{{ID: "n1", Type: "column_list", ColumnList: &Empty{}}}

	doc, warnings, err := NewImporter().Import(blocks, testMeta())
	require.NoError(t, err)
	assert.Empty(t, doc.Content)

	require.NotEmpty(t, warnings)
	found := false
	for _, w := range warnings {
		if w.Severity == document.SeverityWarning && w.BlockID == "n1" {
			assert.Contains(t, w.Message, "column")
			found = true
		}
	}
	assert.True(t, found)
}

func TestImport_UnknownTypeCarriedVerbatim(t *testing.T) {
	blocks := mustDecodeBlocks(t, `[
		{"id": "n1", "type": "child_page", "child_page": {"title": "Nested"}}
	]`)

	doc, warnings, err := NewImporter().Import(blocks, testMeta())
	require.NoError(t, err)

	require.Len(t, doc.Content, 1)
	b := doc.Content[0]
	assert.Equal(t, document.TypeUnsupported, b.Type)
	assert.Equal(t, "child_page", b.Props.OriginalType)
	assert.Contains(t, string(b.Props.Original), "Nested")

	require.Len(t, warnings, 1)
	assert.Equal(t, document.SeverityError, warnings[0].Severity)
	assert.Equal(t, "n1", warnings[0].BlockID)
}

func TestImport_SyncedBlock(t *testing.T) {
	t.Run("original gets no warning", func(t *testing.T) {
		blocks := []Block{{
			ID: "n1", Type: "synced_block", SyncedBlock: &SyncedBlock{},
			Children: []Block{{ID: "n2", Type: "paragraph", Paragraph: &TextPayload{RichText: []RichText{textItem("body")}}}},
		}}

		doc, warnings, err := NewImporter().Import(blocks, testMeta())
		require.NoError(t, err)
		assert.Equal(t, document.TypeSyncedBlock, doc.Content[0].Type)
		assert.Empty(t, warnings)
	})

	t.Run("reference degrades with warning", func(t *testing.T) {
		blocks := []Block{{
			ID: "n1", Type: "synced_block",
			SyncedBlock: &SyncedBlock{SyncedFrom: &SyncedFrom{BlockID: "origin"}},
		}}

		doc, warnings, err := NewImporter().Import(blocks, testMeta())
		require.NoError(t, err)
		assert.Equal(t, "origin", doc.Content[0].Props.SyncedFromID)
		require.Len(t, warnings, 1)
		assert.Equal(t, document.SeverityWarning, warnings[0].Severity)
	})
}

func TestImport_HostedMediaInfoWarning(t *testing.T) {
	blocks := []Block{
		{ID: "n1", Type: "image", Image: &FilePayload{
			Type: "file",
			File: &HostedFile{URL: "https://host.example/i.png", ExpiryTime: "2026-01-01T00:00:00Z"},
		}},
		{ID: "n2", Type: "image", Image: &FilePayload{
			Type:     "external",
			External: &ExternalFile{URL: "https://elsewhere.example/i.png"},
		}},
	}

	doc, warnings, err := NewImporter().Import(blocks, testMeta())
	require.NoError(t, err)

	assert.Equal(t, "https://host.example/i.png", doc.Content[0].Props.URL)
	assert.Equal(t, "https://elsewhere.example/i.png", doc.Content[1].Props.URL)

	require.Len(t, warnings, 1)
	assert.Equal(t, document.SeverityInfo, warnings[0].Severity)
	assert.Equal(t, "n1", warnings[0].BlockID)
}

func TestImport_RichTextVariants(t *testing.T) {
	items := []RichText{
		{Type: "text", Text: &TextContent{Content: "bold"}, Annotations: &Annotations{Bold: true}},
		{Type: "text", Text: &TextContent{Content: "docs", Link: &TextLink{URL: "https://example.com"}}},
		{Type: "mention", PlainText: "@jane", Mention: &Mention{Type: "user", User: json.RawMessage(`{"id":"u1"}`)}},
		{Type: "equation", Equation: &Equation{Expression: "e=mc^2"}},
	}
	blocks := []Block{{ID: "n1", Type: "paragraph", Paragraph: &TextPayload{RichText: items}}}

	doc, _, err := NewImporter().Import(blocks, testMeta())
	require.NoError(t, err)

	content := doc.Content[0].Content
	require.Len(t, content, 4)

	assert.Equal(t, document.TextRun("bold", document.Styles{Bold: true}), content[0])

	assert.Equal(t, document.InlineLink, content[1].Type)
	assert.Equal(t, "https://example.com", content[1].URL)
	assert.Equal(t, "docs", content[1].PlainText())

	assert.Equal(t, document.InlineMention, content[2].Type)
	assert.Equal(t, document.MentionUser, content[2].MentionType)
	assert.Equal(t, "@jane", content[2].DisplayText)
	assert.Contains(t, string(content[2].OriginalData), "u1")

	assert.Equal(t, document.EquationRun("e=mc^2"), content[3])
}

func TestImport_TableToRowsAndCells(t *testing.T) {
	blocks := []Block{{
		ID: "n1", Type: "table", Table: &Table{TableWidth: 2, HasColumnHeader: true},
		Children: []Block{
			{ID: "r1", Type: "table_row", TableRow: &TableRow{Cells: [][]RichText{
				{textItem("a")}, {textItem("b")},
			}}},
		},
	}}

	doc, _, err := NewImporter().Import(blocks, testMeta())
	require.NoError(t, err)

	table := doc.Content[0]
	assert.Equal(t, document.TypeTable, table.Type)
	assert.Equal(t, 2, table.Props.TableWidth)
	require.Len(t, table.Children, 1)

	row := table.Children[0]
	assert.Equal(t, document.TypeTableRow, row.Type)
	require.Len(t, row.Children, 2)
	assert.Equal(t, "a", row.Children[0].PlainText())
	assert.Equal(t, "b", row.Children[1].PlainText())
}

func TestImport_EmptyInput(t *testing.T) {
	doc, warnings, err := NewImporter().Import(nil, testMeta())
	require.NoError(t, err)
	assert.Empty(t, doc.Content)
	assert.Empty(t, warnings)
	assert.Equal(t, 0, doc.Metadata.Stats.BlockCount)
}

func TestImport_MissingTypeIsAnError(t *testing.T) {
	_, _, err := NewImporter().Import([]Block{{ID: "n1"}}, testMeta())
	assert.Error(t, err)
}

func TestImport_ReusableSequentially(t *testing.T) {
	imp := NewImporter()
	blocks := []Block{{ID: "n1", Type: "column_list", ColumnList: &Empty{}}}

	_, first, err := imp.Import(blocks, testMeta())
	require.NoError(t, err)
	_, second, err := imp.Import(blocks, testMeta())
	require.NoError(t, err)

	// Warnings do not accumulate across calls.
	assert.Equal(t, len(first), len(second))
}

func TestImport_DepthGuardDegrades(t *testing.T) {
	chain := Block{Type: "paragraph", Paragraph: &TextPayload{RichText: []RichText{textItem("bottom")}}}
	for i := 0; i < document.MaxDepth+10; i++ {
		chain = Block{Type: "toggle", Toggle: &TextPayload{}, Children: []Block{chain}}
	}

	doc, warnings, err := NewImporter().Import([]Block{chain}, testMeta())
	require.NoError(t, err)

	var degraded *document.Block
	document.Walk(doc.Content, func(b *document.Block, _ int) bool {
		if b.Type == document.TypeUnsupported {
			degraded = b
			return false
		}
		return true
	})
	require.NotNil(t, degraded)
	assert.Equal(t, "toggle", degraded.Props.OriginalType)
	assert.Empty(t, degraded.Children)

	var guard *document.Warning
	for i := range warnings {
		if warnings[i].Severity == document.SeverityError {
			guard = &warnings[i]
			break
		}
	}
	require.NotNil(t, guard)
	assert.Contains(t, guard.Message, "depth")
}
