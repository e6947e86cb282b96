package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbenhaga/notionclipper/pkg/document"
)

func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()

	cmd := Root()
	cmd.SetIn(bytes.NewBufferString(stdin))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestCaptureCommand(t *testing.T) {
	out := execute(t, "# Title\n\nsome **bold** text\n", "capture")

	var doc document.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, "Title", doc.Metadata.Title)
	assert.Equal(t, "markdown", doc.Metadata.Source.Kind)
	require.Len(t, doc.Content, 2)
	assert.Equal(t, document.TypeHeading1, doc.Content[0].Type)
}

func TestImportThenExportCommands(t *testing.T) {
	hostBlocks := `[{"type":"paragraph","paragraph":{"rich_text":[{"type":"text","plain_text":"hello","text":{"content":"hello"}}]}}]`

	imported := execute(t, hostBlocks, "import", "--title", "T", "--page-id", "pg-1")

	var doc document.Document
	require.NoError(t, json.Unmarshal([]byte(imported), &doc))
	assert.Equal(t, "T", doc.Metadata.Title)
	assert.Equal(t, "pg-1", doc.ExternalMapping.ExternalPageID)

	exported := execute(t, imported, "export")

	var blocks []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(exported), &blocks))
	require.Len(t, blocks, 1)
	assert.Contains(t, blocks[0], "paragraph")
}

func TestStatsCommand(t *testing.T) {
	doc := document.NewDocument("stats")
	doc.Content = []*document.Block{
		{ID: "a", Type: document.TypeParagraph,
			Content: []document.Inline{document.TextRun("one two", document.Styles{})}},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	out := execute(t, string(data), "stats")

	var stats document.DocumentStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 1, stats.BlockCount)
	assert.Equal(t, 2, stats.WordCount)
}

func TestStatsCommand_InvalidDocument(t *testing.T) {
	cmd := Root()
	cmd.SetIn(bytes.NewBufferString(`{"content":[{"id":"a","type":"wat"}]}`))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"stats"})

	require.Error(t, cmd.Execute())
}
