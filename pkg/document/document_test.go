package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTextBlock(t BlockType, text string) *Block {
	b := NewBlock(t)
	b.Content = []Inline{TextRun(text, Styles{})}
	return b
}

func TestContentHash_Deterministic(t *testing.T) {
	a := newTextBlock(TypeParagraph, "hello world")
	b := newTextBlock(TypeParagraph, "hello world")

	// Different ids and timestamps, same semantic content.
	require.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, ContentHash(a), ContentHash(b))
}

func TestContentHash_SensitiveToSemanticFields(t *testing.T) {
	base := newTextBlock(TypeParagraph, "hello")

	t.Run("text", func(t *testing.T) {
		other := newTextBlock(TypeParagraph, "hello!")
		assert.NotEqual(t, ContentHash(base), ContentHash(other))
	})

	t.Run("type", func(t *testing.T) {
		other := newTextBlock(TypeQuote, "hello")
		assert.NotEqual(t, ContentHash(base), ContentHash(other))
	})

	t.Run("styles", func(t *testing.T) {
		other := NewBlock(TypeParagraph)
		other.Content = []Inline{TextRun("hello", Styles{Bold: true})}
		assert.NotEqual(t, ContentHash(base), ContentHash(other))
	})

	t.Run("props", func(t *testing.T) {
		checked := true
		a := NewBlock(TypeTodoList)
		a.Props.Checked = &checked
		b := NewBlock(TypeTodoList)
		assert.NotEqual(t, ContentHash(a), ContentHash(b))
	})
}

func TestContentHash_RecursiveOverChildren(t *testing.T) {
	parent := newTextBlock(TypeToggle, "outer")
	parent.Children = []*Block{newTextBlock(TypeParagraph, "inner")}

	same := newTextBlock(TypeToggle, "outer")
	same.Children = []*Block{newTextBlock(TypeParagraph, "inner")}

	changed := newTextBlock(TypeToggle, "outer")
	changed.Children = []*Block{newTextBlock(TypeParagraph, "different")}

	assert.Equal(t, ContentHash(parent), ContentHash(same))
	assert.NotEqual(t, ContentHash(parent), ContentHash(changed))
}

func TestContentHash_ChildOrderSignificant(t *testing.T) {
	ab := NewBlock(TypeBulletList)
	ab.Children = []*Block{newTextBlock(TypeParagraph, "a"), newTextBlock(TypeParagraph, "b")}

	ba := NewBlock(TypeBulletList)
	ba.Children = []*Block{newTextBlock(TypeParagraph, "b"), newTextBlock(TypeParagraph, "a")}

	assert.NotEqual(t, ContentHash(ab), ContentHash(ba))
}

func TestUpdateHashes(t *testing.T) {
	parent := newTextBlock(TypeToggle, "outer")
	child := newTextBlock(TypeParagraph, "inner")
	parent.Children = []*Block{child}

	root := UpdateHashes(parent)

	assert.Equal(t, root, parent.Meta.ContentHash)
	assert.Equal(t, ContentHash(child), child.Meta.ContentHash)
	assert.NotEmpty(t, child.Meta.ContentHash)
}

func TestStats(t *testing.T) {
	heading := newTextBlock(TypeHeading1, "Title of note")
	para := newTextBlock(TypeParagraph, "two words")
	nested := newTextBlock(TypeParagraph, "deep")
	toggle := newTextBlock(TypeToggle, "outer")
	toggle.Children = []*Block{nested}

	stats := Stats([]*Block{heading, para, toggle})

	assert.Equal(t, 4, stats.BlockCount)
	assert.Equal(t, 2, stats.TypeCounts[TypeParagraph])
	assert.Equal(t, 1, stats.TypeCounts[TypeHeading1])
	assert.Equal(t, 2, stats.MaxDepth)
	assert.Equal(t, 7, stats.WordCount)
}

func TestStats_Empty(t *testing.T) {
	stats := Stats(nil)
	assert.Equal(t, 0, stats.BlockCount)
	assert.Equal(t, 0, stats.MaxDepth)
}

func TestWalk_PreOrder(t *testing.T) {
	a := newTextBlock(TypeParagraph, "a")
	b := newTextBlock(TypeParagraph, "b")
	c := newTextBlock(TypeParagraph, "c")
	a.Children = []*Block{b}

	var visited []string
	Walk([]*Block{a, c}, func(blk *Block, _ int) bool {
		visited = append(visited, blk.PlainText())
		return true
	})

	assert.Equal(t, []string{"a", "b", "c"}, visited)
}

func TestWalk_DeepTreeDoesNotOverflow(t *testing.T) {
	root := newTextBlock(TypeParagraph, "0")
	current := root
	for i := 0; i < 100000; i++ {
		child := newTextBlock(TypeParagraph, "x")
		current.Children = []*Block{child}
		current = child
	}

	count := 0
	Walk([]*Block{root}, func(*Block, int) bool {
		count++
		return true
	})
	assert.Equal(t, 100001, count)
}

func TestClone_Independent(t *testing.T) {
	original := newTextBlock(TypeToggle, "outer")
	original.Children = []*Block{newTextBlock(TypeParagraph, "inner")}

	clone := original.Clone()
	clone.Children[0].Content[0].Text = "changed"

	assert.Equal(t, "inner", original.Children[0].Content[0].Text)
	assert.Equal(t, original.ID, clone.ID)
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		doc := NewDocument("test")
		doc.Content = []*Block{newTextBlock(TypeParagraph, "ok")}
		require.NoError(t, doc.Validate())
	})

	t.Run("duplicate ids", func(t *testing.T) {
		doc := NewDocument("test")
		a := newTextBlock(TypeParagraph, "a")
		b := newTextBlock(TypeParagraph, "b")
		b.ID = a.ID
		doc.Content = []*Block{a, b}
		assert.ErrorContains(t, doc.Validate(), "duplicate block id")
	})

	t.Run("mapping references absent id", func(t *testing.T) {
		doc := NewDocument("test")
		doc.ExternalMapping.BlockMappings = []BlockMapping{{CanonicalID: "gone"}}
		assert.ErrorContains(t, doc.Validate(), "absent block id")
	})

	t.Run("unknown type", func(t *testing.T) {
		doc := NewDocument("test")
		bad := NewBlock(BlockType("wiggle"))
		doc.Content = []*Block{bad}
		assert.ErrorContains(t, doc.Validate(), "unknown type")
	})
}

func TestPruneMappings(t *testing.T) {
	doc := NewDocument("test")
	kept := newTextBlock(TypeParagraph, "kept")
	doc.Content = []*Block{kept}
	doc.ExternalMapping.BlockMappings = []BlockMapping{
		{CanonicalID: kept.ID, Status: MappingSynced},
		{CanonicalID: "removed-1", Status: MappingSynced},
	}

	removed := doc.PruneMappings()

	require.Len(t, removed, 1)
	assert.Equal(t, "removed-1", removed[0].CanonicalID)
	assert.Equal(t, MappingDeleted, removed[0].Status)
	require.Len(t, doc.ExternalMapping.BlockMappings, 1)
	assert.Equal(t, kept.ID, doc.ExternalMapping.BlockMappings[0].CanonicalID)
}

func TestContentHash_UncheckedTodoFlagOptional(t *testing.T) {
	checked := false
	bare := newTextBlock(TypeTodoList, "task")
	materialized := newTextBlock(TypeTodoList, "task")
	materialized.Props.Checked = &checked

	assert.Equal(t, ContentHash(bare), ContentHash(materialized))

	done := newTextBlock(TypeTodoList, "task")
	isDone := true
	done.Props.Checked = &isDone
	assert.NotEqual(t, ContentHash(bare), ContentHash(done))
}
