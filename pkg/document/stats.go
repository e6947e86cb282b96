package document

import "strings"

// DocumentStats aggregates a block tree in a single traversal.
type DocumentStats struct {
	BlockCount int               `json:"blockCount"`
	TypeCounts map[BlockType]int `json:"typeCounts,omitempty"`
	MaxDepth   int               `json:"maxDepth"`
	WordCount  int               `json:"wordCount"`
}

// Stats walks the tree once and returns per-type counts, maximum depth and
// a word count over all inline text.
func Stats(blocks []*Block) DocumentStats {
	stats := DocumentStats{
		TypeCounts: make(map[BlockType]int),
	}

	Walk(blocks, func(b *Block, depth int) bool {
		stats.BlockCount++
		stats.TypeCounts[b.Type]++
		if depth+1 > stats.MaxDepth {
			stats.MaxDepth = depth + 1
		}
		stats.WordCount += len(strings.Fields(b.PlainText()))
		return true
	})

	return stats
}
