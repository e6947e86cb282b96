package document

import (
	"encoding/hex"
	"encoding/json"

	"github.com/zeebo/blake3"
)

// hashPayload is the canonical encoding fed to the digest. Only semantic
// fields appear here: ids, timestamps and sync metadata are excluded on
// purpose, children contribute through their own hashes. Struct field
// order fixes the serialization, so equal subtrees always produce equal
// bytes.
type hashPayload struct {
	Type        BlockType `json:"type"`
	Props       Props     `json:"props"`
	Content     []Inline  `json:"content"`
	ChildHashes []string  `json:"childHashes"`
}

// payloadProps normalizes Props before digesting. An unchecked todo and
// one whose checked flag was never materialized are the same block, so
// both encode without the flag.
func payloadProps(p Props) Props {
	if p.Checked != nil && !*p.Checked {
		p.Checked = nil
	}
	return p
}

// ContentHash computes the structural digest of a block subtree. Hash
// equality is the only signal change detection uses, so the digest covers
// every semantic field and nothing else.
func ContentHash(b *Block) string {
	if b == nil {
		return ""
	}

	childHashes := make([]string, len(b.Children))
	for i, child := range b.Children {
		childHashes[i] = ContentHash(child)
	}

	data, err := json.Marshal(hashPayload{
		Type:        b.Type,
		Props:       payloadProps(b.Props),
		Content:     b.Content,
		ChildHashes: childHashes,
	})
	if err != nil {
		// Marshaling plain structs of strings and bools cannot fail;
		// OriginalData is the only raw field and arrives pre-validated.
		panic(err)
	}

	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// UpdateHashes recomputes and stamps Meta.ContentHash over the whole
// subtree, bottom-up, and returns the root's hash.
func UpdateHashes(b *Block) string {
	if b == nil {
		return ""
	}

	childHashes := make([]string, len(b.Children))
	for i, child := range b.Children {
		childHashes[i] = UpdateHashes(child)
	}

	data, err := json.Marshal(hashPayload{
		Type:        b.Type,
		Props:       payloadProps(b.Props),
		Content:     b.Content,
		ChildHashes: childHashes,
	})
	if err != nil {
		panic(err)
	}

	sum := blake3.Sum256(data)
	b.Meta.ContentHash = hex.EncodeToString(sum[:])
	return b.Meta.ContentHash
}

// UpdateTreeHashes stamps hashes across a top-level block list.
func UpdateTreeHashes(blocks []*Block) {
	for _, b := range blocks {
		UpdateHashes(b)
	}
}
