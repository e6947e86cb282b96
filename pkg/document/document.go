package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// SchemaVersion is stamped on every document this version of the library
// produces. Reserved for future format migration.
const SchemaVersion = 1

// SyncStatus is the document-level synchronization state against the host
// workspace.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
)

// MappingStatus is the per-block synchronization state of a BlockMapping.
type MappingStatus string

const (
	MappingSynced   MappingStatus = "synced"
	MappingPending  MappingStatus = "pending"
	MappingConflict MappingStatus = "conflict"
	MappingDeleted  MappingStatus = "deleted"
)

// Source describes where the document's content was captured from.
type Source struct {
	Kind string `json:"kind"` // "notion", "markdown", "editor"
	URL  string `json:"url,omitempty"`
}

// Metadata is the document-level envelope around the block tree.
type Metadata struct {
	Title     string        `json:"title"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Source    Source        `json:"source"`
	Stats     DocumentStats `json:"stats"`
}

// BlockMapping joins a canonical block to its host-side counterpart. The
// set of mappings is the substrate for incremental sync: the hash, order
// index and parent recorded here describe the host's last known view of
// the block.
type BlockMapping struct {
	CanonicalID       string        `json:"canonicalId"`
	ExternalID        string        `json:"externalId"`
	ExternalType      string        `json:"externalType"`
	SyncedContentHash string        `json:"syncedContentHash"`
	SyncedOrderIndex  int           `json:"syncedOrderIndex"`
	SyncedParentID    string        `json:"syncedParentId,omitempty"`
	Status            MappingStatus `json:"status"`
}

// ExternalMapping ties a document to one host page.
type ExternalMapping struct {
	ExternalPageID string         `json:"externalPageId,omitempty"`
	WorkspaceID    string         `json:"workspaceId,omitempty"`
	LastSyncedAt   time.Time      `json:"lastSyncedAt,omitempty"`
	SyncStatus     SyncStatus     `json:"syncStatus"`
	BlockMappings  []BlockMapping `json:"blockMappings,omitempty"`
}

// Document is the persisted source of truth: the canonical block tree plus
// the metadata and host mapping needed to keep the three representations of
// the same content in sync.
type Document struct {
	SchemaVersion   int             `json:"schemaVersion"`
	ID              string          `json:"id"`
	Metadata        Metadata        `json:"metadata"`
	Content         []*Block        `json:"content"`
	ExternalMapping ExternalMapping `json:"externalMapping"`
}

// NewDocument returns an empty document with default schema and source.
func NewDocument(title string) *Document {
	now := time.Now().UTC()
	return &Document{
		SchemaVersion: SchemaVersion,
		ID:            NewDocumentID(),
		Metadata: Metadata{
			Title:     title,
			CreatedAt: now,
			UpdatedAt: now,
			Source:    Source{Kind: "editor"},
		},
		ExternalMapping: ExternalMapping{SyncStatus: SyncPending},
	}
}

// NewDocumentID generates a document id.
func NewDocumentID() string {
	return uuid.NewString()
}

// Touch bumps UpdatedAt and recomputes the document stats.
func (d *Document) Touch() {
	d.Metadata.UpdatedAt = time.Now().UTC()
	d.Metadata.Stats = Stats(d.Content)
}

// PruneMappings removes block mappings whose canonical id is absent from
// the current tree. The removed rows are returned with status deleted so
// the upload path can still delete their host counterparts.
func (d *Document) PruneMappings() []BlockMapping {
	ids := IDSet(d.Content)

	var kept, removed []BlockMapping
	for _, m := range d.ExternalMapping.BlockMappings {
		if _, ok := ids[m.CanonicalID]; ok {
			kept = append(kept, m)
			continue
		}
		m.Status = MappingDeleted
		removed = append(removed, m)
	}

	d.ExternalMapping.BlockMappings = kept
	return removed
}

// Validate checks the document invariants: block ids unique within the
// tree, mappings referencing only present ids, and a known type on every
// block. All violations are reported, not just the first.
func (d *Document) Validate() error {
	var err error

	seen := make(map[string]struct{})
	Walk(d.Content, func(b *Block, _ int) bool {
		if b.ID == "" {
			err = multierr.Append(err, fmt.Errorf("block of type %q has no id", b.Type))
			return true
		}
		if _, dup := seen[b.ID]; dup {
			err = multierr.Append(err, fmt.Errorf("duplicate block id %q", b.ID))
		}
		seen[b.ID] = struct{}{}

		if !KnownBlockType(b.Type) {
			err = multierr.Append(err, fmt.Errorf("block %q has unknown type %q", b.ID, b.Type))
		}
		return true
	})

	for _, m := range d.ExternalMapping.BlockMappings {
		if _, ok := seen[m.CanonicalID]; !ok {
			err = multierr.Append(err, fmt.Errorf("mapping references absent block id %q", m.CanonicalID))
		}
	}

	return err
}

// Severity ranks conversion warnings.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Warning records a lossy degradation applied during conversion. Warnings
// are in-band results, never errors: conversion always completes.
type Warning struct {
	BlockID   string   `json:"blockId"`
	BlockType string   `json:"blockType"`
	Message   string   `json:"message"`
	Severity  Severity `json:"severity"`
}
