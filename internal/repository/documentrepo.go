package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/stemmahq/stemma/internal/ident"
	"github.com/stemmahq/stemma/internal/model"
)

// DocumentRepository provides access to documents, bodies, lineage edges
// and moderation blocks. Edges are append-only and never updated.
type DocumentRepository interface {
	// InsertDocument writes the metadata row then the body row.
	// A duplicate id returns errs.ErrDuplicateKey from the metadata insert;
	// callers treat that as "already present" for content-addressed ids.
	InsertDocument(ctx context.Context, meta model.DocumentMetadata, body string) error
	// InsertRelation appends one lineage edge. Inserting an edge that
	// already exists is a no-op, not an error.
	InsertRelation(ctx context.Context, rel model.Relation) error

	// GetMetadata loads document metadata by id.
	GetMetadata(ctx context.Context, id ident.Sum) (*model.DocumentMetadata, error)
	// GetBody loads the raw Markdown body by id.
	GetBody(ctx context.Context, id ident.Sum) (string, error)

	// GetBlock returns the moderation block for id, or errs.ErrNotFound.
	GetBlock(ctx context.Context, id ident.Sum) (*model.DocumentBlock, error)
	// InsertBlock records a moderation block for a document.
	InsertBlock(ctx context.Context, block model.DocumentBlock) error

	// DescendantIDs returns direct (one-hop) descendants of a document.
	DescendantIDs(ctx context.Context, id ident.Sum) ([]ident.Sum, error)
	// IDsByAuthor returns ids of all documents authored by an account.
	IDsByAuthor(ctx context.Context, authorID uuid.UUID) ([]ident.Sum, error)
	// RelationsTouching returns every edge with either endpoint in ids.
	// This is the batched lookup the family traversal expands one BFS
	// layer at a time.
	RelationsTouching(ctx context.Context, ids []ident.Sum) ([]model.Relation, error)

	// MetadataStream opens a forward-only cursor over all document
	// metadata. The caller must Close it, including on early termination.
	MetadataStream(ctx context.Context) (MetadataCursor, error)
}

// MetadataCursor is a single-pass, non-restartable cursor over document
// metadata, in the pgx rows idiom: Next advances, Current reads, Err
// reports iteration failure after Next returns false.
type MetadataCursor interface {
	Next() bool
	Current() (model.DocumentMetadata, error)
	Err() error
	Close()
}
