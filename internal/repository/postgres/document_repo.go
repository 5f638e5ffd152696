package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/stemmahq/stemma/internal/errs"
	"github.com/stemmahq/stemma/internal/ident"
	"github.com/stemmahq/stemma/internal/model"
	"github.com/stemmahq/stemma/internal/repository"
)

// DocumentRepo implements DocumentRepository using PostgreSQL. Identifiers
// are stored in uuid columns; both document content hashes and account ids
// are 128 bits wide.
type DocumentRepo struct{ db *DB }

// NewDocumentRepo constructs a document repository.
func NewDocumentRepo(db *DB) *DocumentRepo { return &DocumentRepo{db: db} }

// InsertDocument writes the metadata row, then the body row. The two writes
// are deliberately not wrapped in a transaction: the id is content-derived,
// so a crash between them leaves a retryable gap, not corruption.
func (r *DocumentRepo) InsertDocument(ctx context.Context, meta model.DocumentMetadata, body string) error {
	const insMeta = `
INSERT INTO document (id, title, author_id, ts) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.Pool.Exec(ctx, insMeta, meta.ID.UUID(), meta.Title, meta.AuthorID, meta.Timestamp); err != nil {
		if isUniqueViolation(err) {
			return errs.ErrDuplicateKey
		}
		return err
	}

	const insBody = `
INSERT INTO document_body (id, body) VALUES ($1, $2)`
	if _, err := r.db.Pool.Exec(ctx, insBody, meta.ID.UUID(), body); err != nil {
		if isUniqueViolation(err) {
			return errs.ErrDuplicateKey
		}
		return err
	}
	return nil
}

// InsertRelation appends a lineage edge. Racing submitters may attempt the
// same edge; the primary key makes the duplicate attempt a no-op.
func (r *DocumentRepo) InsertRelation(ctx context.Context, rel model.Relation) error {
	const q = `
INSERT INTO relation (antecedent_id, descendant_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING`
	_, err := r.db.Pool.Exec(ctx, q, rel.AntecedentID.UUID(), rel.DescendantID.UUID())
	return err
}

// GetMetadata selects document metadata by id.
func (r *DocumentRepo) GetMetadata(ctx context.Context, id ident.Sum) (*model.DocumentMetadata, error) {
	const q = `
SELECT title, author_id, ts FROM document WHERE id=$1`
	meta := model.DocumentMetadata{ID: id}
	err := r.db.Pool.QueryRow(ctx, q, id.UUID()).Scan(&meta.Title, &meta.AuthorID, &meta.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &meta, nil
}

// GetBody selects the raw body by id.
func (r *DocumentRepo) GetBody(ctx context.Context, id ident.Sum) (string, error) {
	const q = `SELECT body FROM document_body WHERE id=$1`
	var body string
	if err := r.db.Pool.QueryRow(ctx, q, id.UUID()).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errs.ErrNotFound
		}
		return "", err
	}
	return body, nil
}

// GetBlock selects the moderation block for id, if any.
func (r *DocumentRepo) GetBlock(ctx context.Context, id ident.Sum) (*model.DocumentBlock, error) {
	const q = `
SELECT is_voluntary, agent_id, comment, ts FROM document_block WHERE id=$1`
	block := model.DocumentBlock{ID: id}
	err := r.db.Pool.QueryRow(ctx, q, id.UUID()).
		Scan(&block.Voluntary, &block.AgentID, &block.Comment, &block.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &block, nil
}

// InsertBlock records a moderation block.
func (r *DocumentRepo) InsertBlock(ctx context.Context, block model.DocumentBlock) error {
	const q = `
INSERT INTO document_block (id, is_voluntary, agent_id, comment, ts)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q,
		block.ID.UUID(), block.Voluntary, block.AgentID, block.Comment, block.Timestamp)
	if isUniqueViolation(err) {
		return errs.ErrDuplicateKey
	}
	return err
}

// DescendantIDs returns one-hop descendants via the edge index.
func (r *DocumentRepo) DescendantIDs(ctx context.Context, id ident.Sum) ([]ident.Sum, error) {
	const q = `SELECT descendant_id FROM relation WHERE antecedent_id=$1`
	rows, err := r.db.Pool.Query(ctx, q, id.UUID())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSums(rows)
}

// IDsByAuthor returns ids of all documents by one author.
func (r *DocumentRepo) IDsByAuthor(ctx context.Context, authorID uuid.UUID) ([]ident.Sum, error) {
	const q = `SELECT id FROM document WHERE author_id=$1`
	rows, err := r.db.Pool.Query(ctx, q, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSums(rows)
}

// RelationsTouching returns every edge with either endpoint in ids.
// One call per BFS layer keeps the round-trip count proportional to the
// graph's diameter rather than its size.
func (r *DocumentRepo) RelationsTouching(ctx context.Context, ids []ident.Sum) ([]model.Relation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	boxed := make([]uuid.UUID, len(ids))
	for i, id := range ids {
		boxed[i] = id.UUID()
	}

	const q = `
SELECT antecedent_id, descendant_id FROM relation
WHERE antecedent_id = ANY($1) OR descendant_id = ANY($1)`
	rows, err := r.db.Pool.Query(ctx, q, boxed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Relation
	for rows.Next() {
		var ante, desc uuid.UUID
		if err := rows.Scan(&ante, &desc); err != nil {
			return nil, err
		}
		out = append(out, model.Relation{
			AntecedentID: ident.FromUUID(ante),
			DescendantID: ident.FromUUID(desc),
		})
	}
	return out, rows.Err()
}

// MetadataStream opens a forward-only cursor over all document metadata.
// The underlying rows are released by Close, or automatically once the
// cursor is exhausted.
func (r *DocumentRepo) MetadataStream(ctx context.Context) (repository.MetadataCursor, error) {
	const q = `SELECT id, title, author_id, ts FROM document`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return &metadataCursor{rows: rows}, nil
}

type metadataCursor struct {
	rows pgx.Rows
}

func (c *metadataCursor) Next() bool { return c.rows.Next() }

func (c *metadataCursor) Current() (model.DocumentMetadata, error) {
	var (
		id   uuid.UUID
		meta model.DocumentMetadata
	)
	if err := c.rows.Scan(&id, &meta.Title, &meta.AuthorID, &meta.Timestamp); err != nil {
		return model.DocumentMetadata{}, err
	}
	meta.ID = ident.FromUUID(id)
	return meta, nil
}

func (c *metadataCursor) Err() error { return c.rows.Err() }

func (c *metadataCursor) Close() { c.rows.Close() }

func scanSums(rows pgx.Rows) ([]ident.Sum, error) {
	var out []ident.Sum
	for rows.Next() {
		var u uuid.UUID
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out = append(out, ident.FromUUID(u))
	}
	return out, rows.Err()
}
