package service

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/stemmahq/stemma/internal/errs"
	"github.com/stemmahq/stemma/internal/ident"
	"github.com/stemmahq/stemma/internal/model"
	"github.com/stemmahq/stemma/internal/repository"
)

// fakeDocRepo is an in-memory DocumentRepository with the same duplicate-key
// semantics as the Postgres implementation. touchCalls counts BFS layers.
type fakeDocRepo struct {
	metas  map[ident.Sum]model.DocumentMetadata
	bodies map[ident.Sum]string
	edges  []model.Relation
	blocks map[ident.Sum]model.DocumentBlock

	touchCalls int

	insertDocErr error
	touchErr     error
}

var _ repository.DocumentRepository = (*fakeDocRepo)(nil)

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{
		metas:  map[ident.Sum]model.DocumentMetadata{},
		bodies: map[ident.Sum]string{},
		blocks: map[ident.Sum]model.DocumentBlock{},
	}
}

func (f *fakeDocRepo) InsertDocument(_ context.Context, meta model.DocumentMetadata, body string) error {
	if f.insertDocErr != nil {
		return f.insertDocErr
	}
	if _, exists := f.metas[meta.ID]; exists {
		return errs.ErrDuplicateKey
	}
	f.metas[meta.ID] = meta
	f.bodies[meta.ID] = body
	return nil
}

func (f *fakeDocRepo) InsertRelation(_ context.Context, rel model.Relation) error {
	for _, e := range f.edges {
		if e == rel {
			return nil
		}
	}
	f.edges = append(f.edges, rel)
	return nil
}

func (f *fakeDocRepo) GetMetadata(_ context.Context, id ident.Sum) (*model.DocumentMetadata, error) {
	meta, ok := f.metas[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &meta, nil
}

func (f *fakeDocRepo) GetBody(_ context.Context, id ident.Sum) (string, error) {
	body, ok := f.bodies[id]
	if !ok {
		return "", errs.ErrNotFound
	}
	return body, nil
}

func (f *fakeDocRepo) GetBlock(_ context.Context, id ident.Sum) (*model.DocumentBlock, error) {
	block, ok := f.blocks[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &block, nil
}

func (f *fakeDocRepo) InsertBlock(_ context.Context, block model.DocumentBlock) error {
	if _, exists := f.blocks[block.ID]; exists {
		return errs.ErrDuplicateKey
	}
	f.blocks[block.ID] = block
	return nil
}

func (f *fakeDocRepo) DescendantIDs(_ context.Context, id ident.Sum) ([]ident.Sum, error) {
	var out []ident.Sum
	for _, e := range f.edges {
		if e.AntecedentID == id {
			out = append(out, e.DescendantID)
		}
	}
	return out, nil
}

func (f *fakeDocRepo) IDsByAuthor(_ context.Context, authorID uuid.UUID) ([]ident.Sum, error) {
	var out []ident.Sum
	for id, meta := range f.metas {
		if meta.AuthorID == authorID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeDocRepo) RelationsTouching(_ context.Context, ids []ident.Sum) ([]model.Relation, error) {
	f.touchCalls++
	if f.touchErr != nil {
		return nil, f.touchErr
	}
	in := make(map[ident.Sum]struct{}, len(ids))
	for _, id := range ids {
		in[id] = struct{}{}
	}
	var out []model.Relation
	for _, e := range f.edges {
		_, a := in[e.AntecedentID]
		_, d := in[e.DescendantID]
		if a || d {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeDocRepo) MetadataStream(_ context.Context) (repository.MetadataCursor, error) {
	var all []model.DocumentMetadata
	for _, meta := range f.metas {
		all = append(all, meta)
	}
	return &sliceCursor{items: all}, nil
}

type sliceCursor struct {
	items  []model.DocumentMetadata
	pos    int
	closed bool
}

func (c *sliceCursor) Next() bool {
	if c.closed || c.pos >= len(c.items) {
		return false
	}
	c.pos++
	return true
}

func (c *sliceCursor) Current() (model.DocumentMetadata, error) {
	return c.items[c.pos-1], nil
}

func (c *sliceCursor) Err() error { return nil }
func (c *sliceCursor) Close()     { c.closed = true }

// fakeAccountRepo keys accounts by id and enforces email uniqueness.
type fakeAccountRepo struct {
	byID map[uuid.UUID]model.Account

	saveErr error
}

var _ repository.AccountRepository = (*fakeAccountRepo)(nil)

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byID: map[uuid.UUID]model.Account{}}
}

func (f *fakeAccountRepo) Save(_ context.Context, a *model.Account, onlyNew bool) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if onlyNew {
		if _, exists := f.byID[a.ID]; exists {
			return errs.ErrDuplicateKey
		}
		for _, other := range f.byID {
			if strings.EqualFold(other.Email, a.Email) {
				return errs.ErrDuplicateKey
			}
		}
	}
	f.byID[a.ID] = *a
	return nil
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &a, nil
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	for _, a := range f.byID {
		if a.Email == email {
			cpy := a
			return &cpy, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeAccountRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}
