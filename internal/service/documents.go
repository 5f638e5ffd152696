// Package service contains application services for accounts and documents.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/stemmahq/stemma/internal/errs"
	"github.com/stemmahq/stemma/internal/ident"
	"github.com/stemmahq/stemma/internal/model"
	"github.com/stemmahq/stemma/internal/repository"
)

// Limits bounds document submissions and graph traversal. Zero values fall
// back to the defaults below; TraversalRounds zero means uncapped.
type Limits struct {
	TitleLen        int
	BodyLen         int
	MaxAntecedents  int
	TraversalRounds int
}

const (
	defaultTitleLen       = 128
	defaultBodyLen        = 131072
	defaultMaxAntecedents = 2
)

func (l Limits) withDefaults() Limits {
	if l.TitleLen <= 0 {
		l.TitleLen = defaultTitleLen
	}
	if l.BodyLen <= 0 {
		l.BodyLen = defaultBodyLen
	}
	if l.MaxAntecedents <= 0 {
		l.MaxAntecedents = defaultMaxAntecedents
	}
	return l
}

// History is the resolved lineage view of one document: the whole family
// edge set, the ancestor-only closure, the distinct contributor accounts
// along that closure, and the tip candidates for comparison or forking.
type History struct {
	Relations    []model.Relation
	Ancestors    []ident.Sum
	Contributors []uuid.UUID
	Tips         []ident.Sum
}

// DocumentService defines operations over documents and their lineage graph.
type DocumentService interface {
	// Add persists a document under its content-derived id. Resubmitting
	// identical content returns the same id without touching the store.
	Add(ctx context.Context, authorID uuid.UUID, title, body string, antecedents []ident.Sum) (ident.Sum, error)
	// Metadata returns document metadata by id.
	Metadata(ctx context.Context, id ident.Sum) (*model.DocumentMetadata, error)
	// Body returns the raw Markdown body. Unless ignoreBlock is set, a
	// moderation block fails the call with errs.BlockedError.
	Body(ctx context.Context, id ident.Sum, ignoreBlock bool) (string, error)
	// Block records a moderation block withholding a document's body.
	Block(ctx context.Context, block model.DocumentBlock) error
	// Descendants returns direct descendants of a document.
	Descendants(ctx context.Context, id ident.Sum) ([]ident.Sum, error)
	// ByAuthor returns ids of all documents authored by an account.
	ByAuthor(ctx context.Context, authorID uuid.UUID) ([]ident.Sum, error)
	// Family returns the full weakly-connected component containing id.
	Family(ctx context.Context, id ident.Sum) ([]model.Relation, error)
	// History resolves the ancestor closure, contributors and tips for id.
	History(ctx context.Context, id ident.Sum) (History, error)
	// MetadataStream opens a cursor over all document metadata.
	MetadataStream(ctx context.Context) (repository.MetadataCursor, error)
}

type DocumentServiceImpl struct {
	docs     repository.DocumentRepository
	accounts repository.AccountRepository
	limits   Limits
	now      func() time.Time
}

// NewDocumentService constructs DocumentService with the given limits.
func NewDocumentService(docs repository.DocumentRepository, accounts repository.AccountRepository, limits Limits) *DocumentServiceImpl {
	return &DocumentServiceImpl{
		docs:     docs,
		accounts: accounts,
		limits:   limits.withDefaults(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Add computes id = hash(title+body) and inserts metadata, body, and one
// edge per distinct antecedent. A duplicate id means the document is
// already present; the call then succeeds with the existing id, which makes
// double-submits and retries safe.
func (s *DocumentServiceImpl) Add(ctx context.Context, authorID uuid.UUID, title, body string, antecedents []ident.Sum) (ident.Sum, error) {
	if authorID == uuid.Nil {
		return ident.Sum{}, errs.Validation("empty author id")
	}
	if len(title) > s.limits.TitleLen {
		return ident.Sum{}, errs.Validation("title exceeds %d bytes", s.limits.TitleLen)
	}
	if len(body) > s.limits.BodyLen {
		return ident.Sum{}, errs.Validation("body exceeds %d bytes", s.limits.BodyLen)
	}
	if len(antecedents) > s.limits.MaxAntecedents {
		return ident.Sum{}, errs.Validation("at most %d antecedents", s.limits.MaxAntecedents)
	}

	exists, err := s.accounts.Exists(ctx, authorID)
	if err != nil {
		return ident.Sum{}, err
	}
	if !exists {
		return ident.Sum{}, errs.ErrNotFound
	}

	id := ident.Encode(title + body)
	meta := model.DocumentMetadata{
		ID:        id,
		Title:     title,
		AuthorID:  authorID,
		Timestamp: s.now(),
	}

	if err := s.docs.InsertDocument(ctx, meta, body); err != nil {
		if errors.Is(err, errs.ErrDuplicateKey) {
			// Already present under the same content hash; nothing to do.
			return id, nil
		}
		return ident.Sum{}, err
	}

	seen := map[ident.Sum]struct{}{id: {}} // self-loops filtered
	for _, ante := range antecedents {
		if _, dup := seen[ante]; dup {
			continue
		}
		seen[ante] = struct{}{}
		rel := model.Relation{AntecedentID: ante, DescendantID: id}
		if err := s.docs.InsertRelation(ctx, rel); err != nil {
			return ident.Sum{}, err
		}
	}
	return id, nil
}

// Metadata returns document metadata by id.
func (s *DocumentServiceImpl) Metadata(ctx context.Context, id ident.Sum) (*model.DocumentMetadata, error) {
	return s.docs.GetMetadata(ctx, id)
}

// Body returns the document body, honoring moderation blocks unless
// ignoreBlock is set. Metadata stays readable either way.
func (s *DocumentServiceImpl) Body(ctx context.Context, id ident.Sum, ignoreBlock bool) (string, error) {
	if !ignoreBlock {
		block, err := s.docs.GetBlock(ctx, id)
		switch {
		case err == nil:
			return "", &errs.BlockedError{Voluntary: block.Voluntary}
		case errors.Is(err, errs.ErrNotFound):
			// no block on record
		default:
			return "", err
		}
	}
	return s.docs.GetBody(ctx, id)
}

// Block records a moderation block for a document.
func (s *DocumentServiceImpl) Block(ctx context.Context, block model.DocumentBlock) error {
	if block.AgentID == uuid.Nil {
		return errs.Validation("empty agent id")
	}
	if block.Timestamp.IsZero() {
		block.Timestamp = s.now()
	}
	return s.docs.InsertBlock(ctx, block)
}

// Descendants returns direct descendants of a document.
func (s *DocumentServiceImpl) Descendants(ctx context.Context, id ident.Sum) ([]ident.Sum, error) {
	return s.docs.DescendantIDs(ctx, id)
}

// ByAuthor returns ids of all documents authored by an account.
func (s *DocumentServiceImpl) ByAuthor(ctx context.Context, authorID uuid.UUID) ([]ident.Sum, error) {
	return s.docs.IDsByAuthor(ctx, authorID)
}

// Family computes the weakly-connected component of the lineage graph
// containing id, as an open/closed-set BFS. Each round fetches every edge
// touching the open frontier in one batched lookup, then advances the
// frontier to the newly discovered endpoints. Termination is guaranteed on
// a finite graph because nodes never leave the closed set.
func (s *DocumentServiceImpl) Family(ctx context.Context, id ident.Sum) ([]model.Relation, error) {
	closed := make(map[ident.Sum]struct{})
	open := map[ident.Sum]struct{}{id: {}}
	seen := make(map[model.Relation]struct{})

	var result []model.Relation
	rounds := 0

	for len(open) > 0 {
		if s.limits.TraversalRounds > 0 && rounds >= s.limits.TraversalRounds {
			return nil, errs.ErrTraversalLimit
		}
		rounds++

		frontier := make([]ident.Sum, 0, len(open))
		for node := range open {
			frontier = append(frontier, node)
			closed[node] = struct{}{}
		}
		open = make(map[ident.Sum]struct{})

		rels, err := s.docs.RelationsTouching(ctx, frontier)
		if err != nil {
			return nil, err
		}
		for _, rel := range rels {
			if _, dup := seen[rel]; !dup {
				seen[rel] = struct{}{}
				result = append(result, rel)
			}
			open[rel.AntecedentID] = struct{}{}
			open[rel.DescendantID] = struct{}{}
		}

		for node := range closed {
			delete(open, node)
		}
	}
	return result, nil
}

// History restricts the family to the ancestor-only closure from id and
// derives the contributor list and the tip candidates.
func (s *DocumentServiceImpl) History(ctx context.Context, id ident.Sum) (History, error) {
	family, err := s.Family(ctx, id)
	if err != nil {
		return History{}, err
	}

	// Ancestor closure: union in antecedents of any edge whose descendant
	// is already closed over, until fixpoint.
	inClosure := map[ident.Sum]struct{}{id: {}}
	ancestors := []ident.Sum{id}
	for changed := true; changed; {
		changed = false
		for _, rel := range family {
			if _, ok := inClosure[rel.DescendantID]; !ok {
				continue
			}
			if _, ok := inClosure[rel.AntecedentID]; ok {
				continue
			}
			inClosure[rel.AntecedentID] = struct{}{}
			ancestors = append(ancestors, rel.AntecedentID)
			changed = true
		}
	}

	// Contributors: distinct authors along the ancestor closure, in
	// discovery order. An edge may name an antecedent that was never
	// submitted; those have no metadata and contribute nothing.
	var contributors []uuid.UUID
	seenAuthors := make(map[uuid.UUID]struct{})
	for _, ancestor := range ancestors {
		meta, err := s.docs.GetMetadata(ctx, ancestor)
		if errors.Is(err, errs.ErrNotFound) {
			continue
		}
		if err != nil {
			return History{}, err
		}
		if _, dup := seenAuthors[meta.AuthorID]; !dup {
			seenAuthors[meta.AuthorID] = struct{}{}
			contributors = append(contributors, meta.AuthorID)
		}
	}

	// Tips: descendants that are never an antecedent, excluding the subject.
	isAntecedent := make(map[ident.Sum]struct{}, len(family))
	for _, rel := range family {
		isAntecedent[rel.AntecedentID] = struct{}{}
	}
	var tips []ident.Sum
	seenTips := make(map[ident.Sum]struct{})
	for _, rel := range family {
		d := rel.DescendantID
		if d == id {
			continue
		}
		if _, ok := isAntecedent[d]; ok {
			continue
		}
		if _, dup := seenTips[d]; dup {
			continue
		}
		seenTips[d] = struct{}{}
		tips = append(tips, d)
	}

	return History{
		Relations:    family,
		Ancestors:    ancestors,
		Contributors: contributors,
		Tips:         tips,
	}, nil
}

// MetadataStream opens a forward-only cursor over all document metadata.
func (s *DocumentServiceImpl) MetadataStream(ctx context.Context) (repository.MetadataCursor, error) {
	return s.docs.MetadataStream(ctx)
}
