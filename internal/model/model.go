// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/stemmahq/stemma/internal/ident"
)

// Account is a registered author. Values are immutable; field updates go
// through the With methods, which return modified copies, so accounts can
// be shared across goroutines without locks.
type Account struct {
	ID             uuid.UUID // PK
	DisplayName    string
	Email          string // unique
	PasswordDigest []byte // salt || derived key, see crypto.PasswordDigest
}

// WithDisplayName returns a copy with the display name replaced.
func (a Account) WithDisplayName(name string) Account {
	a.DisplayName = name
	return a
}

// WithEmail returns a copy with the email replaced.
func (a Account) WithEmail(email string) Account {
	a.Email = email
	return a
}

// WithPasswordDigest returns a copy with the password digest replaced.
func (a Account) WithPasswordDigest(digest []byte) Account {
	a.PasswordDigest = digest
	return a
}

// DocumentMetadata describes a document without its body. The id is the
// content hash of title+body, so a document is never edited in place; a
// logical edit is a new document related to its antecedents.
type DocumentMetadata struct {
	ID        ident.Sum `json:"id"`
	Title     string    `json:"title"`
	AuthorID  uuid.UUID `json:"authorId"`
	Timestamp time.Time `json:"timestamp"` // creation time, server-assigned, UTC
}

// Document is metadata plus the raw Markdown body. Bodies are stored and
// fetched separately from metadata because they are large and may be
// withheld by a moderation block while the metadata stays visible.
type Document struct {
	DocumentMetadata
	Body string
}

// Relation is one lineage edge: descendant was derived from antecedent.
// Comparable, so sets of relations are map[Relation]struct{}.
type Relation struct {
	AntecedentID ident.Sum `json:"antecedentId"`
	DescendantID ident.Sum `json:"descendantId"`
}

// DocumentBlock withholds a document body. Voluntary blocks are author or
// moderator takedowns; involuntary ones are compulsory (legal) takedowns.
type DocumentBlock struct {
	ID        ident.Sum
	Voluntary bool
	AgentID   uuid.UUID
	Comment   string
	Timestamp time.Time
}
