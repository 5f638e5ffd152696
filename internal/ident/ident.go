// Package ident implements content-derived document identifiers.
//
// A document's identity is the 128-bit MD5 digest of its title concatenated
// with its body. The same submission therefore always maps to the same id,
// which makes inserts idempotent and lets clients precompute ids. No
// cryptographic strength is claimed; collision resistance is assumed good
// enough for content addressing at this scale.
package ident

import (
	"crypto/md5"
	"encoding/base64"

	"github.com/gofrs/uuid/v5"

	"github.com/stemmahq/stemma/internal/errs"
)

// Size is the identifier length in bytes.
const Size = 16

// EncodedLen is the length of the canonical textual form:
// 128 bits / 6 bits per base64 character rounds up to 22.
const EncodedLen = 22

// Sum is a 128-bit content identifier. It is a comparable value type, so
// equality and map-key semantics are structural over the 16 bytes.
type Sum [Size]byte

// Encode derives the identifier for the given text (UTF-8 bytes).
func Encode(text string) Sum {
	return Sum(md5.Sum([]byte(text)))
}

// FromBytes constructs a Sum from raw bytes.
// Returns errs.ErrInvalidID unless exactly 16 bytes are given.
func FromBytes(b []byte) (Sum, error) {
	if len(b) != Size {
		return Sum{}, errs.ErrInvalidID
	}
	var s Sum
	copy(s[:], b)
	return s, nil
}

// FromString decodes the canonical 22-character base64url form.
// Returns errs.ErrInvalidID for anything that does not decode to 16 bytes.
func FromString(text string) (Sum, error) {
	if len(text) != EncodedLen {
		return Sum{}, errs.ErrInvalidID
	}
	b, err := base64.RawURLEncoding.DecodeString(text)
	if err != nil {
		return Sum{}, errs.ErrInvalidID
	}
	return FromBytes(b)
}

// String returns the canonical form: unpadded base64url, 22 characters.
func (s Sum) String() string {
	return base64.RawURLEncoding.EncodeToString(s[:])
}

// Bytes returns a copy of the identifier's raw bytes.
func (s Sum) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, s[:])
	return b
}

// UUID reinterprets the identifier as a UUID for storage in uuid columns.
func (s Sum) UUID() uuid.UUID {
	return uuid.UUID(s)
}

// FromUUID reinterprets a stored uuid column value as a content identifier.
func FromUUID(u uuid.UUID) Sum {
	return Sum(u)
}

// MarshalText implements encoding.TextMarshaler; identifiers cross the
// boundary in their canonical string form.
func (s Sum) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sum) UnmarshalText(text []byte) error {
	decoded, err := FromString(string(text))
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// EncodeUUID renders a 128-bit account id in the same 22-character form
// used for document ids, so both kinds of identifier share one wire format.
func EncodeUUID(u uuid.UUID) string {
	return base64.RawURLEncoding.EncodeToString(u.Bytes())
}

// DecodeUUID parses the 22-character form back into a UUID.
func DecodeUUID(text string) (uuid.UUID, error) {
	if len(text) != EncodedLen {
		return uuid.Nil, errs.ErrInvalidID
	}
	b, err := base64.RawURLEncoding.DecodeString(text)
	if err != nil {
		return uuid.Nil, errs.ErrInvalidID
	}
	return uuid.FromBytes(b)
}
