package ident

import (
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/stemmahq/stemma/internal/errs"
)

func TestEncode_Deterministic(t *testing.T) {
	a := Encode("Some Title" + "Some body text.")
	b := Encode("Some Title" + "Some body text.")
	require.Equal(t, a, b)
	require.NotEqual(t, a, Encode("Some Title"+"Different body."))
}

func TestEncode_KnownVector(t *testing.T) {
	// MD5("") = d41d8cd98f00b204e9800998ecf8427e
	s := Encode("")
	require.Equal(t, "1B2M2Y8AsgTpgAmY7PhCfg", s.String())
}

func TestString_RoundTrip(t *testing.T) {
	s := Encode("The quick brown fox jumps over the lazy dog.")
	text := s.String()
	require.Len(t, text, EncodedLen)

	decoded, err := FromString(text)
	require.NoError(t, err)
	require.Equal(t, s, decoded)
	require.Equal(t, text, decoded.String())
}

func TestFromBytes(t *testing.T) {
	src := Encode("x")
	s, err := FromBytes(src.Bytes())
	require.NoError(t, err)
	require.Equal(t, src, s)

	_, err = FromBytes(make([]byte, 15))
	require.ErrorIs(t, err, errs.ErrInvalidID)
	_, err = FromBytes(make([]byte, 17))
	require.ErrorIs(t, err, errs.ErrInvalidID)
	_, err = FromBytes(nil)
	require.ErrorIs(t, err, errs.ErrInvalidID)
}

func TestFromString_Invalid(t *testing.T) {
	_, err := FromString("")
	require.ErrorIs(t, err, errs.ErrInvalidID)
	_, err = FromString("short")
	require.ErrorIs(t, err, errs.ErrInvalidID)
	// right length, bad character
	_, err = FromString("49s7dJFiQ0y7B7g46HE6m#")
	require.ErrorIs(t, err, errs.ErrInvalidID)
}

func TestTextMarshalling(t *testing.T) {
	s := Encode("marshal me")
	text, err := s.MarshalText()
	require.NoError(t, err)

	var back Sum
	require.NoError(t, back.UnmarshalText(text))
	require.Equal(t, s, back)

	require.Error(t, back.UnmarshalText([]byte("nope")))
}

func TestUUIDBridge(t *testing.T) {
	s := Encode("stored as uuid")
	require.Equal(t, s, FromUUID(s.UUID()))

	u := uuid.Must(uuid.NewV4())
	text := EncodeUUID(u)
	require.Len(t, text, EncodedLen)
	back, err := DecodeUUID(text)
	require.NoError(t, err)
	require.Equal(t, u, back)

	_, err = DecodeUUID("!!")
	require.ErrorIs(t, err, errs.ErrInvalidID)
}
