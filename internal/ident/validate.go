package ident

// base64url alphabet membership, indexed by byte value.
var base64urlByte [256]bool

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		base64urlByte[c] = true
	}
	for c := 'a'; c <= 'z'; c++ {
		base64urlByte[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		base64urlByte[c] = true
	}
	base64urlByte['-'] = true
	base64urlByte['_'] = true
}

// LooksInvalid cheaply falsifies the claim that s is a base64url-encoded
// 128-bit identifier. A true result is definitive: s cannot be decoded.
// A false result only means the claim was not disproven; callers must still
// handle decode failure. The point is to reject obviously malformed client
// input before any database round trip. Single pass, no allocation.
func LooksInvalid(s string) bool {
	if len(s) != EncodedLen {
		return true
	}
	for i := 0; i < len(s); i++ {
		if !base64urlByte[s[i]] {
			return true
		}
	}
	return false
}
