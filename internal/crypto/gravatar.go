package crypto

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// GravatarHash derives the avatar lookup hash for an email address:
// lowercase hex MD5 of the trimmed, lowercased address. The address itself
// is stored as submitted; only the hash is normalized.
func GravatarHash(email string) string {
	flattened := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(flattened))
	return hex.EncodeToString(sum[:])
}
