package crypto

import (
	"crypto/sha256"
	"encoding/base64"
)

// Fingerprint returns the OpenSSH-style SHA256 fingerprint of a host key
// blob ("SHA256:" followed by unpadded base64).
//
// It works on raw blobs so that unparseable keys can still be reported.
func Fingerprint(blob []byte) string {
	sum := sha256.Sum256(blob)
	return "SHA256:" + base64.RawStdEncoding.EncodeToString(sum[:])
}
