package crypto

import (
	"fmt"

	"golang.org/x/crypto/ssh"
)

// PublicHostKey is a peer host key parsed from its wire blob.
type PublicHostKey struct {
	key ssh.PublicKey
}

// ParsePublicBlob parses a K_S blob received in a key exchange reply.
func ParsePublicBlob(blob []byte) (*PublicHostKey, error) {
	key, err := ssh.ParsePublicKey(blob)
	if err != nil {
		return nil, fmt.Errorf("crypto: parse host key: %w", err)
	}
	return &PublicHostKey{key: key}, nil
}

// Type returns the key algorithm, e.g. "ssh-ed25519".
func (p *PublicHostKey) Type() string { return p.key.Type() }

// Blob returns the wire encoding of the key.
func (p *PublicHostKey) Blob() []byte { return p.key.Marshal() }

// Verify reports whether sig is a valid signature blob over digest.
func (p *PublicHostKey) Verify(digest, sig []byte) bool {
	var s ssh.Signature
	if err := ssh.Unmarshal(sig, &s); err != nil {
		return false
	}
	return p.key.Verify(digest, &s) == nil
}

// Fingerprint returns the OpenSSH SHA256 fingerprint of the key.
func (p *PublicHostKey) Fingerprint() string {
	return ssh.FingerprintSHA256(p.key)
}
