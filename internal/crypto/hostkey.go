package crypto

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/ssh"
)

// ErrUnsupportedKey is returned for private keys x/crypto/ssh cannot sign with.
var ErrUnsupportedKey = errors.New("crypto: unsupported host key type")

// HostKey signs exchange hashes on behalf of a responder.
type HostKey struct {
	signer ssh.Signer
	algo   string
	blob   []byte
}

// NewHostKey wraps a private key (ed25519.PrivateKey, *rsa.PrivateKey,
// *ecdsa.PrivateKey) as a host key. RSA keys sign with rsa-sha2-256.
func NewHostKey(key interface{}) (*HostKey, error) {
	signer, err := ssh.NewSignerFromKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedKey, err)
	}
	return NewHostKeyFromSigner(signer), nil
}

// NewHostKeyFromSigner wraps an existing ssh.Signer.
func NewHostKeyFromSigner(signer ssh.Signer) *HostKey {
	algo := signer.PublicKey().Type()
	if algo == ssh.KeyAlgoRSA {
		if _, ok := signer.(ssh.AlgorithmSigner); ok {
			algo = ssh.KeyAlgoRSASHA256
		}
	}
	return &HostKey{
		signer: signer,
		algo:   algo,
		blob:   signer.PublicKey().Marshal(),
	}
}

// GenerateHostKey returns a fresh Ed25519 host key and its private half.
func GenerateHostKey(rand io.Reader) (*HostKey, ed25519.PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand)
	if err != nil {
		return nil, nil, err
	}
	hk, err := NewHostKey(priv)
	if err != nil {
		return nil, nil, err
	}
	return hk, priv, nil
}

// PublicBlob returns the wire encoding of the public key (K_S).
func (k *HostKey) PublicBlob() []byte {
	out := make([]byte, len(k.blob))
	copy(out, k.blob)
	return out
}

// Algorithm returns the signature algorithm name.
func (k *HostKey) Algorithm() string { return k.algo }

// Fingerprint returns the SHA256 fingerprint of the public key.
func (k *HostKey) Fingerprint() string { return Fingerprint(k.blob) }

// Sign signs digest and returns the wire-encoded signature blob.
func (k *HostKey) Sign(rand io.Reader, digest []byte) ([]byte, error) {
	var (
		sig *ssh.Signature
		err error
	)
	if as, ok := k.signer.(ssh.AlgorithmSigner); ok && k.algo != k.signer.PublicKey().Type() {
		sig, err = as.SignWithAlgorithm(rand, digest, k.algo)
	} else {
		sig, err = k.signer.Sign(rand, digest)
	}
	if err != nil {
		return nil, err
	}
	return ssh.Marshal(sig), nil
}
