package store

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// envelopeVersion is the newest sealed-file format this package reads.
const envelopeVersion = 1

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// sealed file has been modified.
var ErrWrongPassphrase = errors.New("store: wrong passphrase or corrupted key file")

// envelope is the on-disk JSON holding the ciphertext and KDF parameters.
type envelope struct {
	V      int    `json:"v"`
	Kind   string `json:"kind"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// kdfParams are the scrypt cost parameters.
type kdfParams struct{ N, r, p int }

func defaultKDF() kdfParams { return kdfParams{N: 1 << 15, r: 8, p: 1} }

// seal derives a key from passphrase and encrypts raw. kind is bound into
// the AEAD so a sealed file cannot be reused as another kind.
func seal(passphrase, kind string, raw []byte, kp kdfParams) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	aead, err := newAEAD(passphrase, salt[:], kp)
	if err != nil {
		return nil, err
	}
	// Zero nonce: the key is unique per salt.
	var nonce [chacha20poly1305.NonceSize]byte
	ct := aead.Seal(nil, nonce[:], raw, additionalData(kind, salt[:]))

	return json.Marshal(envelope{
		V:      envelopeVersion,
		Kind:   kind,
		Salt:   salt[:],
		N:      kp.N,
		R:      kp.r,
		P:      kp.p,
		Cipher: ct,
	})
}

// open reverses seal.
func open(passphrase, kind string, b []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("store: decode envelope: %w", err)
	}
	if env.V > envelopeVersion {
		return nil, fmt.Errorf("store: unsupported envelope version %d", env.V)
	}
	if env.Kind != kind {
		return nil, fmt.Errorf("store: sealed %q, want %q", env.Kind, kind)
	}
	aead, err := newAEAD(passphrase, env.Salt, kdfParams{N: env.N, r: env.R, p: env.P})
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], env.Cipher, additionalData(kind, env.Salt))
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}

func newAEAD(passphrase string, salt []byte, kp kdfParams) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, kp.N, kp.r, kp.p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	return chacha20poly1305.New(key)
}

func additionalData(kind string, salt []byte) []byte {
	return append([]byte(kind), salt...)
}
