package interfaces

import "crypto/ed25519"

// HostKeyStore persists the server's host key, sealed with a passphrase.
type HostKeyStore interface {
	SaveHostKey(passphrase string, key ed25519.PrivateKey) error
	LoadHostKey(passphrase string) (ed25519.PrivateKey, error)
	Exists() bool
}

// KnownHostsStore remembers which host key each server presented.
type KnownHostsStore interface {
	// Lookup returns the recorded fingerprint for host.
	Lookup(host string) (fingerprint string, ok bool, err error)
	// Remember records fingerprint for host, replacing any previous entry.
	Remember(host, fingerprint string) error
}
