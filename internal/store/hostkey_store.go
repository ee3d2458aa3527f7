package store

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"sync"

	"sshkex/internal/domain"
	"sshkex/internal/util/memzero"
)

const hostKeyKind = "ssh-ed25519 host key"

// HostKeyFileStore keeps the server's Ed25519 host key in one sealed file.
type HostKeyFileStore struct {
	path string
	kdf  kdfParams
	mu   sync.Mutex
}

// NewHostKeyFileStore returns a store for the key file at path.
func NewHostKeyFileStore(path string) *HostKeyFileStore {
	return &HostKeyFileStore{path: path, kdf: defaultKDF()}
}

// Path returns the key file location.
func (s *HostKeyFileStore) Path() string { return s.path }

// Exists reports whether the key file is present.
func (s *HostKeyFileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// SaveHostKey seals key with passphrase and writes it, replacing any
// previous key.
func (s *HostKeyFileStore) SaveHostKey(passphrase string, key ed25519.PrivateKey) error {
	if len(key) != ed25519.PrivateKeySize {
		return fmt.Errorf("store: host key has %d bytes", len(key))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := seal(passphrase, hostKeyKind, key.Seed(), s.kdf)
	if err != nil {
		return err
	}
	return writeFile(s.path, b, 0o600)
}

// LoadHostKey reads and opens the key file.
func (s *HostKeyFileStore) LoadHostKey(passphrase string) (ed25519.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	seed, err := open(passphrase, hostKeyKind, b)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(seed)
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("store: host key seed has %d bytes", len(seed))
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// Compile-time assertion that HostKeyFileStore implements domain.HostKeyStore.
var _ domain.HostKeyStore = (*HostKeyFileStore)(nil)
