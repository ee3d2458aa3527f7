package store

import (
	"sync"
	"time"

	"sshkex/internal/domain"
)

// knownHost is one entry of the known-hosts file.
type knownHost struct {
	Fingerprint string `json:"fingerprint"`
	FirstSeen   int64  `json:"first_seen"`
	LastSeen    int64  `json:"last_seen"`
}

// KnownHostsFileStore maps host addresses to host key fingerprints in a
// JSON file.
type KnownHostsFileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewKnownHostsFileStore returns a store for the file at path. The file is
// created on the first Remember.
func NewKnownHostsFileStore(path string) *KnownHostsFileStore {
	return &KnownHostsFileStore{path: path, now: time.Now}
}

func (s *KnownHostsFileStore) load() (map[string]knownHost, error) {
	m := make(map[string]knownHost)
	if err := readJSON(s.path, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Lookup returns the fingerprint recorded for host.
func (s *KnownHostsFileStore) Lookup(host string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return "", false, err
	}
	e, ok := m[host]
	return e.Fingerprint, ok, nil
}

// Remember records fingerprint for host. Re-remembering the same
// fingerprint only bumps its last-seen time.
func (s *KnownHostsFileStore) Remember(host, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load()
	if err != nil {
		return err
	}
	now := s.now().Unix()
	e, ok := m[host]
	if !ok || e.Fingerprint != fingerprint {
		e = knownHost{Fingerprint: fingerprint, FirstSeen: now}
	}
	e.LastSeen = now
	m[host] = e
	return writeJSON(s.path, m, 0o600)
}

// Compile-time assertion that KnownHostsFileStore implements domain.KnownHostsStore.
var _ domain.KnownHostsStore = (*KnownHostsFileStore)(nil)
