// Package store provides file-based persistence for sshkex.
//
// It contains concrete implementations of the domain storage interfaces.
// All methods are concurrency-safe via internal locking, and every write
// goes through a temp file and rename.
//
// The package includes stores for:
//   - The server host key, sealed with scrypt and ChaCha20-Poly1305
//     (HostKeyFileStore)
//   - Trust-on-first-use host fingerprints as JSON (KnownHostsFileStore)
package store
