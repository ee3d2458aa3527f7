// Package crypto exposes the host-key primitives used by sshkex.
//
// Contents
//
//   - Host key signing over the exchange hash (HostKey, NewHostKey,
//     GenerateHostKey)
//   - Parsing of peer host key blobs and signature verification
//     (ParsePublicBlob, PublicHostKey.Verify)
//   - OpenSSH-style SHA256 fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Keys, blobs and signatures use the SSH wire formats from RFC 4253
// section 6.6, produced and parsed by golang.org/x/crypto/ssh. The key
// exchange only ever sees the PublicBlob, Sign and Verify methods.
package crypto
