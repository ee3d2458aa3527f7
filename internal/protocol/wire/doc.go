// Package wire defines the SSH transport messages exchanged during a
// Diffie-Hellman key exchange and their binary encoding.
//
// Message structs carry `sshtype` tags and are encoded with
// golang.org/x/crypto/ssh Marshal and Unmarshal: *big.Int fields become
// mpints, []byte fields become length-prefixed strings.
//
// The package also exposes the raw mpint/string/uint32 writers used when
// feeding the exchange hash, since those must match the wire encoding
// byte for byte.
package wire
