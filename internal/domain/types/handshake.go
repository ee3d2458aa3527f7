package types

import "crypto"

// Handshake holds the data hashed into every exchange hash ahead of the
// method-specific fields: both version banners (without CR LF) and both
// KEXINIT payloads.
type Handshake struct {
	ClientVersion []byte
	ServerVersion []byte
	ClientKexInit []byte
	ServerKexInit []byte
}

// Result is what a completed key exchange hands to the transport.
type Result struct {
	// Method is the negotiated key exchange name.
	Method string

	// Session hash H. See also RFC 4253, section 8.
	H []byte

	// Shared secret K, mpint encoded as it is hashed.
	K []byte

	// Host key blob as hashed into H.
	HostKey []byte

	// Signature of H.
	Signature []byte

	// Hash is the method's hash, used for H and for key derivation.
	Hash crypto.Hash
}

// HostKeyCallback inspects the responder's host key blob before its
// signature is checked. A non-nil error aborts the exchange.
type HostKeyCallback func(blob []byte) error
