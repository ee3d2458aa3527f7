package kex

import (
	"crypto"

	"sshkex/internal/domain"
)

// DeriveKey expands the shared secret into n bytes of key material for
// letter ('A' to 'F'), per RFC 4253 section 7.2. K is mpint encoded.
func DeriveKey(h crypto.Hash, K, H, sessionID []byte, letter byte, n int) []byte {
	out := make([]byte, 0, n+h.Size())
	var digests []byte
	for len(out) < n {
		w := h.New()
		w.Write(K)
		w.Write(H)
		if len(out) == 0 {
			w.Write([]byte{letter})
			w.Write(sessionID)
		} else {
			w.Write(digests)
		}
		d := w.Sum(nil)
		digests = append(digests, d...)
		out = append(out, d...)
	}
	return out[:n]
}

// KeySet holds the six transport keys for one direction pair.
type KeySet struct {
	IVClientToServer  []byte // A
	IVServerToClient  []byte // B
	EncClientToServer []byte // C
	EncServerToClient []byte // D
	MACClientToServer []byte // E
	MACServerToClient []byte // F
}

// KeySizes gives the byte lengths wanted for IVs, cipher keys and MAC keys.
type KeySizes struct {
	IV, Cipher, MAC int
}

// DeriveKeys derives all six keys from a completed exchange. sessionID is
// the H of the first exchange on the connection; nil means res.H.
func DeriveKeys(res *domain.Result, sessionID []byte, sz KeySizes) *KeySet {
	if sessionID == nil {
		sessionID = res.H
	}
	derive := func(letter byte, n int) []byte {
		return DeriveKey(res.Hash, res.K, res.H, sessionID, letter, n)
	}
	return &KeySet{
		IVClientToServer:  derive('A', sz.IV),
		IVServerToClient:  derive('B', sz.IV),
		EncClientToServer: derive('C', sz.Cipher),
		EncServerToClient: derive('D', sz.Cipher),
		MACClientToServer: derive('E', sz.MAC),
		MACServerToClient: derive('F', sz.MAC),
	}
}
