package kex

import (
	"crypto"
	"hash"
	"math/big"

	"sshkex/internal/domain"
	"sshkex/internal/protocol/wire"
)

type fieldKind int

const (
	fieldString fieldKind = iota
	fieldUint32
	fieldMPInt
)

// Field is one element of the exchange hash input.
type Field struct {
	kind fieldKind
	b    []byte
	u    uint32
	n    *big.Int
}

// StringField is hashed as an SSH string (uint32 length, bytes).
func StringField(b []byte) Field { return Field{kind: fieldString, b: b} }

// Uint32Field is hashed as four big-endian bytes.
func Uint32Field(v uint32) Field { return Field{kind: fieldUint32, u: v} }

// MPIntField is hashed as an SSH mpint: signed, minimal, big-endian.
func MPIntField(n *big.Int) Field { return Field{kind: fieldMPInt, n: n} }

// Transcript accumulates the exchange hash.
type Transcript struct {
	h hash.Hash
}

// NewTranscript starts a transcript using h.
func NewTranscript(h crypto.Hash) *Transcript {
	return &Transcript{h: h.New()}
}

// Write appends fields in order.
func (t *Transcript) Write(fields ...Field) {
	for _, f := range fields {
		switch f.kind {
		case fieldString:
			wire.WriteString(t.h, f.b)
		case fieldUint32:
			wire.WriteUint32(t.h, f.u)
		case fieldMPInt:
			wire.WriteMPInt(t.h, f.n)
		}
	}
}

// Sum returns the digest.
func (t *Transcript) Sum() []byte {
	return t.h.Sum(nil)
}

// ComputeHash hashes fields in order with h.
func ComputeHash(h crypto.Hash, fields ...Field) []byte {
	t := NewTranscript(h)
	t.Write(fields...)
	return t.Sum()
}

// HandshakeFields returns V_C, V_S, I_C, I_S.
func HandshakeFields(hs domain.Handshake) []Field {
	return []Field{
		StringField(hs.ClientVersion),
		StringField(hs.ServerVersion),
		StringField(hs.ClientKexInit),
		StringField(hs.ServerKexInit),
	}
}
