package wire

import (
	"encoding/binary"
	"io"
	"math/big"
)

var bigOne = big.NewInt(1)

// MPIntLength returns the number of bytes AppendMPInt adds for n, excluding
// the four-byte length prefix.
func MPIntLength(n *big.Int) int {
	return len(MPIntBytes(n))
}

// MPIntBytes returns the two's-complement, minimal big-endian body of the
// mpint encoding of n, without the length prefix.
func MPIntBytes(n *big.Int) []byte {
	switch n.Sign() {
	case 0:
		return nil
	case 1:
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			return append([]byte{0}, b...)
		}
		return b
	default:
		// Two's complement of |n|: invert the bits of |n|-1.
		nMinus1 := new(big.Int).Neg(n)
		nMinus1.Sub(nMinus1, bigOne)
		b := nMinus1.Bytes()
		for i := range b {
			b[i] ^= 0xff
		}
		if len(b) == 0 || b[0]&0x80 == 0 {
			return append([]byte{0xff}, b...)
		}
		return b
	}
}

// AppendUint32 appends v in network byte order.
func AppendUint32(buf []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(buf, v)
}

// AppendString appends s as an SSH string: uint32 length then the bytes.
func AppendString(buf []byte, s []byte) []byte {
	buf = AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// AppendMPInt appends n as an SSH mpint (RFC 4251 section 5).
func AppendMPInt(buf []byte, n *big.Int) []byte {
	return AppendString(buf, MPIntBytes(n))
}

// WriteString writes s as an SSH string to w.
func WriteString(w io.Writer, s []byte) {
	var l [4]byte
	binary.BigEndian.PutUint32(l[:], uint32(len(s)))
	w.Write(l[:])
	w.Write(s)
}

// WriteUint32 writes v in network byte order to w.
func WriteUint32(w io.Writer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

// WriteMPInt writes n as an SSH mpint to w.
func WriteMPInt(w io.Writer, n *big.Int) {
	WriteString(w, MPIntBytes(n))
}
