package wire

import (
	"fmt"
	"math/big"

	"golang.org/x/crypto/ssh"
)

// MsgType is the first byte of an SSH transport packet.
type MsgType byte

// Message numbers from RFC 4253 and RFC 4419. The group-exchange numbers
// overlap the fixed-group ones and are only meaningful for a negotiated
// method.
const (
	MsgDisconnect MsgType = 1
	MsgKexInit    MsgType = 20
	MsgNewKeys    MsgType = 21

	MsgKexDHInit  MsgType = 30
	MsgKexDHReply MsgType = 31

	MsgKexDHGexRequestOld MsgType = 30
	MsgKexDHGexGroup      MsgType = 31
	MsgKexDHGexInit       MsgType = 32
	MsgKexDHGexReply      MsgType = 33
	MsgKexDHGexRequest    MsgType = 34
)

// Disconnect reason codes, RFC 4253 section 11.1.
const (
	DisconnectProtocolError        uint32 = 2
	DisconnectKeyExchangeFailed    uint32 = 3
	DisconnectHostKeyNotVerifiable uint32 = 9
)

// KexDHInitMsg carries the initiator's public value e.
type KexDHInitMsg struct {
	X *big.Int `sshtype:"30"`
}

// KexDHReplyMsg carries the responder's host key, public value f and the
// signature over the exchange hash.
type KexDHReplyMsg struct {
	HostKey   []byte `sshtype:"31"`
	Y         *big.Int
	Signature []byte
}

// KexDHGexRequestOldMsg is the single-size request of early drafts of
// RFC 4419.
type KexDHGexRequestOldMsg struct {
	N uint32 `sshtype:"30"`
}

// KexDHGexRequestMsg asks for a group of min <= bits <= max, preferably n.
type KexDHGexRequestMsg struct {
	Min uint32 `sshtype:"34"`
	N   uint32
	Max uint32
}

// KexDHGexGroupMsg carries the group chosen by the responder.
type KexDHGexGroupMsg struct {
	P *big.Int `sshtype:"31"`
	G *big.Int
}

// KexDHGexInitMsg carries the initiator's public value e for the
// negotiated group.
type KexDHGexInitMsg struct {
	X *big.Int `sshtype:"32"`
}

// KexDHGexReplyMsg mirrors KexDHReplyMsg for group exchange.
type KexDHGexReplyMsg struct {
	HostKey   []byte `sshtype:"33"`
	Y         *big.Int
	Signature []byte
}

// KexInitMsg is the algorithm negotiation message, RFC 4253 section 7.1.
type KexInitMsg struct {
	Cookie                  [16]byte `sshtype:"20"`
	KexAlgos                []string
	ServerHostKeyAlgos      []string
	CiphersClientServer     []string
	CiphersServerClient     []string
	MACsClientServer        []string
	MACsServerClient        []string
	CompressionClientServer []string
	CompressionServerClient []string
	LanguagesClientServer   []string
	LanguagesServerClient   []string
	FirstKexFollows         bool
	Reserved                uint32
}

// NewKeysMsg ends the key exchange.
type NewKeysMsg struct{}

// DisconnectMsg aborts the connection, RFC 4253 section 11.1.
type DisconnectMsg struct {
	Reason   uint32 `sshtype:"1"`
	Message  string
	Language string
}

// Marshal encodes msg, which must be one of the message structs above.
func Marshal(msg interface{}) []byte {
	if _, ok := msg.(*NewKeysMsg); ok {
		return []byte{byte(MsgNewKeys)}
	}
	return ssh.Marshal(msg)
}

// Unmarshal decodes packet into out after checking its type byte.
func Unmarshal(packet []byte, want MsgType, out interface{}) error {
	if len(packet) == 0 {
		return fmt.Errorf("wire: empty packet, want message %d", want)
	}
	if got := MsgType(packet[0]); got != want {
		return fmt.Errorf("wire: unexpected message %d, want %d", got, want)
	}
	if _, ok := out.(*NewKeysMsg); ok {
		if len(packet) != 1 {
			return fmt.Errorf("wire: trailing data after NEWKEYS")
		}
		return nil
	}
	if err := ssh.Unmarshal(packet, out); err != nil {
		return fmt.Errorf("wire: decode message %d: %w", want, err)
	}
	return nil
}

// TypeOf returns the message number of packet, or 0 for an empty packet.
func TypeOf(packet []byte) MsgType {
	if len(packet) == 0 {
		return 0
	}
	return MsgType(packet[0])
}
