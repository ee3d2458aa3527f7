package wire_test

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/go-test/deep"

	"sshkex/internal/protocol/wire"
)

func TestMessages_RoundTrip(t *testing.T) {
	p, _ := new(big.Int).SetString("FFFFFFFFFFFFFFFFC90FDAA22168C234", 16)

	cases := []struct {
		typ wire.MsgType
		in  interface{}
		out interface{}
	}{
		{wire.MsgKexDHInit, &wire.KexDHInitMsg{X: big.NewInt(8)}, new(wire.KexDHInitMsg)},
		{wire.MsgKexDHReply, &wire.KexDHReplyMsg{HostKey: []byte("blob"), Y: big.NewInt(4), Signature: []byte("sig")}, new(wire.KexDHReplyMsg)},
		{wire.MsgKexDHGexRequestOld, &wire.KexDHGexRequestOldMsg{N: 2048}, new(wire.KexDHGexRequestOldMsg)},
		{wire.MsgKexDHGexRequest, &wire.KexDHGexRequestMsg{Min: 1024, N: 2048, Max: 8192}, new(wire.KexDHGexRequestMsg)},
		{wire.MsgKexDHGexGroup, &wire.KexDHGexGroupMsg{P: p, G: big.NewInt(2)}, new(wire.KexDHGexGroupMsg)},
		{wire.MsgKexDHGexInit, &wire.KexDHGexInitMsg{X: big.NewInt(12345)}, new(wire.KexDHGexInitMsg)},
		{wire.MsgKexDHGexReply, &wire.KexDHGexReplyMsg{HostKey: []byte("k"), Y: big.NewInt(99), Signature: []byte("s")}, new(wire.KexDHGexReplyMsg)},
		{wire.MsgDisconnect, &wire.DisconnectMsg{Reason: wire.DisconnectKeyExchangeFailed, Message: "bye"}, new(wire.DisconnectMsg)},
		{wire.MsgNewKeys, &wire.NewKeysMsg{}, new(wire.NewKeysMsg)},
	}
	for _, tc := range cases {
		packet := wire.Marshal(tc.in)
		if wire.TypeOf(packet) != tc.typ {
			t.Fatalf("%T: want type %d, got %d", tc.in, tc.typ, wire.TypeOf(packet))
		}
		if err := wire.Unmarshal(packet, tc.typ, tc.out); err != nil {
			t.Fatalf("%T: Unmarshal: %v", tc.in, err)
		}
		if diff := deep.Equal(tc.in, tc.out); diff != nil {
			t.Fatalf("%T: %v", tc.in, diff)
		}
		// deep skips the unexported words of big.Int; re-encoding covers them.
		if again := wire.Marshal(tc.out); !bytes.Equal(again, packet) {
			t.Fatalf("%T: re-encoded %x, want %x", tc.in, again, packet)
		}
	}
}

func TestUnmarshal_WrongType(t *testing.T) {
	packet := wire.Marshal(&wire.KexDHInitMsg{X: big.NewInt(8)})
	var reply wire.KexDHReplyMsg
	if err := wire.Unmarshal(packet, wire.MsgKexDHReply, &reply); err == nil {
		t.Fatal("expected error for mismatched type")
	}
	if err := wire.Unmarshal(nil, wire.MsgKexDHReply, &reply); err == nil {
		t.Fatal("expected error for empty packet")
	}
}

func TestUnmarshal_Truncated(t *testing.T) {
	packet := wire.Marshal(&wire.KexDHReplyMsg{HostKey: []byte("blob"), Y: big.NewInt(4), Signature: []byte("sig")})
	var reply wire.KexDHReplyMsg
	if err := wire.Unmarshal(packet[:len(packet)-2], wire.MsgKexDHReply, &reply); err == nil {
		t.Fatal("expected error for truncated packet")
	}
}
