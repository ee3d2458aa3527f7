package kex_test

import (
	"bytes"
	stdcrypto "crypto"
	"errors"
	"math/big"
	"testing"

	"sshkex/internal/domain"
	"sshkex/internal/protocol/groups"
	"sshkex/internal/protocol/kex"
	"sshkex/internal/protocol/wire"
)

func TestGEX_SelectsAndHashesGroup(t *testing.T) {
	hk := newHostKey(t)
	store := groups.NewStore(groups.Oakley2, groups.Group14)
	ini, resp := newPair(t,
		kex.Config{
			Method: kex.MethodDHGexSHA256,
			Policy: groups.Policy{MinBits: 512, PreferredBits: 1536, MaxBits: 4096},
		},
		kex.Config{Method: kex.MethodDHGexSHA256, HostKey: hk, Groups: store})
	res, tr := mustComplete(t, ini, resp)

	wantTypes := []wire.MsgType{
		wire.MsgKexDHGexRequest,
		wire.MsgKexDHGexGroup,
		wire.MsgKexDHGexInit,
		wire.MsgKexDHGexReply,
	}
	if len(tr) != len(wantTypes) {
		t.Fatalf("got %d packets, want %d", len(tr), len(wantTypes))
	}
	for i, want := range wantTypes {
		if got := wire.TypeOf(tr[i]); got != want {
			t.Fatalf("packet %d: type %d, want %d", i, got, want)
		}
	}

	var group wire.KexDHGexGroupMsg
	if err := wire.Unmarshal(tr[1], wire.MsgKexDHGexGroup, &group); err != nil {
		t.Fatal(err)
	}
	if group.P.Cmp(groups.Group14.P) != 0 || group.G.Cmp(groups.Group14.G) != 0 {
		t.Fatalf("responder sent %d-bit group, want 2048", group.P.BitLen())
	}
	if g := ini.(*kex.GEX).Group(); g == nil || !g.Equal(groups.Group14) {
		t.Fatalf("initiator group = %v", g)
	}

	var init wire.KexDHGexInitMsg
	if err := wire.Unmarshal(tr[2], wire.MsgKexDHGexInit, &init); err != nil {
		t.Fatal(err)
	}
	var reply wire.KexDHGexReplyMsg
	if err := wire.Unmarshal(tr[3], wire.MsgKexDHGexReply, &reply); err != nil {
		t.Fatal(err)
	}

	want := kex.ComputeHash(stdcrypto.SHA256, append(kex.HandshakeFields(testHandshake),
		kex.StringField(hk.PublicBlob()),
		kex.Uint32Field(512),
		kex.Uint32Field(1536),
		kex.Uint32Field(4096),
		kex.MPIntField(group.P),
		kex.MPIntField(group.G),
		kex.MPIntField(init.X),
		kex.MPIntField(reply.Y),
		kex.MPIntField(decodeK(t, res.K)))...)
	if !bytes.Equal(res.H, want) {
		t.Fatal("H does not include min, n, max, p, g in order")
	}
}

func TestGEX_LegacyRequest(t *testing.T) {
	hk := newHostKey(t)
	ini, resp := newPair(t,
		kex.Config{
			Method:        kex.MethodDHGexSHA1,
			LegacyRequest: true,
			Policy:        groups.Policy{MinBits: 1024, PreferredBits: 2048, MaxBits: 8192},
		},
		kex.Config{
			Method:  kex.MethodDHGexSHA1,
			HostKey: hk,
			Groups:  groups.NewStore(groups.Oakley2, groups.Group14),
		})
	res, tr := mustComplete(t, ini, resp)

	if wire.TypeOf(tr[0]) != wire.MsgKexDHGexRequestOld {
		t.Fatalf("first packet type %d", wire.TypeOf(tr[0]))
	}
	var old wire.KexDHGexRequestOldMsg
	if err := wire.Unmarshal(tr[0], wire.MsgKexDHGexRequestOld, &old); err != nil {
		t.Fatal(err)
	}
	if old.N != 2048 {
		t.Fatalf("n = %d", old.N)
	}

	var group wire.KexDHGexGroupMsg
	var init wire.KexDHGexInitMsg
	var reply wire.KexDHGexReplyMsg
	if err := wire.Unmarshal(tr[1], wire.MsgKexDHGexGroup, &group); err != nil {
		t.Fatal(err)
	}
	if err := wire.Unmarshal(tr[2], wire.MsgKexDHGexInit, &init); err != nil {
		t.Fatal(err)
	}
	if err := wire.Unmarshal(tr[3], wire.MsgKexDHGexReply, &reply); err != nil {
		t.Fatal(err)
	}

	// Only n is hashed for the legacy request.
	want := kex.ComputeHash(stdcrypto.SHA1, append(kex.HandshakeFields(testHandshake),
		kex.StringField(hk.PublicBlob()),
		kex.Uint32Field(2048),
		kex.MPIntField(group.P),
		kex.MPIntField(group.G),
		kex.MPIntField(init.X),
		kex.MPIntField(reply.Y),
		kex.MPIntField(decodeK(t, res.K)))...)
	if !bytes.Equal(res.H, want) {
		t.Fatal("legacy H mismatch")
	}
}

func TestGEX_LegacyRequestUsesLocalBounds(t *testing.T) {
	// A legacy n below the responder's minimum is raised to it.
	_, resp := newPair(t,
		kex.Config{Method: kex.MethodDHGexSHA256},
		kex.Config{
			Method: kex.MethodDHGexSHA256,
			Groups: groups.NewStore(groups.Oakley2, groups.Group14),
			Policy: groups.Policy{MinBits: 2048, PreferredBits: 2048, MaxBits: 8192},
		})
	out, err := resp.Handle(wire.Marshal(&wire.KexDHGexRequestOldMsg{N: 1024}))
	if err != nil {
		t.Fatal(err)
	}
	var group wire.KexDHGexGroupMsg
	if err := wire.Unmarshal(out, wire.MsgKexDHGexGroup, &group); err != nil {
		t.Fatal(err)
	}
	if group.P.BitLen() != 2048 {
		t.Fatalf("got %d-bit group", group.P.BitLen())
	}
}

func TestGEX_NoSuitableGroup(t *testing.T) {
	ini, resp := newPair(t,
		kex.Config{
			Method: kex.MethodDHGexSHA256,
			Policy: groups.Policy{MinBits: 3072, PreferredBits: 4096, MaxBits: 8192},
		},
		kex.Config{
			Method: kex.MethodDHGexSHA256,
			Groups: groups.NewStore(groups.Oakley2, groups.Group14),
		})
	_, err := run(t, ini, resp)
	if !errors.Is(err, kex.ErrNoSuitableGroup) {
		t.Fatalf("want ErrNoSuitableGroup, got %v", err)
	}
	if resp.State() != domain.StateFailed {
		t.Fatalf("responder state %s", resp.State())
	}
	if kex.DisconnectReason(err) != wire.DisconnectKeyExchangeFailed {
		t.Fatalf("reason %d", kex.DisconnectReason(err))
	}
}

func TestGEX_InitiatorRejectsGroupOutsideRequest(t *testing.T) {
	ini, _ := newPair(t,
		kex.Config{Method: kex.MethodDHGexSHA256},
		kex.Config{Method: kex.MethodDHGexSHA256})
	if _, err := ini.Start(); err != nil {
		t.Fatal(err)
	}
	if ini.State() != domain.StateAwaitingGroup {
		t.Fatalf("state %s", ini.State())
	}
	pkt := wire.Marshal(&wire.KexDHGexGroupMsg{P: groups.Oakley2.P, G: groups.Oakley2.G})
	if _, err := ini.Handle(pkt); !errors.Is(err, kex.ErrNoSuitableGroup) {
		t.Fatalf("want ErrNoSuitableGroup, got %v", err)
	}
	if ini.State() != domain.StateFailed {
		t.Fatalf("state %s", ini.State())
	}
}

func TestGEX_InitiatorRejectsBadGenerator(t *testing.T) {
	ini, _ := newPair(t,
		kex.Config{Method: kex.MethodDHGexSHA256},
		kex.Config{Method: kex.MethodDHGexSHA256})
	if _, err := ini.Start(); err != nil {
		t.Fatal(err)
	}
	pkt := wire.Marshal(&wire.KexDHGexGroupMsg{P: groups.Group14.P, G: groups.Group14.PMinus1()})
	if _, err := ini.Handle(pkt); !errors.Is(err, kex.ErrNoSuitableGroup) {
		t.Fatalf("want ErrNoSuitableGroup, got %v", err)
	}
}

func TestGEX_InitiatorRejectsCompositeModulus(t *testing.T) {
	ini, _ := newPair(t,
		kex.Config{Method: kex.MethodDHGexSHA256},
		kex.Config{Method: kex.MethodDHGexSHA256})
	if _, err := ini.Start(); err != nil {
		t.Fatal(err)
	}
	// Odd, 2050 bits, inside the requested range, but 3 divides it.
	p := new(big.Int).Mul(groups.Group14.P, big.NewInt(3))
	pkt := wire.Marshal(&wire.KexDHGexGroupMsg{P: p, G: big.NewInt(2)})
	if _, err := ini.Handle(pkt); !errors.Is(err, kex.ErrNoSuitableGroup) {
		t.Fatalf("want ErrNoSuitableGroup, got %v", err)
	}
	if ini.State() != domain.StateFailed {
		t.Fatalf("state %s", ini.State())
	}
}

func TestGEX_InitBeforeGroup(t *testing.T) {
	_, resp := newPair(t,
		kex.Config{Method: kex.MethodDHGexSHA256},
		kex.Config{Method: kex.MethodDHGexSHA256})
	_, err := resp.Handle(wire.Marshal(&wire.KexDHGexInitMsg{X: groups.Group14.G}))
	if !errors.Is(err, kex.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
	if resp.State() != domain.StateFailed {
		t.Fatalf("state %s", resp.State())
	}
}

func TestGEX_SecondRequest(t *testing.T) {
	_, resp := newPair(t,
		kex.Config{Method: kex.MethodDHGexSHA256},
		kex.Config{Method: kex.MethodDHGexSHA256})
	req := wire.Marshal(&wire.KexDHGexRequestMsg{Min: 2048, N: 2048, Max: 8192})
	if _, err := resp.Handle(req); err != nil {
		t.Fatal(err)
	}
	if resp.State() != domain.StateAwaitingPeerPublic {
		t.Fatalf("state %s", resp.State())
	}
	if _, err := resp.Handle(req); !errors.Is(err, kex.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
}

func TestGEX_ResultBeforeGroup(t *testing.T) {
	ini, _ := newPair(t,
		kex.Config{Method: kex.MethodDHGexSHA256},
		kex.Config{Method: kex.MethodDHGexSHA256})
	if _, err := ini.Result(); !errors.Is(err, kex.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
}

func TestGEX_TamperedSignature(t *testing.T) {
	ini, resp := newPair(t,
		kex.Config{Method: kex.MethodDHGexSHA256},
		kex.Config{Method: kex.MethodDHGexSHA256})
	pkt, err := ini.Start()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if pkt, err = resp.Handle(pkt); err != nil {
			t.Fatal(err)
		}
		if i == 1 {
			break
		}
		if pkt, err = ini.Handle(pkt); err != nil {
			t.Fatal(err)
		}
	}
	var reply wire.KexDHGexReplyMsg
	if err := wire.Unmarshal(pkt, wire.MsgKexDHGexReply, &reply); err != nil {
		t.Fatal(err)
	}
	reply.Signature[len(reply.Signature)/2] ^= 0x80
	if _, err := ini.Handle(wire.Marshal(&reply)); !errors.Is(err, kex.ErrSignatureMismatch) {
		t.Fatalf("want ErrSignatureMismatch, got %v", err)
	}
}
