package handshake_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"sshkex/internal/crypto"
	"sshkex/internal/domain"
	"sshkex/internal/protocol/kex"
	"sshkex/internal/protocol/wire"
	"sshkex/internal/services/handshake"
	"sshkex/internal/store"
)

func hostKey(t *testing.T) *crypto.HostKey {
	t.Helper()
	hk, _, err := crypto.GenerateHostKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateHostKey: %v", err)
	}
	return hk
}

// serve starts a server with hk and returns its address.
func serve(t *testing.T, hk *crypto.HostKey, opts handshake.Options) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- handshake.New(hk, nil, opts).Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Serve: %v", err)
		}
	})
	return ln.Addr().String()
}

func TestDialServe(t *testing.T) {
	hk := hostKey(t)
	addr := serve(t, hk, handshake.Options{})

	known := store.NewKnownHostsFileStore(filepath.Join(t.TempDir(), "known_hosts.json"))
	svc := handshake.New(nil, known, handshake.Options{
		Methods: []string{kex.MethodDHGexSHA256, kex.MethodDH14SHA256},
		Timeout: 30 * time.Second,
	})
	res, err := svc.Dial(context.Background(), addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if res.Method != kex.MethodDHGexSHA256 {
		t.Fatalf("method %q", res.Method)
	}
	if !bytes.Equal(res.HostKey, hk.PublicBlob()) {
		t.Fatal("wrong host key")
	}

	fp, ok, err := known.Lookup(addr)
	if err != nil || !ok || fp != hk.Fingerprint() {
		t.Fatalf("known hosts: %q %v %v", fp, ok, err)
	}

	// The recorded key is accepted again.
	if _, err := svc.Dial(context.Background(), addr); err != nil {
		t.Fatalf("second Dial: %v", err)
	}
}

func TestDial_HostKeyChanged(t *testing.T) {
	addr := serve(t, hostKey(t), handshake.Options{})
	known := store.NewKnownHostsFileStore(filepath.Join(t.TempDir(), "known_hosts.json"))
	if err := known.Remember(addr, hostKey(t).Fingerprint()); err != nil {
		t.Fatal(err)
	}

	svc := handshake.New(nil, known, handshake.Options{Methods: []string{kex.MethodDH14SHA256}})
	_, err := svc.Dial(context.Background(), addr)
	if !errors.Is(err, kex.ErrHostKeyRejected) {
		t.Fatalf("want ErrHostKeyRejected, got %v", err)
	}
}

func TestDial_StrictUnknownHost(t *testing.T) {
	addr := serve(t, hostKey(t), handshake.Options{})
	known := store.NewKnownHostsFileStore(filepath.Join(t.TempDir(), "known_hosts.json"))

	svc := handshake.New(nil, known, handshake.Options{
		Methods:        []string{kex.MethodDH14SHA256},
		StrictHostKeys: true,
	})
	if _, err := svc.Dial(context.Background(), addr); !errors.Is(err, kex.ErrHostKeyRejected) {
		t.Fatalf("want ErrHostKeyRejected, got %v", err)
	}
	if _, ok, _ := known.Lookup(addr); ok {
		t.Fatal("strict mode recorded the host")
	}
}

func TestTrustOnFirstUse(t *testing.T) {
	known := store.NewKnownHostsFileStore(filepath.Join(t.TempDir(), "kh.json"))
	a, b := hostKey(t), hostKey(t)

	cb := handshake.TrustOnFirstUse(known, "h:22", false)
	if err := cb(a.PublicBlob()); err != nil {
		t.Fatalf("first use: %v", err)
	}
	if err := cb(a.PublicBlob()); err != nil {
		t.Fatalf("same key: %v", err)
	}
	if err := cb(b.PublicBlob()); !errors.Is(err, handshake.ErrHostKeyChanged) {
		t.Fatalf("want ErrHostKeyChanged, got %v", err)
	}

	strict := handshake.TrustOnFirstUse(known, "new:22", true)
	if err := strict(a.PublicBlob()); !errors.Is(err, handshake.ErrUnknownHost) {
		t.Fatalf("want ErrUnknownHost, got %v", err)
	}
}

func TestServe_NeedsHostKey(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	if err := handshake.New(nil, nil, handshake.Options{}).Serve(context.Background(), ln); err == nil {
		t.Fatal("Serve without host key accepted")
	}
}

func TestTrustOnFirstUse_BadSignatureRecordsNothing(t *testing.T) {
	known := store.NewKnownHostsFileStore(filepath.Join(t.TempDir(), "kh.json"))
	hs := domain.Handshake{
		ClientVersion: []byte(handshake.DefaultVersion),
		ServerVersion: []byte(handshake.DefaultVersion),
		ClientKexInit: []byte{20, 1},
		ServerKexInit: []byte{20, 2},
	}
	ini, err := kex.New(kex.Config{
		Method:          kex.MethodDH14SHA256,
		Role:            domain.Initiator,
		Handshake:       hs,
		HostKeyCallback: handshake.TrustOnFirstUse(known, "srv:22", false),
	})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := kex.New(kex.Config{
		Method:    kex.MethodDH14SHA256,
		Role:      domain.Responder,
		Handshake: hs,
		HostKey:   hostKey(t),
	})
	if err != nil {
		t.Fatal(err)
	}

	pkt, err := ini.Start()
	if err != nil {
		t.Fatal(err)
	}
	replyPkt, err := resp.Handle(pkt)
	if err != nil {
		t.Fatal(err)
	}
	var reply wire.KexDHReplyMsg
	if err := wire.Unmarshal(replyPkt, wire.MsgKexDHReply, &reply); err != nil {
		t.Fatal(err)
	}
	reply.Signature[len(reply.Signature)-1] ^= 0x01

	if _, err := ini.Handle(wire.Marshal(&reply)); !errors.Is(err, kex.ErrSignatureMismatch) {
		t.Fatalf("want ErrSignatureMismatch, got %v", err)
	}
	if fp, ok, err := known.Lookup("srv:22"); err != nil || ok {
		t.Fatalf("unverified key recorded: %q %v %v", fp, ok, err)
	}
}
