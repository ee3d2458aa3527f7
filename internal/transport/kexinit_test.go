package transport_test

import (
	"errors"
	"testing"

	"sshkex/internal/protocol/wire"
	"sshkex/internal/transport"
)

func TestNegotiate(t *testing.T) {
	client, err := transport.NewKexInit(
		[]string{"a", "b", "c"},
		[]string{"ssh-ed25519", "rsa-sha2-256"})
	if err != nil {
		t.Fatal(err)
	}
	server, err := transport.NewKexInit([]string{"c", "b"}, []string{"rsa-sha2-256"})
	if err != nil {
		t.Fatal(err)
	}
	if client.Cookie == server.Cookie {
		t.Fatal("cookies repeat")
	}

	algs, err := transport.Negotiate(client, server)
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if algs.Kex != "b" || algs.HostKey != "rsa-sha2-256" {
		t.Fatalf("got %+v", algs)
	}

	server.ServerHostKeyAlgos = []string{"ssh-dss"}
	if _, err := transport.Negotiate(client, server); !errors.Is(err, transport.ErrNoCommonAlgorithm) {
		t.Fatalf("want ErrNoCommonAlgorithm, got %v", err)
	}
}

func TestKexInit_RoundTrip(t *testing.T) {
	m, err := transport.NewKexInit([]string{"diffie-hellman-group14-sha256"}, []string{"ssh-ed25519"})
	if err != nil {
		t.Fatal(err)
	}
	var got wire.KexInitMsg
	if err := wire.Unmarshal(wire.Marshal(m), wire.MsgKexInit, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Cookie != m.Cookie || got.KexAlgos[0] != m.KexAlgos[0] || got.CompressionClientServer[0] != "none" {
		t.Fatalf("got %+v", got)
	}
}
