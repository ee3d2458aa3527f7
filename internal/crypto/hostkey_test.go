package crypto_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"testing"

	"sshkex/internal/crypto"
)

func TestHostKey_SignVerify(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("ecdsa.GenerateKey: %v", err)
	}
	edKey, _, err := crypto.GenerateHostKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateHostKey: %v", err)
	}
	rsaHK, err := crypto.NewHostKey(rsaKey)
	if err != nil {
		t.Fatalf("NewHostKey(rsa): %v", err)
	}
	ecHK, err := crypto.NewHostKey(ecKey)
	if err != nil {
		t.Fatalf("NewHostKey(ecdsa): %v", err)
	}

	digest := sha256.Sum256([]byte("exchange hash"))
	for _, hk := range []*crypto.HostKey{edKey, rsaHK, ecHK} {
		sig, err := hk.Sign(rand.Reader, digest[:])
		if err != nil {
			t.Fatalf("%s: Sign: %v", hk.Algorithm(), err)
		}
		pub, err := crypto.ParsePublicBlob(hk.PublicBlob())
		if err != nil {
			t.Fatalf("%s: ParsePublicBlob: %v", hk.Algorithm(), err)
		}
		if !pub.Verify(digest[:], sig) {
			t.Fatalf("%s: valid signature rejected", hk.Algorithm())
		}

		other := sha256.Sum256([]byte("other hash"))
		if pub.Verify(other[:], sig) {
			t.Fatalf("%s: signature accepted for a different digest", hk.Algorithm())
		}

		tampered := append([]byte(nil), sig...)
		tampered[len(tampered)-1] ^= 0x01
		if pub.Verify(digest[:], tampered) {
			t.Fatalf("%s: tampered signature accepted", hk.Algorithm())
		}
	}
	if rsaHK.Algorithm() != "rsa-sha2-256" {
		t.Fatalf("want rsa-sha2-256, got %s", rsaHK.Algorithm())
	}
}

func TestVerify_GarbageSignature(t *testing.T) {
	hk, _, err := crypto.GenerateHostKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateHostKey: %v", err)
	}
	pub, err := crypto.ParsePublicBlob(hk.PublicBlob())
	if err != nil {
		t.Fatalf("ParsePublicBlob: %v", err)
	}
	if pub.Verify([]byte("digest"), []byte{0, 0, 0, 9, 'x'}) {
		t.Fatal("garbage signature accepted")
	}
}

func TestParsePublicBlob_Invalid(t *testing.T) {
	if _, err := crypto.ParsePublicBlob([]byte("not a key")); err == nil {
		t.Fatal("expected error")
	}
}

func TestFingerprint_MatchesParsedKey(t *testing.T) {
	hk, _, err := crypto.GenerateHostKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateHostKey: %v", err)
	}
	pub, err := crypto.ParsePublicBlob(hk.PublicBlob())
	if err != nil {
		t.Fatalf("ParsePublicBlob: %v", err)
	}
	if got, want := crypto.Fingerprint(hk.PublicBlob()), pub.Fingerprint(); got != want {
		t.Fatalf("fingerprint mismatch: %s vs %s", got, want)
	}
}
