package transport

import (
	"crypto/rand"
	"errors"
	"fmt"

	"sshkex/internal/protocol/wire"
)

// ErrNoCommonAlgorithm is returned when KEXINIT negotiation finds no
// algorithm both sides support.
var ErrNoCommonAlgorithm = errors.New("transport: no common algorithm")

// Default name-lists for the fields this package does not implement. They
// are offered so that real peers accept the KEXINIT; the connection ends
// after NEWKEYS.
var (
	defaultCiphers     = []string{"aes128-ctr", "aes256-ctr"}
	defaultMACs        = []string{"hmac-sha2-256", "hmac-sha1"}
	defaultCompression = []string{"none"}
)

// DefaultHostKeyAlgos is what clients offer when unconfigured.
var DefaultHostKeyAlgos = []string{
	"ssh-ed25519",
	"ecdsa-sha2-nistp256",
	"ecdsa-sha2-nistp384",
	"ecdsa-sha2-nistp521",
	"rsa-sha2-256",
	"rsa-sha2-512",
}

// Algorithms is the outcome of KEXINIT negotiation.
type Algorithms struct {
	Kex     string
	HostKey string
}

// NewKexInit builds a KEXINIT offering kexAlgos and hostKeyAlgos with a
// random cookie.
func NewKexInit(kexAlgos, hostKeyAlgos []string) (*wire.KexInitMsg, error) {
	m := &wire.KexInitMsg{
		KexAlgos:                kexAlgos,
		ServerHostKeyAlgos:      hostKeyAlgos,
		CiphersClientServer:     defaultCiphers,
		CiphersServerClient:     defaultCiphers,
		MACsClientServer:        defaultMACs,
		MACsServerClient:        defaultMACs,
		CompressionClientServer: defaultCompression,
		CompressionServerClient: defaultCompression,
	}
	if _, err := rand.Read(m.Cookie[:]); err != nil {
		return nil, err
	}
	return m, nil
}

// Negotiate picks, for each list, the first client algorithm the server
// also supports (RFC 4253 section 7.1).
func Negotiate(client, server *wire.KexInitMsg) (Algorithms, error) {
	var algs Algorithms
	var err error
	if algs.Kex, err = firstCommon("kex", client.KexAlgos, server.KexAlgos); err != nil {
		return algs, err
	}
	if algs.HostKey, err = firstCommon("host key", client.ServerHostKeyAlgos, server.ServerHostKeyAlgos); err != nil {
		return algs, err
	}
	return algs, nil
}

func firstCommon(what string, client, server []string) (string, error) {
	for _, c := range client {
		for _, s := range server {
			if c == s {
				return c, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s; client %v, server %v", ErrNoCommonAlgorithm, what, client, server)
}
