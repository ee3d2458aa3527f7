package interfaces

import (
	"io"

	domaintypes "sshkex/internal/domain/types"
)

// HostKeySigner is the responder's host key.
type HostKeySigner interface {
	// PublicBlob returns K_S, the wire encoding of the public key.
	PublicBlob() []byte
	// Sign returns a wire-encoded signature over digest.
	Sign(rand io.Reader, digest []byte) ([]byte, error)
}

// HostKeyVerifier checks signatures made by a peer host key.
type HostKeyVerifier interface {
	Verify(digest, sig []byte) bool
}

// Exchange is a synchronous key exchange session. It performs no I/O:
// packets go in through Handle and come out as return values.
type Exchange interface {
	// Start returns the first packet to send, or nil when the session
	// waits for the peer.
	Start() ([]byte, error)
	// Handle consumes one inbound packet and returns the packet to send
	// in answer, or nil.
	Handle(packet []byte) ([]byte, error)
	// State returns the current state.
	State() domaintypes.State
	// Result returns the outcome once the state is COMPLETE.
	Result() (*domaintypes.Result, error)
}
