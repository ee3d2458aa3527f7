package kex

import (
	"errors"

	"sshkex/internal/protocol/groups"
	"sshkex/internal/protocol/wire"
)

var (
	// ErrOutOfRangeValue is returned when a peer public value is not in (1, p-1).
	ErrOutOfRangeValue = errors.New("kex: DH public value out of range")

	// ErrDegenerateSecret is returned when the shared secret is below 1.
	ErrDegenerateSecret = errors.New("kex: degenerate shared secret")

	// ErrSignatureMismatch is returned when the host key signature over the
	// exchange hash does not verify. It may indicate a man in the middle.
	ErrSignatureMismatch = errors.New("kex: host key signature does not match exchange hash")

	// ErrNoSuitableGroup is returned when no group satisfies a size request,
	// or when a received group lies outside the requested range.
	ErrNoSuitableGroup = groups.ErrNoSuitableGroup

	// ErrInvalidState is returned for calls outside their valid state,
	// including any call after COMPLETE or FAILED.
	ErrInvalidState = errors.New("kex: invalid state")

	// ErrUnknownMethod is returned for unsupported method names.
	ErrUnknownMethod = errors.New("kex: unknown method")

	// ErrUnexpectedMessage is returned for message numbers the session's
	// method and role never accept.
	ErrUnexpectedMessage = errors.New("kex: unexpected message")

	// ErrMalformedMessage is returned when a packet fails to decode.
	ErrMalformedMessage = errors.New("kex: malformed message")

	// ErrHostKeyRejected is returned when the HostKeyCallback refuses K_S.
	ErrHostKeyRejected = errors.New("kex: host key rejected")
)

// DisconnectReason returns the SSH_MSG_DISCONNECT reason code for err.
func DisconnectReason(err error) uint32 {
	switch {
	case errors.Is(err, ErrSignatureMismatch), errors.Is(err, ErrHostKeyRejected):
		return wire.DisconnectHostKeyNotVerifiable
	case errors.Is(err, ErrUnexpectedMessage), errors.Is(err, ErrMalformedMessage),
		errors.Is(err, ErrInvalidState):
		return wire.DisconnectProtocolError
	default:
		return wire.DisconnectKeyExchangeFailed
	}
}
