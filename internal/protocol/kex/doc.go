// Package kex implements the SSH finite-field Diffie-Hellman key exchanges:
// fixed groups (RFC 4253, RFC 8268) and group exchange (RFC 4419).
//
// # Overview
//
// A session is a synchronous state machine. It performs no I/O: the caller
// feeds inbound packets to Handle and sends whatever it returns. Both
// variants share one Core, which owns the secret exponent, validates the
// peer's public value, computes the shared secret and builds, signs or
// verifies the exchange hash. GEX only adds a negotiation step in front of
// it and a few extra fields in the hash.
//
// # Flows
//
// Fixed group, initiator:
//  1. Start: pick x in [2, q-2], send KEXDH_INIT(e = g^x mod p).
//  2. On KEXDH_INIT's reply (K_S, f, sig): check 1 < f < p-1, compute
//     K = f^x mod p, hash the transcript, verify sig with K_S.
//
// Fixed group, responder:
//  1. On KEXDH_INIT(e): pick y, check e, compute K = e^y mod p.
//  2. Hash, sign with the host key, send KEXDH_REPLY(K_S, f, sig).
//
// Group exchange prepends KEX_DH_GEX_REQUEST(min, n, max) and
// KEX_DH_GEX_GROUP(p, g), then runs the same steps with GEX message numbers.
//
// # Errors
//
// ErrOutOfRangeValue, ErrDegenerateSecret, ErrSignatureMismatch,
// ErrNoSuitableGroup and ErrInvalidState are fatal: the session moves to
// FAILED and every later call returns ErrInvalidState. DisconnectReason
// maps an error to the SSH disconnect code the transport should send.
//
// # Security notes
//
// The secret exponent and shared secret are wiped when the session
// completes or fails. Public values equal to 0, 1, p-1 or outside [0, p)
// are rejected before exponentiation.
package kex
