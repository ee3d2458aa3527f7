package types

import "fmt"

// Role says which side of the key exchange a session plays.
type Role int

const (
	// Initiator is the SSH client side: it sends the first DH value.
	Initiator Role = iota
	// Responder is the SSH server side: it owns the host key and signs.
	Responder
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case Initiator:
		return "initiator"
	case Responder:
		return "responder"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// State is a key exchange state.
type State int

const (
	StateInit State = iota
	StateAwaitingGroup
	StateAwaitingPeerPublic
	StateComputingSecret
	StateVerifyingSignature
	StateSigning
	StateComplete
	StateFailed
)

var stateNames = [...]string{
	StateInit:               "INIT",
	StateAwaitingGroup:      "AWAITING_GROUP",
	StateAwaitingPeerPublic: "AWAITING_PEER_PUBLIC",
	StateComputingSecret:    "COMPUTING_SECRET",
	StateVerifyingSignature: "VERIFYING_SIGNATURE",
	StateSigning:            "SIGNING",
	StateComplete:           "COMPLETE",
	StateFailed:             "FAILED",
}

// String returns the state name.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no further input is accepted.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}
