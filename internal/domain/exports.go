package domain

import (
	interfaces "sshkex/internal/domain/interfaces"
	types "sshkex/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Role            = types.Role
	State           = types.State
	Handshake       = types.Handshake
	Result          = types.Result
	HostKeyCallback = types.HostKeyCallback
)

const (
	Initiator = types.Initiator
	Responder = types.Responder

	StateInit               = types.StateInit
	StateAwaitingGroup      = types.StateAwaitingGroup
	StateAwaitingPeerPublic = types.StateAwaitingPeerPublic
	StateComputingSecret    = types.StateComputingSecret
	StateVerifyingSignature = types.StateVerifyingSignature
	StateSigning            = types.StateSigning
	StateComplete           = types.StateComplete
	StateFailed             = types.StateFailed
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	HostKeySigner    = interfaces.HostKeySigner
	HostKeyVerifier  = interfaces.HostKeyVerifier
	Exchange         = interfaces.Exchange
	PacketConn       = interfaces.PacketConn
	HostKeyStore     = interfaces.HostKeyStore
	KnownHostsStore  = interfaces.KnownHostsStore
	HandshakeService = interfaces.HandshakeService
)
