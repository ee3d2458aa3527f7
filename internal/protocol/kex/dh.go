package kex

import (
	"fmt"

	"sshkex/internal/domain"
	"sshkex/internal/protocol/wire"
)

// DH runs a key exchange over a fixed group.
type DH struct {
	cfg    Config
	method Method
	core   *Core
}

func newDH(cfg Config, m Method) *DH {
	return &DH{
		cfg:    cfg,
		method: m,
		core:   NewCore(m.Name, m.Group, m.Hash, cfg.Role, cfg.Rand),
	}
}

// State returns the current state.
func (d *DH) State() domain.State { return d.core.State() }

// Result returns the outcome once COMPLETE.
func (d *DH) Result() (*domain.Result, error) { return d.core.Result() }

// Abort fails the session and wipes its secrets.
func (d *DH) Abort() { d.core.Abort() }

// Start sends KEXDH_INIT for initiators; responders return nil and wait.
func (d *DH) Start() ([]byte, error) {
	if d.core.State() != domain.StateInit {
		return nil, fmt.Errorf("%w: start in %s", ErrInvalidState, d.core.State())
	}
	if d.cfg.Role == domain.Responder {
		return nil, nil
	}
	if err := d.core.GenerateKeyPair(); err != nil {
		return nil, err
	}
	return wire.Marshal(&wire.KexDHInitMsg{X: d.core.Public()}), nil
}

// Handle processes KEXDH_INIT (responder) or KEXDH_REPLY (initiator).
func (d *DH) Handle(packet []byte) ([]byte, error) {
	if d.core.State().Terminal() {
		return nil, fmt.Errorf("%w: packet after %s", ErrInvalidState, d.core.State())
	}
	switch typ := wire.TypeOf(packet); {
	case typ == wire.MsgKexDHInit && d.cfg.Role == domain.Responder:
		return d.handleInit(packet)
	case typ == wire.MsgKexDHReply && d.cfg.Role == domain.Initiator:
		return nil, d.handleReply(packet)
	default:
		return nil, d.core.fail(fmt.Errorf("%w: %d as %s", ErrUnexpectedMessage, typ, d.cfg.Role))
	}
}

func (d *DH) handleInit(packet []byte) ([]byte, error) {
	if d.core.State() != domain.StateInit {
		return nil, d.core.fail(fmt.Errorf("%w: KEXDH_INIT in %s", ErrInvalidState, d.core.State()))
	}
	var msg wire.KexDHInitMsg
	if err := wire.Unmarshal(packet, wire.MsgKexDHInit, &msg); err != nil {
		return nil, d.core.fail(fmt.Errorf("%w: %v", ErrMalformedMessage, err))
	}
	if err := d.core.GenerateKeyPair(); err != nil {
		return nil, err
	}
	if err := d.core.ProcessPeerPublic(msg.X); err != nil {
		return nil, err
	}
	res, err := d.core.Sign(d.cfg.HostKey, d.cfg.Handshake, nil)
	if err != nil {
		return nil, err
	}
	return wire.Marshal(&wire.KexDHReplyMsg{
		HostKey:   res.HostKey,
		Y:         d.core.Public(),
		Signature: res.Signature,
	}), nil
}

func (d *DH) handleReply(packet []byte) error {
	if d.core.State() != domain.StateAwaitingPeerPublic {
		return d.core.fail(fmt.Errorf("%w: KEXDH_REPLY in %s", ErrInvalidState, d.core.State()))
	}
	var msg wire.KexDHReplyMsg
	if err := wire.Unmarshal(packet, wire.MsgKexDHReply, &msg); err != nil {
		return d.core.fail(fmt.Errorf("%w: %v", ErrMalformedMessage, err))
	}
	if err := d.core.ProcessPeerPublic(msg.Y); err != nil {
		return err
	}
	_, err := d.core.Verify(msg.HostKey, msg.Signature, d.cfg.Handshake, nil,
		d.cfg.ParseHostKey, d.cfg.HostKeyCallback)
	return err
}
