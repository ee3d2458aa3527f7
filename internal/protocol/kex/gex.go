package kex

import (
	"fmt"

	"github.com/golang/glog"

	"sshkex/internal/domain"
	"sshkex/internal/protocol/groups"
	"sshkex/internal/protocol/wire"
	"sshkex/internal/util/loglevel"
)

// GEX negotiates a group (RFC 4419) and then hands over to a Core.
type GEX struct {
	cfg    Config
	method Method

	// state is used until the group is known; afterwards core owns it.
	state domain.State
	core  *Core

	// request as sent (initiator) or received (responder); hashed verbatim.
	legacy  bool
	request groups.Policy
}

func newGEX(cfg Config, m Method) *GEX {
	return &GEX{cfg: cfg, method: m, state: domain.StateInit}
}

// State returns the current state.
func (g *GEX) State() domain.State {
	if g.core != nil {
		return g.core.State()
	}
	return g.state
}

// Result returns the outcome once COMPLETE.
func (g *GEX) Result() (*domain.Result, error) {
	if g.core == nil {
		return nil, fmt.Errorf("%w: result in %s", ErrInvalidState, g.state)
	}
	return g.core.Result()
}

// Group returns the negotiated group, or nil before negotiation.
func (g *GEX) Group() *groups.Group {
	if g.core == nil {
		return nil
	}
	return g.core.Group()
}

func (g *GEX) transition(to domain.State) {
	if glog.V(loglevel.LvState) {
		glog.Infof("kex: %s %s: %s -> %s", g.method.Name, g.cfg.Role, g.state, to)
	}
	g.state = to
}

func (g *GEX) fail(err error) error {
	if g.core != nil {
		return g.core.fail(err)
	}
	if g.state != domain.StateFailed {
		g.transition(domain.StateFailed)
	}
	return err
}

// Abort fails the session and wipes its secrets.
func (g *GEX) Abort() {
	if g.core != nil {
		g.core.Abort()
		return
	}
	if !g.state.Terminal() {
		g.transition(domain.StateFailed)
	}
}

// Start sends the size request for initiators; responders return nil and
// wait for it.
func (g *GEX) Start() ([]byte, error) {
	if g.State() != domain.StateInit {
		return nil, fmt.Errorf("%w: start in %s", ErrInvalidState, g.State())
	}
	if g.cfg.Role == domain.Responder {
		return nil, nil
	}
	g.request = g.cfg.Policy
	g.legacy = g.cfg.LegacyRequest
	g.transition(domain.StateAwaitingGroup)
	if g.legacy {
		return wire.Marshal(&wire.KexDHGexRequestOldMsg{N: g.request.PreferredBits}), nil
	}
	return wire.Marshal(&wire.KexDHGexRequestMsg{
		Min: g.request.MinBits,
		N:   g.request.PreferredBits,
		Max: g.request.MaxBits,
	}), nil
}

// Handle processes one GEX packet.
func (g *GEX) Handle(packet []byte) ([]byte, error) {
	if g.State().Terminal() {
		return nil, fmt.Errorf("%w: packet after %s", ErrInvalidState, g.State())
	}
	responder := g.cfg.Role == domain.Responder
	switch typ := wire.TypeOf(packet); {
	case responder && (typ == wire.MsgKexDHGexRequest || typ == wire.MsgKexDHGexRequestOld):
		return g.handleRequest(packet, typ)
	case responder && typ == wire.MsgKexDHGexInit:
		return g.handleInit(packet)
	case !responder && typ == wire.MsgKexDHGexGroup:
		return g.handleGroup(packet)
	case !responder && typ == wire.MsgKexDHGexReply:
		return nil, g.handleReply(packet)
	default:
		return nil, g.fail(fmt.Errorf("%w: %d as %s", ErrUnexpectedMessage, typ, g.cfg.Role))
	}
}

// groupFields returns the request sizes, p and g as hashed between K_S
// and e. Only n is hashed for a legacy request.
func (g *GEX) groupFields() []Field {
	var fields []Field
	if g.legacy {
		fields = append(fields, Uint32Field(g.request.PreferredBits))
	} else {
		fields = append(fields,
			Uint32Field(g.request.MinBits),
			Uint32Field(g.request.PreferredBits),
			Uint32Field(g.request.MaxBits))
	}
	grp := g.core.Group()
	return append(fields, MPIntField(grp.P), MPIntField(grp.G))
}

func (g *GEX) handleRequest(packet []byte, typ wire.MsgType) ([]byte, error) {
	if g.core != nil || g.state != domain.StateInit {
		return nil, g.fail(fmt.Errorf("%w: group request in %s", ErrInvalidState, g.State()))
	}

	// A legacy request only names n; the local policy supplies the bounds
	// used for selection, but only n goes into the hash.
	var sel groups.Policy
	if typ == wire.MsgKexDHGexRequestOld {
		var msg wire.KexDHGexRequestOldMsg
		if err := wire.Unmarshal(packet, typ, &msg); err != nil {
			return nil, g.fail(fmt.Errorf("%w: %v", ErrMalformedMessage, err))
		}
		g.legacy = true
		g.request = groups.Policy{PreferredBits: msg.N}
		sel = g.cfg.Policy.Legacy(msg.N)
	} else {
		var msg wire.KexDHGexRequestMsg
		if err := wire.Unmarshal(packet, typ, &msg); err != nil {
			return nil, g.fail(fmt.Errorf("%w: %v", ErrMalformedMessage, err))
		}
		g.request = groups.Policy{MinBits: msg.Min, PreferredBits: msg.N, MaxBits: msg.Max}
		sel = g.request
	}

	grp, err := g.cfg.Groups.SelectPolicy(sel)
	if err != nil {
		return nil, g.fail(err)
	}
	g.core = NewCore(g.method.Name, grp, g.method.Hash, g.cfg.Role, g.cfg.Rand)
	if err := g.core.GenerateKeyPair(); err != nil {
		return nil, err
	}
	return wire.Marshal(&wire.KexDHGexGroupMsg{P: grp.P, G: grp.G}), nil
}

func (g *GEX) handleGroup(packet []byte) ([]byte, error) {
	if g.core != nil || g.state != domain.StateAwaitingGroup {
		return nil, g.fail(fmt.Errorf("%w: group in %s", ErrInvalidState, g.State()))
	}
	var msg wire.KexDHGexGroupMsg
	if err := wire.Unmarshal(packet, wire.MsgKexDHGexGroup, &msg); err != nil {
		return nil, g.fail(fmt.Errorf("%w: %v", ErrMalformedMessage, err))
	}

	// A legacy request only sent n; hold the group to the local bounds.
	bounds := g.request
	if g.legacy {
		bounds = g.cfg.Policy
	}
	grp, err := groups.New("gex", msg.G, msg.P)
	if err != nil {
		return nil, g.fail(fmt.Errorf("%w: %v", ErrNoSuitableGroup, err))
	}
	if bits := uint32(grp.Bits()); bits < bounds.MinBits || bits > bounds.MaxBits {
		return nil, g.fail(fmt.Errorf("%w: received %d-bit group, requested [%d, %d]",
			ErrNoSuitableGroup, bits, bounds.MinBits, bounds.MaxBits))
	}
	// One Baillie-PSW round each for p and (p-1)/2.
	if !groups.IsSafePrime(grp.P, 0) {
		return nil, g.fail(fmt.Errorf("%w: received modulus is not a safe prime", ErrNoSuitableGroup))
	}

	g.core = NewCore(g.method.Name, grp, g.method.Hash, g.cfg.Role, g.cfg.Rand)
	if err := g.core.GenerateKeyPair(); err != nil {
		return nil, err
	}
	return wire.Marshal(&wire.KexDHGexInitMsg{X: g.core.Public()}), nil
}

func (g *GEX) handleInit(packet []byte) ([]byte, error) {
	if g.core == nil || g.core.State() != domain.StateAwaitingPeerPublic {
		return nil, g.fail(fmt.Errorf("%w: GEX_INIT in %s", ErrInvalidState, g.State()))
	}
	var msg wire.KexDHGexInitMsg
	if err := wire.Unmarshal(packet, wire.MsgKexDHGexInit, &msg); err != nil {
		return nil, g.fail(fmt.Errorf("%w: %v", ErrMalformedMessage, err))
	}
	if err := g.core.ProcessPeerPublic(msg.X); err != nil {
		return nil, err
	}
	res, err := g.core.Sign(g.cfg.HostKey, g.cfg.Handshake, g.groupFields())
	if err != nil {
		return nil, err
	}
	return wire.Marshal(&wire.KexDHGexReplyMsg{
		HostKey:   res.HostKey,
		Y:         g.core.Public(),
		Signature: res.Signature,
	}), nil
}

func (g *GEX) handleReply(packet []byte) error {
	if g.core == nil || g.core.State() != domain.StateAwaitingPeerPublic {
		return g.fail(fmt.Errorf("%w: GEX_REPLY in %s", ErrInvalidState, g.State()))
	}
	var msg wire.KexDHGexReplyMsg
	if err := wire.Unmarshal(packet, wire.MsgKexDHGexReply, &msg); err != nil {
		return g.fail(fmt.Errorf("%w: %v", ErrMalformedMessage, err))
	}
	if err := g.core.ProcessPeerPublic(msg.Y); err != nil {
		return err
	}
	_, err := g.core.Verify(msg.HostKey, msg.Signature, g.cfg.Handshake, g.groupFields(),
		g.cfg.ParseHostKey, g.cfg.HostKeyCallback)
	return err
}
