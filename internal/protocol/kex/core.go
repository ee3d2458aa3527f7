package kex

import (
	"crypto"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/golang/glog"

	"sshkex/internal/domain"
	"sshkex/internal/protocol/groups"
	"sshkex/internal/protocol/wire"
	"sshkex/internal/util/loglevel"
	"sshkex/internal/util/memzero"
)

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)

// Core is the Diffie-Hellman exchange once the group is known. Fixed-group
// and group-exchange sessions both drive one.
type Core struct {
	method string
	group  *groups.Group
	hash   crypto.Hash
	role   domain.Role
	rand   io.Reader
	state  domain.State

	x    *big.Int // secret exponent, never sent
	pub  *big.Int // g^x mod p
	peer *big.Int // peer's public value
	k    *big.Int // shared secret

	result *domain.Result
}

// NewCore returns a core in state INIT for group.
func NewCore(method string, group *groups.Group, h crypto.Hash, role domain.Role, randSource io.Reader) *Core {
	if randSource == nil {
		randSource = rand.Reader
	}
	return &Core{
		method: method,
		group:  group,
		hash:   h,
		role:   role,
		rand:   randSource,
		state:  domain.StateInit,
	}
}

// State returns the current state.
func (c *Core) State() domain.State { return c.state }

// Group returns the group in use.
func (c *Core) Group() *groups.Group { return c.group }

// Public returns a copy of the local public value, or nil before
// GenerateKeyPair.
func (c *Core) Public() *big.Int {
	if c.pub == nil {
		return nil
	}
	return new(big.Int).Set(c.pub)
}

func (c *Core) transition(to domain.State) {
	if glog.V(loglevel.LvState) {
		glog.Infof("kex: %s %s: %s -> %s", c.method, c.role, c.state, to)
	}
	c.state = to
}

// fail moves the core to FAILED, wipes secrets and returns err.
func (c *Core) fail(err error) error {
	if c.state != domain.StateFailed {
		c.transition(domain.StateFailed)
	}
	c.wipe()
	return err
}

func (c *Core) wipe() {
	memzero.ZeroInt(c.x)
	memzero.ZeroInt(c.k)
	c.x, c.k = nil, nil
}

// Abort discards the exchange, e.g. when the connection is torn down.
func (c *Core) Abort() {
	if !c.state.Terminal() {
		c.transition(domain.StateFailed)
	}
	c.wipe()
}

// GenerateKeyPair picks x uniformly in [2, q-2], where q = (p-1)/2, and
// computes the public value. Valid only in INIT.
func (c *Core) GenerateKeyPair() error {
	if c.state != domain.StateInit {
		return fmt.Errorf("%w: generate key pair in %s", ErrInvalidState, c.state)
	}
	span := c.group.Order()
	span.Sub(span, big.NewInt(3))
	if span.Sign() <= 0 {
		return c.fail(fmt.Errorf("%w: group order too small", groups.ErrInvalidGroup))
	}
	x, err := rand.Int(c.rand, span)
	if err != nil {
		return c.fail(err)
	}
	x.Add(x, bigTwo)
	c.setSecret(x)
	return nil
}

// setSecret installs x and moves to AWAITING_PEER_PUBLIC.
func (c *Core) setSecret(x *big.Int) {
	c.x = x
	c.pub = new(big.Int).Exp(c.group.G, x, c.group.P)
	c.transition(domain.StateAwaitingPeerPublic)
}

// ProcessPeerPublic validates the peer's public value v and computes the
// shared secret v^x mod p. The secret stays inside the core until it is
// handed out, mpint-encoded, by Result.
func (c *Core) ProcessPeerPublic(v *big.Int) error {
	if c.state != domain.StateAwaitingPeerPublic {
		return fmt.Errorf("%w: peer public value in %s", ErrInvalidState, c.state)
	}
	c.transition(domain.StateComputingSecret)

	if v == nil || v.Cmp(bigOne) <= 0 || v.Cmp(c.group.PMinus1()) >= 0 {
		return c.fail(ErrOutOfRangeValue)
	}
	k := new(big.Int).Exp(v, c.x, c.group.P)
	if k.Cmp(bigOne) < 0 {
		memzero.ZeroInt(k)
		return c.fail(ErrDegenerateSecret)
	}
	c.peer = new(big.Int).Set(v)
	c.k = k
	return nil
}

// exchangeHash hashes the handshake, K_S, the method's group fields, e, f
// and K in protocol order.
func (c *Core) exchangeHash(hs domain.Handshake, hostKey []byte, groupFields []Field) []byte {
	e, f := c.pub, c.peer
	if c.role == domain.Responder {
		e, f = c.peer, c.pub
	}
	t := NewTranscript(c.hash)
	t.Write(HandshakeFields(hs)...)
	t.Write(StringField(hostKey))
	t.Write(groupFields...)
	t.Write(MPIntField(e), MPIntField(f), MPIntField(c.k))
	return t.Sum()
}

// Sign is the responder's last step: hash the transcript, sign it with
// signer and complete.
func (c *Core) Sign(signer domain.HostKeySigner, hs domain.Handshake, groupFields []Field) (*domain.Result, error) {
	if c.role != domain.Responder || c.state != domain.StateComputingSecret {
		return nil, fmt.Errorf("%w: sign as %s in %s", ErrInvalidState, c.role, c.state)
	}
	c.transition(domain.StateSigning)

	blob := signer.PublicBlob()
	H := c.exchangeHash(hs, blob, groupFields)
	sig, err := signer.Sign(c.rand, H)
	if err != nil {
		return nil, c.fail(fmt.Errorf("kex: sign exchange hash: %w", err))
	}
	return c.complete(blob, H, sig), nil
}

// Verify is the initiator's last step: recompute the transcript hash,
// verify the responder's signature over it and only then hand the proven
// host key to callback.
func (c *Core) Verify(
	hostKey, sig []byte,
	hs domain.Handshake,
	groupFields []Field,
	parse func([]byte) (domain.HostKeyVerifier, error),
	callback domain.HostKeyCallback,
) (*domain.Result, error) {
	if c.role != domain.Initiator || c.state != domain.StateComputingSecret {
		return nil, fmt.Errorf("%w: verify as %s in %s", ErrInvalidState, c.role, c.state)
	}
	c.transition(domain.StateVerifyingSignature)

	verifier, err := parse(hostKey)
	if err != nil {
		return nil, c.fail(fmt.Errorf("%w: %v", ErrSignatureMismatch, err))
	}
	H := c.exchangeHash(hs, hostKey, groupFields)
	if !verifier.Verify(H, sig) {
		return nil, c.fail(ErrSignatureMismatch)
	}
	// Only a verified key reaches the callback.
	if callback != nil {
		if err := callback(hostKey); err != nil {
			return nil, c.fail(fmt.Errorf("%w: %v", ErrHostKeyRejected, err))
		}
	}
	return c.complete(hostKey, H, sig), nil
}

func (c *Core) complete(hostKey, H, sig []byte) *domain.Result {
	c.result = &domain.Result{
		Method:    c.method,
		H:         H,
		K:         wire.AppendMPInt(nil, c.k),
		HostKey:   hostKey,
		Signature: sig,
		Hash:      c.hash,
	}
	c.wipe()
	c.transition(domain.StateComplete)
	return c.result
}

// Result returns the outcome once COMPLETE.
func (c *Core) Result() (*domain.Result, error) {
	if c.state != domain.StateComplete {
		return nil, fmt.Errorf("%w: result in %s", ErrInvalidState, c.state)
	}
	return c.result, nil
}
