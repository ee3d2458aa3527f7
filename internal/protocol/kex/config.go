package kex

import (
	"errors"
	"fmt"
	"io"

	"sshkex/internal/crypto"
	"sshkex/internal/domain"
	"sshkex/internal/protocol/groups"
)

// GroupSelector answers group-exchange requests. *groups.Store implements it.
type GroupSelector interface {
	SelectPolicy(p groups.Policy) (*groups.Group, error)
}

// Config configures one key exchange session.
type Config struct {
	// Method is the negotiated method name.
	Method string

	Role domain.Role

	// Handshake is hashed ahead of the method fields.
	Handshake domain.Handshake

	// HostKey signs the exchange hash. Required for responders.
	HostKey domain.HostKeySigner

	// HostKeyCallback, if set, vets the responder's host key blob.
	HostKeyCallback domain.HostKeyCallback

	// ParseHostKey turns K_S into a verifier. Defaults to
	// crypto.ParsePublicBlob.
	ParseHostKey func(blob []byte) (domain.HostKeyVerifier, error)

	// Groups answers GEX requests. Defaults to groups.DefaultStore().
	Groups GroupSelector

	// Policy is the GEX size request (initiator) and the bounds applied
	// to legacy requests (responder). Zero means groups.DefaultPolicy().
	Policy groups.Policy

	// LegacyRequest makes a GEX initiator send KEX_DH_GEX_REQUEST_OLD.
	LegacyRequest bool

	// Rand defaults to crypto/rand.Reader.
	Rand io.Reader
}

func parseBlob(blob []byte) (domain.HostKeyVerifier, error) {
	return crypto.ParsePublicBlob(blob)
}

func (cfg *Config) setDefaults() {
	if cfg.ParseHostKey == nil {
		cfg.ParseHostKey = parseBlob
	}
	if cfg.Groups == nil {
		cfg.Groups = groups.DefaultStore()
	}
	if cfg.Policy == (groups.Policy{}) {
		cfg.Policy = groups.DefaultPolicy()
	}
}

// New returns a fixed-group or group-exchange session for cfg.Method.
func New(cfg Config) (domain.Exchange, error) {
	m, err := LookupMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	if cfg.Role == domain.Responder && cfg.HostKey == nil {
		return nil, errors.New("kex: responder needs a host key")
	}
	cfg.setDefaults()
	if m.GroupExchange() {
		if err := cfg.Policy.Validate(); err != nil {
			return nil, fmt.Errorf("kex: %w", err)
		}
		return newGEX(cfg, m), nil
	}
	return newDH(cfg, m), nil
}
