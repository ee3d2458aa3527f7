package app

import (
	"fmt"

	"github.com/golang/glog"

	"sshkex/internal/crypto"
	"sshkex/internal/domain"
	"sshkex/internal/protocol/groups"
	"sshkex/internal/services/handshake"
	"sshkex/internal/store"
	"sshkex/internal/util/loglevel"
)

// Wire bundles the stores, group store and services for the CLI.
type Wire struct {
	Config     Config
	HostKeys   domain.HostKeyStore
	KnownHosts domain.KnownHostsStore
	Groups     *groups.Store
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	gs, err := LoadGroups(cfg)
	if err != nil {
		return nil, err
	}
	return &Wire{
		Config:     cfg,
		HostKeys:   store.NewHostKeyFileStore(cfg.Path(cfg.Server.HostKey)),
		KnownHosts: store.NewKnownHostsFileStore(cfg.Path(cfg.Client.KnownHosts)),
		Groups:     gs,
	}, nil
}

// LoadGroups builds the GEX group store: the built-in RFC groups plus any
// from the configured moduli file.
func LoadGroups(cfg Config) (*groups.Store, error) {
	var gs []*groups.Group
	if !cfg.Groups.NoBuiltin {
		gs = append(gs, groups.Builtin()...)
	}
	if path := cfg.Path(cfg.Groups.ModuliFile); path != "" {
		extra, err := groups.LoadModuliFile(path)
		if err != nil {
			return nil, fmt.Errorf("app: moduli: %w", err)
		}
		if glog.V(loglevel.LvGroups) {
			glog.Infof("app: loaded %d groups from %s", len(extra), path)
		}
		gs = append(gs, extra...)
	}
	s := groups.NewStore(gs...)
	if s.Len() == 0 {
		return nil, fmt.Errorf("app: no groups configured")
	}
	return s, nil
}

// HostKey loads the server host key.
func (w *Wire) HostKey(passphrase string) (*crypto.HostKey, error) {
	priv, err := w.HostKeys.LoadHostKey(passphrase)
	if err != nil {
		return nil, err
	}
	return crypto.NewHostKey(priv)
}

// HandshakeOptions maps the configuration onto handshake options.
func (w *Wire) HandshakeOptions() handshake.Options {
	c := w.Config
	return handshake.Options{
		ClientVersion:  c.Client.Version,
		ServerVersion:  c.Server.Version,
		Methods:        c.Kex.Methods,
		Groups:         w.Groups,
		Policy:         c.Policy(),
		LegacyRequest:  c.Kex.LegacyRequest,
		StrictHostKeys: c.Client.StrictHostKeys,
		Timeout:        c.Kex.Timeout,
	}
}

// Handshake returns a handshake service. hostKey may be nil when only
// dialing.
func (w *Wire) Handshake(hostKey *crypto.HostKey) *handshake.Service {
	return handshake.New(hostKey, w.KnownHosts, w.HandshakeOptions())
}
